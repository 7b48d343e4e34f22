package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vdellis/inkpost/internal/apperr"
	"github.com/vdellis/inkpost/internal/models"
	"github.com/vdellis/inkpost/internal/query"
	"github.com/vdellis/inkpost/internal/utils"
)

// Resource serves generic CRUD for one table. Request payloads are filtered
// against the table's writable column list before they reach the accessor,
// so client-chosen keys never become SQL identifiers.
type Resource struct {
	store    *query.Store
	table    string
	columns  []string
	validate func(query.Record) error
}

func NewResource(store *query.Store, table string) *Resource {
	return &Resource{
		store:   store,
		table:   table,
		columns: models.WritableColumns(table),
	}
}

// WithValidation installs a payload check run before insert and update.
func (h *Resource) WithValidation(fn func(query.Record) error) *Resource {
	h.validate = fn
	return h
}

func (h *Resource) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.SelectAll(r.Context(), h.table)
	if err != nil {
		h.fail(w, err, "Error fetching from "+h.table)
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}

func (h *Resource) Get(w http.ResponseWriter, r *http.Request) {
	row, err := h.store.Select(r.Context(), h.table, urlID(r))
	if err != nil {
		h.fail(w, err, "Error fetching from "+h.table)
		return
	}
	utils.JSON(w, http.StatusOK, row)
}

func (h *Resource) Create(w http.ResponseWriter, r *http.Request) {
	rec, err := query.DecodeRecord(r.Body, h.columns)
	if err == nil && h.validate != nil {
		err = h.validate(rec)
	}
	if err != nil {
		h.fail(w, err, "Error creating "+h.table)
		return
	}

	id, rec, err := h.store.Insert(r.Context(), h.table, rec)
	if err != nil {
		h.fail(w, err, "Error creating "+h.table)
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]any{
		"id":      id,
		"message": h.table + " created successfully",
		"data":    rec.Map(),
	})
}

func (h *Resource) Update(w http.ResponseWriter, r *http.Request) {
	rec, err := query.DecodeRecord(r.Body, h.columns)
	if err == nil && h.validate != nil {
		err = h.validate(rec)
	}
	if err != nil {
		h.fail(w, err, "Error updating "+h.table)
		return
	}

	n, err := h.store.Update(r.Context(), h.table, urlID(r), rec)
	if err != nil {
		h.fail(w, err, "Error updating "+h.table)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"message":      h.table + " updated successfully",
		"affectedRows": n,
	})
}

func (h *Resource) Delete(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Delete(r.Context(), h.table, urlID(r))
	if err != nil {
		h.fail(w, err, "Error deleting "+h.table)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"message":      h.table + " deleted successfully",
		"affectedRows": n,
	})
}

// fail translates accessor errors into the resource's response bodies.
// Store failures get the operation-specific fallback and never leak
// driver details.
func (h *Resource) fail(w http.ResponseWriter, err error, fallback string) {
	status := apperr.Status(err)
	switch {
	case errors.Is(err, apperr.ErrInvalidTable):
		utils.JSONError(w, status, "Invalid table name")
	case errors.Is(err, apperr.ErrInvalidInput):
		utils.JSONError(w, status, inputMessage(err))
	case errors.Is(err, apperr.ErrNotFound):
		utils.JSONError(w, status, h.table+" not found")
	case errors.Is(err, apperr.ErrConflict):
		utils.JSONError(w, status, "Duplicate entry in "+h.table)
	default:
		utils.JSONError(w, status, fallback)
	}
}

func urlID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

// inputMessage strips the sentinel prefix from a validation error, leaving
// the human-readable part for the response body.
func inputMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

// recString pulls a string column out of a record for validation.
func recString(rec query.Record, column string) string {
	if v, ok := rec.Get(column); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// PostValidator checks post payloads against the posts schema rules.
func PostValidator(rec query.Record) error {
	in := models.PostInput{
		Title:   recString(rec, "title"),
		Content: recString(rec, "content"),
		Author:  recString(rec, "author"),
		Status:  recString(rec, "status"),
	}
	return in.Validate()
}

// CustomerValidator requires name and email on customer payloads.
func CustomerValidator(rec query.Record) error {
	if recString(rec, "name") == "" || recString(rec, "email") == "" {
		return fmt.Errorf("%w: name and email are required", apperr.ErrInvalidInput)
	}
	return nil
}
