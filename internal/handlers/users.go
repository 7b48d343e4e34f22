package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/vdellis/inkpost/internal/apperr"
	"github.com/vdellis/inkpost/internal/models"
	"github.com/vdellis/inkpost/internal/query"
	"github.com/vdellis/inkpost/internal/utils"
)

// UserHandler is the users resource with the extra care the table needs:
// password hashing on create, hash-free responses everywhere, and a
// dedicated password-change endpoint.
type UserHandler struct {
	store *query.Store
	log   *slog.Logger
}

func NewUserHandler(store *query.Store, log *slog.Logger) *UserHandler {
	return &UserHandler{store: store, log: log}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.SelectAll(r.Context(), "users")
	if err != nil {
		h.fail(w, err, "Failed to fetch users")
		return
	}
	for _, row := range rows {
		delete(row, "password_hash")
	}
	utils.JSON(w, http.StatusOK, rows)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	row, err := h.store.Select(r.Context(), "users", urlID(r))
	if err != nil {
		h.fail(w, err, "Failed to fetch user")
		return
	}
	delete(row, "password_hash")
	utils.JSON(w, http.StatusOK, row)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		return
	}
	if err := in.Validate(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, inputMessage(err))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	role := in.Role
	if role == "" {
		role = string(models.RoleUser)
	}

	rec := query.Record{
		{Column: "username", Value: in.Username},
		{Column: "email", Value: in.Email},
		{Column: "password_hash", Value: string(hash)},
		{Column: "first_name", Value: nullable(in.FirstName)},
		{Column: "last_name", Value: nullable(in.LastName)},
		{Column: "role", Value: role},
		{Column: "is_active", Value: true},
	}

	id, rec, err := h.store.Insert(r.Context(), "users", rec)
	if err != nil {
		h.fail(w, err, "Failed to create user")
		return
	}

	data := rec.Map()
	delete(data, "password_hash")

	utils.JSON(w, http.StatusCreated, map[string]any{
		"id":      id,
		"message": "users created successfully",
		"data":    data,
	})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in models.UserUpdate
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		return
	}
	if err := in.Validate(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, inputMessage(err))
		return
	}

	n, err := h.store.Update(r.Context(), "users", urlID(r), in.Record())
	if err != nil {
		h.fail(w, err, "Failed to update user")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"message":      "users updated successfully",
		"affectedRows": n,
	})
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword verifies the caller knows the current password before
// storing a new hash through the accessor.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		utils.JSONError(w, http.StatusBadRequest, "Current password and new password are required")
		return
	}
	if len(req.NewPassword) < 6 {
		utils.JSONError(w, http.StatusBadRequest, "New password must be at least 6 characters long")
		return
	}

	id := urlID(r)
	row, err := h.store.Select(r.Context(), "users", id)
	if err != nil {
		h.fail(w, err, "Failed to update password")
		return
	}

	if err := bcrypt.CompareHashAndPassword(rowBytes(row, "password_hash"), []byte(req.CurrentPassword)); err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	n, err := h.store.Update(r.Context(), "users", id, query.Record{
		{Column: "password_hash", Value: string(hash)},
	})
	if err != nil {
		h.fail(w, err, "Failed to update password")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"message":      "users updated successfully",
		"affectedRows": n,
	})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Delete(r.Context(), "users", urlID(r))
	if err != nil {
		h.fail(w, err, "Failed to delete user")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"message":      "users deleted successfully",
		"affectedRows": n,
	})
}

func (h *UserHandler) fail(w http.ResponseWriter, err error, fallback string) {
	status := apperr.Status(err)
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		utils.JSONError(w, status, inputMessage(err))
	case errors.Is(err, apperr.ErrNotFound):
		utils.JSONError(w, status, "User not found")
	case errors.Is(err, apperr.ErrConflict):
		utils.JSONError(w, status, "User with this email or username already exists")
	default:
		h.log.Error("users operation failed", "err", err)
		utils.JSONError(w, status, fallback)
	}
}

// rowBytes reads a column that drivers may return as string or []byte.
func rowBytes(row map[string]any, column string) []byte {
	switch v := row[column].(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	}
	return nil
}
