package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/vdellis/inkpost/internal/apperr"
	"github.com/vdellis/inkpost/internal/auth"
	"github.com/vdellis/inkpost/internal/models"
	"github.com/vdellis/inkpost/internal/query"
	"github.com/vdellis/inkpost/internal/utils"
)

const (
	userExistsQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE email = ? OR username = ?)`
	activeUserQuery = `
		SELECT id, username, email, password_hash, first_name, last_name,
		       role, is_active, created_at, updated_at
		FROM users
		WHERE email = ? AND is_active = TRUE`
)

type AuthHandler struct {
	db     sqlx.ExtContext
	store  *query.Store
	tokens *auth.TokenService
	log    *slog.Logger
}

func NewAuthHandler(db sqlx.ExtContext, tokens *auth.TokenService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{db: db, store: query.NewStore(db), tokens: tokens, log: log}
}

type registerReq struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a user account: validate, check existence, hash, persist.
// The existence pre-check and the insert are not atomic; the unique
// constraints on username/email are the real guarantee, so a duplicate-key
// error after a passing pre-check still answers 409.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}
	if len(req.Password) < 6 {
		utils.JSONError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	var exists bool
	err := sqlx.GetContext(r.Context(), h.db, &exists, h.db.Rebind(userExistsQuery), req.Email, req.Username)
	if err != nil {
		h.log.Error("register existence check failed", "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if exists {
		utils.JSONError(w, http.StatusConflict, "User with this email or username already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	rec := query.Record{
		{Column: "username", Value: req.Username},
		{Column: "email", Value: req.Email},
		{Column: "password_hash", Value: string(hash)},
		{Column: "first_name", Value: nullable(req.FirstName)},
		{Column: "last_name", Value: nullable(req.LastName)},
		{Column: "role", Value: string(models.RoleUser)},
		{Column: "is_active", Value: true},
	}

	_, rec, err = h.store.Insert(r.Context(), "users", rec)
	if errors.Is(err, apperr.ErrConflict) {
		// Lost the race with a concurrent registration.
		utils.JSONError(w, http.StatusConflict, "User with this email or username already exists")
		return
	}
	if err != nil {
		h.log.Error("register insert failed", "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := rec.Map()
	delete(user, "password_hash")

	utils.JSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login authenticates by email and password and issues a session token.
// Unknown email and wrong password answer with identical bodies so the
// response does not reveal which check failed.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if req.Email == "" || req.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	var u models.User
	err := sqlx.GetContext(r.Context(), h.db, &u, h.db.Rebind(activeUserQuery), req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		utils.JSONError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		h.log.Error("login lookup failed", "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, _, err := h.tokens.Issue(u.ID)
	if err != nil {
		h.log.Error("token issue failed", "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{
		"message":     "Login successful",
		"user":        u,
		"accessToken": token,
	})
}

// Logout is stateless: tokens cannot be revoked, so this is advisory only.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Refresh is deliberately unimplemented rather than silently accepted.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	utils.JSONError(w, http.StatusNotImplemented, "Token refresh is not implemented")
}

// Me returns the authenticated user's record.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.UserID(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	row, err := h.store.Select(r.Context(), "users", uid)
	if errors.Is(err, apperr.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "users not found")
		return
	}
	if err != nil {
		h.log.Error("me lookup failed", "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "Database error")
		return
	}

	delete(row, "password_hash")
	utils.JSON(w, http.StatusOK, row)
}

// nullable maps empty strings to NULL for optional columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
