package handlers

import (
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/vdellis/inkpost/internal/auth"
	"github.com/vdellis/inkpost/internal/query"
)

// Handler bundles every route handler of the API around one store.
type Handler struct {
	Store *query.Store
	Auth  *AuthHandler
	Users *UserHandler

	Posts      *Resource
	Customers  *Resource
	Comments   *Resource
	Tags       *Resource
	Categories *Resource
}

func New(db *sqlx.DB, tokens *auth.TokenService, log *slog.Logger) *Handler {
	store := query.NewStore(db)
	return &Handler{
		Store: store,
		Auth:  NewAuthHandler(db, tokens, log),
		Users: NewUserHandler(store, log),

		Posts:      NewResource(store, "posts").WithValidation(PostValidator),
		Customers:  NewResource(store, "customers").WithValidation(CustomerValidator),
		Comments:   NewResource(store, "comments"),
		Tags:       NewResource(store, "tags"),
		Categories: NewResource(store, "categories"),
	}
}
