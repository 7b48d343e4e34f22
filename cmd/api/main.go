package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/vdellis/inkpost/internal/auth"
	"github.com/vdellis/inkpost/internal/db"
	"github.com/vdellis/inkpost/internal/handlers"
	"github.com/vdellis/inkpost/internal/middleware"
	"github.com/vdellis/inkpost/internal/models"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found")
	}

	port := getenv("PORT", "4000")
	databaseURL := getenv("DATABASE_URL", "")
	if databaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ttl, err := time.ParseDuration(getenv("TOKEN_TTL", "1h"))
	if err != nil {
		log.Error("invalid TOKEN_TTL", "err", err)
		os.Exit(1)
	}
	tokens, err := auth.NewTokenService(os.Getenv("JWT_SECRET"), ttl)
	if err != nil {
		log.Error("token service init failed", "err", err)
		os.Exit(1)
	}

	dbConn, err := db.Connect(databaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	h := handlers.New(dbConn, tokens, log)

	// Best-effort provisioning of the known tables before serving traffic.
	models.EnsureTables(context.Background(), h.Store, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(log))

	requireAuth := middleware.Auth(tokens, log)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/refresh", h.Auth.Refresh)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", h.Auth.Me)
			r.Post("/logout", h.Auth.Logout)
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", h.Users.List)
		r.Get("/{id}", h.Users.Get)
		r.Post("/", h.Users.Create)
		r.Put("/{id}", h.Users.Update)
		r.Put("/{id}/password", h.Users.ChangePassword)
		r.Delete("/{id}", h.Users.Delete)
	})

	r.Route("/api/post", func(r chi.Router) {
		r.With(requireAuth).Get("/", h.Posts.List)
		r.Get("/{id}", h.Posts.Get)
		r.Post("/", h.Posts.Create)
		r.Put("/{id}", h.Posts.Update)
		r.Delete("/{id}", h.Posts.Delete)
	})

	mountResource(r, "/api/customers", h.Customers)
	mountResource(r, "/api/comments", h.Comments)
	mountResource(r, "/api/tags", h.Tags)
	mountResource(r, "/api/categories", h.Categories)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "err", err)
		os.Exit(1)
	}

	log.Info("server exited")
}

func mountResource(r chi.Router, path string, res *handlers.Resource) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", res.List)
		r.Get("/{id}", res.Get)
		r.Post("/", res.Create)
		r.Put("/{id}", res.Update)
		r.Delete("/{id}", res.Delete)
	})
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
