package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vdellis/inkpost/internal/auth"
	"github.com/vdellis/inkpost/internal/utils"
)

// Auth gates protected routes on a valid bearer token. The decoded user id
// is pushed into the request context; any failure short-circuits with 401
// before handler logic runs. Expired and malformed tokens are logged with
// their real reason but answered identically.
func Auth(tokens *auth.TokenService, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				utils.JSONError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				utils.JSONError(w, http.StatusUnauthorized, "Invalid authorization header")
				return
			}

			userID, err := tokens.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				log.Debug("token rejected", "path", r.URL.Path, "err", err)
				utils.JSONError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), utils.CtxUserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
