package utils

import "context"

type ctxKey string

// CtxUserIDKey carries the authenticated user id set by the auth middleware.
const CtxUserIDKey ctxKey = "user_id"

// UserID extracts the authenticated user id from a request context.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(CtxUserIDKey).(int64)
	return id, ok
}
