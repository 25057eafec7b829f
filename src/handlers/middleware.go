package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/username/dealfolio/backend/src/logger"
	"github.com/username/dealfolio/backend/src/utils"
)

type contextKey string

const userIDContextKey = contextKey("userID")

// GetUserIDFromContext returns the authenticated user's ID placed on the
// request context by UserContextMiddleware.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}

// UserContextMiddleware lifts the user identity from the X-User-ID header
// set by the authentication gateway in front of this service. Requests
// without it are rejected; this service performs no authentication of its
// own.
func UserContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get("X-User-ID")
		if userIDStr == "" {
			logger.L.Debug("UserContextMiddleware: X-User-ID header missing", "path", r.URL.Path)
			utils.SendJSONError(w, "user identity required", http.StatusUnauthorized)
			return
		}
		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			logger.L.Warn("UserContextMiddleware: invalid X-User-ID header", "value", userIDStr, "error", err)
			utils.SendJSONError(w, "invalid user identity", http.StatusBadRequest)
			return
		}
		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		ctx = logger.WithContext(ctx, logger.L.With("userID", userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
