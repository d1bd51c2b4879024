package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/avolkov/shareit/internal/server/auth"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// withAuth requires a valid bearer token and stores the caller's user ID in
// the request context under userIDKey.
func (s *HTTPServer) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		accessToken := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if accessToken == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// callerID returns the authenticated user ID stored by withAuth.
func callerID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
