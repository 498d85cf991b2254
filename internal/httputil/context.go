package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey contextKey = "userID"
	adminKey  contextKey = "isAdmin"
)

// WithUserID adds userID to the request context
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// WithAdmin records whether the authenticated user holds the admin role.
func WithAdmin(r *http.Request, admin bool) *http.Request {
	ctx := context.WithValue(r.Context(), adminKey, admin)
	return r.WithContext(ctx)
}

// IsAdmin reports whether the request carries admin privileges.
func IsAdmin(r *http.Request) bool {
	admin, _ := r.Context().Value(adminKey).(bool)
	return admin
}
