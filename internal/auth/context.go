// Package auth carries the authenticated user identity through request
// contexts. Token validation itself lives in the HTTP middleware; everything
// below the handlers only ever sees the user ID.
package auth

import "context"

type contextKey string

const userIDKey contextKey = "userID"

// WithUserID returns a context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
