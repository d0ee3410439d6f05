package auth

import (
	"context"
	"errors"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const userIDKey contextKey = "user_id"

// ErrUserNotFound is returned when no user id exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrUserNotFound = errors.New("user_id not found in context")

// UserIDFromCtx extracts the authenticated user id from the request context.
func UserIDFromCtx(ctx context.Context) (string, error) {
	id, ok := ctx.Value(userIDKey).(string)
	if !ok || id == "" {
		return "", ErrUserNotFound
	}
	return id, nil
}

// WithUserID returns a new context with the given user id attached.
// Used by authentication middleware after validating the session.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// ContextIdentity resolves the acting user from the request context populated
// by RequireAuth or LoadIdentity. It satisfies the inventory IdentityProvider port.
type ContextIdentity struct{}

// CurrentUserID returns the user id bound to ctx, if any.
func (ContextIdentity) CurrentUserID(ctx context.Context) (string, bool) {
	id, err := UserIDFromCtx(ctx)
	return id, err == nil
}
