package auth

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/nurseryinventory/pkg/httpx"
	"github.com/ghuser/nurseryinventory/pkg/logger"
)

const sessionName = "nursery_session"
const sessionUserIDKey = "user_id"

const maxUserIDLength = 128

// userFromSession returns the user id stored in the request's session cookie.
// ok is false when the cookie is absent, invalid, or carries no usable id.
func userFromSession(store sessions.Store, r *http.Request) (id string, ok bool, err error) {
	session, err := store.Get(r, sessionName)
	if err != nil {
		return "", false, err
	}
	id, ok = session.Values[sessionUserIDKey].(string)
	if !ok || id == "" || len(id) > maxUserIDLength {
		return "", false, nil
	}
	return id, true, nil
}

// RequireAuth is a chi middleware that enforces authentication via session cookies.
// It reads the session cookie, extracts the user id, and injects it into the request context.
// Returns 401 Unauthorized if the session is missing, invalid, or lacks a user id.
//
// After this middleware, handlers can safely call auth.UserIDFromCtx(r.Context()).
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok, err := userFromSession(store, r)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}
			if !ok {
				log.WarnContext(r.Context(), "session missing user_id")
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		})
	}
}

// LoadIdentity attaches the session user to the context when one is present
// and lets anonymous requests through unchanged.
func LoadIdentity(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok, err := userFromSession(store, r)
			if err != nil {
				log.DebugContext(r.Context(), "ignoring invalid session cookie", "error", err)
			}
			if ok {
				r = r.WithContext(WithUserID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}
