package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/sessions"

	"github.com/ghuser/nurseryinventory/pkg/logger"
)

var (
	testAuthKey = []byte("test-auth-key-must-be-32-bytes!!")
	testEncKey  = []byte("test-enc-key-must-be-32-bytes!!!")
)

// newTestStore returns the cookie fallback store; RedisStore is covered by
// the REDIS_URL gated test in session_test.go.
func newTestStore() sessions.Store {
	return NewCookieStore(testAuthKey, testEncKey, false)
}

// requestWithSession builds an *http.Request that carries a session cookie
// whose user_id value is v (omitted when nil).
func requestWithSession(t *testing.T, store sessions.Store, v any) *http.Request {
	t.Helper()

	// Write the session cookie into a recorder, then copy it to the real request.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/nurseries", nil)

	session, err := store.Get(r, sessionName)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if v != nil {
		session.Values[sessionUserIDKey] = v
	}
	if err := session.Save(r, w); err != nil {
		t.Fatalf("save session: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/nurseries", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestRequireAuth_ValidSession(t *testing.T) {
	store := newTestStore()

	var captured string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = UserIDFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	r := requestWithSession(t, store, "ana")
	w := httptest.NewRecorder()
	RequireAuth(store, logger.Discard())(next).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if captured != "ana" {
		t.Fatalf("expected user ana in context, got %q", captured)
	}
}

func TestRequireAuth_Rejects(t *testing.T) {
	store := newTestStore()

	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
	}{
		{"missing cookie", func(*testing.T) *http.Request {
			return httptest.NewRequest(http.MethodPost, "/api/nurseries", nil)
		}},
		{"session without user", func(t *testing.T) *http.Request {
			return requestWithSession(t, store, nil)
		}},
		{"non-string user", func(t *testing.T) *http.Request {
			return requestWithSession(t, store, 42)
		}},
		{"oversized user", func(t *testing.T) *http.Request {
			return requestWithSession(t, store, strings.Repeat("u", maxUserIDLength+1))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler should not be called")
			})
			w := httptest.NewRecorder()
			RequireAuth(store, logger.Discard())(next).ServeHTTP(w, tt.req(t))

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestLoadIdentity(t *testing.T) {
	store := newTestStore()

	t.Run("anonymous passes through", func(t *testing.T) {
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			if _, err := UserIDFromCtx(r.Context()); err == nil {
				t.Error("expected no user in context")
			}
		})
		r := httptest.NewRequest(http.MethodGet, "/api/nurseries", nil)
		LoadIdentity(store, logger.Discard())(next).ServeHTTP(httptest.NewRecorder(), r)
		if !called {
			t.Fatal("next handler not called")
		}
	})

	t.Run("session user attached", func(t *testing.T) {
		var captured string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured, _ = UserIDFromCtx(r.Context())
		})
		LoadIdentity(store, logger.Discard())(next).ServeHTTP(httptest.NewRecorder(), requestWithSession(t, store, "ana"))
		if captured != "ana" {
			t.Fatalf("expected ana, got %q", captured)
		}
	})
}
