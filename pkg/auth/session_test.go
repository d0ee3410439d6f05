package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/nurseryinventory/pkg/logger"
)

func TestCookieOptions(t *testing.T) {
	for _, secure := range []bool{false, true} {
		opts := cookieOptions(secure)
		if opts.Secure != secure {
			t.Errorf("Secure = %v, want %v", opts.Secure, secure)
		}
		if !opts.HttpOnly || opts.SameSite != http.SameSiteLaxMode {
			t.Errorf("unexpected options: %+v", opts)
		}
		if opts.MaxAge != 7*24*60*60 {
			t.Errorf("MaxAge = %d", opts.MaxAge)
		}
	}
}

func TestNewSessionID(t *testing.T) {
	a, b := newSessionID(), newSessionID()
	if a == b {
		t.Fatal("expected distinct session ids")
	}
	if len(a) != 52 {
		t.Errorf("len = %d, want 52", len(a))
	}
}

// Integration test, skipped unless REDIS_URL is set.
func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close() //nolint:errcheck

	store := NewSessionStore(client, testAuthKey, testEncKey, false)
	req := requestWithSession(t, store, "user-42")

	t.Run("LoadIdentity resolves the stored user", func(t *testing.T) {
		var got string
		h := LoadIdentity(store, logger.Discard())(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			got, _ = UserIDFromCtx(r.Context())
		}))
		h.ServeHTTP(httptest.NewRecorder(), req)
		if got != "user-42" {
			t.Errorf("user = %q, want user-42", got)
		}
	})

	t.Run("delete removes the redis key", func(t *testing.T) {
		session, err := store.New(req, sessionName)
		if err != nil || session.IsNew {
			t.Fatalf("expected existing session, err=%v", err)
		}
		session.Options.MaxAge = -1
		if err := store.Save(req, httptest.NewRecorder(), session); err != nil {
			t.Fatalf("save: %v", err)
		}
		n, err := client.Exists(context.Background(), redisKeyPrefix+session.ID).Result()
		if err != nil || n != 0 {
			t.Errorf("key still present: n=%d err=%v", n, err)
		}
	})
}
