package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghuser/nurseryinventory/pkg/httpx"
)

type stubChecker struct{ err error }

func (s *stubChecker) Ping(_ context.Context) error { return s.err }

func healthy() httpx.HealthChecks {
	return httpx.HealthChecks{
		Store:     &stubChecker{},
		Redis:     &stubChecker{},
		EventBus:  &stubChecker{},
		Workflows: &stubChecker{},
	}
}

func TestHealthHandler(t *testing.T) {
	down := &stubChecker{err: errors.New("conn refused")}
	tests := []struct {
		name   string
		mutate func(*httpx.HealthChecks)
		code   int
		want   map[string]string
	}{
		{
			name:   "all healthy",
			mutate: func(*httpx.HealthChecks) {},
			code:   http.StatusOK,
			want:   map[string]string{"status": "ok", "store": "ok", "redis": "ok", "event_bus": "ok", "workflows": "ok"},
		},
		{
			name:   "store down",
			mutate: func(c *httpx.HealthChecks) { c.Store = down },
			code:   http.StatusServiceUnavailable,
			want:   map[string]string{"status": "degraded", "store": "unreachable"},
		},
		{
			name:   "redis down",
			mutate: func(c *httpx.HealthChecks) { c.Redis = down },
			code:   http.StatusServiceUnavailable,
			want:   map[string]string{"status": "degraded", "redis": "unreachable"},
		},
		{
			name:   "event bus down",
			mutate: func(c *httpx.HealthChecks) { c.EventBus = down },
			code:   http.StatusServiceUnavailable,
			want:   map[string]string{"status": "degraded", "event_bus": "unreachable"},
		},
		{
			name:   "temporal down",
			mutate: func(c *httpx.HealthChecks) { c.Workflows = down },
			code:   http.StatusServiceUnavailable,
			want:   map[string]string{"status": "degraded", "workflows": "unreachable", "store": "ok"},
		},
		{
			name:   "optional dependencies disabled",
			mutate: func(c *httpx.HealthChecks) { c.Redis, c.Workflows = nil, nil },
			code:   http.StatusOK,
			want:   map[string]string{"status": "ok", "redis": "disabled", "workflows": "disabled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checks := healthy()
			tt.mutate(&checks)
			rr := httptest.NewRecorder()
			httpx.HealthHandler(checks).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

			if rr.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rr.Code)
			}
			var resp map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			for k, v := range tt.want {
				if resp[k] != v {
					t.Errorf("%s: got %q, want %q", k, resp[k], v)
				}
			}
		})
	}
}

func TestHealthHandler_ContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	httpx.HealthHandler(healthy()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	ct := rr.Header().Get("Content-Type")
	if ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json; charset=utf-8")
	}
}
