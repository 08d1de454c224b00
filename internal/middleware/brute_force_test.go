package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/arborhq/arbor/internal/middleware"
)

func newTestGuard(t *testing.T) *middleware.BruteForceGuard {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return middleware.NewBruteForceGuard(ctx, log)
}

func failTimes(guard *middleware.BruteForceGuard, key string, n int) {
	for range n {
		guard.RecordFailure(key)
	}
}

func TestBruteForceGuard(t *testing.T) {
	tests := []struct {
		name        string
		failures    int
		reset       bool
		wantBlocked bool
	}{
		{"no failures", 0, false, false},
		{"below threshold", 4, false, false},
		{"at threshold", 5, false, true},
		{"reset clears lockout", 5, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := newTestGuard(t)
			failTimes(guard, "some-key", tt.failures)
			if tt.reset {
				guard.ResetKey("some-key")
			}

			if got := guard.IsBlocked("some-key"); got != tt.wantBlocked {
				t.Fatalf("IsBlocked = %v, want %v", got, tt.wantBlocked)
			}
		})
	}
}

func TestBruteForceGuard_KeysAreIndependent(t *testing.T) {
	guard := newTestGuard(t)
	failTimes(guard, "locked-key", 5)

	if guard.IsBlocked("other-key") {
		t.Fatal("unrelated key should not be blocked")
	}
}

func TestBruteForceMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		lockedKey  string
		authHeader string
		wantCode   int
	}{
		{"blocked key rejected", "stolen-key", "Bearer stolen-key", http.StatusTooManyRequests},
		{"clean key passes", "stolen-key", "Bearer honest-key", http.StatusOK},
		{"no token passes through", "stolen-key", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := newTestGuard(t)
			failTimes(guard, tt.lockedKey, 5)

			r := gin.New()
			r.Use(middleware.BruteForceMiddleware(guard))
			r.GET("/nodes", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/nodes", http.NoBody)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("got %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}
