package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/arborhq/arbor/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newLimitedRouter returns a router behind a fresh rate limiter and a helper
// that issues one GET from the given address and reports the status code.
func newLimitedRouter(t *testing.T, ratePerSec, burst int) func(addr string) int {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	rl := middleware.NewRateLimiter(ctx, ratePerSec, burst)
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/nodes", func(c *gin.Context) { c.Status(http.StatusOK) })

	return func(addr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/nodes", http.NoBody)
		req.RemoteAddr = addr
		r.ServeHTTP(w, req)
		return w.Code
	}
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	get := newLimitedRouter(t, 10, 5)

	if code := get("1.2.3.4:1234"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRateLimiter_BlocksExceedingBurst(t *testing.T) {
	get := newLimitedRouter(t, 1, 2)

	for i := range 2 {
		if code := get("1.2.3.4:1234"); code != http.StatusOK {
			t.Fatalf("request %d within burst: expected 200, got %d", i, code)
		}
	}

	if code := get("1.2.3.4:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("request past burst: expected 429, got %d", code)
	}
}

func TestRateLimiter_IndependentBuckets(t *testing.T) {
	get := newLimitedRouter(t, 1, 1)

	// Spend the only token of the first IP.
	get("1.1.1.1:1000")

	if code := get("2.2.2.2:1000"); code != http.StatusOK {
		t.Fatalf("different IP should not be rate limited, got %d", code)
	}
}

func TestRateLimiter_TokensRefillOverTime(t *testing.T) {
	// Rate high enough that any measurable elapsed time refills the bucket.
	get := newLimitedRouter(t, 1000000, 2)

	for range 2 {
		get("5.5.5.5:1000")
	}

	if code := get("5.5.5.5:1000"); code != http.StatusOK {
		t.Fatalf("expected tokens to refill, got %d", code)
	}
}
