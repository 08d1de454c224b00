package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// authTimingFloor pads rejected auth responses so callers cannot tell a
// malformed key from a well-formed unknown one by timing.
const authTimingFloor = 50 * time.Millisecond

// TenantLookup resolves an API key to a tenant ID.
type TenantLookup interface {
	GetTenantByAPIKey(ctx context.Context, apiKey string) (string, error)
}

// AuthMiddleware authenticates requests via Bearer token and stores the
// resolved tenant ID in the gin context under "tenant_id". If a
// BruteForceGuard is provided, failed attempts are tracked per key hash.
func AuthMiddleware(lookup TenantLookup, log *logrus.Logger, guards ...*BruteForceGuard) gin.HandlerFunc {
	var guard *BruteForceGuard
	if len(guards) > 0 {
		guard = guards[0]
	}

	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				padAuthLatency(start)
			}
		}()

		apiKey := ExtractBearerToken(c)
		if apiKey == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
			return
		}

		tenantID, err := lookup.GetTenantByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			log.WithFields(logrus.Fields{
				"client_ip":  c.ClientIP(),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"user_agent": c.Request.UserAgent(),
				"request_id": c.GetString("request_id"),
				"key_prefix": keyPrefix(apiKey),
			}).Warn("authentication failed: invalid api key")

			if guard != nil {
				guard.RecordFailure(apiKey)
			}

			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid api key")
			return
		}

		if guard != nil {
			guard.ResetKey(apiKey)
		}

		c.Set("tenant_id", tenantID)
		c.Next()
	}
}

// ExtractBearerToken returns the API key from the Authorization header, or
// "" when the header is absent or not a Bearer scheme.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// keyPrefix returns at most the first 4 characters of key, for log lines.
func keyPrefix(key string) string {
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return key
}

// padAuthLatency sleeps out the remainder of authTimingFloor.
func padAuthLatency(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}
