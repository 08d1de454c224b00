package api

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arborhq/arbor/internal/middleware"
	"github.com/arborhq/arbor/internal/ws"
)

const (
	// maxPaginationLimit caps items per page.
	maxPaginationLimit = 1000

	// maxPaginationOffset caps how deep paginated queries may seek.
	maxPaginationOffset = 100000

	// maxNodeIDLen matches the nodes.id column width.
	maxNodeIDLen = 255
)

// getTenantID returns the authenticated tenant ID, or writes a 400 and
// returns "" when the context holds anything but a UUID.
func getTenantID(c *gin.Context) string {
	tid := c.GetString("tenant_id")

	if _, err := uuid.Parse(tid); err != nil {
		respondError(c, 400, ErrCodeInvalidRequest, "invalid tenant id")

		return ""
	}

	return tid
}

// wsHandler upgrades the request to a WebSocket and runs the client pumps
// until either the request ends or the server shuts down.
func wsHandler(appCtx context.Context, log *logrus.Logger, hub *ws.Hub, corsOrigins []string, lookup middleware.TenantLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := getTenantID(c)
		if tenantID == "" {
			return
		}

		// Keep the raw API key so the client can re-validate it while the
		// connection stays open.
		apiKey := middleware.ExtractBearerToken(c)

		// The configured CORS origins double as WebSocket origin patterns.
		// Config validation rejects wildcard patterns.
		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns:       corsOrigins,
			CompressionMode:      websocket.CompressionContextTakeover,
			CompressionThreshold: 128,
		})
		if err != nil {
			log.WithError(err).Error("websocket accept failed")

			return
		}

		client := ws.NewClient(hub, conn, lookup, apiKey)
		client.TenantID = tenantID
		hub.Register(client)

		wsCtx, wsCancel := context.WithCancel(appCtx)
		go func() {
			select {
			case <-c.Request.Context().Done():
				wsCancel()
			case <-wsCtx.Done():
			}
		}()

		go client.WritePump(wsCtx)
		client.ReadPump(wsCtx)
		wsCancel()
	}
}

// ginLogger emits one structured log line per request, tagged with the
// request ID and tenant when available.
func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid, exists := c.Get(middleware.RequestIDKey); exists {
			fields["request_id"] = rid
		}
		if tid := c.GetString("tenant_id"); tid != "" {
			fields["tenant_id"] = tid
		}
		log.WithFields(fields).Info("request")
	}
}

// parseInt parses a positive limit parameter, clamping it to
// maxPaginationLimit and falling back on garbage input.
func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fallback
	}

	return min(v, maxPaginationLimit)
}

// parseOffset parses a non-negative offset parameter, clamped to
// maxPaginationOffset.
func parseOffset(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}

	return min(v, maxPaginationOffset)
}

// validatePathID rejects empty or oversized node IDs taken from the path.
func validatePathID(id string) error {
	if id == "" {
		return fmt.Errorf("id must not be empty")
	}
	if len(id) > maxNodeIDLen {
		return fmt.Errorf("id exceeds maximum length of %d", maxNodeIDLen)
	}
	return nil
}
