package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDKey is the gin context key holding the canonical request ID.
	RequestIDKey = "request_id"

	// RequestIDHeader carries the request ID on the response.
	RequestIDHeader = "X-Request-ID"
)

// RequestID assigns every request a server-generated UUID. A client-supplied
// X-Request-ID is kept as a separate "client_request_id" field for log
// correlation; it never becomes the canonical ID, so clients cannot forge
// IDs into the audit trail.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		if clientID := c.GetHeader(RequestIDHeader); clientID != "" {
			c.Set("client_request_id", clientID)
			log.WithFields(logrus.Fields{
				"request_id":        id,
				"client_request_id": clientID,
			}).Debug("client request ID recorded alongside server ID")
		}

		c.Next()
	}
}
