// Package httputil holds response helpers shared by the api handlers and
// the middleware chain.
package httputil

import "github.com/gin-gonic/gin"

// RespondError aborts the request with a JSON error body of the form
// {"code": ..., "message": ..., "request_id": ...}. The request ID is
// included when the RequestID middleware has run.
func RespondError(c *gin.Context, status int, code, message string) {
	resp := map[string]string{
		"code":    code,
		"message": message,
	}

	if rid, ok := c.Get("request_id"); ok {
		if s, ok := rid.(string); ok && s != "" {
			resp["request_id"] = s
		}
	}

	c.AbortWithStatusJSON(status, resp)
}
