package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/arborhq/arbor/internal/httputil"
)

// respondError is a package-local shorthand for httputil.RespondError so
// middleware error paths stay on one line.
func respondError(c *gin.Context, code int, errCode, message string) {
	httputil.RespondError(c, code, errCode, message)
}
