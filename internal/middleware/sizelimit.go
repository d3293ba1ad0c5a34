package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waitingboard/api/pkg/httputil"
)

const defaultMaxBodySize = 1 << 20

// SizeLimit rejects bodies larger than maxBytes. Declared lengths are checked
// up front; chunked bodies are capped with http.MaxBytesReader so the JSON
// binder fails once the limit is crossed.
func SizeLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodySize
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, httputil.ErrorResponse{
				Error: fmt.Sprintf("request body exceeds %d bytes", maxBytes),
			})
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
