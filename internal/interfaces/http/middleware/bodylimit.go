package middleware

import (
	"net/http"

	"github.com/MuratKus/burbarshop/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DefaultMaxBodySize caps request bodies when the config sets no limit.
// Chat messages are a sentence or two.
const DefaultMaxBodySize int64 = 64 << 10

// BodyLimit rejects declared oversize bodies up front with 413 and caps
// undeclared ones while they are read. Handlers see *http.MaxBytesError from
// the capped reader.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrCodeRequestTooLarge),
				dto.NewErrorResponse(dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
