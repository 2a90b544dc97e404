package middleware

import (
	"strconv"

	"github.com/MuratKus/burbarshop/internal/infrastructure/cache"
	"github.com/MuratKus/burbarshop/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit returns a rate limiting middleware keyed by client IP
func RateLimit(limiter cache.RateLimiter, log *zap.Logger) gin.HandlerFunc {
	return RateLimitByKey(limiter, log, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByKey returns a rate limiting middleware with custom key extractor.
// A failing counter store lets the request through.
func RateLimitByKey(limiter cache.RateLimiter, log *zap.Logger, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := keyFunc(c)

		allowed, remaining, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Error("Rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			c.AbortWithStatusJSON(dto.GetHTTPStatus(dto.ErrCodeRateLimited),
				dto.NewErrorResponse(dto.ErrCodeRateLimited, "Too many requests. Please try again later."))
			return
		}

		c.Next()
	}
}
