package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ginLoggerKey = "logger"

// GinMiddleware attaches a request-scoped logger to the gin context and the
// request context, then logs one line per request once the handler returns.
// 5xx answers log at error level and 4xx at warn.
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx, reqLogger := WithRequestID(c.Request.Context(), base, c.GetString("request_id"))
		c.Request = c.Request.WithContext(ctx)
		c.Set(ginLoggerKey, reqLogger)

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if admin := GetAdmin(c.Request.Context()); admin != "" {
			fields = append(fields, zap.String("admin", admin))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			reqLogger.Error("Request failed", fields...)
		case status >= http.StatusBadRequest:
			reqLogger.Warn("Request rejected", fields...)
		default:
			reqLogger.Info("Request served", fields...)
		}
	}
}

// Recovery returns a gin middleware that recovers from panics, logs them and
// answers with a bare 500.
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log := base
				if reqLogger, ok := c.Request.Context().Value(LoggerKey).(*zap.Logger); ok {
					log = reqLogger
				}
				log.Error("Panic recovered",
					zap.String("route", c.FullPath()),
					zap.Any("error", err),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// GetGinLogger retrieves the logger from gin context
func GetGinLogger(c *gin.Context) *zap.Logger {
	if logger, exists := c.Get(ginLoggerKey); exists {
		if l, ok := logger.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}
