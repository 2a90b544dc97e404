package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/MuratKus/burbarshop/internal/infrastructure/logger"
	"github.com/MuratKus/burbarshop/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether the database answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness checks
type HealthHandler struct {
	db      Pinger
	version string
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version, timeout: 2 * time.Second}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unhealthy", Database: "down", Version: h.version})
		return
	}
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "healthy", Database: "up", Version: h.version})
}
