// Package handler holds the gin handlers of the admin API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/MuratKus/burbarshop/internal/application/chat"
	"github.com/MuratKus/burbarshop/internal/infrastructure/logger"
	"github.com/MuratKus/burbarshop/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CommandParser turns a message into a command
type CommandParser interface {
	Parse(message string) chat.Command
}

// CommandExecutor runs a command
type CommandExecutor interface {
	Execute(ctx context.Context, cmd chat.Command) chat.Result
}

// ChatHandler answers free-text admin messages
type ChatHandler struct {
	parser   CommandParser
	executor CommandExecutor
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(parser CommandParser, executor CommandExecutor) *ChatHandler {
	return &ChatHandler{parser: parser, executor: executor}
}

// Chat handles POST /admin/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	log := logger.GetGinLogger(c)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Chat request panicked", zap.Any("panic", r), zap.Stack("stacktrace"))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ChatResponse{Response: dto.ChatApology})
		}
	}()

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(dto.GetHTTPStatus(dto.ErrCodeRequestTooLarge),
				dto.NewErrorResponse(dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size"))
			return
		}
		c.JSON(http.StatusBadRequest, dto.ChatResponse{Response: dto.ChatPrompt})
		return
	}
	message, ok := req.Text()
	if !ok {
		c.JSON(http.StatusBadRequest, dto.ChatResponse{Response: dto.ChatPrompt})
		return
	}

	cmd := h.parser.Parse(message)
	log.Info("Admin chat command", zap.String("command", cmd.Kind.String()))

	result := h.executor.Execute(c.Request.Context(), cmd)
	c.JSON(http.StatusOK, dto.ChatResponse{Response: result.ResponseText, Data: result.Data})
}
