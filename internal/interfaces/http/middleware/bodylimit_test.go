package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bodyLimitRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BodyLimit(limit))
	router.POST("/chat", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, "capped at %d", tooLarge.Limit)
			return
		}
		c.String(http.StatusOK, "%d", len(body))
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestBodyLimit(t *testing.T) {
	message := `{"message":"Show me sales for the last 7 days"}`

	tests := []struct {
		name          string
		limit         int64
		method        string
		path          string
		body          string
		contentLength int64
		wantStatus    int
		wantBody      string
	}{
		{
			name:          "chat message within limit",
			limit:         1024,
			method:        http.MethodPost,
			path:          "/chat",
			body:          message,
			contentLength: int64(len(message)),
			wantStatus:    http.StatusOK,
			wantBody:      "47",
		},
		{
			name:          "declared oversize body rejected before the handler",
			limit:         16,
			method:        http.MethodPost,
			path:          "/chat",
			body:          message,
			contentLength: int64(len(message)),
			wantStatus:    http.StatusRequestEntityTooLarge,
			wantBody:      "ERR_REQUEST_TOO_LARGE",
		},
		{
			name:          "undeclared oversize body capped while reading",
			limit:         16,
			method:        http.MethodPost,
			path:          "/chat",
			body:          strings.Repeat("x", 100),
			contentLength: -1,
			wantStatus:    http.StatusRequestEntityTooLarge,
			wantBody:      "capped at 16",
		},
		{
			name:       "bodiless request passes",
			limit:      1,
			method:     http.MethodGet,
			path:       "/health",
			wantStatus: http.StatusOK,
			wantBody:   "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			if tt.body != "" {
				req.ContentLength = tt.contentLength
			}
			w := httptest.NewRecorder()
			bodyLimitRouter(tt.limit).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestBodyLimit_DefaultWhenUnset(t *testing.T) {
	message := strings.Repeat("a", int(DefaultMaxBodySize)+1)
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(message))
	w := httptest.NewRecorder()
	bodyLimitRouter(0).ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
