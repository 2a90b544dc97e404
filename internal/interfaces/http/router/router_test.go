package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MuratKus/burbarshop/internal/application/chat"
	"github.com/MuratKus/burbarshop/internal/infrastructure/auth"
	"github.com/MuratKus/burbarshop/internal/infrastructure/cache"
	"github.com/MuratKus/burbarshop/internal/infrastructure/config"
	"github.com/MuratKus/burbarshop/internal/interfaces/http/handler"
	"github.com/MuratKus/burbarshop/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	NewRouter(engine, WithAPIVersion("v1")).Register(group).Setup()

	w := testutil.PerformRequest(engine, http.MethodGet, "/api/v1/test/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("admin", "/admin")
		assert.Equal(t, "admin", g.Name())
		assert.Equal(t, "/admin", g.Prefix())
	})

	t.Run("registers POST route", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		g.POST("/items", func(c *gin.Context) {
			c.String(http.StatusCreated, "created")
		})
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := testutil.PerformRequest(engine, http.MethodPost, "/api/v1/test/items", "", nil)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("applies middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		g.Use(func(c *gin.Context) {
			c.Header("X-Test-Middleware", "applied")
			c.Next()
		})
		g.GET("/items", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := testutil.PerformRequest(engine, http.MethodGet, "/api/v1/test/items", "", nil)
		assert.Equal(t, "applied", w.Header().Get("X-Test-Middleware"))
	})
}

type echoExecutor struct{}

func (echoExecutor) Execute(_ context.Context, cmd chat.Command) chat.Result {
	return chat.Result{ResponseText: "kind=" + cmd.Kind.String()}
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}

type engineEnv struct {
	engine *gin.Engine
	tokens *auth.JWTService
}

func newEngineEnv(t *testing.T, limiter cache.RateLimiter, ping error) engineEnv {
	t.Helper()
	tokens := auth.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessTokenExpiration: time.Hour})
	engine, err := NewEngine(Deps{
		Tokens:  tokens,
		Limiter: limiter,
		Chat:    handler.NewChatHandler(chat.NewParser(), echoExecutor{}),
		Health:  handler.NewHealthHandler(fakePinger{err: ping}, "test"),
	})
	require.NoError(t, err)
	return engineEnv{engine: engine, tokens: tokens}
}

func (e engineEnv) bearer(t *testing.T, role string) map[string]string {
	t.Helper()
	token, err := e.tokens.GenerateToken(auth.GenerateTokenInput{Subject: "admin-1", Email: "owner@example.com", Role: role})
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token.AccessToken}
}

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	_, err := NewEngine(Deps{})
	assert.Error(t, err)
}

func TestNewEngine_Health(t *testing.T) {
	env := newEngineEnv(t, nil, nil)
	w := testutil.PerformRequest(env.engine, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := testutil.DecodeJSON(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	env = newEngineEnv(t, nil, errors.New("connection refused"))
	w = testutil.PerformRequest(env.engine, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", testutil.DecodeJSON(t, w)["database"])
}

func TestNewEngine_ChatRequiresAdminToken(t *testing.T) {
	env := newEngineEnv(t, nil, nil)
	body := `{"message": "show recent orders"}`

	w := testutil.PerformRequest(env.engine, http.MethodPost, "/api/v1/admin/chat", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.PerformRequest(env.engine, http.MethodPost, "/api/v1/admin/chat", body, env.bearer(t, "viewer"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.PerformRequest(env.engine, http.MethodPost, "/api/v1/admin/chat", body, env.bearer(t, auth.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "kind=get_orders", testutil.DecodeJSON(t, w)["response"])
}

func TestNewEngine_RateLimitsAdminRoutes(t *testing.T) {
	limiter := cache.NewInMemoryRateLimiter(2, time.Minute)
	t.Cleanup(func() { _ = limiter.Close() })
	env := newEngineEnv(t, limiter, nil)
	headers := env.bearer(t, auth.RoleAdmin)

	for i := 0; i < 2; i++ {
		w := testutil.PerformRequest(env.engine, http.MethodPost, "/api/v1/admin/chat", `{"message": "help"}`, headers)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := testutil.PerformRequest(env.engine, http.MethodPost, "/api/v1/admin/chat", `{"message": "help"}`, headers)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// the health check is not limited
	w = testutil.PerformRequest(env.engine, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewEngine_UnknownRoute(t *testing.T) {
	env := newEngineEnv(t, nil, nil)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := testutil.DecodeJSON(t, w)
	assert.Equal(t, false, body["success"])
}
