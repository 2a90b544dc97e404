// Package router assembles the gin engine of the admin API.
package router

import (
	"fmt"
	"net/http"

	"github.com/MuratKus/burbarshop/internal/infrastructure/cache"
	"github.com/MuratKus/burbarshop/internal/infrastructure/logger"
	"github.com/MuratKus/burbarshop/internal/interfaces/http/dto"
	"github.com/MuratKus/burbarshop/internal/interfaces/http/handler"
	"github.com/MuratKus/burbarshop/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects routes sharing a prefix and middleware
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: http.MethodGet, path: path, handlers: handlers})
	return dg
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: http.MethodPost, path: path, handlers: handlers})
	return dg
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Deps are the collaborators of the admin API engine
type Deps struct {
	Logger         *zap.Logger
	Tokens         middleware.TokenValidator
	Limiter        cache.RateLimiter // nil disables rate limiting
	Chat           *handler.ChatHandler
	Health         *handler.HealthHandler
	Tracing        middleware.TracingConfig
	MaxBodySize    int64
	TrustedProxies []string
}

// NewEngine builds the gin engine with the global middleware chain, the
// health check and the admin routes
func NewEngine(deps Deps) (*gin.Engine, error) {
	if deps.Tokens == nil {
		return nil, fmt.Errorf("router: token validator is required")
	}
	if deps.Chat == nil || deps.Health == nil {
		return nil, fmt.Errorf("router: chat and health handlers are required")
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, fmt.Errorf("router: invalid trusted proxies: %w", err)
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(deps.Tracing),
		middleware.Secure(),
		middleware.BodyLimit(deps.MaxBodySize),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(dto.GetHTTPStatus(dto.ErrCodeNotFound), dto.NewErrorResponse(dto.ErrCodeNotFound, "Route not found"))
	})

	engine.GET("/health", deps.Health.Health)

	admin := NewDomainGroup("admin", "/admin")
	if deps.Limiter != nil {
		admin.Use(middleware.RateLimit(deps.Limiter, log))
	}
	admin.Use(middleware.AdminAuth(deps.Tokens, log), middleware.SpanAttributes())
	admin.POST("/chat", deps.Chat.Chat)

	NewRouter(engine).Register(admin).Setup()
	return engine, nil
}
