package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MuratKus/burbarshop/internal/application/analytics"
	"github.com/MuratKus/burbarshop/internal/application/chat"
	ordersvc "github.com/MuratKus/burbarshop/internal/application/order"
	"github.com/MuratKus/burbarshop/internal/bootstrap"
	"github.com/MuratKus/burbarshop/internal/infrastructure/auth"
	"github.com/MuratKus/burbarshop/internal/infrastructure/cache"
	"github.com/MuratKus/burbarshop/internal/infrastructure/config"
	"github.com/MuratKus/burbarshop/internal/infrastructure/email"
	"github.com/MuratKus/burbarshop/internal/infrastructure/payment"
	"github.com/MuratKus/burbarshop/internal/infrastructure/persistence"
	"github.com/MuratKus/burbarshop/internal/interfaces/http/handler"
	"github.com/MuratKus/burbarshop/internal/interfaces/http/middleware"
	"github.com/MuratKus/burbarshop/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := bootstrap.NewLogger(cfg.Log, false)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting burbarshop admin API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := bootstrap.NewTelemetry(ctx, cfg, cfg.Telemetry.ServiceName, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = tel.Bridge(log, cfg.Telemetry.ServiceName)

	db, err := bootstrap.OpenDatabase(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	orderRepo := persistence.NewGormOrderRepository(db.DB)
	variantRepo := persistence.NewGormVariantRepository(db.DB)

	mailer, err := email.NewMailer(&cfg.Email, log)
	if err != nil {
		log.Fatal("Failed to initialize mailer", zap.Error(err))
	}

	// The chat still answers every other command without a payment provider
	var payments chat.PaymentLookup
	if stripeAdapter, err := payment.NewStripeAdapter(cfg.Stripe.SecretKey, log); err != nil {
		log.Warn("Payment lookups disabled", zap.Error(err))
	} else {
		payments = stripeAdapter
	}

	orderService := ordersvc.NewService(orderRepo, email.NewShippingNotifier(mailer), log)
	analyticsService := analytics.NewService(orderRepo, variantRepo)

	chatMetrics, err := tel.OperationMetrics("burbarshop/chat", "chat.commands")
	if err != nil {
		log.Fatal("Failed to register chat metrics", zap.Error(err))
	}
	executor := chat.NewExecutor(orderService, analyticsService, payments, log,
		chat.WithExecutorMetrics(chatMetrics),
		chat.WithExecutorTracer(tel.Tracer("burbarshop/chat")),
	)

	var limiter cache.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		factory := cache.NewRateLimiterFactory(cfg.Redis, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(cfg.App.Env != "production"),
		)
		limiter, err = factory.CreateLimiter(ctx)
		if err != nil {
			log.Fatal("Failed to initialize rate limiter", zap.Error(err))
		}
		defer func() {
			_ = limiter.Close()
		}()
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := router.NewEngine(router.Deps{
		Logger:  log,
		Tokens:  auth.NewJWTService(cfg.JWT),
		Limiter: limiter,
		Chat:    handler.NewChatHandler(chat.NewParser(), executor),
		Health:  handler.NewHealthHandler(db, version),
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tel.TracingEnabled(),
			SkipPaths:   []string{"/health"},
		},
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}
