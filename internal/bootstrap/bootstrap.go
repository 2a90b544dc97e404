// Package bootstrap builds the process-lifetime handles shared by the
// commands: logger, database and OpenTelemetry providers.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/MuratKus/burbarshop/internal/infrastructure/config"
	"github.com/MuratKus/burbarshop/internal/infrastructure/logger"
	"github.com/MuratKus/burbarshop/internal/infrastructure/persistence"
	"github.com/MuratKus/burbarshop/internal/infrastructure/persistence/models"
	"github.com/MuratKus/burbarshop/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// slowQueryThreshold marks a query as slow in the GORM log
const slowQueryThreshold = 200 * time.Millisecond

// NewLogger builds the application logger from cfg. Tool servers always log
// to stderr because stdout carries protocol frames.
func NewLogger(cfg config.LogConfig, toolServer bool) (*zap.Logger, error) {
	if toolServer {
		return logger.New(logger.ToolServerConfig(cfg.Level))
	}
	return logger.New(&logger.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: cfg.Output,
	})
}

// OpenDatabase connects with the GORM logger bridged to log and installs the
// tracing plugin when enabled. SQLite databases get the storefront tables
// created in place; postgres schemas come from cmd/migrate.
func OpenDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), slowQueryThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == "sqlite" {
		if err := db.DB.AutoMigrate(models.All()...); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
		}
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.TraceQueries(db.DB, cfg.Database.Driver, cfg.Telemetry.DBLogFullSQL); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("Database tracing enabled", zap.Bool("log_full_sql", cfg.Telemetry.DBLogFullSQL))
	}
	return db, nil
}

// NewTelemetry starts the trace, metric and log pipelines and the profiler
// for serviceName as configured. Disabled pipelines fall back to the global
// no-op providers.
func NewTelemetry(ctx context.Context, cfg *config.Config, serviceName string, log *zap.Logger) (*telemetry.Providers, error) {
	tc := cfg.Telemetry
	return telemetry.Start(ctx, telemetry.Settings{
		ServiceName:    serviceName,
		Endpoint:       tc.CollectorEndpoint,
		Insecure:       tc.Insecure,
		Traces:         tc.Enabled,
		Metrics:        tc.Enabled && tc.MetricsEnabled,
		Logs:           tc.Enabled && tc.LogsEnabled,
		SamplingRatio:  tc.SamplingRatio,
		ExportInterval: tc.MetricsInterval,
		Profiling: telemetry.ProfilingSettings{
			Enabled:           cfg.Profiling.Enabled,
			ServerAddress:     cfg.Profiling.ServerAddress,
			BasicAuthUser:     cfg.Profiling.BasicAuthUser,
			BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
			ProfileTypes:      cfg.Profiling.ProfileTypes,
			SpanProfiles:      cfg.Profiling.SpanProfiles,
		},
	}, log)
}
