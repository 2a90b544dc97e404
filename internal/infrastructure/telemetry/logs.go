package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func (p *Providers) startLogs(ctx context.Context, s Settings, res *resource.Resource) error {
	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(s.Endpoint)}
	if s.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP logs exporter: %w", err)
	}

	p.logs = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(p.logs)
	return nil
}

// LogsEnabled reports whether log records leave the process
func (p *Providers) LogsEnabled() bool {
	return p.logs != nil
}

// LogCore returns a zap core that forwards entries at or above level to the
// OTLP log pipeline, or a no-op core when log export is off.
func (p *Providers) LogCore(name string, level zapcore.LevelEnabler) zapcore.Core {
	if p.logs == nil {
		return zapcore.NewNopCore()
	}
	return &levelFilterCore{
		Core:  otelzap.NewCore(name, otelzap.WithLoggerProvider(p.logs)),
		level: level,
	}
}

// Bridge tees log into the OTLP log pipeline. The original sink keeps
// receiving every entry.
func (p *Providers) Bridge(log *zap.Logger, name string) *zap.Logger {
	if p.logs == nil {
		return log
	}
	export := p.LogCore(name, log.Level())
	return log.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, export)
	}))
}

// levelFilterCore applies the local logger's level to the otelzap core,
// which has no level of its own
type levelFilterCore struct {
	zapcore.Core
	level zapcore.LevelEnabler
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return c.level.Enabled(lvl) && c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.level.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{Core: c.Core.With(fields), level: c.level}
}
