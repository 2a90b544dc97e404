// Package telemetry starts the OpenTelemetry trace, metric and log pipelines
// and the Pyroscope profiler of a burbarshop process, and exposes the
// instruments the commands record into.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grafana/pyroscope-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultExportInterval = time.Minute
	flushTimeout          = 10 * time.Second
)

// Settings selects what one process exports and where
type Settings struct {
	ServiceName    string
	Endpoint       string
	Insecure       bool
	Traces         bool
	Metrics        bool
	Logs           bool
	SamplingRatio  float64
	ExportInterval time.Duration
	Profiling      ProfilingSettings
}

// Providers owns the SDK providers started for a process. A pipeline that is
// switched off stays nil and its accessors fall back to the global no-op.
type Providers struct {
	tracer   *sdktrace.TracerProvider
	traces   trace.TracerProvider // tracer wrapped for span profiles, when on
	meter    *sdkmetric.MeterProvider
	logs     *sdklog.LoggerProvider
	profiler *pyroscope.Profiler
	logger   *zap.Logger
}

// Start builds the enabled pipelines and installs them as the otel globals.
func Start(ctx context.Context, s Settings, logger *zap.Logger) (*Providers, error) {
	p := &Providers{logger: logger}
	if !s.Traces && !s.Metrics && !s.Logs && !s.Profiling.Enabled {
		logger.Info("Telemetry disabled", zap.String("service_name", s.ServiceName))
		return p, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(s.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if s.Traces {
		if err := p.startTraces(ctx, s, res); err != nil {
			return nil, err
		}
	}
	if s.Metrics {
		if err := p.startMetrics(ctx, s, res); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}
	if s.Logs {
		if err := p.startLogs(ctx, s, res); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}
	if s.Profiling.Enabled {
		if err := p.startProfiler(s); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}

	logger.Info("Telemetry started",
		zap.String("service_name", s.ServiceName),
		zap.String("collector_endpoint", s.Endpoint),
		zap.Bool("traces", s.Traces),
		zap.Bool("metrics", s.Metrics),
		zap.Bool("logs", s.Logs),
		zap.Bool("profiling", s.Profiling.Enabled),
	)
	return p, nil
}

func (p *Providers) startTraces(ctx context.Context, s Settings, res *resource.Resource) error {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(s.Endpoint)}
	if s.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	p.tracer = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(s.SamplingRatio)),
	)
	otel.SetTracerProvider(p.tracer)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return nil
}

func (p *Providers) startMetrics(ctx context.Context, s Settings, res *resource.Resource) error {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(s.Endpoint)}
	if s.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	interval := s.ExportInterval
	if interval <= 0 {
		interval = defaultExportInterval
	}
	p.meter = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(p.meter)
	return nil
}

func samplerFor(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1.0:
		return sdktrace.AlwaysSample()
	case ratio <= 0.0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// Tracer returns a named tracer
func (p *Providers) Tracer(name string) trace.Tracer {
	switch {
	case p.traces != nil:
		return p.traces.Tracer(name)
	case p.tracer != nil:
		return p.tracer.Tracer(name)
	}
	return otel.GetTracerProvider().Tracer(name)
}

// Meter returns a named meter
func (p *Providers) Meter(name string) metric.Meter {
	if p.meter == nil {
		return otel.GetMeterProvider().Meter(name)
	}
	return p.meter.Meter(name)
}

// TracingEnabled reports whether spans leave the process
func (p *Providers) TracingEnabled() bool {
	return p.tracer != nil
}

// OperationMetrics registers call instruments under prefix on the meter
// named scope.
func (p *Providers) OperationMetrics(scope, prefix string) (*OperationMetrics, error) {
	return NewOperationMetrics(p.Meter(scope), prefix)
}

// Shutdown flushes and stops whichever pipelines were started.
func (p *Providers) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()

	var errs []error
	if p.profiler != nil {
		if err := p.profiler.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop profiler: %w", err))
		}
	}
	if p.logs != nil {
		if err := p.logs.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown logger provider: %w", err))
		}
	}
	if p.meter != nil {
		if err := p.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}
	if p.tracer != nil {
		if err := p.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		p.logger.Error("Telemetry shutdown incomplete", zap.Error(err))
		return err
	}
	return nil
}
