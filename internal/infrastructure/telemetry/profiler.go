package telemetry

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/grafana/pyroscope-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const (
	mutexProfileFraction = 5
	blockProfileRate     = 5
)

// ProfilingSettings selects the Pyroscope profiles one process pushes
type ProfilingSettings struct {
	Enabled           bool
	ServerAddress     string
	BasicAuthUser     string
	BasicAuthPassword string
	ProfileTypes      []string
	// SpanProfiles labels CPU samples with the active span id. It needs traces.
	SpanProfiles bool
}

var profileTypes = map[string]pyroscope.ProfileType{
	"cpu":            pyroscope.ProfileCPU,
	"alloc_objects":  pyroscope.ProfileAllocObjects,
	"alloc_space":    pyroscope.ProfileAllocSpace,
	"inuse_objects":  pyroscope.ProfileInuseObjects,
	"inuse_space":    pyroscope.ProfileInuseSpace,
	"goroutines":     pyroscope.ProfileGoroutines,
	"mutex_count":    pyroscope.ProfileMutexCount,
	"mutex_duration": pyroscope.ProfileMutexDuration,
	"block_count":    pyroscope.ProfileBlockCount,
	"block_duration": pyroscope.ProfileBlockDuration,
}

// parseProfileTypes maps configured names onto pyroscope profile types
func parseProfileTypes(names []string) ([]pyroscope.ProfileType, error) {
	out := make([]pyroscope.ProfileType, 0, len(names))
	for _, name := range names {
		pt, ok := profileTypes[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown profile type %q", name)
		}
		out = append(out, pt)
	}
	return out, nil
}

func (p *Providers) startProfiler(s Settings) error {
	types, err := parseProfileTypes(s.Profiling.ProfileTypes)
	if err != nil {
		return err
	}
	if s.Profiling.ServerAddress == "" {
		return fmt.Errorf("profiler server address is required when profiling is enabled")
	}

	for _, pt := range types {
		switch pt {
		case pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration:
			runtime.SetMutexProfileFraction(mutexProfileFraction)
		case pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration:
			runtime.SetBlockProfileRate(blockProfileRate)
		}
	}

	tags := map[string]string{}
	if hostname, err := os.Hostname(); err == nil {
		tags["hostname"] = hostname
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   s.ServiceName,
		ServerAddress:     s.Profiling.ServerAddress,
		BasicAuthUser:     s.Profiling.BasicAuthUser,
		BasicAuthPassword: s.Profiling.BasicAuthPassword,
		Logger:            p.logger.Named("pyroscope").Sugar(),
		Tags:              tags,
		ProfileTypes:      types,
	})
	if err != nil {
		return fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	p.profiler = profiler

	if s.Profiling.SpanProfiles && p.tracer != nil {
		p.traces = otelpyroscope.NewTracerProvider(p.tracer)
		otel.SetTracerProvider(p.traces)
	}

	p.logger.Info("Pyroscope profiler started",
		zap.String("server_address", s.Profiling.ServerAddress),
		zap.Int("profile_types", len(types)),
		zap.Bool("span_profiles", p.traces != nil),
	)
	return nil
}

// ProfilingEnabled reports whether profiles are being pushed
func (p *Providers) ProfilingEnabled() bool {
	return p.profiler != nil
}
