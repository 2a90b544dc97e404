package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MuratKus/burbarshop/internal/domain/shared"
	"github.com/MuratKus/burbarshop/internal/infrastructure/telemetry"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Option configures a Server
type Option func(*Server)

// WithMetrics records every tool call on m
func WithMetrics(m *telemetry.OperationMetrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithTracer replaces the global tracer
func WithTracer(t trace.Tracer) Option {
	return func(s *Server) {
		s.tracer = t
	}
}

// Server answers MCP requests for the tools of a registry
type Server struct {
	info     ServerInfo
	registry *Registry
	logger   *zap.Logger
	metrics  *telemetry.OperationMetrics
	tracer   trace.Tracer
	sdk      *sdkmcp.Server
}

// NewServer creates a server over registry
func NewServer(info ServerInfo, registry *Registry, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		info:     info,
		registry: registry,
		logger:   logger,
		tracer:   otel.Tracer("github.com/MuratKus/burbarshop/mcp"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.sdk = sdkmcp.NewServer(&sdkmcp.Implementation{Name: info.Name, Version: info.Version}, nil)
	for _, t := range registry.tools {
		s.sdk.AddTool(t.descriptor(), s.toolHandler(t))
	}
	s.sdk.AddReceivingMiddleware(s.observeToolCalls)
	return s
}

// Run serves transport until the peer disconnects or ctx is cancelled. Both
// count as a clean stop.
func (s *Server) Run(ctx context.Context, transport sdkmcp.Transport) error {
	s.logger.Info("MCP server started",
		zap.String("server", s.info.Name),
		zap.String("version", s.info.Version),
		zap.Int("tools", s.registry.Len()))

	err := s.sdk.Run(ctx, transport)
	switch {
	case ctx.Err() != nil:
		s.logger.Info("MCP server stopping", zap.Error(ctx.Err()))
		return nil
	case err == nil, errors.Is(err, io.EOF):
		s.logger.Info("MCP input closed")
		return nil
	}
	return fmt.Errorf("mcp: %w", err)
}

// Connect starts a session on transport and returns without waiting for it
// to end
func (s *Server) Connect(ctx context.Context, transport sdkmcp.Transport) (*sdkmcp.ServerSession, error) {
	return s.sdk.Connect(ctx, transport, nil)
}

// CallTool runs one call in process through the same validation, recovery
// and instrumentation as a tools/call request
func (s *Server) CallTool(ctx context.Context, name string, args json.RawMessage) CallResult {
	req := &sdkmcp.CallToolRequest{Params: &sdkmcp.CallToolParamsRaw{Name: name, Arguments: args}}
	res, err := s.observeToolCalls(s.dispatch)(ctx, methodCallTool, req)
	if err != nil {
		return CallResult{errorResult("Error: " + err.Error())}
	}
	out, ok := res.(*sdkmcp.CallToolResult)
	if !ok {
		return CallResult{errorResult("Error: unexpected result")}
	}
	return CallResult{out}
}

func (s *Server) dispatch(ctx context.Context, _ string, req sdkmcp.Request) (sdkmcp.Result, error) {
	call := req.(*sdkmcp.CallToolRequest)
	tool, ok := s.registry.lookup(call.Params.Name)
	if !ok {
		return errorResult("Unknown tool: " + call.Params.Name), nil
	}
	return s.toolHandler(tool)(ctx, call)
}

// callState carries the outcome of one call from the tool handler back to
// the middleware that records it
type callState struct {
	outcome string
}

type callStateKey struct{}

func stateFrom(ctx context.Context) *callState {
	if st, ok := ctx.Value(callStateKey{}).(*callState); ok {
		return st
	}
	return &callState{}
}

// observeToolCalls wraps tools/call in a span and a metric sample. Unknown
// tools and handler panics become error results here.
func (s *Server) observeToolCalls(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
	return func(ctx context.Context, method string, req sdkmcp.Request) (result sdkmcp.Result, err error) {
		call, ok := req.(*sdkmcp.CallToolRequest)
		if method != methodCallTool || !ok || call.Params == nil {
			return next(ctx, method, req)
		}
		name := call.Params.Name

		start := time.Now()
		ctx, span := s.tracer.Start(ctx, "mcp.tools/call",
			trace.WithAttributes(
				attribute.String("mcp.server", s.info.Name),
				attribute.String("mcp.tool", name),
			))
		state := &callState{outcome: "ok"}
		ctx = context.WithValue(ctx, callStateKey{}, state)
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Tool panicked",
					zap.String("tool", name),
					zap.Any("panic", r),
					zap.Stack("stack"))
				state.outcome = "panic"
				result, err = errorResult(fmt.Sprintf("Internal error while running %s", name)), nil
			}
			if err != nil {
				state.outcome = "error"
				span.RecordError(err)
			}
			if res, ok := result.(*sdkmcp.CallToolResult); err != nil || (ok && res.IsError) {
				span.SetStatus(codes.Error, state.outcome)
			}
			span.End()
			s.metrics.Record(ctx, name, state.outcome, time.Since(start))
		}()

		if _, ok := s.registry.lookup(name); !ok {
			state.outcome = "unknown_tool"
			return errorResult("Unknown tool: " + name), nil
		}
		return next(ctx, method, req)
	}
}

// toolHandler validates the arguments of a call and runs the tool
func (s *Server) toolHandler(tool *registeredTool) sdkmcp.ToolHandler {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		state := stateFrom(ctx)

		var args json.RawMessage
		if req.Params != nil {
			args = req.Params.Arguments
		}
		normalized, err := tool.prepare(args)
		if err != nil {
			state.outcome = "invalid"
			return errorResult(err.Error()), nil
		}

		value, err := tool.Handler(ctx, normalized)
		if err != nil {
			state.outcome = "error"
			if errors.Is(err, shared.ErrInvalidInput) {
				state.outcome = "invalid"
			}
			s.logger.Warn("Tool failed", zap.String("tool", tool.Name), zap.Error(err))
			trace.SpanFromContext(ctx).RecordError(err)
			return errorResult("Error: " + err.Error()), nil
		}

		text, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			state.outcome = "error"
			return errorResult("Error: failed to encode result: " + err.Error()), nil
		}
		s.logger.Debug("Tool succeeded", zap.String("tool", tool.Name))
		return textResult(string(text)), nil
	}
}
