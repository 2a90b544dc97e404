package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const echoSchema = `{
  "type": "object",
  "properties": {
    "days": {"type": "integer", "minimum": 1, "maximum": 365, "default": 30},
    "payment_intent_id": {"type": "string", "pattern": "^pi_"},
    "reason": {"type": "string", "enum": ["duplicate", "fraudulent"], "default": "duplicate"}
  },
  "required": ["payment_intent_id"],
  "additionalProperties": false
}`

type echoArgs struct {
	Days            int    `json:"days"`
	PaymentIntentID string `json:"payment_intent_id"`
	Reason          string `json:"reason"`
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	registry := NewRegistry()
	registry.MustRegister(
		Tool{
			Name:        "echo",
			Description: "Echo the arguments",
			InputSchema: echoSchema,
			Handler: Handle(func(_ context.Context, in echoArgs) (any, error) {
				return in, nil
			}),
		},
		Tool{
			Name:        "fail",
			Description: "Always fails",
			InputSchema: `{"type": "object"}`,
			Handler: func(context.Context, json.RawMessage) (any, error) {
				return nil, errors.New("stripe: failed to create refund: charge already refunded")
			},
		},
		Tool{
			Name:        "explode",
			Description: "Panics",
			InputSchema: `{"type": "object"}`,
			Handler: func(context.Context, json.RawMessage) (any, error) {
				panic("nil map write")
			},
		},
	)
	return NewServer(ServerInfo{Name: "test-server", Version: "1.0.0"}, registry, nil, opts...)
}

// connect opens a client session to s over in-memory transports
func connect(t *testing.T, s *Server) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()

	ss, err := s.Connect(ctx, serverTransport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "dev"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestRegistry_RejectsBadTools(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Tool{Name: "", Handler: Handle(func(context.Context, echoArgs) (any, error) { return nil, nil })}))
	assert.Error(t, r.Register(Tool{Name: "nohandler", InputSchema: `{}`}))
	assert.Error(t, r.Register(Tool{Name: "badschema", InputSchema: `{"type": 12}`, Handler: func(context.Context, json.RawMessage) (any, error) { return nil, nil }}))
	assert.Error(t, r.Register(Tool{Name: "arrayschema", InputSchema: `{"type": "array"}`, Handler: func(context.Context, json.RawMessage) (any, error) { return nil, nil }}))

	ok := Tool{Name: "ok", InputSchema: `{"type":"object"}`, Handler: func(context.Context, json.RawMessage) (any, error) { return nil, nil }}
	require.NoError(t, r.Register(ok))
	assert.Error(t, r.Register(ok))
}

func TestServer_CallTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	t.Run("applies defaults and returns indented JSON", func(t *testing.T) {
		res := s.CallTool(ctx, "echo", json.RawMessage(`{"payment_intent_id": "pi_123"}`))
		require.False(t, res.IsError, res.Text())

		var out echoArgs
		require.NoError(t, json.Unmarshal([]byte(res.Text()), &out))
		assert.Equal(t, echoArgs{Days: 30, PaymentIntentID: "pi_123", Reason: "duplicate"}, out)
		assert.Contains(t, res.Text(), "\n  \"days\": 30")
	})

	t.Run("lists every violated field", func(t *testing.T) {
		res := s.CallTool(ctx, "echo", json.RawMessage(`{"days": 400, "reason": "bored"}`))
		require.True(t, res.IsError)

		text := res.Text()
		assert.True(t, strings.HasPrefix(text, "Invalid input:"), text)
		assert.Contains(t, text, "- days: ")
		assert.Contains(t, text, "- payment_intent_id: is required")
		assert.Contains(t, text, "- reason: ")
	})

	t.Run("rejects wrong types and patterns", func(t *testing.T) {
		res := s.CallTool(ctx, "echo", json.RawMessage(`{"days": "ten", "payment_intent_id": "ch_1"}`))
		require.True(t, res.IsError)
		assert.Contains(t, res.Text(), "- days: ")
		assert.Contains(t, res.Text(), "- payment_intent_id: ")
	})

	t.Run("rejects non-object arguments", func(t *testing.T) {
		res := s.CallTool(ctx, "echo", json.RawMessage(`[1,2]`))
		require.True(t, res.IsError)
		assert.Contains(t, res.Text(), "arguments: must be a JSON object")
	})

	t.Run("null arguments use defaults", func(t *testing.T) {
		res := s.CallTool(ctx, "fail", json.RawMessage(`null`))
		require.True(t, res.IsError)
		assert.Equal(t, "Error: stripe: failed to create refund: charge already refunded", res.Text())
	})

	t.Run("unknown tool", func(t *testing.T) {
		res := s.CallTool(ctx, "nope", nil)
		require.True(t, res.IsError)
		assert.Equal(t, "Unknown tool: nope", res.Text())
	})

	t.Run("handler panic becomes an error result", func(t *testing.T) {
		res := s.CallTool(ctx, "explode", nil)
		require.True(t, res.IsError)
		assert.Equal(t, "Internal error while running explode", res.Text())
	})
}

func TestServer_Protocol(t *testing.T) {
	cs := connect(t, newTestServer(t))
	ctx := context.Background()

	t.Run("initialize names the server", func(t *testing.T) {
		info := cs.InitializeResult()
		require.NotNil(t, info)
		assert.Equal(t, "test-server", info.ServerInfo.Name)
		assert.Equal(t, "1.0.0", info.ServerInfo.Version)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, cs.Ping(ctx, &sdkmcp.PingParams{}))
	})

	t.Run("tools/list announces every tool with its schema", func(t *testing.T) {
		list, err := cs.ListTools(ctx, &sdkmcp.ListToolsParams{})
		require.NoError(t, err)

		names := make([]string, 0, len(list.Tools))
		for _, tool := range list.Tools {
			names = append(names, tool.Name)
			if tool.Name == "echo" {
				schema, ok := tool.InputSchema.(map[string]any)
				require.True(t, ok, "%T", tool.InputSchema)
				assert.Equal(t, "object", schema["type"])
				assert.Equal(t, []any{"payment_intent_id"}, schema["required"])
			}
		}
		assert.ElementsMatch(t, []string{"echo", "fail", "explode"}, names)
	})

	t.Run("tools/call applies defaults", func(t *testing.T) {
		res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
			Name:      "echo",
			Arguments: map[string]any{"payment_intent_id": "pi_9"},
		})
		require.NoError(t, err)
		require.False(t, res.IsError, ResultText(res))

		var out echoArgs
		require.NoError(t, json.Unmarshal([]byte(ResultText(res)), &out))
		assert.Equal(t, echoArgs{Days: 30, PaymentIntentID: "pi_9", Reason: "duplicate"}, out)
	})

	t.Run("invalid arguments are an error result", func(t *testing.T) {
		res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{
			Name:      "echo",
			Arguments: map[string]any{"days": 400},
		})
		require.NoError(t, err)
		require.True(t, res.IsError)
		assert.Contains(t, ResultText(res), "- payment_intent_id: is required")
		assert.Contains(t, ResultText(res), "- days: ")
	})

	t.Run("unknown tool is an error result", func(t *testing.T) {
		res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: "nope"})
		require.NoError(t, err)
		require.True(t, res.IsError)
		assert.Equal(t, "Unknown tool: nope", ResultText(res))
	})

	t.Run("handler panic does not end the session", func(t *testing.T) {
		res, err := cs.CallTool(ctx, &sdkmcp.CallToolParams{Name: "explode"})
		require.NoError(t, err)
		require.True(t, res.IsError)
		assert.Equal(t, "Internal error while running explode", ResultText(res))

		assert.NoError(t, cs.Ping(ctx, &sdkmcp.PingParams{}))
	})
}

func TestServer_TracesToolCalls(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	s := newTestServer(t, WithTracer(tp.Tracer("test")))
	ctx := context.Background()

	s.CallTool(ctx, "echo", json.RawMessage(`{"payment_intent_id": "pi_1"}`))
	s.CallTool(ctx, "fail", nil)
	s.CallTool(ctx, "nope", nil)

	spans := rec.Ended()
	require.Len(t, spans, 3)
	for _, span := range spans {
		assert.Equal(t, "mcp.tools/call", span.Name())
	}
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "error", spans[1].Status().Description)
	assert.Equal(t, "unknown_tool", spans[2].Status().Description)
}

func TestServer_Run(t *testing.T) {
	t.Run("stops when the context is cancelled", func(t *testing.T) {
		s := newTestServer(t)
		serverTransport, _ := sdkmcp.NewInMemoryTransports()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- s.Run(ctx, serverTransport) }()

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after cancellation")
		}
	})
}
