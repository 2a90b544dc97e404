package bootstrap

import (
	"context"
	"fmt"

	"github.com/MuratKus/burbarshop/internal/infrastructure/mcp"
	"github.com/MuratKus/burbarshop/internal/infrastructure/telemetry"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// ServeTools registers tools and answers MCP requests on transport until the
// client disconnects or ctx is cancelled. Commands pass the stdio transport.
func ServeTools(ctx context.Context, info mcp.ServerInfo, tools []mcp.Tool, tel *telemetry.Providers, log *zap.Logger, transport sdkmcp.Transport) error {
	registry := mcp.NewRegistry()
	for _, tool := range tools {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}

	scope := "burbarshop/" + info.Name
	metrics, err := tel.OperationMetrics(scope, "mcp.tools")
	if err != nil {
		return fmt.Errorf("failed to register tool metrics: %w", err)
	}

	server := mcp.NewServer(info, registry, log,
		mcp.WithMetrics(metrics),
		mcp.WithTracer(tel.Tracer(scope)),
	)
	return server.Run(ctx, transport)
}
