// Command mcp-stripe serves payment lookup and refund tools over MCP stdio.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/MuratKus/burbarshop/internal/bootstrap"
	"github.com/MuratKus/burbarshop/internal/infrastructure/config"
	"github.com/MuratKus/burbarshop/internal/infrastructure/mcp"
	"github.com/MuratKus/burbarshop/internal/infrastructure/payment"
	"github.com/MuratKus/burbarshop/internal/interfaces/tools"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log, err := bootstrap.NewLogger(cfg.Log, true)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := bootstrap.NewTelemetry(ctx, cfg, "burbarshop-mcp-stripe", log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		_ = tel.Shutdown(context.Background())
	}()
	log = tel.Bridge(log, "burbarshop-mcp-stripe")

	adapter, err := payment.NewStripeAdapter(cfg.Stripe.SecretKey, log)
	if err != nil {
		log.Fatal("Failed to initialize Stripe", zap.Error(err))
	}

	info := mcp.ServerInfo{Name: "burbarshop-stripe", Version: version}
	if err := bootstrap.ServeTools(ctx, info, tools.PaymentTools(adapter), tel, log, &sdkmcp.StdioTransport{}); err != nil {
		log.Error("Tool server stopped with error", zap.Error(err))
	}
}
