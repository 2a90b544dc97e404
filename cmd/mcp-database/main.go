// Command mcp-database serves the storefront analytics tools over MCP stdio.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/MuratKus/burbarshop/internal/application/analytics"
	"github.com/MuratKus/burbarshop/internal/bootstrap"
	"github.com/MuratKus/burbarshop/internal/infrastructure/config"
	"github.com/MuratKus/burbarshop/internal/infrastructure/mcp"
	"github.com/MuratKus/burbarshop/internal/infrastructure/persistence"
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

	tel, err := bootstrap.NewTelemetry(ctx, cfg, "burbarshop-mcp-database", log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		_ = tel.Shutdown(context.Background())
	}()
	log = tel.Bridge(log, "burbarshop-mcp-database")

	db, err := bootstrap.OpenDatabase(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	svc := analytics.NewService(
		persistence.NewGormOrderRepository(db.DB),
		persistence.NewGormVariantRepository(db.DB),
	)

	info := mcp.ServerInfo{Name: "burbarshop-database", Version: version}
	if err := bootstrap.ServeTools(ctx, info, tools.DatabaseTools(svc), tel, log, &sdkmcp.StdioTransport{}); err != nil {
		log.Error("Tool server stopped with error", zap.Error(err))
	}
}
