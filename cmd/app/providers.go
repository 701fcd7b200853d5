package main

import (
	"log/slog"

	"github.com/yanqian/food-waste-predictor/internal/domain/auth"
	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
	"github.com/yanqian/food-waste-predictor/internal/infra/config"
	httpiface "github.com/yanqian/food-waste-predictor/internal/interface/http"
	"github.com/yanqian/food-waste-predictor/internal/interface/mcp"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// provideGuard leaves the records endpoints open. Swap in a real guard to protect them.
func provideGuard() auth.Guard {
	return auth.NoopGuard{}
}

func provideMCPHandler(cfg *config.Config, predictor prediction.Service, logger *slog.Logger) *httpiface.MCPHandler {
	if !cfg.MCP.Enabled {
		return nil
	}
	server := mcp.NewServer(predictor, version, logger)
	logger.Info("mcp endpoint enabled", "path", cfg.MCP.Path, "tools", server.ToolNames())
	return httpiface.NewMCPHandler(server)
}
