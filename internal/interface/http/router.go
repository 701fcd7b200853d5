package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/food-waste-predictor/internal/domain/auth"
	"github.com/yanqian/food-waste-predictor/internal/infra/config"
	"github.com/yanqian/food-waste-predictor/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
// mcpHandler may be nil when the MCP endpoint is disabled.
func NewRouter(cfg *config.Config, handler *Handler, mcpHandler *MCPHandler, guard auth.Guard, registry *metrics.Registry, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	logger = logger.With("component", "http.router")

	exempt := []string{"/health"}
	if cfg.Metrics.Enabled {
		exempt = append(exempt, cfg.Metrics.Path)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, exempt, registry, logger),
	)

	router.GET("/health", handler.Health)
	if cfg.Metrics.Enabled && registry != nil {
		router.GET(cfg.Metrics.Path, registry.Handler())
	}

	api := router.Group("/api")
	{
		api.POST("/predict", handler.Predict)
		api.GET("/reference", handler.Reference)

		guarded := api.Group("/records", authMiddleware(guard))
		guarded.POST("", handler.LogRecord)
		guarded.GET("/history", handler.History)
	}

	if cfg.MCP.Enabled && mcpHandler != nil {
		router.GET(cfg.MCP.Path, mcpHandler.Describe)
		router.POST(cfg.MCP.Path, mcpHandler.CallTool)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, registry, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
