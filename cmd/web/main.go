package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"sales-dashboard/internal/charts"
	"sales-dashboard/internal/config"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/scheduler"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/source"
)

const version = "1.0.0"

// newSource reads records from a local file when one is configured and
// from the sales API otherwise. Either way results are cached.
func newSource(cfg config.SourceConfig, logger *slog.Logger) source.Fetcher {
	var next source.Fetcher
	if cfg.File != "" {
		logger.Info("using local sales file", "path", cfg.File)
		next = source.NewFile(cfg.File, logger)
	} else {
		logger.Info("using sales API", "url", cfg.URL)
		next = source.NewClient(cfg, logger)
	}
	return source.NewCached(next, cfg.CacheTTL, cfg.CacheDir, logger)
}

func newHandler(cfg *config.Config, analytics *services.Analytics, renderer *charts.Renderer, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	srv := server.NewServer(analytics, renderer, logger)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(limiter, logger),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", version,
		"config", cfg,
	)

	analytics := services.NewAnalytics(newSource(cfg.Source, logger), logger)
	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	renderer, err := charts.NewRenderer(cfg.Charts)
	if err != nil {
		logger.Error("failed to create chart renderer", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, renderer, rateLimiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	jobs := scheduler.New(cfg.Refresh, analytics, rateLimiter, logger)
	if err := jobs.Start(context.Background()); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook("scheduler", jobs.Stop)

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
