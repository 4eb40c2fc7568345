package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aquatic-labs/solfolio/service/config"
	"github.com/aquatic-labs/solfolio/service/dexscreener"
	"github.com/aquatic-labs/solfolio/service/helius"
	"github.com/aquatic-labs/solfolio/service/metrics"
	"github.com/aquatic-labs/solfolio/service/portfolio"
	"github.com/aquatic-labs/solfolio/service/server"
	"github.com/aquatic-labs/solfolio/service/solana"
)

func main() {
	// Load and validate configuration from environment
	// This fails fast if any required config is missing or invalid
	cfg := config.MustLoad()

	// Setup structured logging
	logger := setupLogger(cfg.LogLevel)
	logger.Info("starting server",
		"addr", cfg.ServerAddr,
		"log_level", cfg.LogLevel,
	)

	// Initialize Prometheus metrics with the default registry
	m := metrics.NewMetrics(nil)

	// Initialize Solana RPC client
	// Note: For premium RPC endpoints, include API key in the URL
	solanaRPC := solana.NewRPCClient(cfg.SolanaRPCURL)
	chainClient := solana.NewClient(solanaRPC, m, logger)
	logger.Info("initialized solana RPC client", "url", cfg.SolanaRPCURL)

	// Initialize Helius enhanced-transactions client.
	// Without an API key the service still serves balances and market
	// data; transaction history comes back empty.
	if cfg.HeliusAPIKey == "" {
		logger.Warn("HELIUS_API_KEY not set, transaction history will be empty")
	}
	heliusClient := helius.NewClient(cfg.HeliusAPIURL, cfg.HeliusAPIKey, cfg.PageDelay, m, logger)

	// Initialize DexScreener market data client
	marketClient := dexscreener.NewClient(cfg.DexScreenerURL, cfg.BatchDelay, m, logger)

	// Initialize the portfolio pipeline
	portfolioSvc := portfolio.NewService(
		chainClient,
		heliusClient,
		marketClient,
		portfolio.Budgets{SwapPages: cfg.SwapPageBudget, TransferPages: cfg.TransferPageBudget},
		portfolio.Budgets{SwapPages: cfg.CompareSwapPageBudget, TransferPages: cfg.CompareTransferPageBudget},
		m,
		logger,
	)

	// Initialize HTTP server
	httpServer := server.New(cfg.ServerAddr, portfolioSvc, marketClient, m, logger)

	logger.Info("server initialized, all dependencies ready",
		"solana_rpc", cfg.SolanaRPCURL,
		"helius_api", cfg.HeliusAPIURL,
		"dexscreener_api", cfg.DexScreenerURL,
	)

	// Start HTTP server in background
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Start()
	}()

	// Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown server gracefully", "error", err)
			os.Exit(1)
		}

		logger.Info("server shutdown complete")
	}
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
