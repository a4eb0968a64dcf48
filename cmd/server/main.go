package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	gosolana "github.com/gagliardetto/solana-go"

	"github.com/soltalk/soltalk/service/assistant"
	"github.com/soltalk/soltalk/service/cache"
	"github.com/soltalk/soltalk/service/config"
	"github.com/soltalk/soltalk/service/db"
	"github.com/soltalk/soltalk/service/events"
	"github.com/soltalk/soltalk/service/intent"
	"github.com/soltalk/soltalk/service/metrics"
	"github.com/soltalk/soltalk/service/server"
	"github.com/soltalk/soltalk/service/solana"
	"github.com/soltalk/soltalk/service/swap"
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

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Prometheus metrics shared across all components
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)

	// Initialize database connection pool for prepared-intent storage
	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// Verify database connection
	if err := dbPool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	store := db.NewStore(dbPool, m)

	// NATS publisher for prepared-intent events. Optional: the pipeline
	// works without it, downstream consumers just don't get notified.
	var publisher events.Publisher
	if cfg.NATSURL != "" {
		p, err := events.NewPublisher(cfg.NATSURL, m, logger)
		if err != nil {
			logger.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
		logger.Info("connected to NATS", "url", cfg.NATSURL)
	} else {
		logger.Warn("NATS URL not configured, intent events disabled")
	}

	// Initialize Solana RPC client
	// Note: For premium RPC endpoints, include API key in the URL
	rpcClient := solana.NewRPCClient(cfg.SolanaRPCURL)
	logger.Info("initialized solana RPC client", "url", cfg.SolanaRPCURL)

	// Recipient resolution: .sol domains via SNS, answers cached by
	// lowercased domain name for the configured TTL.
	domainCache := cache.New[gosolana.PublicKey](cfg.DomainCacheTTL)
	resolver := solana.NewResolver(solana.NewSNSResolver(cfg.SNSResolverURL), domainCache, m, logger)

	registry := solana.NewRegistry(rpcClient, cfg.SolanaRPCURL, m, logger)

	transferPreparer := solana.NewPreparer(rpcClient, resolver, registry, solana.PreparerConfig{
		FeeFallbackLamports: cfg.FeeFallbackLamports,
		ATARentLamports:     cfg.ATARentLamports,
		IntentTTL:           cfg.IntentTTL,
	}, cfg.SolanaRPCURL, m, logger)

	swapPreparer := swap.NewPreparer(logger)

	// Gemini-backed intent classifier
	classifier, err := intent.NewGeminiClassifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, m, logger)
	if err != nil {
		logger.Error("failed to initialize classifier", "error", err)
		os.Exit(1)
	}
	logger.Info("initialized intent classifier", "model", cfg.GeminiModel)

	a := assistant.New(classifier, transferPreparer, swapPreparer, store, publisher, m, logger)

	// Jupiter aggregator for live swap quotes
	aggregator := swap.NewJupiterClient(cfg.JupiterBaseURL, logger)

	httpServer := server.New(cfg.ServerAddr, cfg, a, store, registry, aggregator, m, logger)

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
