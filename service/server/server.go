package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soltalk/soltalk/service/assistant"
	"github.com/soltalk/soltalk/service/config"
	"github.com/soltalk/soltalk/service/db"
	"github.com/soltalk/soltalk/service/metrics"
	"github.com/soltalk/soltalk/service/solana"
	"github.com/soltalk/soltalk/service/swap"
)

// Server represents the HTTP server for the assistant service.
type Server struct {
	addr       string
	cfg        *config.Config
	assistant  *assistant.Assistant
	store      *db.Store
	registry   *solana.Registry
	aggregator swap.Aggregator
	metrics    *metrics.Metrics
	logger     *slog.Logger
	server     *http.Server
}

// New creates a new HTTP server with the given dependencies.
// The store is optional - if nil, the intent retrieval endpoint won't be available.
// The aggregator is optional - if nil, the swap quote endpoint won't be available.
// The metrics is optional - if nil, the metrics endpoint won't be available.
func New(addr string, cfg *config.Config, a *assistant.Assistant, store *db.Store, registry *solana.Registry, aggregator swap.Aggregator, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:       addr,
		cfg:        cfg,
		assistant:  a,
		store:      store,
		registry:   registry,
		aggregator: aggregator,
		metrics:    m,
		logger:     logger,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Chat pipeline
	chatMetrics := metrics.HTTPMetricsMiddleware(s.metrics, "/api/v1/chat")
	mux.Handle("POST /api/v1/chat", chatMetrics(handleChat(s.assistant, s.logger)))

	// Prepared intent retrieval
	if s.store != nil {
		intentMetrics := metrics.HTTPMetricsMiddleware(s.metrics, "/api/v1/intents")
		mux.Handle("GET /api/v1/intents/{id}", intentMetrics(handleGetIntent(s.store, s.logger)))
	} else {
		s.logger.Warn("intent store not configured, intent retrieval endpoint disabled")
	}

	// Swap quotes (if aggregator is configured)
	if s.aggregator != nil {
		quoteMetrics := metrics.HTTPMetricsMiddleware(s.metrics, "/api/v1/swaps/quote")
		mux.Handle("POST /api/v1/swaps/quote", quoteMetrics(handleSwapQuote(s.aggregator, s.registry, s.cfg, s.logger)))
	} else {
		s.logger.Warn("swap aggregator not configured, quote endpoint disabled")
	}

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint (if metrics collector is configured)
	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
		s.logger.Info("Prometheus metrics endpoint enabled")
	}

	// Wrap mux with CORS middleware
	handler := corsMiddleware(mux)

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // classifier + RPC chain can be slow
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware adds CORS headers to all responses and handles OPTIONS preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
