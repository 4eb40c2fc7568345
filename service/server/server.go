package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aquatic-labs/solfolio/service/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server for the portfolio service.
type Server struct {
	addr      string
	portfolio PortfolioService
	pairs     PairLister
	metrics   *metrics.Metrics
	logger    *slog.Logger
	server    *http.Server
}

// New creates a new HTTP server with the given dependencies.
// The pairs client backs the token detail endpoint.
// The metrics is optional - if nil, the metrics endpoint won't be available.
func New(addr string, portfolio PortfolioService, pairs PairLister, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:      addr,
		portfolio: portfolio,
		pairs:     pairs,
		metrics:   m,
		logger:    logger,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Portfolio routes
	mux.Handle("GET /api/v1/portfolio/{address}",
		s.instrument("/api/v1/portfolio", handleGetPortfolio(s.portfolio, s.logger)))
	mux.Handle("GET /api/v1/portfolio/{address}/costbasis",
		s.instrument("/api/v1/portfolio/costbasis", handleGetCostBasis(s.portfolio, s.logger)))
	mux.Handle("GET /api/v1/compare",
		s.instrument("/api/v1/compare", handleCompare(s.portfolio, s.logger)))

	// Market data routes
	mux.Handle("GET /api/v1/pairs/{mint}",
		s.instrument("/api/v1/pairs", handleGetPairs(s.pairs, s.logger)))

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

	// Wrap mux with CORS middleware for the browser dashboard
	handler := corsMiddleware(mux)

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // portfolio builds paginate upstream APIs
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// instrument wraps a handler with HTTP metrics recording under a constant
// handler name. No-op when metrics collection is disabled.
func (s *Server) instrument(name string, h http.Handler) http.Handler {
	return metrics.HTTPMetricsMiddleware(s.metrics, name)(h)
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
		// Set CORS headers for all requests
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		// Handle preflight OPTIONS requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Pass through to next handler
		next.ServeHTTP(w, r)
	})
}
