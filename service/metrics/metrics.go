package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Solana RPC Metrics
	solanaRPCCallsTotal   *prometheus.CounterVec
	solanaRPCCallDuration *prometheus.HistogramVec

	// Helius Enhanced Transactions Metrics
	heliusRequestsTotal     *prometheus.CounterVec
	heliusPagesPerFetch     *prometheus.HistogramVec
	heliusTransactionsTotal *prometheus.CounterVec

	// DexScreener Metrics
	dexscreenerRequestsTotal   *prometheus.CounterVec
	dexscreenerRequestDuration *prometheus.HistogramVec

	// Portfolio Pipeline Metrics
	portfolioBuildDuration *prometheus.HistogramVec
	ledgerAssetsPerBuild   *prometheus.HistogramVec

	// HTTP Metrics
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		// Solana RPC Metrics
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method"},
		),

		// Helius Enhanced Transactions Metrics
		heliusRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helius_requests_total",
				Help: "Total number of Helius enhanced transaction page requests by type and status",
			},
			[]string{"type", "status"},
		),
		heliusPagesPerFetch: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "helius_pages_per_fetch",
				Help:    "Number of pages fetched per transaction history fetch",
				Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16},
			},
			[]string{"type"},
		),
		heliusTransactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helius_transactions_fetched_total",
				Help: "Total number of enhanced transactions fetched by type",
			},
			[]string{"type"},
		),

		// DexScreener Metrics
		dexscreenerRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dexscreener_requests_total",
				Help: "Total number of DexScreener API requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		dexscreenerRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dexscreener_request_duration_seconds",
				Help:    "Duration of DexScreener API requests in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"endpoint"},
		),

		// Portfolio Pipeline Metrics
		portfolioBuildDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolio_build_duration_seconds",
				Help:    "End-to-end duration of a wallet portfolio build",
				Buckets: []float64{0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"kind"},
		),
		ledgerAssetsPerBuild: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_assets_per_build",
				Help:    "Number of distinct assets in the cost-basis ledger per build",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
			},
			[]string{"kind"},
		),

		// HTTP Metrics
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"handler", "method"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by handler, method and status code",
			},
			[]string{"handler", "method", "status"},
		),
	}
}

// RecordRPCCall records a Solana RPC call with its duration.
func (m *Metrics) RecordRPCCall(method, status string, duration float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method).Observe(duration)
}

// RecordHeliusRequest records a single Helius page request.
func (m *Metrics) RecordHeliusRequest(txnType, status string) {
	m.heliusRequestsTotal.WithLabelValues(txnType, status).Inc()
}

// RecordHeliusFetch records the outcome of a whole pagination run.
func (m *Metrics) RecordHeliusFetch(txnType string, pages, transactions int) {
	m.heliusPagesPerFetch.WithLabelValues(txnType).Observe(float64(pages))
	m.heliusTransactionsTotal.WithLabelValues(txnType).Add(float64(transactions))
}

// RecordDexScreenerRequest records a DexScreener API request with its duration.
func (m *Metrics) RecordDexScreenerRequest(endpoint, status string, duration float64) {
	m.dexscreenerRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.dexscreenerRequestDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordPortfolioBuild records an end-to-end portfolio build.
// The kind label distinguishes primary builds from comparison builds.
func (m *Metrics) RecordPortfolioBuild(kind string, duration float64, ledgerAssets int) {
	m.portfolioBuildDuration.WithLabelValues(kind).Observe(duration)
	m.ledgerAssetsPerBuild.WithLabelValues(kind).Observe(float64(ledgerAssets))
}

// RecordHTTPRequest records an HTTP request with its duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, duration float64) {
	status := statusCodeToString(statusCode)
	m.httpRequestsTotal.WithLabelValues(handler, method, status).Inc()
	m.httpRequestDuration.WithLabelValues(handler, method).Observe(duration)
}

// statusCodeToString converts an HTTP status code to a string label.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
