package dexscreener

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aquatic-labs/solfolio/service/metrics"
	"golang.org/x/time/rate"
)

const (
	// batchSize is the maximum number of mints per token lookup request.
	batchSize = 30

	// WrappedSolMint is the wrapped-SOL mint used to price native SOL.
	WrappedSolMint = "So11111111111111111111111111111111111111112"
)

// Client fetches market data from the DexScreener API.
//
// All lookups are best-effort: a failed batch is skipped and the
// remaining batches still run, so partial market data never fails a
// portfolio build.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a new DexScreener client.
// batchDelay paces successive token-batch requests; if m is nil, no
// metrics will be recorded.
func NewClient(baseURL string, batchDelay time.Duration, m *metrics.Metrics, logger *slog.Logger) *Client {
	limit := rate.Inf
	if batchDelay > 0 {
		limit = rate.Every(batchDelay)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
		metrics:    m,
	}
}

// Tokens looks up pair records for the given mints, batched per the API
// limit. Failed batches are logged and skipped.
func (c *Client) Tokens(ctx context.Context, mints []string) []Pair {
	if len(mints) == 0 {
		return nil
	}

	var out []Pair
	for i := 0; i < len(mints); i += batchSize {
		if err := c.limiter.Wait(ctx); err != nil {
			break
		}

		end := min(i+batchSize, len(mints))
		batch := mints[i:end]

		pairs, err := c.fetchPairs(ctx, "/tokens/v1/solana/"+url.PathEscape(strings.Join(batch, ",")), "tokens")
		if err != nil {
			c.logger.WarnContext(ctx, "token batch lookup failed, skipping",
				"batch_start", i,
				"batch_size", len(batch),
				"error", err,
			)
			continue
		}
		out = append(out, pairs...)
	}

	return out
}

// Pairs lists all pair records for a single mint.
// Returns an empty slice on failure.
func (c *Client) Pairs(ctx context.Context, mint string) []Pair {
	pairs, err := c.fetchPairs(ctx, "/token-pairs/v1/solana/"+url.PathEscape(mint), "token-pairs")
	if err != nil {
		c.logger.WarnContext(ctx, "pair lookup failed",
			"mint", mint,
			"error", err,
		)
		return nil
	}
	return pairs
}

// SolPrice returns the current SOL/USD price from the wrapped-SOL
// pair with the most recent data, or 0 if unavailable.
func (c *Client) SolPrice(ctx context.Context) float64 {
	pairs, err := c.fetchPairs(ctx, "/tokens/v1/solana/"+WrappedSolMint, "sol-price")
	if err != nil {
		c.logger.WarnContext(ctx, "SOL price lookup failed", "error", err)
		return 0
	}
	if len(pairs) == 0 {
		return 0
	}

	price, err := strconv.ParseFloat(pairs[0].PriceUsd, 64)
	if err != nil {
		return 0
	}
	return price
}

// fetchPairs performs one GET request and decodes either response shape.
func (c *Client) fetchPairs(ctx context.Context, path, endpoint string) ([]Pair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		defer func() {
			c.metrics.RecordDexScreenerRequest(endpoint, status, duration)
		}()
	}

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		status = "error"
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		status = "error"
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	pairs, err := decodePairs(body)
	if err != nil {
		status = "error"
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return pairs, nil
}
