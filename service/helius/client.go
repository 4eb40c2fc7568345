package helius

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aquatic-labs/solfolio/service/metrics"
)

// fullPageSize is the number of transactions in a complete Helius page.
// A shorter page signals the end of the wallet's history.
const fullPageSize = 100

// Client fetches enhanced transaction history from the Helius API.
//
// All fetches are best-effort: a failed page request truncates the
// result instead of surfacing an error, and a missing API key disables
// the feature entirely (empty results, zero requests). Callers must
// treat an empty result as "unknown", not as "wallet has no activity".
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	pageDelay  time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a new Helius client.
// An empty apiKey is valid and makes every fetch return empty results.
// If m is nil, no metrics will be recorded.
func NewClient(baseURL, apiKey string, pageDelay time.Duration, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		pageDelay:  pageDelay,
		logger:     logger,
		metrics:    m,
	}
}

// FetchTransactions paginates backward through a wallet's transaction
// history of the given type, newest first, using the last signature of
// each page as the cursor for the next.
//
// Pagination stops when a page request fails (soft stop: whatever was
// accumulated is returned), when a page is empty, when a page is shorter
// than a full page, or when maxPages is exhausted. A fixed delay runs
// between successive page requests to respect upstream rate limits.
func (c *Client) FetchTransactions(ctx context.Context, wallet string, txnType TxnType, maxPages int) []Transaction {
	if c.apiKey == "" {
		c.logger.DebugContext(ctx, "helius API key not configured, skipping transaction fetch",
			"wallet", wallet,
			"type", string(txnType),
		)
		return nil
	}

	var all []Transaction
	var lastSig string
	pages := 0

	for page := 0; page < maxPages; page++ {
		txns, err := c.fetchPage(ctx, wallet, txnType, lastSig)
		if err != nil {
			// Soft stop: return what we have so far.
			c.logger.WarnContext(ctx, "transaction page fetch failed, truncating history",
				"wallet", wallet,
				"type", string(txnType),
				"page", page,
				"error", err,
			)
			break
		}
		pages++

		if len(txns) == 0 {
			break
		}

		all = append(all, txns...)
		lastSig = txns[len(txns)-1].Signature

		if len(txns) < fullPageSize {
			break
		}

		if page+1 < maxPages {
			time.Sleep(c.pageDelay)
		}
	}

	if c.metrics != nil {
		c.metrics.RecordHeliusFetch(string(txnType), pages, len(all))
	}

	c.logger.InfoContext(ctx, "fetched transaction history",
		"wallet", wallet,
		"type", string(txnType),
		"pages", pages,
		"count", len(all),
	)

	return all
}

// fetchPage requests a single page of enhanced transactions.
// before is the pagination cursor; empty means the most recent page.
func (c *Client) fetchPage(ctx context.Context, wallet string, txnType TxnType, before string) ([]Transaction, error) {
	endpoint := fmt.Sprintf("%s/addresses/%s/transactions", c.baseURL, url.PathEscape(wallet))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	query := req.URL.Query()
	query.Set("api-key", c.apiKey)
	query.Set("type", string(txnType))
	if before != "" {
		query.Set("before", before)
	}
	req.URL.RawQuery = query.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordHeliusRequest(string(txnType), "error")
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if c.metrics != nil {
			c.metrics.RecordHeliusRequest(string(txnType), "error")
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var txns []Transaction
	if err := json.NewDecoder(resp.Body).Decode(&txns); err != nil {
		if c.metrics != nil {
			c.metrics.RecordHeliusRequest(string(txnType), "error")
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if c.metrics != nil {
		c.metrics.RecordHeliusRequest(string(txnType), "success")
	}

	return txns, nil
}
