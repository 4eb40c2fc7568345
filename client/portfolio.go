package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aquatic-labs/solfolio/service/dexscreener"
	"github.com/aquatic-labs/solfolio/service/pnl"
	"github.com/aquatic-labs/solfolio/service/portfolio"
)

// CostBasisResult is the response of the cost-basis endpoint.
type CostBasisResult struct {
	Wallet         string        `json:"wallet"`
	CostBasis      pnl.CostBasis `json:"costBasis"`
	NetRealizedSol float64       `json:"netRealizedSol"`
}

// PairsResult is the response of the pairs endpoint.
type PairsResult struct {
	Mint  string             `json:"mint"`
	Pairs []dexscreener.Pair `json:"pairs"`
}

// Client is the HTTP client for the solfolio portfolio service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new portfolio service client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		// Portfolio builds paginate upstream APIs, allow for slow responses
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// GetPortfolio retrieves the full portfolio for a wallet.
func (c *Client) GetPortfolio(ctx context.Context, address string) (*portfolio.Portfolio, error) {
	u := fmt.Sprintf("%s/api/v1/portfolio/%s", c.baseURL, url.PathEscape(address))

	var result portfolio.Portfolio
	if err := c.get(ctx, u, &result); err != nil {
		return nil, err
	}

	c.logger.Debug("fetched portfolio", "address", address, "holdings", len(result.Holdings))
	return &result, nil
}

// GetCostBasis retrieves only the cost-basis ledger for a wallet.
func (c *Client) GetCostBasis(ctx context.Context, address string) (*CostBasisResult, error) {
	u := fmt.Sprintf("%s/api/v1/portfolio/%s/costbasis", c.baseURL, url.PathEscape(address))

	var result CostBasisResult
	if err := c.get(ctx, u, &result); err != nil {
		return nil, err
	}

	c.logger.Debug("fetched cost basis", "address", address, "assets", len(result.CostBasis))
	return &result, nil
}

// Compare retrieves a two-wallet comparison.
func (c *Client) Compare(ctx context.Context, base, challenger string) (*portfolio.Comparison, error) {
	u := fmt.Sprintf("%s/api/v1/compare?base=%s&challenger=%s",
		c.baseURL, url.QueryEscape(base), url.QueryEscape(challenger))

	var result portfolio.Comparison
	if err := c.get(ctx, u, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetPairs retrieves the market pairs for one mint.
func (c *Client) GetPairs(ctx context.Context, mint string) (*PairsResult, error) {
	u := fmt.Sprintf("%s/api/v1/pairs/%s", c.baseURL, url.PathEscape(mint))

	var result PairsResult
	if err := c.get(ctx, u, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Health checks the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}

	return nil
}

// get performs a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// parseErrorResponse attempts to parse an error response from the server.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errResp struct {
		Error string `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Errorf("request failed: %s", errResp.Error)
}
