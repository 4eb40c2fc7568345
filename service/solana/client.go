package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aquatic-labs/solfolio/service/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPCClient is an interface for the Solana RPC operations we need.
// This allows us to mock the RPC layer in tests without hitting real Solana nodes.
type RPCClient interface {
	GetBalance(
		ctx context.Context,
		account solana.PublicKey,
		commitment rpc.CommitmentType,
	) (*rpc.GetBalanceResult, error)

	GetTokenAccountsByOwner(
		ctx context.Context,
		owner solana.PublicKey,
		conf *rpc.GetTokenAccountsConfig,
		opts *rpc.GetTokenAccountsOpts,
	) (*rpc.GetTokenAccountsResult, error)
}

// Client provides wallet balance and token account enumeration.
// It wraps the RPC client with domain-specific operations.
type Client struct {
	rpc     RPCClient
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewClient creates a new Solana client.
// If m is nil, no metrics will be recorded.
func NewClient(rpcClient RPCClient, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		rpc:     rpcClient,
		logger:  logger,
		metrics: m,
	}
}

// NewRPCClient creates a real RPC client for the given endpoint.
// For premium endpoints, include the API key in the URL.
func NewRPCClient(endpoint string) *rpc.Client {
	return rpc.New(endpoint)
}

// GetSolBalance returns the wallet's native SOL balance in whole SOL.
func (c *Client) GetSolBalance(ctx context.Context, wallet solana.PublicKey) (float64, error) {
	start := time.Now()
	result, err := c.rpc.GetBalance(ctx, wallet, rpc.CommitmentFinalized)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall("GetBalance", status, duration)
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get balance for %s: %w", wallet.String(), err)
	}

	balance := float64(result.Value) / float64(solana.LAMPORTS_PER_SOL)

	c.logger.DebugContext(ctx, "fetched SOL balance",
		"wallet", wallet.String(),
		"lamports", result.Value,
		"sol", balance,
	)

	return balance, nil
}

// GetTokenAccounts returns the wallet's SPL token accounts with a positive
// balance. Balances are UI amounts, already adjusted for token decimals.
func (c *Client) GetTokenAccounts(ctx context.Context, wallet solana.PublicKey) ([]TokenBalance, error) {
	conf := &rpc.GetTokenAccountsConfig{
		ProgramId: solana.TokenProgramID.ToPointer(),
	}
	opts := &rpc.GetTokenAccountsOpts{
		Encoding: solana.EncodingJSONParsed,
	}

	start := time.Now()
	result, err := c.rpc.GetTokenAccountsByOwner(ctx, wallet, conf, opts)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
	}
	if c.metrics != nil {
		c.metrics.RecordRPCCall("GetTokenAccountsByOwner", status, duration)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get token accounts for %s: %w", wallet.String(), err)
	}

	balances := make([]TokenBalance, 0, len(result.Value))
	for _, account := range result.Value {
		if account.Account.Data == nil {
			continue
		}

		var data parsedAccountData
		if err := json.Unmarshal(account.Account.Data.GetRawJSON(), &data); err != nil {
			c.logger.WarnContext(ctx, "skipping unparseable token account",
				"account", account.Pubkey.String(),
				"error", err,
			)
			continue
		}

		info := data.Parsed.Info
		balance, err := strconv.ParseFloat(info.TokenAmount.UIAmountString, 64)
		if err != nil {
			balance = 0
		}
		if balance <= 0 {
			continue
		}

		balances = append(balances, TokenBalance{
			Mint:     info.Mint,
			Balance:  balance,
			Decimals: info.TokenAmount.Decimals,
		})
	}

	c.logger.DebugContext(ctx, "fetched token accounts",
		"wallet", wallet.String(),
		"total", len(result.Value),
		"held", len(balances),
	)

	return balances, nil
}

// parsedAccountData mirrors the jsonParsed encoding of an SPL token account.
type parsedAccountData struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			TokenAmount struct {
				UIAmountString string `json:"uiAmountString"`
				Decimals       int    `json:"decimals"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}
