package solana

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRPCClient implements RPCClient for testing.
// It's behavior-focused: we set what it should return, not verify call sequences.
type mockRPCClient struct {
	balance       uint64
	tokenAccounts *rpc.GetTokenAccountsResult
	err           error
}

func (m *mockRPCClient) GetBalance(
	ctx context.Context,
	account solana.PublicKey,
	commitment rpc.CommitmentType,
) (*rpc.GetBalanceResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &rpc.GetBalanceResult{Value: m.balance}, nil
}

func (m *mockRPCClient) GetTokenAccountsByOwner(
	ctx context.Context,
	owner solana.PublicKey,
	conf *rpc.GetTokenAccountsConfig,
	opts *rpc.GetTokenAccountsOpts,
) (*rpc.GetTokenAccountsResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tokenAccounts, nil
}

func newTestClient(mock *mockRPCClient) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(mock, nil, logger)
}

// tokenAccount builds a jsonParsed token account fixture.
func tokenAccount(t *testing.T, mint, uiAmount string, decimals int) *rpc.TokenAccount {
	t.Helper()

	raw := map[string]any{
		"parsed": map[string]any{
			"info": map[string]any{
				"mint": mint,
				"tokenAmount": map[string]any{
					"uiAmountString": uiAmount,
					"decimals":       decimals,
				},
			},
			"type": "account",
		},
		"program": "spl-token",
	}
	data, err := json.Marshal(raw)
	require.NoError(t, err)

	var dataField rpc.DataBytesOrJSON
	require.NoError(t, json.Unmarshal(data, &dataField))

	return &rpc.TokenAccount{
		Account: rpc.Account{Data: &dataField},
	}
}

func TestGetSolBalance(t *testing.T) {
	ctx := context.Background()

	mock := &mockRPCClient{balance: 2_500_000_000} // 2.5 SOL in lamports
	client := newTestClient(mock)
	wallet := solana.MustPublicKeyFromBase58("11111111111111111111111111111111")

	balance, err := client.GetSolBalance(ctx, wallet)

	require.NoError(t, err)
	assert.InDelta(t, 2.5, balance, 1e-12)
}

func TestGetSolBalance_RPCError(t *testing.T) {
	ctx := context.Background()

	mock := &mockRPCClient{err: assert.AnError}
	client := newTestClient(mock)
	wallet := solana.MustPublicKeyFromBase58("11111111111111111111111111111111")

	_, err := client.GetSolBalance(ctx, wallet)

	require.Error(t, err)
}

func TestGetTokenAccounts(t *testing.T) {
	ctx := context.Background()

	mock := &mockRPCClient{
		tokenAccounts: &rpc.GetTokenAccountsResult{
			Value: []*rpc.TokenAccount{
				tokenAccount(t, "MintAAA", "1000.5", 6),
				tokenAccount(t, "MintBBB", "42", 9),
			},
		},
	}
	client := newTestClient(mock)
	wallet := solana.MustPublicKeyFromBase58("11111111111111111111111111111111")

	balances, err := client.GetTokenAccounts(ctx, wallet)

	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "MintAAA", balances[0].Mint)
	assert.InDelta(t, 1000.5, balances[0].Balance, 1e-12)
	assert.Equal(t, 6, balances[0].Decimals)
	assert.Equal(t, "MintBBB", balances[1].Mint)
	assert.InDelta(t, 42.0, balances[1].Balance, 1e-12)
}

func TestGetTokenAccounts_FiltersZeroBalances(t *testing.T) {
	ctx := context.Background()

	mock := &mockRPCClient{
		tokenAccounts: &rpc.GetTokenAccountsResult{
			Value: []*rpc.TokenAccount{
				tokenAccount(t, "MintAAA", "0", 6),
				tokenAccount(t, "MintBBB", "7.5", 6),
			},
		},
	}
	client := newTestClient(mock)
	wallet := solana.MustPublicKeyFromBase58("11111111111111111111111111111111")

	balances, err := client.GetTokenAccounts(ctx, wallet)

	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "MintBBB", balances[0].Mint)
}

func TestGetTokenAccounts_RPCError(t *testing.T) {
	ctx := context.Background()

	mock := &mockRPCClient{err: assert.AnError}
	client := newTestClient(mock)
	wallet := solana.MustPublicKeyFromBase58("11111111111111111111111111111111")

	balances, err := client.GetTokenAccounts(ctx, wallet)

	require.Error(t, err)
	assert.Nil(t, balances)
}

func TestGetTokenAccounts_Empty(t *testing.T) {
	ctx := context.Background()

	mock := &mockRPCClient{
		tokenAccounts: &rpc.GetTokenAccountsResult{Value: []*rpc.TokenAccount{}},
	}
	client := newTestClient(mock)
	wallet := solana.MustPublicKeyFromBase58("11111111111111111111111111111111")

	balances, err := client.GetTokenAccounts(ctx, wallet)

	require.NoError(t, err)
	assert.Empty(t, balances)
}
