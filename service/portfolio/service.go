package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aquatic-labs/solfolio/service/dexscreener"
	"github.com/aquatic-labs/solfolio/service/helius"
	"github.com/aquatic-labs/solfolio/service/metrics"
	"github.com/aquatic-labs/solfolio/service/pnl"
	"github.com/aquatic-labs/solfolio/service/solana"
	solanago "github.com/gagliardetto/solana-go"
)

// ChainClient is the subset of the Solana client used by the pipeline.
type ChainClient interface {
	GetSolBalance(ctx context.Context, wallet solanago.PublicKey) (float64, error)
	GetTokenAccounts(ctx context.Context, wallet solanago.PublicKey) ([]solana.TokenBalance, error)
}

// TransactionFetcher is the subset of the Helius client used by the pipeline.
type TransactionFetcher interface {
	FetchTransactions(ctx context.Context, wallet string, txnType helius.TxnType, maxPages int) []helius.Transaction
}

// MarketClient is the subset of the DexScreener client used by the pipeline.
type MarketClient interface {
	Tokens(ctx context.Context, mints []string) []dexscreener.Pair
	SolPrice(ctx context.Context) float64
}

// Budgets bounds how many transaction pages a pipeline run may fetch.
type Budgets struct {
	SwapPages     int
	TransferPages int
}

// Portfolio is the full display-ready state for one wallet.
type Portfolio struct {
	Wallet         string             `json:"wallet"`
	SolBalance     float64            `json:"solBalance"`
	SolPrice       float64            `json:"solPrice"`
	Holdings       []pnl.Holding      `json:"holdings"`
	CostBasis      pnl.CostBasis      `json:"costBasis"`
	PnL            map[string]pnl.PnL `json:"pnl"`
	Snapshot       pnl.Snapshot       `json:"snapshot"`
	NetRealizedSol float64            `json:"netRealizedSol"`
}

// Comparison holds two independently built wallet summaries.
type Comparison struct {
	Base       *Portfolio `json:"base"`
	Challenger *Portfolio `json:"challenger"`
}

// Service composes the chain, transaction and market clients into
// per-wallet portfolio builds. Each build works on its own local
// accumulator; concurrent builds share nothing.
type Service struct {
	chain            ChainClient
	txns             TransactionFetcher
	market           MarketClient
	primaryBudgets   Budgets
	challengerBudget Budgets
	logger           *slog.Logger
	metrics          *metrics.Metrics
}

// NewService creates a portfolio service.
// If m is nil, no metrics will be recorded.
func NewService(chain ChainClient, txns TransactionFetcher, market MarketClient, primary, challenger Budgets, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		chain:            chain,
		txns:             txns,
		market:           market,
		primaryBudgets:   primary,
		challengerBudget: challenger,
		logger:           logger,
		metrics:          m,
	}
}

// Load builds the full portfolio for one wallet.
//
// Balance, SOL price and transaction history are fetched concurrently;
// market data follows once the held mints are known. Transaction history
// is best-effort (empty when Helius is unavailable), while RPC failures
// are real errors since nothing can be rendered without balances.
func (s *Service) Load(ctx context.Context, wallet string, budgets Budgets) (*Portfolio, error) {
	pubkey, err := solanago.PublicKeyFromBase58(wallet)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address %q: %w", wallet, err)
	}

	start := time.Now()

	var (
		wg         sync.WaitGroup
		solBalance float64
		balanceErr error
		accounts   []solana.TokenBalance
		accountErr error
		solPrice   float64
		swaps      []helius.Transaction
		transfers  []helius.Transaction
	)

	wg.Add(5)
	go func() {
		defer wg.Done()
		solBalance, balanceErr = s.chain.GetSolBalance(ctx, pubkey)
	}()
	go func() {
		defer wg.Done()
		accounts, accountErr = s.chain.GetTokenAccounts(ctx, pubkey)
	}()
	go func() {
		defer wg.Done()
		solPrice = s.market.SolPrice(ctx)
	}()
	go func() {
		defer wg.Done()
		swaps = s.txns.FetchTransactions(ctx, wallet, helius.TxnTypeSwap, budgets.SwapPages)
	}()
	go func() {
		defer wg.Done()
		transfers = s.txns.FetchTransactions(ctx, wallet, helius.TxnTypeTransfer, budgets.TransferPages)
	}()
	wg.Wait()

	if balanceErr != nil {
		return nil, fmt.Errorf("failed to load balance: %w", balanceErr)
	}
	if accountErr != nil {
		return nil, fmt.Errorf("failed to load token accounts: %w", accountErr)
	}

	mints := make([]string, len(accounts))
	for i, account := range accounts {
		mints[i] = account.Mint
	}
	pairs := s.market.Tokens(ctx, mints)

	holdings := pnl.EnrichTokens(accounts, pairs)
	costBasis := pnl.BuildCostBasis(swaps, transfers, wallet)

	perAsset := make(map[string]pnl.PnL, len(holdings))
	for _, holding := range holdings {
		perAsset[holding.Mint] = pnl.Derive(costBasis[holding.Mint], holding.Balance, holding.PriceNative)
	}

	portfolio := &Portfolio{
		Wallet:         wallet,
		SolBalance:     solBalance,
		SolPrice:       solPrice,
		Holdings:       holdings,
		CostBasis:      costBasis,
		PnL:            perAsset,
		Snapshot:       pnl.BuildSnapshot(holdings, solBalance, solPrice),
		NetRealizedSol: costBasis.NetRealizedSol(),
	}

	kind := "primary"
	if budgets == s.challengerBudget {
		kind = "challenger"
	}
	if s.metrics != nil {
		s.metrics.RecordPortfolioBuild(kind, time.Since(start).Seconds(), len(costBasis))
	}

	s.logger.InfoContext(ctx, "built portfolio",
		"wallet", wallet,
		"holdings", len(holdings),
		"ledger_assets", len(costBasis),
		"swaps", len(swaps),
		"transfers", len(transfers),
		"duration", time.Since(start),
	)

	return portfolio, nil
}

// LoadPrimary builds a portfolio with the primary page budgets.
func (s *Service) LoadPrimary(ctx context.Context, wallet string) (*Portfolio, error) {
	return s.Load(ctx, wallet, s.primaryBudgets)
}

// Compare builds the base wallet with primary budgets and the challenger
// with the smaller challenger budgets, concurrently. The two pipelines
// only meet here, at the join.
func (s *Service) Compare(ctx context.Context, base, challenger string) (*Comparison, error) {
	var (
		wg            sync.WaitGroup
		basePf        *Portfolio
		baseErr       error
		challengerPf  *Portfolio
		challengerErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		basePf, baseErr = s.Load(ctx, base, s.primaryBudgets)
	}()
	go func() {
		defer wg.Done()
		challengerPf, challengerErr = s.Load(ctx, challenger, s.challengerBudget)
	}()
	wg.Wait()

	if baseErr != nil {
		return nil, fmt.Errorf("failed to load base wallet: %w", baseErr)
	}
	if challengerErr != nil {
		return nil, fmt.Errorf("failed to load challenger wallet: %w", challengerErr)
	}

	return &Comparison{Base: basePf, Challenger: challengerPf}, nil
}
