package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aquatic-labs/solfolio/service/dexscreener"
	"github.com/aquatic-labs/solfolio/service/pnl"
	"github.com/aquatic-labs/solfolio/service/portfolio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWallet  = "4Nd1mYvhzFYYkzp2t1yBtnLE6uk8p6hr2RqY9oPqkTBP"
	otherWallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
)

type stubPortfolioService struct {
	portfolio  *portfolio.Portfolio
	comparison *portfolio.Comparison
	err        error
}

func (s *stubPortfolioService) LoadPrimary(ctx context.Context, wallet string) (*portfolio.Portfolio, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.portfolio, nil
}

func (s *stubPortfolioService) Compare(ctx context.Context, base, challenger string) (*portfolio.Comparison, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.comparison, nil
}

type stubPairLister struct {
	pairs []dexscreener.Pair
}

func (s *stubPairLister) Pairs(ctx context.Context, mint string) []dexscreener.Pair {
	return s.pairs
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleGetPortfolio(t *testing.T) {
	svc := &stubPortfolioService{
		portfolio: &portfolio.Portfolio{
			Wallet:     testWallet,
			SolBalance: 2.5,
			Snapshot:   pnl.Snapshot{TotalValue: 100},
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/portfolio/"+testWallet, nil)
	req.SetPathValue("address", testWallet)
	rec := httptest.NewRecorder()

	handleGetPortfolio(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got portfolio.Portfolio
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, testWallet, got.Wallet)
	assert.Equal(t, 2.5, got.SolBalance)
	assert.Equal(t, 100.0, got.Snapshot.TotalValue)
}

func TestHandleGetPortfolio_InvalidAddress(t *testing.T) {
	svc := &stubPortfolioService{}

	req := httptest.NewRequest("GET", "/api/v1/portfolio/bad!address", nil)
	req.SetPathValue("address", "bad!address")
	rec := httptest.NewRecorder()

	handleGetPortfolio(svc, testLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetPortfolio_UpstreamError(t *testing.T) {
	svc := &stubPortfolioService{err: assert.AnError}

	req := httptest.NewRequest("GET", "/api/v1/portfolio/"+testWallet, nil)
	req.SetPathValue("address", testWallet)
	rec := httptest.NewRecorder()

	handleGetPortfolio(svc, testLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleGetCostBasis(t *testing.T) {
	svc := &stubPortfolioService{
		portfolio: &portfolio.Portfolio{
			Wallet: testWallet,
			CostBasis: pnl.CostBasis{
				"MintX": &pnl.Ledger{SolSpent: 1.5, Bought: 100},
			},
			NetRealizedSol: -1.5,
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/portfolio/"+testWallet+"/costbasis", nil)
	req.SetPathValue("address", testWallet)
	rec := httptest.NewRecorder()

	handleGetCostBasis(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Wallet         string        `json:"wallet"`
		CostBasis      pnl.CostBasis `json:"costBasis"`
		NetRealizedSol float64       `json:"netRealizedSol"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, testWallet, got.Wallet)
	require.Contains(t, got.CostBasis, "MintX")
	assert.Equal(t, 1.5, got.CostBasis["MintX"].SolSpent)
	assert.Equal(t, -1.5, got.NetRealizedSol)
}

func TestHandleCompare(t *testing.T) {
	svc := &stubPortfolioService{
		comparison: &portfolio.Comparison{
			Base:       &portfolio.Portfolio{Wallet: testWallet},
			Challenger: &portfolio.Portfolio{Wallet: otherWallet},
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/compare?base="+testWallet+"&challenger="+otherWallet, nil)
	rec := httptest.NewRecorder()

	handleCompare(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got portfolio.Comparison
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, testWallet, got.Base.Wallet)
	assert.Equal(t, otherWallet, got.Challenger.Wallet)
}

func TestHandleCompare_MissingChallenger(t *testing.T) {
	svc := &stubPortfolioService{}

	req := httptest.NewRequest("GET", "/api/v1/compare?base="+testWallet, nil)
	rec := httptest.NewRecorder()

	handleCompare(svc, testLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCompare_SameWallet(t *testing.T) {
	svc := &stubPortfolioService{}

	req := httptest.NewRequest("GET", "/api/v1/compare?base="+testWallet+"&challenger="+testWallet, nil)
	rec := httptest.NewRecorder()

	handleCompare(svc, testLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetPairs(t *testing.T) {
	lister := &stubPairLister{
		pairs: []dexscreener.Pair{
			{BaseToken: dexscreener.BaseToken{Address: "MintX", Symbol: "X"}},
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/pairs/MintX", nil)
	req.SetPathValue("mint", "MintX")
	rec := httptest.NewRecorder()

	handleGetPairs(lister, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Mint  string             `json:"mint"`
		Pairs []dexscreener.Pair `json:"pairs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "MintX", got.Mint)
	require.Len(t, got.Pairs, 1)
	assert.Equal(t, "X", got.Pairs[0].BaseToken.Symbol)
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"valid", testWallet, false},
		{"empty", "", true},
		{"invalid base58 chars", "0OIl", true},
		{"control characters", "abc\x00def", true},
		{"too long", strings.Repeat("1", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAddress(tt.address)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("OPTIONS", "/api/v1/portfolio/abc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
