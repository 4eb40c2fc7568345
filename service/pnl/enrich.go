package pnl

import (
	"strconv"

	"github.com/aquatic-labs/solfolio/service/dexscreener"
	"github.com/aquatic-labs/solfolio/service/solana"
	"github.com/samber/lo"
)

// Holding is a held token joined with its best market-data record.
// Tokens without market data keep zero prices but are still held.
type Holding struct {
	Mint           string                           `json:"mint"`
	Balance        float64                          `json:"balance"`
	Decimals       int                              `json:"decimals"`
	Symbol         string                           `json:"symbol,omitempty"`
	Name           string                           `json:"name,omitempty"`
	PriceUsd       float64                          `json:"priceUsd"`
	PriceNative    float64                          `json:"priceNative"`
	PriceChange24h float64                          `json:"priceChange24h"`
	Volume24h      float64                          `json:"volume24h"`
	Liquidity      float64                          `json:"liquidity"`
	MarketCap      float64                          `json:"marketCap"`
	ImageURL       string                           `json:"imageUrl,omitempty"`
	PairURL        string                           `json:"pairUrl,omitempty"`
	DexID          string                           `json:"dexId,omitempty"`
	Txns           map[string]dexscreener.TxnWindow `json:"txns,omitempty"`
}

// Value is the holding's current USD value.
func (h Holding) Value() float64 {
	return h.Balance * h.PriceUsd
}

// Snapshot is a display-ready aggregate over one wallet's holdings,
// rebuilt in full on every call.
type Snapshot struct {
	TotalValue float64 `json:"totalValue"` // token value + SOL value, USD
	SolBalance float64 `json:"solBalance"`
	TokenCount int     `json:"tokenCount"`
	TokenValue float64 `json:"tokenValue"`
	TopPct     float64 `json:"topPct"` // largest holding's share of token value, percent
	AvgValue   float64 `json:"avgValue"`
}

// EnrichTokens joins each held token to the market-data record with the
// highest liquidity among all records for its mint. Tokens with no
// matching record are retained unpriced.
func EnrichTokens(accounts []solana.TokenBalance, pairs []dexscreener.Pair) []Holding {
	return lo.Map(accounts, func(account solana.TokenBalance, _ int) Holding {
		holding := Holding{
			Mint:     account.Mint,
			Balance:  account.Balance,
			Decimals: account.Decimals,
		}

		matches := lo.Filter(pairs, func(pair dexscreener.Pair, _ int) bool {
			return pair.BaseToken.Address == account.Mint
		})
		if len(matches) == 0 {
			return holding
		}

		best := lo.MaxBy(matches, func(a, b dexscreener.Pair) bool {
			return a.Liquidity.USD > b.Liquidity.USD
		})

		holding.Symbol = best.BaseToken.Symbol
		holding.Name = best.BaseToken.Name
		holding.PriceUsd = parsePrice(best.PriceUsd)
		holding.PriceNative = parsePrice(best.PriceNative)
		holding.PriceChange24h = best.PriceChange.H24
		holding.Volume24h = best.Volume.H24
		holding.Liquidity = best.Liquidity.USD
		holding.MarketCap = best.MarketCap
		if holding.MarketCap == 0 {
			holding.MarketCap = best.FDV
		}
		holding.ImageURL = best.Info.ImageURL
		holding.PairURL = best.URL
		holding.DexID = best.DexID
		holding.Txns = best.Txns

		return holding
	})
}

// BuildSnapshot aggregates enriched holdings into a wallet snapshot.
func BuildSnapshot(holdings []Holding, solBalance, solPrice float64) Snapshot {
	tokenValue := lo.SumBy(holdings, Holding.Value)
	solValue := solBalance * solPrice

	var topPct float64
	if tokenValue > 0 && len(holdings) > 0 {
		top := lo.MaxBy(holdings, func(a, b Holding) bool {
			return a.Value() > b.Value()
		})
		topPct = top.Value() / tokenValue * 100
	}

	var avgValue float64
	if len(holdings) > 0 {
		avgValue = tokenValue / float64(len(holdings))
	}

	return Snapshot{
		TotalValue: tokenValue + solValue,
		SolBalance: solBalance,
		TokenCount: len(holdings),
		TokenValue: tokenValue,
		TopPct:     topPct,
		AvgValue:   avgValue,
	}
}

// parsePrice converts a DexScreener decimal price string; empty or
// malformed strings read as zero.
func parsePrice(s string) float64 {
	if s == "" {
		return 0
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return price
}
