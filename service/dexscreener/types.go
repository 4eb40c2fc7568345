package dexscreener

import "encoding/json"

// Pair is one DexScreener trading pair record for a token.
// Price fields arrive as decimal strings on the wire.
type Pair struct {
	BaseToken   BaseToken            `json:"baseToken"`
	PriceUsd    string               `json:"priceUsd"`
	PriceNative string               `json:"priceNative"`
	PriceChange PriceChange          `json:"priceChange"`
	Volume      Volume               `json:"volume"`
	Liquidity   Liquidity            `json:"liquidity"`
	MarketCap   float64              `json:"marketCap"`
	FDV         float64              `json:"fdv"`
	Info        PairInfo             `json:"info"`
	URL         string               `json:"url"`
	DexID       string               `json:"dexId"`
	Txns        map[string]TxnWindow `json:"txns"`
}

// BaseToken identifies the token side of a pair.
type BaseToken struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
}

// PriceChange holds percentage price changes per window.
type PriceChange struct {
	H24 float64 `json:"h24"`
}

// Volume holds traded volume per window.
type Volume struct {
	H24 float64 `json:"h24"`
}

// Liquidity holds pooled liquidity figures.
type Liquidity struct {
	USD float64 `json:"usd"`
}

// PairInfo carries presentation metadata.
type PairInfo struct {
	ImageURL string `json:"imageUrl"`
}

// TxnWindow counts buys and sells within a time window.
type TxnWindow struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// decodePairs handles both response shapes DexScreener uses:
// a bare array, or an object with a "pairs" field.
func decodePairs(data []byte) ([]Pair, error) {
	var pairs []Pair
	if err := json.Unmarshal(data, &pairs); err == nil {
		return pairs, nil
	}

	var wrapped struct {
		Pairs []Pair `json:"pairs"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Pairs, nil
}
