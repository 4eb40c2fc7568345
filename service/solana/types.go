package solana

// TokenBalance is one held SPL token account for a wallet.
// Balance is the UI amount already adjusted for the token's decimals.
type TokenBalance struct {
	Mint     string  `json:"mint"`
	Balance  float64 `json:"balance"`
	Decimals int     `json:"decimals"`
}
