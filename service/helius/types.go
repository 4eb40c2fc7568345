package helius

// TxnType selects which semantic class of transactions to fetch.
type TxnType string

const (
	TxnTypeSwap     TxnType = "SWAP"
	TxnTypeTransfer TxnType = "TRANSFER"
)

// Transaction is one enhanced transaction from the Helius API.
// Field names follow the Helius wire format; only the fields the
// cost-basis pipeline consumes are decoded.
type Transaction struct {
	Signature       string           `json:"signature"`
	Timestamp       int64            `json:"timestamp"`
	NativeTransfers []NativeTransfer `json:"nativeTransfers"`
	TokenTransfers  []TokenTransfer  `json:"tokenTransfers"`
}

// NativeTransfer is a movement of native SOL within a transaction.
// Amount is in lamports.
type NativeTransfer struct {
	From   string `json:"fromUserAccount"`
	To     string `json:"toUserAccount"`
	Amount int64  `json:"amount"`
}

// TokenTransfer is a movement of an SPL token within a transaction.
// TokenAmount is already adjusted for the token's decimals.
type TokenTransfer struct {
	Mint        string  `json:"mint"`
	From        string  `json:"fromUserAccount"`
	To          string  `json:"toUserAccount"`
	TokenAmount float64 `json:"tokenAmount"`
}
