package pnl

import (
	"github.com/aquatic-labs/solfolio/service/helius"
)

const (
	// lamportsPerSol converts native transfer amounts to whole SOL.
	lamportsPerSol = 1_000_000_000

	// WrappedSolMint is SOL itself when it shows up as a token transfer.
	// It is the unit of account, never a tracked asset: it contributes to
	// the SOL flow of a swap but never gets its own ledger entry.
	WrappedSolMint = "So11111111111111111111111111111111111111112"
)

// TradeSide classifies a swap leg relative to the wallet.
type TradeSide string

const (
	TradeBuy  TradeSide = "BUY"
	TradeSell TradeSide = "SELL"
)

// TransferDirection classifies a plain token transfer relative to the wallet.
type TransferDirection string

const (
	TransferIn  TransferDirection = "IN"
	TransferOut TransferDirection = "OUT"
)

// Trade is one recorded swap leg for an asset. Sol carries the whole
// transaction's native flow at the time the leg was processed, not a
// per-leg split.
type Trade struct {
	Side      TradeSide `json:"type"`
	Amount    float64   `json:"amount"`
	Sol       float64   `json:"sol"`
	Timestamp int64     `json:"timestamp"`
	Signature string    `json:"signature"`
}

// Transfer is one recorded non-swap token movement. Informational only:
// transfers never touch the cost-basis totals.
type Transfer struct {
	Direction TransferDirection `json:"type"`
	Amount    float64           `json:"amount"`
	Timestamp int64             `json:"timestamp"`
	Signature string            `json:"signature"`
}

// Ledger is the per-asset running cost-basis state. All totals are
// cumulative and only ever grow within a build.
type Ledger struct {
	SolSpent    float64    `json:"solSpent"`
	SolReceived float64    `json:"solReceived"`
	Bought      float64    `json:"bought"`
	Sold        float64    `json:"sold"`
	Trades      []Trade    `json:"trades"`
	Transfers   []Transfer `json:"transfers"`
}

// CostBasis maps asset mint to its ledger entry.
type CostBasis map[string]*Ledger

// NetRealizedSol is the wallet-wide realized SOL flow: total received
// from disposals minus total spent on acquisitions.
func (cb CostBasis) NetRealizedSol() float64 {
	var net float64
	for _, ledger := range cb {
		net += ledger.SolReceived - ledger.SolSpent
	}
	return net
}

// BuildCostBasis reconstructs per-asset cost basis from a wallet's swap
// and transfer history. Swaps are processed first, in the order supplied,
// and feed the SolSpent/SolReceived/Bought/Sold totals; transfers only
// append informational records.
//
// The SOL movement of a swap is computed once for the whole transaction
// and attributed in full to every qualifying token leg. A swap that moves
// two tokens in the same direction therefore counts its SOL flow twice.
// That matches the accounting the rest of the pipeline is built around;
// do not apportion it per leg.
//
// BuildCostBasis performs no I/O and never fails: malformed entries
// (missing mint, non-positive amount) are skipped.
func BuildCostBasis(swapTxns, transferTxns []helius.Transaction, wallet string) CostBasis {
	data := make(CostBasis)

	ensure := func(mint string) *Ledger {
		ledger, ok := data[mint]
		if !ok {
			ledger = &Ledger{
				Trades:    []Trade{},
				Transfers: []Transfer{},
			}
			data[mint] = ledger
		}
		return ledger
	}

	for _, tx := range swapTxns {
		if len(tx.TokenTransfers) == 0 {
			continue
		}

		// Transaction-level SOL flow for the wallet, from both the native
		// transfer list and any wrapped-SOL token legs.
		var solOut, solIn float64
		for _, nt := range tx.NativeTransfers {
			if nt.From == wallet {
				solOut += float64(nt.Amount) / lamportsPerSol
			}
			if nt.To == wallet {
				solIn += float64(nt.Amount) / lamportsPerSol
			}
		}
		for _, tt := range tx.TokenTransfers {
			if tt.Mint == WrappedSolMint {
				if tt.From == wallet {
					solOut += tt.TokenAmount
				}
				if tt.To == wallet {
					solIn += tt.TokenAmount
				}
			}
		}

		for _, tt := range tx.TokenTransfers {
			if tt.Mint == "" || tt.Mint == WrappedSolMint {
				continue
			}
			if tt.TokenAmount <= 0 {
				continue
			}

			switch {
			case tt.To == wallet:
				ledger := ensure(tt.Mint)
				ledger.Bought += tt.TokenAmount
				ledger.SolSpent += solOut
				ledger.Trades = append(ledger.Trades, Trade{
					Side:      TradeBuy,
					Amount:    tt.TokenAmount,
					Sol:       solOut,
					Timestamp: tx.Timestamp,
					Signature: tx.Signature,
				})
			case tt.From == wallet:
				ledger := ensure(tt.Mint)
				ledger.Sold += tt.TokenAmount
				ledger.SolReceived += solIn
				ledger.Trades = append(ledger.Trades, Trade{
					Side:      TradeSell,
					Amount:    tt.TokenAmount,
					Sol:       solIn,
					Timestamp: tx.Timestamp,
					Signature: tx.Signature,
				})
			}
		}
	}

	for _, tx := range transferTxns {
		for _, tt := range tx.TokenTransfers {
			if tt.Mint == "" || tt.Mint == WrappedSolMint {
				continue
			}
			if tt.TokenAmount <= 0 {
				continue
			}

			switch {
			case tt.To == wallet:
				ledger := ensure(tt.Mint)
				ledger.Transfers = append(ledger.Transfers, Transfer{
					Direction: TransferIn,
					Amount:    tt.TokenAmount,
					Timestamp: tx.Timestamp,
					Signature: tx.Signature,
				})
			case tt.From == wallet:
				ledger := ensure(tt.Mint)
				ledger.Transfers = append(ledger.Transfers, Transfer{
					Direction: TransferOut,
					Amount:    tt.TokenAmount,
					Timestamp: tx.Timestamp,
					Signature: tx.Signature,
				})
			}
		}
	}

	return data
}
