package pnl

// PnL holds the derived profit-and-loss figures for one asset,
// denominated in SOL.
type PnL struct {
	CostBasisSol  float64 `json:"costBasisSol"`
	UnrealizedSol float64 `json:"unrealizedSol"`
	RealizedSol   float64 `json:"realizedSol"`
	TotalSol      float64 `json:"totalSol"`
}

// Derive computes PnL for an asset from its ledger, current holdings,
// and the current SOL-denominated unit price.
//
/// The cost basis extrapolates from cumulative acquisitions: current
// holdings divided by total bought, times total SOL spent. This is an
// average-cost approximation, not FIFO/LIFO; it stays anchored to the
// bought total even after partial sells. Downstream comparison logic
// depends on this exact formula.
func Derive(ledger *Ledger, balance, priceNative float64) PnL {
	if ledger == nil {
		return PnL{UnrealizedSol: balance * priceNative, TotalSol: balance * priceNative}
	}

	bought := ledger.Bought
	if bought < 1 {
		bought = 1
	}

	costBasis := (balance / bought) * ledger.SolSpent
	unrealized := balance*priceNative - costBasis
	realized := ledger.SolReceived - (ledger.Sold/bought)*ledger.SolSpent

	return PnL{
		CostBasisSol:  costBasis,
		UnrealizedSol: unrealized,
		RealizedSol:   realized,
		TotalSol:      unrealized + realized,
	}
}
