package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"unicode"

	"github.com/aquatic-labs/solfolio/service/dexscreener"
	"github.com/aquatic-labs/solfolio/service/portfolio"
)

const (
	maxAddressLength = 100 // Solana addresses are 44 chars, give buffer
)

var (
	// Valid Solana address characters: base58 (no 0, O, I, l)
	validAddressRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`)
)

// PortfolioService is the portfolio pipeline surface the handlers need.
// This allows us to stub the whole pipeline in tests.
type PortfolioService interface {
	LoadPrimary(ctx context.Context, wallet string) (*portfolio.Portfolio, error)
	Compare(ctx context.Context, base, challenger string) (*portfolio.Comparison, error)
}

// PairLister lists market pairs for one mint.
type PairLister interface {
	Pairs(ctx context.Context, mint string) []dexscreener.Pair
}

// handleGetPortfolio returns a handler that builds the full portfolio for a wallet.
// GET /api/v1/portfolio/{address}
func handleGetPortfolio(svc PortfolioService, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address := r.PathValue("address")

		if err := validateAddress(address); err != nil {
			logger.Debug("invalid address", "address", address, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		pf, err := svc.LoadPrimary(r.Context(), address)
		if err != nil {
			logger.Error("failed to build portfolio", "address", address, "error", err)
			writeError(w, "failed to build portfolio", http.StatusBadGateway)
			return
		}

		writeJSON(w, pf, http.StatusOK)
	})
}

// handleGetCostBasis returns a handler that serves only the cost-basis ledger.
// GET /api/v1/portfolio/{address}/costbasis
func handleGetCostBasis(svc PortfolioService, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address := r.PathValue("address")

		if err := validateAddress(address); err != nil {
			logger.Debug("invalid address", "address", address, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		pf, err := svc.LoadPrimary(r.Context(), address)
		if err != nil {
			logger.Error("failed to build cost basis", "address", address, "error", err)
			writeError(w, "failed to build cost basis", http.StatusBadGateway)
			return
		}

		writeJSON(w, map[string]any{
			"wallet":         pf.Wallet,
			"costBasis":      pf.CostBasis,
			"netRealizedSol": pf.NetRealizedSol,
		}, http.StatusOK)
	})
}

// handleCompare returns a handler that builds two wallets concurrently.
// GET /api/v1/compare?base={address}&challenger={address}
func handleCompare(svc PortfolioService, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := r.URL.Query().Get("base")
		challenger := r.URL.Query().Get("challenger")

		if err := validateAddress(base); err != nil {
			writeError(w, fmt.Sprintf("base: %v", err), http.StatusBadRequest)
			return
		}
		if err := validateAddress(challenger); err != nil {
			writeError(w, fmt.Sprintf("challenger: %v", err), http.StatusBadRequest)
			return
		}
		if base == challenger {
			writeError(w, "base and challenger must differ", http.StatusBadRequest)
			return
		}

		comparison, err := svc.Compare(r.Context(), base, challenger)
		if err != nil {
			logger.Error("failed to compare wallets", "base", base, "challenger", challenger, "error", err)
			writeError(w, "failed to compare wallets", http.StatusBadGateway)
			return
		}

		writeJSON(w, comparison, http.StatusOK)
	})
}

// handleGetPairs returns a handler that lists market pairs for a mint.
// GET /api/v1/pairs/{mint}
func handleGetPairs(pairs PairLister, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mint := r.PathValue("mint")

		if err := validateAddress(mint); err != nil {
			logger.Debug("invalid mint", "mint", mint, "error", err)
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		result := pairs.Pairs(r.Context(), mint)

		writeJSON(w, map[string]any{
			"mint":  mint,
			"pairs": result,
		}, http.StatusOK)
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// validateAddress validates a wallet or mint address for format and safety.
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("address is required")
	}

	if len(address) > maxAddressLength {
		return fmt.Errorf("address too long: maximum length is %d characters", maxAddressLength)
	}

	// Check for null bytes and control characters
	for _, r := range address {
		if r == 0 || unicode.IsControl(r) {
			return fmt.Errorf("invalid characters in address: control characters not allowed")
		}
	}

	if !validAddressRegex.MatchString(address) {
		return fmt.Errorf("invalid address format: must contain only valid base58 characters")
	}

	return nil
}
