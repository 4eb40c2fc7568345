package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/aquatic-labs/solfolio/client"
	"github.com/aquatic-labs/solfolio/service/portfolio"
	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"
)

// newServiceClient builds an HTTP client for the configured server URL.
// Portfolio builds paginate upstream APIs, so the timeout is generous.
func newServiceClient(c *cli.Context) *client.Client {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only errors to stderr
	}))

	httpClient := &http.Client{
		Timeout: c.Duration("timeout"),
	}

	return client.NewClient(c.String("server"), httpClient, logger)
}

func timeoutFlag() cli.Flag {
	return &cli.DurationFlag{
		Name:    "timeout",
		Aliases: []string{"t"},
		Value:   2 * time.Minute,
		Usage:   "Request timeout (portfolio builds page through upstream APIs)",
	}
}

func portfolioGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Build and display the full portfolio for a wallet",
		ArgsUsage: "WALLET_ADDRESS",
		Flags:     []cli.Flag{timeoutFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}
			address := c.Args().Get(0)

			cl := newServiceClient(c)
			pf, err := cl.GetPortfolio(context.Background(), address)
			if err != nil {
				return fmt.Errorf("failed to get portfolio: %w", err)
			}

			if filter := c.String("filter"); filter != "" {
				return printFiltered(pf, filter)
			}
			if c.Bool("json") {
				return printJSON(pf)
			}

			printPortfolio(pf)
			return nil
		},
	}
}

func costBasisCommand() *cli.Command {
	return &cli.Command{
		Name:      "costbasis",
		Aliases:   []string{"cb"},
		Usage:     "Display the cost-basis ledger for a wallet",
		ArgsUsage: "WALLET_ADDRESS",
		Flags:     []cli.Flag{timeoutFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("wallet address is required")
			}
			address := c.Args().Get(0)

			cl := newServiceClient(c)
			result, err := cl.GetCostBasis(context.Background(), address)
			if err != nil {
				return fmt.Errorf("failed to get cost basis: %w", err)
			}

			if filter := c.String("filter"); filter != "" {
				return printFiltered(result, filter)
			}
			if c.Bool("json") {
				return printJSON(result)
			}

			printCostBasis(result)
			return nil
		},
	}
}

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "Build two wallets side by side (challenger gets reduced page budgets)",
		ArgsUsage: "BASE_ADDRESS CHALLENGER_ADDRESS",
		Flags:     []cli.Flag{timeoutFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("base and challenger wallet addresses are required")
			}
			base := c.Args().Get(0)
			challenger := c.Args().Get(1)

			cl := newServiceClient(c)
			comparison, err := cl.Compare(context.Background(), base, challenger)
			if err != nil {
				return fmt.Errorf("failed to compare wallets: %w", err)
			}

			if filter := c.String("filter"); filter != "" {
				return printFiltered(comparison, filter)
			}
			if c.Bool("json") {
				return printJSON(comparison)
			}

			fmt.Println("═══ Base ═══")
			printPortfolio(comparison.Base)
			fmt.Println()
			fmt.Println("═══ Challenger ═══")
			printPortfolio(comparison.Challenger)
			return nil
		},
	}
}

func pairsCommand() *cli.Command {
	return &cli.Command{
		Name:      "pairs",
		Usage:     "List market pairs for a token mint",
		ArgsUsage: "MINT_ADDRESS",
		Flags:     []cli.Flag{timeoutFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("mint address is required")
			}
			mint := c.Args().Get(0)

			cl := newServiceClient(c)
			result, err := cl.GetPairs(context.Background(), mint)
			if err != nil {
				return fmt.Errorf("failed to get pairs: %w", err)
			}

			if filter := c.String("filter"); filter != "" {
				return printFiltered(result, filter)
			}
			if c.Bool("json") {
				return printJSON(result)
			}

			fmt.Printf("Pairs for %s (%d found)\n", result.Mint, len(result.Pairs))
			for _, pair := range result.Pairs {
				fmt.Printf("  %-12s %-8s $%-14s liq $%.0f  %s\n",
					pair.DexID, pair.BaseToken.Symbol, pair.PriceUsd, pair.Liquidity.USD, pair.URL)
			}
			return nil
		},
	}
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// printFiltered runs a jq expression over v and prints every result.
// v is round-tripped through JSON so gojq sees plain maps and slices.
func printFiltered(v any, filter string) error {
	query, err := gojq.Parse(filter)
	if err != nil {
		return fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode output: %w", err)
	}

	iter := code.Run(doc)
	for {
		result, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := result.(error); isErr {
			return fmt.Errorf("jq filter error: %w", err)
		}
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal filter result: %w", err)
		}
		fmt.Println(string(data))
	}
	return nil
}

func printPortfolio(pf *portfolio.Portfolio) {
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Wallet:       %s\n", pf.Wallet)
	fmt.Printf("SOL Balance:  %.4f SOL", pf.SolBalance)
	if pf.SolPrice > 0 {
		fmt.Printf(" ($%.2f)", pf.SolBalance*pf.SolPrice)
	}
	fmt.Println()
	fmt.Printf("Total Value:  $%.2f\n", pf.Snapshot.TotalValue)
	fmt.Printf("Tokens:       %d (token value $%.2f, top %.1f%%, avg $%.2f)\n",
		pf.Snapshot.TokenCount, pf.Snapshot.TokenValue, pf.Snapshot.TopPct, pf.Snapshot.AvgValue)
	fmt.Printf("Net Realized: %.4f SOL\n", pf.NetRealizedSol)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	if len(pf.Holdings) == 0 {
		return
	}

	// Largest positions first
	holdings := make([]int, len(pf.Holdings))
	for i := range pf.Holdings {
		holdings[i] = i
	}
	sort.Slice(holdings, func(a, b int) bool {
		return pf.Holdings[holdings[a]].Value() > pf.Holdings[holdings[b]].Value()
	})

	fmt.Printf("%-10s %16s %14s %12s %14s\n", "TOKEN", "BALANCE", "VALUE", "24H", "UNREALIZED")
	for _, i := range holdings {
		h := pf.Holdings[i]
		symbol := h.Symbol
		if symbol == "" {
			symbol = h.Mint[:8] + "…"
		}
		var unrealized string
		if p, ok := pf.PnL[h.Mint]; ok {
			unrealized = fmt.Sprintf("%+.4f SOL", p.UnrealizedSol)
		}
		fmt.Printf("%-10s %16.4f %14s %11.2f%% %14s\n",
			symbol, h.Balance, fmt.Sprintf("$%.2f", h.Value()), h.PriceChange24h, unrealized)
	}
}

func printCostBasis(result *client.CostBasisResult) {
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Wallet:       %s\n", result.Wallet)
	fmt.Printf("Assets:       %d\n", len(result.CostBasis))
	fmt.Printf("Net Realized: %.4f SOL\n", result.NetRealizedSol)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	// Deterministic order for scanning and scripting
	mints := make([]string, 0, len(result.CostBasis))
	for mint := range result.CostBasis {
		mints = append(mints, mint)
	}
	sort.Strings(mints)

	for _, mint := range mints {
		ledger := result.CostBasis[mint]
		fmt.Printf("%s\n", mint)
		fmt.Printf("  spent %.4f SOL / received %.4f SOL\n", ledger.SolSpent, ledger.SolReceived)
		fmt.Printf("  bought %.4f / sold %.4f\n", ledger.Bought, ledger.Sold)
		fmt.Printf("  %d trades, %d transfers\n", len(ledger.Trades), len(ledger.Transfers))
	}
}
