package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "solfolio",
		Usage: "Solana wallet portfolio dashboard CLI",
		Description: `A command-line tool for querying the solfolio service.

Use this CLI to build wallet portfolios, inspect cost-basis ledgers,
compare two wallets, and look up market pairs for a token mint.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			// Portfolio query commands
			{
				Name:  "portfolio",
				Usage: "Portfolio query commands",
				Subcommands: []*cli.Command{
					portfolioGetCommand(),
					costBasisCommand(),
				},
			},
			compareCommand(),
			pairsCommand(),
			// Server utility commands
			{
				Name:  "server",
				Usage: "Server utility commands",
				Subcommands: []*cli.Command{
					healthCommand(),
					versionCommand(),
				},
			},
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "HTTP server URL",
				EnvVars: []string{"SOLFOLIO_SERVER_URL"},
				Value:   "http://localhost:8080",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "jq expression applied to the JSON output (implies --json)",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
