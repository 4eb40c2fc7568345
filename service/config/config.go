package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string

	// Solana RPC configuration
	SolanaRPCURL string

	// Helius enhanced transactions configuration.
	// The API key is optional: without it the transaction history feature is
	// unavailable and fetches return empty results (never an error).
	HeliusAPIURL string
	HeliusAPIKey string

	// DexScreener configuration
	DexScreenerURL string

	// Pagination budgets for the primary wallet
	SwapPageBudget     int
	TransferPageBudget int

	// Smaller budgets for the comparison wallet to bound latency
	CompareSwapPageBudget     int
	CompareTransferPageBudget int

	// Upstream pacing
	PageDelay  time.Duration // between Helius transaction pages
	BatchDelay time.Duration // between DexScreener token batches
}

// Load reads configuration from environment variables and validates all required fields.
// Returns an error if any required configuration is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	// Server configuration
	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Solana RPC configuration
	cfg.SolanaRPCURL = os.Getenv("SOLANA_RPC_URL")
	if cfg.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SOLANA_RPC_URL is required"))
	}

	// Helius configuration (key optional, see Config docs)
	cfg.HeliusAPIURL = getEnvOrDefault("HELIUS_API_URL", "https://api.helius.xyz/v0")
	cfg.HeliusAPIKey = os.Getenv("HELIUS_API_KEY")

	// DexScreener configuration
	cfg.DexScreenerURL = getEnvOrDefault("DEXSCREENER_URL", "https://api.dexscreener.com")

	// Pagination budgets
	var err error
	if cfg.SwapPageBudget, err = parseInt("SWAP_PAGE_BUDGET", 8); err != nil {
		errs = append(errs, err)
	}
	if cfg.TransferPageBudget, err = parseInt("TRANSFER_PAGE_BUDGET", 4); err != nil {
		errs = append(errs, err)
	}
	if cfg.CompareSwapPageBudget, err = parseInt("COMPARE_SWAP_PAGE_BUDGET", 4); err != nil {
		errs = append(errs, err)
	}
	if cfg.CompareTransferPageBudget, err = parseInt("COMPARE_TRANSFER_PAGE_BUDGET", 2); err != nil {
		errs = append(errs, err)
	}

	// Upstream pacing
	pageDelay, err := parseDuration("PAGE_DELAY", "150ms")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.PageDelay = pageDelay
	}

	batchDelay, err := parseDuration("BATCH_DELAY", "350ms")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.BatchDelay = batchDelay
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for server initialization where misconfiguration should halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SolanaRPCURL is required"))
	}

	if c.HeliusAPIURL == "" {
		errs = append(errs, fmt.Errorf("HeliusAPIURL is required"))
	}

	if c.DexScreenerURL == "" {
		errs = append(errs, fmt.Errorf("DexScreenerURL is required"))
	}

	if c.SwapPageBudget < 1 {
		errs = append(errs, fmt.Errorf("SwapPageBudget must be at least 1"))
	}

	if c.TransferPageBudget < 1 {
		errs = append(errs, fmt.Errorf("TransferPageBudget must be at least 1"))
	}

	if c.CompareSwapPageBudget < 1 {
		errs = append(errs, fmt.Errorf("CompareSwapPageBudget must be at least 1"))
	}

	if c.CompareTransferPageBudget < 1 {
		errs = append(errs, fmt.Errorf("CompareTransferPageBudget must be at least 1"))
	}

	if c.PageDelay < 0 {
		errs = append(errs, fmt.Errorf("PageDelay cannot be negative"))
	}

	if c.BatchDelay < 0 {
		errs = append(errs, fmt.Errorf("BatchDelay cannot be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}
