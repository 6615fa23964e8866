// Package config loads the immutable service configuration once at
// startup. Business logic never reads the environment directly; every
// component gets its slice of this struct at construction so tests can
// supply fixtures.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the full service configuration.
type Config struct {
	// HTTP
	ListenAddr     string
	AllowedOrigins string

	// Record store
	DatabaseURL string

	// Chain
	Network string
	RPCURL  string
	ChainID int64

	// Payment terms
	PlatformWallet string // receives creation fees and escrowed prizes
	AssetAddress   string // ERC-20 contract payments must move
	AssetDecimals  int32
	CreationFee    string // human units, e.g. "0.001"
	PayTimeout     time.Duration

	// Custodial signing key for payouts (hex, no 0x prefix required)
	PlatformPrivateKey string

	// Reconciliation worker
	ReconcileInterval time.Duration

	LogLevel string
}

// Load reads configuration from the environment. Required values
// missing is a startup error, not a runtime one.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:         getenv("LISTEN_ADDR", ":5300"),
		AllowedOrigins:     getenv("ALLOWED_ORIGINS", "http://localhost:3000"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		Network:            getenv("CHAIN_NETWORK", "base-sepolia"),
		RPCURL:             getenv("CHAIN_RPC_URL", "https://sepolia.base.org"),
		PlatformWallet:     os.Getenv("PLATFORM_WALLET"),
		AssetAddress:       getenv("ASSET_ADDRESS", "0x036cbd53842c5426634e7929541ec2318f3dcf7e"),
		CreationFee:        getenv("CREATION_FEE", "0.001"),
		PlatformPrivateKey: os.Getenv("PLATFORM_WALLET_PRIVATE_KEY"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.PlatformWallet == "" {
		return nil, fmt.Errorf("PLATFORM_WALLET is required")
	}

	chainID, err := strconv.ParseInt(getenv("CHAIN_ID", "84532"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAIN_ID: %w", err)
	}
	cfg.ChainID = chainID

	decimals, err := strconv.ParseInt(getenv("ASSET_DECIMALS", "6"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid ASSET_DECIMALS: %w", err)
	}
	cfg.AssetDecimals = int32(decimals)

	timeout, err := strconv.Atoi(getenv("PAY_TIMEOUT_SECONDS", "300"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAY_TIMEOUT_SECONDS: %w", err)
	}
	cfg.PayTimeout = time.Duration(timeout) * time.Second

	reconcile, err := strconv.Atoi(getenv("RECONCILE_INTERVAL_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL_MINUTES: %w", err)
	}
	cfg.ReconcileInterval = time.Duration(reconcile) * time.Minute

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
