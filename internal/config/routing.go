package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/zcombinatorio/swap-engine/internal/common"
)

// QuoteStrategy selects the pricing path for the distinguished ZC/SOL pair.
type QuoteStrategy = string

const (
	StrategyJupiter QuoteStrategy = "jupiter"
	StrategyCustom  QuoteStrategy = "custom"
	StrategyAuto    QuoteStrategy = "auto"
)

type RoutingConfig struct {
	MaxHops            int
	DefaultSlippageBps int
	Strategy           QuoteStrategy

	JupiterBaseURL string
	JupiterAPIKey  string

	// LookupTable is the address lookup table used when a multi-hop swap
	// does not fit a legacy transaction.
	LookupTable string

	// ExecutorKey is the base58 (or JSON-array) private key of the wallet
	// the swap endpoint signs with. Empty means swaps are returned unsigned.
	ExecutorKey string
}

func (rc *RoutingConfig) Key() string {
	return ROUTING_CONFIG_KEY
}

func (rc *RoutingConfig) Load() error {
	rc.MaxHops = common.GetEnvOrDefaultInt("ROUTE_MAX_HOPS", 3)
	rc.DefaultSlippageBps = common.GetEnvOrDefaultInt("DEFAULT_SLIPPAGE_BPS", 50)
	rc.Strategy = common.GetEnvOrDefault("QUOTE_STRATEGY", StrategyAuto)
	rc.JupiterBaseURL = common.GetEnvOrDefault("JUPITER_BASE_URL", "https://lite-api.jup.ag/swap/v1")
	rc.JupiterAPIKey = os.Getenv("JUPITER_API_KEY")
	rc.LookupTable = os.Getenv("LOOKUP_TABLE_ADDRESS")
	rc.ExecutorKey = os.Getenv("EXECUTOR_PRIVATE_KEY")
	return rc.Validate()
}

func (rc *RoutingConfig) Validate() error {
	if rc.MaxHops < 1 || rc.MaxHops > 3 {
		return fmt.Errorf("ROUTE_MAX_HOPS must be within [1,3], got %d", rc.MaxHops)
	}
	if rc.DefaultSlippageBps < 0 || rc.DefaultSlippageBps >= 10_000 {
		return fmt.Errorf("DEFAULT_SLIPPAGE_BPS out of range: %d", rc.DefaultSlippageBps)
	}
	if !slices.Contains([]string{StrategyJupiter, StrategyCustom, StrategyAuto}, rc.Strategy) {
		return fmt.Errorf("unknown QUOTE_STRATEGY %q", rc.Strategy)
	}
	return nil
}
