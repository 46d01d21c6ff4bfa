package domain

import "github.com/gagliardetto/solana-go"

// PoolType discriminates the two on-chain programs the engine can trade
// against.
type PoolType string

const (
	// PoolTypeCpAmm is a constant-product AMM pool (graduated markets).
	PoolTypeCpAmm PoolType = "cp-amm"
	// PoolTypeDbc is a dynamic bonding curve pool (pre-graduation markets).
	PoolTypeDbc PoolType = "dbc"
)

// PoolConfig is one entry of the deploy-time pool list: the static half of
// a pool, before any on-chain state has been read.
type PoolConfig struct {
	Address solana.PublicKey `json:"address"`
	Type    PoolType         `json:"type"`
	TokenA  string           `json:"tokenA"` // symbol
	TokenB  string           `json:"tokenB"` // symbol

	// QuoteToken names which side a DBC pool treats as its quote asset.
	// Empty for cp-amm pools.
	QuoteToken string `json:"quoteToken,omitempty"`
}

// PoolInfo is a resolved pool for a specific trade direction. For DBC pairs
// that have migrated, Address points at the graduated cp-amm pool and Type
// is PoolTypeCpAmm regardless of what the static list says.
type PoolInfo struct {
	Address solana.PublicKey
	Type    PoolType

	InputToken  Token
	OutputToken Token

	// SwapBaseForQuote is the trade direction relative to the pool's own
	// base/quote orientation. Meaningful for DBC pools; cp-amm builders
	// derive direction from the vault mints instead.
	SwapBaseForQuote bool
}

// Pair returns a direction-independent key for the pool's token pair.
func (p PoolConfig) Pair() (string, string) {
	if p.TokenA < p.TokenB {
		return p.TokenA, p.TokenB
	}
	return p.TokenB, p.TokenA
}
