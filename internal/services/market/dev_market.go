package market

import (
	"github.com/gagliardetto/solana-go"

	"github.com/zcombinatorio/swap-engine/internal/common"
	"github.com/zcombinatorio/swap-engine/internal/domain"
)

// devKey derives a stable placeholder address from a tag so the dev market
// works without any deployment config. Not on-curve, never signed for.
func devKey(tag string) solana.PublicKey {
	var b [32]byte
	copy(b[:], tag)
	return solana.PublicKeyFromBytes(b[:])
}

// DevTokens is the compiled-in dev token table.
func DevTokens() []domain.Token {
	return []domain.Token{
		{Symbol: "SOL", Mint: common.WSOLMint, Decimals: 9, Name: "Solana"},
		{Symbol: "USDC", Mint: solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"), Decimals: 6, Name: "USD Coin"},
		{Symbol: "ZC", Mint: devKey("zc:mint:zc"), Decimals: 6, Name: "ZCombinator"},
		{Symbol: "TEST", Mint: devKey("zc:mint:test"), Decimals: 6, Name: "Test Token"},
	}
}

// DevPools is the compiled-in dev pool list. Declared order matters: it is
// the route finder's tie-break order.
func DevPools() []domain.PoolConfig {
	return []domain.PoolConfig{
		{Address: devKey("zc:pool:sol-zc"), Type: domain.PoolTypeCpAmm, TokenA: "SOL", TokenB: "ZC"},
		{Address: devKey("zc:pool:zc-test"), Type: domain.PoolTypeDbc, TokenA: "ZC", TokenB: "TEST", QuoteToken: "ZC"},
		{Address: devKey("zc:pool:sol-usdc"), Type: domain.PoolTypeCpAmm, TokenA: "SOL", TokenB: "USDC"},
	}
}
