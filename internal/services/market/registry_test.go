package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcombinatorio/swap-engine/internal/domain"
)

func TestNewRegistryValidation(t *testing.T) {
	tokens := DevTokens()

	tests := []struct {
		name    string
		tokens  []domain.Token
		pools   []domain.PoolConfig
		wantErr string
	}{
		{
			name:   "valid dev market",
			tokens: tokens,
			pools:  DevPools(),
		},
		{
			name:    "duplicate symbol",
			tokens:  append(DevTokens(), domain.Token{Symbol: "SOL", Decimals: 9}),
			wantErr: "duplicate token symbol",
		},
		{
			name:   "unknown token side",
			tokens: tokens,
			pools: []domain.PoolConfig{
				{Address: devKey("zc:pool:bad"), Type: domain.PoolTypeCpAmm, TokenA: "SOL", TokenB: "NOPE"},
			},
			wantErr: "unknown token",
		},
		{
			name:   "dbc quote token not a pool side",
			tokens: tokens,
			pools: []domain.PoolConfig{
				{Address: devKey("zc:pool:bad"), Type: domain.PoolTypeDbc, TokenA: "ZC", TokenB: "TEST", QuoteToken: "SOL"},
			},
			wantErr: "quote token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.tokens, tt.pools)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistryLookups(t *testing.T) {
	reg, err := NewRegistry(DevTokens(), DevPools())
	require.NoError(t, err)

	sol, ok := reg.Token("SOL")
	require.True(t, ok)
	assert.Equal(t, uint8(9), sol.Decimals)
	assert.True(t, sol.IsNative())

	byMint, ok := reg.TokenByMint(sol.Mint)
	require.True(t, ok)
	assert.Equal(t, "SOL", byMint.Symbol)

	_, ok = reg.Token("DOGE")
	assert.False(t, ok)

	pool, ok := reg.PoolFor("SOL", "ZC")
	require.True(t, ok)
	assert.Equal(t, domain.PoolTypeCpAmm, pool.Type)

	// undirected: both directions hit the same pool
	rev, ok := reg.PoolFor("ZC", "SOL")
	require.True(t, ok)
	assert.Equal(t, pool.Address, rev.Address)

	_, ok = reg.PoolFor("USDC", "TEST")
	assert.False(t, ok)
}

func TestNeighborsDeclaredOrder(t *testing.T) {
	reg, err := NewRegistry(DevTokens(), DevPools())
	require.NoError(t, err)

	edges := reg.Neighbors("SOL")
	require.Len(t, edges, 2)
	assert.Equal(t, "ZC", edges[0].To)
	assert.Equal(t, "USDC", edges[1].To)
}
