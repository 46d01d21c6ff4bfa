package builder

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcombinatorio/swap-engine/internal/services/market"
	"github.com/zcombinatorio/swap-engine/internal/services/router"
)

// Routing failures must stay inspectable through the wrapped chain so the
// HTTP layer can tell identical-token requests apart from missing routes.
func TestExecuteSwapSameTokenErrorChain(t *testing.T) {
	reg, err := market.NewRegistry(market.DevTokens(), market.DevPools())
	require.NoError(t, err)
	exec := NewExecutor(router.NewFinder(reg, 3), nil, nil, nil, nil, nil, nil, 1, time.Millisecond)

	sol, ok := reg.Token("SOL")
	require.True(t, ok)

	_, err = exec.ExecuteSwap(context.Background(), SwapRequest{
		Owner:    solana.NewWallet().PublicKey(),
		From:     sol,
		To:       sol,
		AmountIn: 1_000,
	})
	assert.ErrorIs(t, err, ErrInvalidRoute)
	assert.ErrorIs(t, err, router.ErrSameToken)
}
