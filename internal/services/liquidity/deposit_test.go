package liquidity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanBalancedDeposit(t *testing.T) {
	tests := []struct {
		name                         string
		availA, availB               uint64
		reserveA, reserveB           uint64
		wantA, wantB                 uint64
		wantLeftoverA, wantLeftoverB uint64
		wantErr                      error
	}{
		{
			name:   "excess on B side",
			availA: 1_000, availB: 5_000,
			reserveA: 1_000_000, reserveB: 2_000_000, // price: 1 A = 2 B
			wantA: 1_000, wantB: 2_000, wantLeftoverB: 3_000,
		},
		{
			name:   "excess on A side",
			availA: 5_000, availB: 2_000,
			reserveA: 1_000_000, reserveB: 2_000_000,
			wantA: 1_000, wantB: 2_000, wantLeftoverA: 4_000,
		},
		{
			name:   "exactly balanced",
			availA: 1_000, availB: 2_000,
			reserveA: 1_000_000, reserveB: 2_000_000,
			wantA: 1_000, wantB: 2_000,
		},
		{
			name:   "only A available",
			availA: 1_000, availB: 0,
			reserveA: 1_000_000, reserveB: 2_000_000,
			wantA: 0, wantB: 0, wantLeftoverA: 1_000,
		},
		{
			name:   "empty pool",
			availA: 1_000, availB: 1_000,
			reserveA: 0, reserveB: 2_000_000,
			wantErr: ErrEmptyPool,
		},
		{
			name:   "nothing available",
			availA: 0, availB: 0,
			reserveA: 1_000_000, reserveB: 2_000_000,
			wantErr: ErrNothingToPlan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanBalancedDeposit(tt.availA, tt.availB, tt.reserveA, tt.reserveB)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantA, plan.AmountA)
			assert.Equal(t, tt.wantB, plan.AmountB)
			assert.Equal(t, tt.wantLeftoverA, plan.LeftoverA)
			assert.Equal(t, tt.wantLeftoverB, plan.LeftoverB)

			// conservation: deposited plus leftover is exactly what was available
			assert.Equal(t, tt.availA, plan.AmountA+plan.LeftoverA)
			assert.Equal(t, tt.availB, plan.AmountB+plan.LeftoverB)
		})
	}
}

func TestPlanCleanupSwap(t *testing.T) {
	tests := []struct {
		name               string
		availA, availB     uint64
		reserveA, reserveB uint64
		wantInputIsA       bool
		wantAmountIn       uint64
		wantErr            error
	}{
		{
			// A worth 10_000 B against 4_000 B held: 6_000 B of excess on
			// the A side = 3_000 A; swap half
			name:   "excess on A",
			availA: 5_000, availB: 4_000,
			reserveA: 1_000_000, reserveB: 2_000_000,
			wantInputIsA: true, wantAmountIn: 1_500,
		},
		{
			// A worth 2_000 B against 8_000 B held: 6_000 B excess; swap half
			name:   "excess on B",
			availA: 1_000, availB: 8_000,
			reserveA: 1_000_000, reserveB: 2_000_000,
			wantInputIsA: false, wantAmountIn: 3_000,
		},
		{
			name:   "perfectly balanced swaps nothing",
			availA: 1_000, availB: 2_000,
			reserveA: 1_000_000, reserveB: 2_000_000,
			wantInputIsA: false, wantAmountIn: 0,
		},
		{
			name:   "empty pool",
			availA: 1, availB: 1,
			reserveB: 1,
			wantErr:  ErrEmptyPool,
		},
		{
			name:     "nothing held",
			reserveA: 1, reserveB: 1,
			wantErr: ErrNothingToPlan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanCleanupSwap(tt.availA, tt.availB, tt.reserveA, tt.reserveB)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantInputIsA, plan.InputIsA)
			assert.Equal(t, tt.wantAmountIn, plan.AmountIn)
		})
	}
}
