package cpamm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAmountOut(t *testing.T) {
	tests := []struct {
		name       string
		amountIn   uint64
		reserveIn  uint64
		reserveOut uint64
		feeNum     uint64
		feeDen     uint64
		wantOut    uint64
		wantFee    uint64
		wantErr    error
	}{
		{
			// no fee: out = 1e9 * 1e6 / (1e9 + 1e6)
			name:     "no fee small trade",
			amountIn: 1_000_000, reserveIn: 1_000_000_000, reserveOut: 1_000_000_000,
			feeNum: 0, feeDen: 10_000,
			wantOut: 999_000, wantFee: 0,
		},
		{
			name:     "25bps fee",
			amountIn: 1_000_000, reserveIn: 1_000_000_000, reserveOut: 1_000_000_000,
			feeNum: 25, feeDen: 10_000,
			wantOut: 996_505, wantFee: 2_500,
		},
		{
			name:     "zero amount",
			amountIn: 0, reserveIn: 1, reserveOut: 1, feeNum: 0, feeDen: 1,
			wantErr: ErrZeroAmount,
		},
		{
			name:     "zero reserves",
			amountIn: 1, reserveIn: 0, reserveOut: 1, feeNum: 0, feeDen: 1,
			wantErr: ErrZeroReserves,
		},
		{
			name:     "fee numerator at denominator",
			amountIn: 1, reserveIn: 100, reserveOut: 100, feeNum: 10_000, feeDen: 10_000,
			wantErr: ErrBadFeeConfig,
		},
		{
			name:     "zero fee denominator",
			amountIn: 1, reserveIn: 100, reserveOut: 100, feeNum: 0, feeDen: 0,
			wantErr: ErrBadFeeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := GetAmountOut(tt.amountIn, tt.reserveIn, tt.reserveOut, tt.feeNum, tt.feeDen)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOut, res.AmountOut)
			assert.Equal(t, tt.wantFee, res.FeeAmount)
		})
	}
}

func TestPriceImpactMonotonic(t *testing.T) {
	const reserveIn, reserveOut = 10_000_000_000, 5_000_000_000

	var prev uint32
	for _, amountIn := range []uint64{1_000, 100_000, 10_000_000, 1_000_000_000, 5_000_000_000} {
		res, err := GetAmountOut(amountIn, reserveIn, reserveOut, 30, 10_000)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.PriceImpactBps, prev,
			"impact decreased at amountIn=%d", amountIn)
		prev = res.PriceImpactBps
	}
	assert.Greater(t, prev, uint32(0))
}

func TestPriceImpactFromReserveDisplacement(t *testing.T) {
	// no fee: 1e9 in against a 1e10 reserve displaces 1/11 of the input side
	res, err := GetAmountOut(1_000_000_000, 10_000_000_000, 10_000_000_000, 0, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint32(909), res.PriceImpactBps)

	// a dust trade reports a dust impact, not rounding noise
	res, err = GetAmountOut(1_000, 10_000_000_000, 10_000_000_000, 0, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), res.PriceImpactBps)
}

func TestGetAmountOutNeverDrainsPool(t *testing.T) {
	const reserveIn, reserveOut = 1_000_000, 1_000_000

	for _, amountIn := range []uint64{1, 1_000, 1_000_000, 1_000_000_000_000} {
		res, err := GetAmountOut(amountIn, reserveIn, reserveOut, 0, 10_000)
		if err != nil {
			assert.ErrorIs(t, err, ErrExcessiveSize)
			continue
		}
		assert.Less(t, res.AmountOut, uint64(reserveOut))
	}
}
