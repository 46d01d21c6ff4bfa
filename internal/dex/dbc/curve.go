// Package dbc implements state access, bonding-curve pricing and instruction
// building for dynamic bonding curve pools (pre-graduation markets).
package dbc

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	ErrZeroAmount   = errors.New("dbc: amount must be positive")
	ErrZeroReserves = errors.New("dbc: curve has zero virtual reserves")
	ErrCurveMath    = errors.New("dbc: curve math out of range")
)

// GetAmountOut prices an exact-in trade against the curve's virtual
// reserves. The constant product runs over virtual, not real, balances;
// the fee is taken from the input side in basis points.
func GetAmountOut(amountIn, virtualIn, virtualOut uint64, tradeFeeBps uint16) (amountOut, feeAmount uint64, err error) {
	if amountIn == 0 {
		return 0, 0, ErrZeroAmount
	}
	if virtualIn == 0 || virtualOut == 0 {
		return 0, 0, ErrZeroReserves
	}

	ain := uint256.NewInt(amountIn)
	fee := new(uint256.Int).Mul(ain, uint256.NewInt(uint64(tradeFeeBps)))
	fee.Div(fee, uint256.NewInt(10_000))
	ainNet := new(uint256.Int).Sub(ain, fee)
	if ainNet.IsZero() {
		return 0, 0, ErrZeroAmount
	}

	vIn := uint256.NewInt(virtualIn)
	vOut := uint256.NewInt(virtualOut)

	num := new(uint256.Int).Mul(vOut, ainNet)
	den := new(uint256.Int).Add(vIn, ainNet)
	out := num.Div(num, den)

	if !out.IsUint64() || out.Uint64() >= virtualOut {
		return 0, 0, ErrCurveMath
	}
	return out.Uint64(), fee.Uint64(), nil
}

// PriceImpactBps measures how far the net input displaces the input-side
// virtual reserve: amountInNet / (virtualIn + amountInNet), in basis points.
// On the virtual constant product this equals the exact spot-vs-execution
// gap, computed from the reserves directly so the truncation of the output
// amount cannot distort small trades. The output amount remains usable even
// when this returns an error.
func PriceImpactBps(amountInNet, virtualIn uint64) (uint32, error) {
	if amountInNet == 0 || virtualIn == 0 {
		return 0, ErrCurveMath
	}
	num := new(uint256.Int).Mul(uint256.NewInt(amountInNet), uint256.NewInt(10_000))
	den := new(uint256.Int).Add(uint256.NewInt(virtualIn), uint256.NewInt(amountInNet))
	// the ratio is strictly below 10000 for any positive inputs
	return uint32(num.Div(num, den).Uint64()), nil
}
