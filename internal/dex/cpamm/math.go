// Package cpamm implements state access, pricing and instruction building
// for constant-product AMM pools (graduated markets).
package cpamm

import (
	"errors"
	"math/big"
)

var (
	ErrZeroReserves  = errors.New("cpamm: pool has zero reserves")
	ErrZeroAmount    = errors.New("cpamm: amount must be positive")
	ErrBadFeeConfig  = errors.New("cpamm: invalid fee configuration")
	ErrExcessiveSize = errors.New("cpamm: trade exceeds pool reserves")
)

// QuoteResult carries the pricing outcome of a single cp-amm trade.
type QuoteResult struct {
	AmountOut      uint64
	FeeAmount      uint64
	PriceImpactBps uint32
}

// GetAmountOut prices an exact-in trade against x*y=k reserves with the fee
// taken from the input side:
//
//	ainAfterFee = amountIn * (feeDen - feeNum) / feeDen
//	amountOut   = reserveOut * ainAfterFee / (reserveIn + ainAfterFee)
func GetAmountOut(amountIn, reserveIn, reserveOut, feeNumerator, feeDenominator uint64) (*QuoteResult, error) {
	if amountIn == 0 {
		return nil, ErrZeroAmount
	}
	if reserveIn == 0 || reserveOut == 0 {
		return nil, ErrZeroReserves
	}
	if feeDenominator == 0 || feeNumerator >= feeDenominator {
		return nil, ErrBadFeeConfig
	}

	ain := new(big.Int).SetUint64(amountIn)
	rIn := new(big.Int).SetUint64(reserveIn)
	rOut := new(big.Int).SetUint64(reserveOut)
	feeNum := new(big.Int).SetUint64(feeNumerator)
	feeDen := new(big.Int).SetUint64(feeDenominator)

	fee := new(big.Int).Mul(ain, feeNum)
	fee.Div(fee, feeDen)
	ainNet := new(big.Int).Sub(ain, fee)
	if ainNet.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	num := new(big.Int).Mul(rOut, ainNet)
	den := new(big.Int).Add(rIn, ainNet)
	out := num.Div(num, den)

	if !out.IsUint64() || out.Uint64() >= reserveOut {
		return nil, ErrExcessiveSize
	}

	return &QuoteResult{
		AmountOut:      out.Uint64(),
		FeeAmount:      fee.Uint64(),
		PriceImpactBps: priceImpactBps(ainNet, rIn),
	}, nil
}

// priceImpactBps measures how far the net input displaces the input-side
// reserve: ainNet / (rIn + ainNet), in basis points. On a constant product
// this equals the exact spot-vs-execution gap, computed from the reserves
// directly so the truncation of amountOut cannot distort small trades.
func priceImpactBps(ainNet, rIn *big.Int) uint32 {
	num := new(big.Int).Mul(ainNet, big.NewInt(10_000))
	den := new(big.Int).Add(rIn, ainNet)
	// the ratio is strictly below 10000 for any positive inputs
	return uint32(num.Div(num, den).Uint64())
}
