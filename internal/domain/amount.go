package domain

import (
	"errors"
	"math/bits"

	"github.com/shopspring/decimal"
)

var ErrAmountOutOfRange = errors.New("amount out of range")

// ToRaw converts a human-readable amount to raw base units for a token with
// the given number of decimals. Fractional dust beyond the token's precision
// is truncated, never rounded up.
func ToRaw(amount decimal.Decimal, decimals uint8) (uint64, error) {
	if amount.IsNegative() {
		return 0, ErrAmountOutOfRange
	}
	raw := amount.Shift(int32(decimals)).Truncate(0)
	if !raw.BigInt().IsUint64() {
		return 0, ErrAmountOutOfRange
	}
	return raw.BigInt().Uint64(), nil
}

// FromRaw converts raw base units back to a human-readable amount.
func FromRaw(raw uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromUint64(raw).Shift(-int32(decimals))
}

// ApplySlippageFloor reduces amount by slippageBps basis points, truncating.
// Used for minimum-output thresholds: amount * (10000 - bps) / 10000.
func ApplySlippageFloor(amount uint64, slippageBps uint16) uint64 {
	if slippageBps >= 10_000 {
		return 0
	}
	hi, lo := bits.Mul64(amount, uint64(10_000-slippageBps))
	q, _ := bits.Div64(hi, lo, 10_000)
	return q
}
