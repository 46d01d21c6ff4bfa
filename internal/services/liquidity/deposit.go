package liquidity

import (
	"errors"
	"math/big"
)

var (
	ErrEmptyPool     = errors.New("pool has zero reserves")
	ErrNothingToPlan = errors.New("no balances available")
)

// DepositPlan is a balanced two-sided deposit: the side that cannot be
// fully matched at the pool's current price is deposited in full, and the
// other side's excess is deliberately left over for a later cleanup pass.
type DepositPlan struct {
	AmountA   uint64
	AmountB   uint64
	LeftoverA uint64
	LeftoverB uint64
}

// PlanBalancedDeposit balances availA/availB against the pool price
// reserveB/reserveA. Never deposits more than either available balance.
func PlanBalancedDeposit(availA, availB, reserveA, reserveB uint64) (*DepositPlan, error) {
	if reserveA == 0 || reserveB == 0 {
		return nil, ErrEmptyPool
	}
	if availA == 0 && availB == 0 {
		return nil, ErrNothingToPlan
	}

	// B needed to match all of A at the current price.
	neededB := mulDiv(availA, reserveB, reserveA)
	if neededB <= availB {
		return &DepositPlan{
			AmountA:   availA,
			AmountB:   neededB,
			LeftoverB: availB - neededB,
		}, nil
	}

	neededA := mulDiv(availB, reserveA, reserveB)
	return &DepositPlan{
		AmountA:   neededA,
		AmountB:   availB,
		LeftoverA: availA - neededA,
	}, nil
}

// CleanupSwapPlan sizes the dust-sweeping trade: identify which side holds
// price-implied excess and swap half of it. Half, not the exact rebalancing
// solution, so the trade's own price impact doesn't overshoot the balance
// point.
type CleanupSwapPlan struct {
	// InputIsA is true when the excess sits on the A side.
	InputIsA bool
	AmountIn uint64
}

func PlanCleanupSwap(availA, availB, reserveA, reserveB uint64) (*CleanupSwapPlan, error) {
	if reserveA == 0 || reserveB == 0 {
		return nil, ErrEmptyPool
	}
	if availA == 0 && availB == 0 {
		return nil, ErrNothingToPlan
	}

	// Compare both balances in B-units at the pool price.
	valueAinB := mulDiv(availA, reserveB, reserveA)
	if valueAinB > availB {
		excessA := mulDiv(valueAinB-availB, reserveA, reserveB)
		return &CleanupSwapPlan{InputIsA: true, AmountIn: excessA / 2}, nil
	}
	return &CleanupSwapPlan{InputIsA: false, AmountIn: (availB - valueAinB) / 2}, nil
}

// mulDiv computes a*b/c without intermediate overflow.
func mulDiv(a, b, c uint64) uint64 {
	out := new(big.Int).SetUint64(a)
	out.Mul(out, new(big.Int).SetUint64(b))
	out.Div(out, new(big.Int).SetUint64(c))
	if !out.IsUint64() {
		return 0
	}
	return out.Uint64()
}
