// Package quote walks resolved routes computing output amounts and
// cumulative price impact, with an aggregator path for the ZC/SOL pair.
package quote

import (
	"context"
	"fmt"

	"github.com/zcombinatorio/swap-engine/internal/dex/cpamm"
	"github.com/zcombinatorio/swap-engine/internal/dex/dbc"
	"github.com/zcombinatorio/swap-engine/internal/domain"
)

// PoolQuoter prices one hop against live pool state.
type PoolQuoter interface {
	QuoteHop(ctx context.Context, pool domain.PoolInfo, amountIn uint64) (domain.HopQuote, error)
}

// DexQuoter dispatches hop pricing to the pool-type-specific client.
type DexQuoter struct {
	cpamm *cpamm.Client
	dbc   *dbc.Client
}

func NewDexQuoter(cpammClient *cpamm.Client, dbcClient *dbc.Client) *DexQuoter {
	return &DexQuoter{cpamm: cpammClient, dbc: dbcClient}
}

func (q *DexQuoter) QuoteHop(ctx context.Context, pool domain.PoolInfo, amountIn uint64) (domain.HopQuote, error) {
	switch pool.Type {
	case domain.PoolTypeCpAmm:
		return q.quoteCpAmm(ctx, pool, amountIn)
	case domain.PoolTypeDbc:
		return q.quoteDbc(ctx, pool, amountIn)
	default:
		return domain.HopQuote{}, fmt.Errorf("unknown pool type %q", pool.Type)
	}
}

func (q *DexQuoter) quoteCpAmm(ctx context.Context, pool domain.PoolInfo, amountIn uint64) (domain.HopQuote, error) {
	state, err := q.cpamm.FetchPool(ctx, pool.Address)
	if err != nil {
		return domain.HopQuote{}, err
	}
	reserveIn, reserveOut, _, err := state.Direction(pool.InputToken.Mint)
	if err != nil {
		return domain.HopQuote{}, err
	}
	res, err := cpamm.GetAmountOut(amountIn, reserveIn, reserveOut,
		state.State.TradeFeeNumerator, state.State.TradeFeeDenominator)
	if err != nil {
		return domain.HopQuote{}, err
	}
	impact := res.PriceImpactBps
	return domain.HopQuote{
		Pool:           pool,
		AmountIn:       amountIn,
		AmountOut:      res.AmountOut,
		FeeAmount:      res.FeeAmount,
		PriceImpactBps: &impact,
	}, nil
}

func (q *DexQuoter) quoteDbc(ctx context.Context, pool domain.PoolInfo, amountIn uint64) (domain.HopQuote, error) {
	curve, err := q.dbc.FetchCurve(ctx, pool.Address)
	if err != nil {
		return domain.HopQuote{}, err
	}
	virtualIn, virtualOut, _, err := curve.Direction(pool.InputToken.Mint)
	if err != nil {
		return domain.HopQuote{}, err
	}
	out, fee, err := dbc.GetAmountOut(amountIn, virtualIn, virtualOut, curve.State.TradeFeeBps)
	if err != nil {
		return domain.HopQuote{}, err
	}

	hop := domain.HopQuote{
		Pool:      pool,
		AmountIn:  amountIn,
		AmountOut: out,
		FeeAmount: fee,
	}
	// Impact can fail on degenerate curve state; the hop output is still
	// good, only the impact figure is dropped.
	if impact, err := dbc.PriceImpactBps(amountIn-fee, virtualIn); err == nil {
		hop.PriceImpactBps = &impact
	}
	return hop, nil
}
