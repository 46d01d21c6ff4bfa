package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcombinatorio/swap-engine/internal/config"
	"github.com/zcombinatorio/swap-engine/internal/dex/dbc"
	"github.com/zcombinatorio/swap-engine/internal/domain"
	"github.com/zcombinatorio/swap-engine/internal/jupiter"
	"github.com/zcombinatorio/swap-engine/internal/services/market"
	"github.com/zcombinatorio/swap-engine/internal/services/router"
)

// fakeQuoter halves the amount on every hop and reports a fixed impact.
type fakeQuoter struct {
	impact     *uint32
	dropImpact map[solana.PublicKey]bool
	err        error
}

func (f *fakeQuoter) QuoteHop(_ context.Context, pool domain.PoolInfo, amountIn uint64) (domain.HopQuote, error) {
	if f.err != nil {
		return domain.HopQuote{}, f.err
	}
	hq := domain.HopQuote{
		Pool:      pool,
		AmountIn:  amountIn,
		AmountOut: amountIn / 2,
		FeeAmount: amountIn / 100,
	}
	if f.impact != nil && !f.dropImpact[pool.Address] {
		v := *f.impact
		hq.PriceImpactBps = &v
	}
	return hq, nil
}

type staticCurves struct{}

func (staticCurves) FetchCurve(_ context.Context, address solana.PublicKey) (*dbc.Curve, error) {
	return &dbc.Curve{Address: address}, nil // progress 0: not migrated
}

func engineFixture(t *testing.T, quoter PoolQuoter, jup JupiterQuoter, strategy config.QuoteStrategy) (*Engine, *market.Registry) {
	t.Helper()
	reg, err := market.NewRegistry(market.DevTokens(), market.DevPools())
	require.NoError(t, err)
	resolver := market.NewResolver(reg, staticCurves{}, solana.PublicKey{})
	finder := router.NewFinder(reg, 3)
	return NewEngine(finder, resolver, quoter, jup, strategy), reg
}

func tok(t *testing.T, reg *market.Registry, symbol string) domain.Token {
	t.Helper()
	tk, ok := reg.Token(symbol)
	require.True(t, ok)
	return tk
}

func TestQuoteZeroAmount(t *testing.T) {
	impact := uint32(10)
	engine, reg := engineFixture(t, &fakeQuoter{impact: &impact}, nil, config.StrategyCustom)

	_, err := engine.Quote(context.Background(), tok(t, reg, "SOL"), tok(t, reg, "ZC"), 0, 50)
	assert.ErrorIs(t, err, ErrZeroAmount)
}

func TestQuoteMultiHopThreadsAmounts(t *testing.T) {
	impact := uint32(15)
	engine, reg := engineFixture(t, &fakeQuoter{impact: &impact}, nil, config.StrategyCustom)

	q, err := engine.Quote(context.Background(), tok(t, reg, "SOL"), tok(t, reg, "TEST"), 1_000_000, 100)
	require.NoError(t, err)
	require.NotNil(t, q)

	assert.Equal(t, domain.RouteDouble, q.Kind)
	assert.Equal(t, domain.QuoteSourceCustom, q.Source)
	require.Len(t, q.Hops, 2)
	assert.Equal(t, uint64(1_000_000), q.Hops[0].AmountIn)
	assert.Equal(t, uint64(500_000), q.Hops[0].AmountOut)
	assert.Equal(t, uint64(500_000), q.Hops[1].AmountIn, "hop output must feed the next hop")
	assert.Equal(t, uint64(250_000), q.AmountOut)
	assert.Equal(t, uint64(247_500), q.MinAmountOut) // 1% floor on final output

	require.NotNil(t, q.PriceImpactBps)
	assert.Equal(t, uint32(30), *q.PriceImpactBps, "per-hop impacts are summed")
}

func TestQuoteImpactOmittedWhenAnyHopUnknown(t *testing.T) {
	impact := uint32(15)
	quoter := &fakeQuoter{
		impact:     &impact,
		dropImpact: map[solana.PublicKey]bool{},
	}
	engine, reg := engineFixture(t, quoter, nil, config.StrategyCustom)
	pool, ok := reg.PoolFor("ZC", "TEST")
	require.True(t, ok)
	quoter.dropImpact[pool.Address] = true

	q, err := engine.Quote(context.Background(), tok(t, reg, "SOL"), tok(t, reg, "TEST"), 1_000_000, 50)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Nil(t, q.PriceImpactBps)
	assert.Equal(t, uint64(250_000), q.AmountOut, "amounts survive a missing impact figure")
}

func TestQuoteNoRouteReturnsNil(t *testing.T) {
	impact := uint32(10)
	engine, reg := engineFixture(t, &fakeQuoter{impact: &impact}, nil, config.StrategyCustom)

	q, err := engine.Quote(context.Background(), tok(t, reg, "SOL"), tok(t, reg, "SOL"), 1_000, 50)
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestQuoteHopFailureReturnsNil(t *testing.T) {
	engine, reg := engineFixture(t, &fakeQuoter{err: assert.AnError}, nil, config.StrategyCustom)

	q, err := engine.Quote(context.Background(), tok(t, reg, "SOL"), tok(t, reg, "ZC"), 1_000, 50)
	require.NoError(t, err)
	assert.Nil(t, q)
}

func jupiterStub(t *testing.T, handler http.HandlerFunc) *jupiter.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return jupiter.NewClient(srv.URL, "")
}

func TestQuoteJupiterPair(t *testing.T) {
	jup := jupiterStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"outAmount":"987654","priceImpactPct":"0.0012"}`))
	})
	impact := uint32(10)
	engine, reg := engineFixture(t, &fakeQuoter{impact: &impact}, jup, config.StrategyJupiter)

	q, err := engine.Quote(context.Background(), tok(t, reg, "SOL"), tok(t, reg, "ZC"), 1_000_000, 50)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, domain.QuoteSourceJupiter, q.Source)
	assert.Equal(t, uint64(987_654), q.AmountOut)
	assert.Equal(t, uint64(982_715), q.MinAmountOut)
	require.NotNil(t, q.PriceImpactBps)
	assert.Equal(t, uint32(12), *q.PriceImpactBps)
	assert.Empty(t, q.Kind, "aggregator quotes carry no route classification")
}

func TestQuoteJupiterStrategyFailureReturnsNil(t *testing.T) {
	jup := jupiterStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	impact := uint32(10)
	engine, reg := engineFixture(t, &fakeQuoter{impact: &impact}, jup, config.StrategyJupiter)

	q, err := engine.Quote(context.Background(), tok(t, reg, "SOL"), tok(t, reg, "ZC"), 1_000_000, 50)
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestQuoteAutoFallsBackToCustom(t *testing.T) {
	jup := jupiterStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	impact := uint32(10)
	engine, reg := engineFixture(t, &fakeQuoter{impact: &impact}, jup, config.StrategyAuto)

	q, err := engine.Quote(context.Background(), tok(t, reg, "SOL"), tok(t, reg, "ZC"), 1_000_000, 50)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, domain.QuoteSourceCustom, q.Source)
	assert.Equal(t, domain.RouteDirectCpAmm, q.Kind)
	assert.Equal(t, uint64(500_000), q.AmountOut)
}

func TestQuoteCustomStrategySkipsAggregator(t *testing.T) {
	jup := jupiterStub(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("aggregator must not be called under the custom strategy")
	})
	impact := uint32(10)
	engine, reg := engineFixture(t, &fakeQuoter{impact: &impact}, jup, config.StrategyCustom)

	q, err := engine.Quote(context.Background(), tok(t, reg, "SOL"), tok(t, reg, "ZC"), 1_000_000, 50)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, domain.QuoteSourceCustom, q.Source)
}

func TestQuoteNonDistinguishedPairStaysCustom(t *testing.T) {
	jup := jupiterStub(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("aggregator must not be called for non ZC/SOL pairs")
	})
	impact := uint32(10)
	engine, reg := engineFixture(t, &fakeQuoter{impact: &impact}, jup, config.StrategyAuto)

	q, err := engine.Quote(context.Background(), tok(t, reg, "SOL"), tok(t, reg, "USDC"), 1_000_000, 50)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, domain.QuoteSourceCustom, q.Source)
}
