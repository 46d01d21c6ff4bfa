package quote

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/zcombinatorio/swap-engine/internal/config"
	"github.com/zcombinatorio/swap-engine/internal/domain"
	"github.com/zcombinatorio/swap-engine/internal/jupiter"
	"github.com/zcombinatorio/swap-engine/internal/services/market"
	"github.com/zcombinatorio/swap-engine/internal/services/router"
)

var ErrZeroAmount = errors.New("amount must be positive")

// JupiterQuoter is the slice of the aggregator client the engine needs.
type JupiterQuoter interface {
	Quote(ctx context.Context, req jupiter.QuoteRequest) (*jupiter.QuoteResponse, error)
}

// Engine prices a trade between two registry tokens.
type Engine struct {
	finder   *router.Finder
	resolver *market.Resolver
	quoter   PoolQuoter
	jup      JupiterQuoter
	strategy config.QuoteStrategy
}

func NewEngine(
	finder *router.Finder,
	resolver *market.Resolver,
	quoter PoolQuoter,
	jup JupiterQuoter,
	strategy config.QuoteStrategy,
) *Engine {
	return &Engine{
		finder:   finder,
		resolver: resolver,
		quoter:   quoter,
		jup:      jup,
		strategy: strategy,
	}
}

// Quote prices an exact-in trade. A nil, nil return means "no quote
// available": either no route exists or an internal failure was absorbed so
// the caller can render the outcome uniformly. Only malformed input errors.
func (e *Engine) Quote(ctx context.Context, from, to domain.Token, amountIn uint64, slippageBps uint16) (*domain.Quote, error) {
	if amountIn == 0 {
		return nil, ErrZeroAmount
	}

	if e.useAggregator(from, to) {
		q, err := e.jupiterQuote(ctx, from, to, amountIn, slippageBps)
		if err == nil {
			return q, nil
		}
		if e.strategy == config.StrategyJupiter {
			log.Error().Err(err).Msg("jupiter quote failed")
			return nil, nil
		}
		log.Warn().Err(err).Msg("jupiter quote failed, falling back to custom routing")
	}

	return e.customQuote(ctx, from, to, amountIn, slippageBps), nil
}

// useAggregator reports whether the trade is the distinguished protocol
// token / native asset pair and the configured strategy routes it through
// the external aggregator.
func (e *Engine) useAggregator(from, to domain.Token) bool {
	if e.jup == nil || e.strategy == config.StrategyCustom {
		return false
	}
	pair := from.IsNative() && to.Symbol == "ZC" || to.IsNative() && from.Symbol == "ZC"
	return pair
}

func (e *Engine) customQuote(ctx context.Context, from, to domain.Token, amountIn uint64, slippageBps uint16) *domain.Quote {
	route, err := e.finder.FindRoute(from, to, 0)
	if err != nil {
		// No route is a normal outcome, not an error condition.
		if !errors.Is(err, router.ErrNoRoute) && !errors.Is(err, router.ErrSameToken) {
			log.Error().Err(err).Msg("route search failed")
		}
		return nil
	}

	pools, err := e.resolver.ResolveRoute(ctx, route)
	if err != nil {
		log.Error().Err(err).
			Str("from", from.Symbol).Str("to", to.Symbol).
			Msg("pool resolution failed")
		return nil
	}

	// Sequential hop walk in raw units; each hop's output feeds the next
	// hop's input, so hops cannot be priced in parallel.
	hops := make([]domain.HopQuote, 0, len(pools))
	running := amountIn
	impactSum := uint32(0)
	impactKnown := true
	for i, pool := range pools {
		hq, err := e.quoter.QuoteHop(ctx, pool, running)
		if err != nil {
			log.Error().Err(err).Int("hop", i).
				Str("pool", pool.Address.String()).
				Msg("hop quote failed")
			return nil
		}
		hops = append(hops, hq)
		running = hq.AmountOut
		if hq.PriceImpactBps == nil {
			impactKnown = false
		} else {
			// Summed, not compounded: a documented approximation that
			// slightly overstates impact on multi-hop routes.
			impactSum += *hq.PriceImpactBps
		}
	}

	q := &domain.Quote{
		Route:        route,
		Kind:         router.Classify(route),
		Source:       domain.QuoteSourceCustom,
		AmountIn:     amountIn,
		AmountOut:    running,
		MinAmountOut: domain.ApplySlippageFloor(running, slippageBps),
		SlippageBps:  slippageBps,
		Hops:         hops,
	}
	if impactKnown {
		q.PriceImpactBps = &impactSum
	}
	return q
}

func (e *Engine) jupiterQuote(ctx context.Context, from, to domain.Token, amountIn uint64, slippageBps uint16) (*domain.Quote, error) {
	bps := int(slippageBps)
	resp, err := e.jup.Quote(ctx, jupiter.QuoteRequest{
		InputMint:   from.Mint.String(),
		OutputMint:  to.Mint.String(),
		Amount:      strconv.FormatUint(amountIn, 10),
		SlippageBps: &bps,
	})
	if err != nil {
		return nil, err
	}

	out, err := strconv.ParseUint(resp.OutAmount, 10, 64)
	if err != nil {
		return nil, err
	}

	q := &domain.Quote{
		Route:        domain.Route{Input: from, Output: to},
		Source:       domain.QuoteSourceJupiter,
		AmountIn:     amountIn,
		AmountOut:    out,
		MinAmountOut: domain.ApplySlippageFloor(out, slippageBps),
		SlippageBps:  slippageBps,
	}
	if pct, err := decimal.NewFromString(resp.PriceImpactPct); err == nil && !pct.IsNegative() {
		bps := pct.Shift(4).IntPart() // fraction → bps
		if bps >= 0 && bps <= 30_000 {
			v := uint32(bps)
			q.PriceImpactBps = &v
		}
	}
	return q, nil
}
