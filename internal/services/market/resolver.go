package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/zcombinatorio/swap-engine/internal/dex/dbc"
	"github.com/zcombinatorio/swap-engine/internal/domain"
	"github.com/zcombinatorio/swap-engine/internal/metrics"
)

var ErrPoolNotFound = errors.New("no configured pool for token pair")

// CurveFetcher is the slice of the dbc client the resolver needs.
type CurveFetcher interface {
	FetchCurve(ctx context.Context, address solana.PublicKey) (*dbc.Curve, error)
}

// Resolver turns route hops into concrete on-chain pools, following DBC
// migration to the graduated cp-amm pool when it has happened.
type Resolver struct {
	registry     *Registry
	curves       CurveFetcher
	cpammProgram solana.PublicKey

	// group deduplicates concurrent migration checks for the same curve.
	// Results are never cached: on-chain state is ground truth, and a
	// stale "not migrated" answer would route trades at a dead address.
	group singleflight.Group
}

func NewResolver(registry *Registry, curves CurveFetcher, cpammProgram solana.PublicKey) *Resolver {
	return &Resolver{registry: registry, curves: curves, cpammProgram: cpammProgram}
}

// ResolvePool resolves the configured pool for a trade from one token to
// another. Unconfigured pair is a hard ErrPoolNotFound; everything that can
// go wrong during a migration check degrades to the known-good dbc pool.
func (r *Resolver) ResolvePool(ctx context.Context, from, to domain.Token) (*domain.PoolInfo, error) {
	cfg, ok := r.registry.PoolFor(from.Symbol, to.Symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrPoolNotFound, from.Symbol, to.Symbol)
	}

	info := &domain.PoolInfo{
		Address:     cfg.Address,
		Type:        cfg.Type,
		InputToken:  from,
		OutputToken: to,
	}
	if cfg.Type != domain.PoolTypeDbc {
		return info, nil
	}

	// Selling the base side of a dbc pool is a base-for-quote trade.
	info.SwapBaseForQuote = from.Symbol != cfg.QuoteToken

	if migrated, ok := r.checkMigration(ctx, cfg.Address); ok {
		info.Address = migrated
		info.Type = domain.PoolTypeCpAmm
	}
	return info, nil
}

// ResolveRoute resolves every hop of a route in order.
func (r *Resolver) ResolveRoute(ctx context.Context, route domain.Route) ([]domain.PoolInfo, error) {
	pools := make([]domain.PoolInfo, 0, len(route.Hops))
	for _, hop := range route.Hops {
		info, err := r.ResolvePool(ctx, hop.From, hop.To)
		if err != nil {
			return nil, err
		}
		pools = append(pools, *info)
	}
	return pools, nil
}

// checkMigration reports the graduated cp-amm address when the curve has
// migrated. Any fetch or derivation error means "treat as not migrated".
func (r *Resolver) checkMigration(ctx context.Context, curveAddr solana.PublicKey) (solana.PublicKey, bool) {
	v, err, _ := r.group.Do(curveAddr.String(), func() (interface{}, error) {
		curve, err := r.curves.FetchCurve(ctx, curveAddr)
		if err != nil {
			return nil, err
		}
		if !curve.Migrated() {
			return nil, nil
		}
		derived, err := dbc.DeriveMigratedPool(r.cpammProgram, curve)
		if err != nil {
			return nil, err
		}
		return derived, nil
	})
	if err != nil {
		metrics.MigrationChecks.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("curve", curveAddr.String()).
			Msg("migration check failed, keeping dbc pool")
		return solana.PublicKey{}, false
	}
	if v == nil {
		metrics.MigrationChecks.WithLabelValues("not_migrated").Inc()
		return solana.PublicKey{}, false
	}
	metrics.MigrationChecks.WithLabelValues("migrated").Inc()
	return v.(solana.PublicKey), true
}
