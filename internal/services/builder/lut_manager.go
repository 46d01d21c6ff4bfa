package builder

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog/log"
)

// LUTManager fetches and caches the pre-published address lookup table used
// to compress multi-hop transactions. atomic.Value keeps reads lock-free on
// the build path.
type LUTManager struct {
	rpcClient    *rpc.Client
	lutAddresses []solana.PublicKey
	tables       atomic.Value // map[solana.PublicKey]solana.PublicKeySlice
	interval     time.Duration
}

// NewLUTManager creates the manager. With no configured addresses every
// versioned build fails with ErrNoLookupTable, which callers surface as a
// capability error.
func NewLUTManager(rpcClient *rpc.Client, lutAddresses []solana.PublicKey, refreshInterval time.Duration) *LUTManager {
	m := &LUTManager{
		rpcClient:    rpcClient,
		lutAddresses: lutAddresses,
		interval:     refreshInterval,
	}
	m.tables.Store(make(map[solana.PublicKey]solana.PublicKeySlice))
	return m
}

// Start fetches table state immediately, then refreshes in the background
// until the context is cancelled.
func (m *LUTManager) Start(ctx context.Context) {
	if len(m.lutAddresses) == 0 {
		log.Info().Msg("no lookup table configured, versioned transactions disabled")
		return
	}

	m.refresh(ctx)

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.refresh(ctx)
			}
		}
	}()
}

// AddressTables returns the cached tables for
// solana.TransactionAddressTables. Empty when none loaded.
func (m *LUTManager) AddressTables() map[solana.PublicKey]solana.PublicKeySlice {
	return m.tables.Load().(map[solana.PublicKey]solana.PublicKeySlice)
}

func (m *LUTManager) refresh(ctx context.Context) {
	tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(m.lutAddresses))

	for _, addr := range m.lutAddresses {
		state, err := addresslookuptable.GetAddressLookupTable(ctx, m.rpcClient, addr)
		if err != nil {
			log.Warn().Err(err).Str("lut", addr.String()).Msg("failed to fetch lookup table")
			continue
		}
		if !state.IsActive() {
			log.Warn().Str("lut", addr.String()).Msg("lookup table deactivated, skipping")
			continue
		}
		tables[addr] = state.Addresses
	}

	m.tables.Store(tables)
	log.Info().Int("tables", len(tables)).Msg("lookup table refresh complete")
}
