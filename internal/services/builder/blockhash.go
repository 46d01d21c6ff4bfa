package builder

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// blockhashFreshness bounds how old a cached blockhash may be before a new
// one is fetched. Well under the ~60s validity window.
const blockhashFreshness = 2 * time.Second

type cachedBlockhash struct {
	blockhash            solana.Hash
	lastValidBlockHeight uint64
	updatedAt            time.Time
}

// BlockhashCache keeps a recent blockhash so concurrent builds don't each
// pay an RPC round trip. Serves a stale hash rather than failing when the
// refresh itself errors.
type BlockhashCache struct {
	rpc *rpc.Client

	mu      sync.RWMutex
	current *cachedBlockhash
}

func NewBlockhashCache(rpcClient *rpc.Client) *BlockhashCache {
	return &BlockhashCache{rpc: rpcClient}
}

func (c *BlockhashCache) Get(ctx context.Context) (solana.Hash, uint64, error) {
	c.mu.RLock()
	cached := c.current
	c.mu.RUnlock()

	if cached != nil && time.Since(cached.updatedAt) < blockhashFreshness {
		return cached.blockhash, cached.lastValidBlockHeight, nil
	}

	res, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		if cached != nil {
			return cached.blockhash, cached.lastValidBlockHeight, nil
		}
		return solana.Hash{}, 0, err
	}

	c.mu.Lock()
	c.current = &cachedBlockhash{
		blockhash:            res.Value.Blockhash,
		lastValidBlockHeight: res.Value.LastValidBlockHeight,
		updatedAt:            time.Now(),
	}
	c.mu.Unlock()

	return res.Value.Blockhash, res.Value.LastValidBlockHeight, nil
}
