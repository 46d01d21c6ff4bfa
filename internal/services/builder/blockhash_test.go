package builder

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockhashCacheServesFromCache(t *testing.T) {
	hash := solana.Hash{7, 7, 7}
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":{"blockhash":%q,"lastValidBlockHeight":500}}}`, hash.String())
	}))
	t.Cleanup(srv.Close)

	cache := NewBlockhashCache(rpc.New(srv.URL))
	ctx := context.Background()

	got, height, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, hash, got)
	assert.Equal(t, uint64(500), height)

	// within the freshness window, no further round trips
	for i := 0; i < 5; i++ {
		got, _, err = cache.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, hash, got)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestBlockhashCacheStaleFallback(t *testing.T) {
	hash := solana.Hash{9}
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":{"blockhash":%q,"lastValidBlockHeight":500}}}`, hash.String())
	}))
	t.Cleanup(srv.Close)

	cache := NewBlockhashCache(rpc.New(srv.URL))
	ctx := context.Background()

	_, _, err := cache.Get(ctx)
	require.NoError(t, err)

	// expire the cache, then break the RPC: the stale hash still serves
	cache.mu.Lock()
	cache.current.updatedAt = time.Now().Add(-time.Minute)
	cache.mu.Unlock()
	fail.Store(true)

	got, height, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, hash, got)
	assert.Equal(t, uint64(500), height)
}

func TestBlockhashCacheColdFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	cache := NewBlockhashCache(rpc.New(srv.URL))
	_, _, err := cache.Get(context.Background())
	assert.Error(t, err)
}
