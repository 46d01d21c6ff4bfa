// Package liquidity implements the DAMM rebalance service: withdraw,
// deposit and cleanup-swap builders with a build→sign→verify→submit
// two-phase protocol, replay protection and per-pool mutual exclusion.
package liquidity

import (
	"context"
	"sync"
)

// keyedLocks serializes operations per pool address. Blocked acquirers are
// queued by the runtime in arrival order; release must happen exactly once,
// which the returned func enforces.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	sem     chan struct{}
	waiters int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*lockEntry)}
}

// Acquire blocks until the key's lock is free or the context is done.
// Non-reentrant: a second acquisition from the same goroutine deadlocks,
// same as any mutex.
func (l *keyedLocks) Acquire(ctx context.Context, key string) (release func(), err error) {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.waiters++
	l.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, entry, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.release(key, entry, true)
		})
	}, nil
}

func (l *keyedLocks) release(key string, entry *lockEntry, held bool) {
	if held {
		<-entry.sem
	}
	l.mu.Lock()
	entry.waiters--
	if entry.waiters == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}
