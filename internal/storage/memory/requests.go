package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zcombinatorio/swap-engine/internal/domain"
	"github.com/zcombinatorio/swap-engine/internal/storage"
)

// RequestStore keeps pending liquidity requests in a process-local map.
// Single-process deployments only; multi-instance setups use the redis
// store so two instances cannot double-spend one LP position.
type RequestStore struct {
	mu       sync.Mutex
	requests map[string]*domain.PendingRequest
	now      func() time.Time
}

func NewRequestStore() *RequestStore {
	return &RequestStore{
		requests: make(map[string]*domain.PendingRequest),
		now:      time.Now,
	}
}

func (s *RequestStore) Put(_ context.Context, req *domain.PendingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = req
	return nil
}

func (s *RequestStore) Take(_ context.Context, id string) (*domain.PendingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, storage.ErrRequestNotFound
	}
	delete(s.requests, id)
	// An expired record that the sweeper hasn't reached yet is still
	// treated as gone.
	if req.Expired(s.now()) {
		return nil, storage.ErrRequestNotFound
	}
	return req, nil
}

// StartSweeper deletes expired records periodically until ctx is done.
func (s *RequestStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *RequestStore) sweep() {
	now := s.now()
	s.mu.Lock()
	removed := 0
	for id, req := range s.requests {
		if req.Expired(now) {
			delete(s.requests, id)
			removed++
		}
	}
	remaining := len(s.requests)
	s.mu.Unlock()

	if removed > 0 {
		log.Info().Int("removed", removed).Int("pending", remaining).
			Msg("swept expired liquidity requests")
	}
}
