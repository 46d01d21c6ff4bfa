// Package redis implements the pending-request store on a shared redis so
// multiple instances can serve the liquidity two-phase protocol.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/zcombinatorio/swap-engine/internal/domain"
	"github.com/zcombinatorio/swap-engine/internal/storage"
)

const keyPrefix = "liquidity:request:"

type RequestStore struct {
	client *redis.Client
}

func NewRequestStore(url string) (*RequestStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	return &RequestStore{client: redis.NewClient(opts)}, nil
}

func (s *RequestStore) Close() error {
	return s.client.Close()
}

// Put stores the request with its remaining TTL; redis expiry replaces the
// in-memory sweeper.
func (s *RequestStore) Put(ctx context.Context, req *domain.PendingRequest) error {
	ttl := time.Until(req.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("redis: request %s already expired", req.ID)
	}
	raw, err := sonic.Marshal(req)
	if err != nil {
		return fmt.Errorf("redis: encode request %s: %w", req.ID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+req.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis: store request %s: %w", req.ID, err)
	}
	return nil
}

// Take is GETDEL, so two racing confirms can never both obtain the record.
func (s *RequestStore) Take(ctx context.Context, id string) (*domain.PendingRequest, error) {
	raw, err := s.client.GetDel(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: take request %s: %w", id, err)
	}

	var req domain.PendingRequest
	if err := sonic.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("redis: decode request %s: %w", id, err)
	}
	if req.Expired(time.Now()) {
		return nil, storage.ErrRequestNotFound
	}
	return &req, nil
}
