// Package storage defines the persistence boundaries of the engine: the
// key registry (pool whitelist + signing material) and the pending-request
// store backing the liquidity two-phase protocol.
package storage

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/zcombinatorio/swap-engine/internal/domain"
)

var (
	ErrPoolSecretsNotFound = errors.New("no key material configured for pool")
	ErrRequestNotFound     = errors.New("pending request not found")
)

// PoolSecrets is the per-pool signing material: the manager wallet pays
// fees and countersigns, the LP owner holds the liquidity position.
type PoolSecrets struct {
	Manager solana.PrivateKey
	LPOwner solana.PrivateKey
}

// KeyStore is the typed view of the key registry. Raw queries never cross
// this boundary.
type KeyStore interface {
	PoolSecrets(ctx context.Context, pool solana.PublicKey) (*PoolSecrets, error)
	IsWhitelisted(ctx context.Context, pool solana.PublicKey) (bool, error)
}

// RequestStore holds pending liquidity requests between build and confirm.
type RequestStore interface {
	Put(ctx context.Context, req *domain.PendingRequest) error

	// Take atomically fetches and deletes a request: each build is
	// confirmable exactly once. Expired or unknown ids return
	// ErrRequestNotFound.
	Take(ctx context.Context, id string) (*domain.PendingRequest, error)
}
