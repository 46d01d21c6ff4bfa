// Package postgres implements the key registry over a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zcombinatorio/swap-engine/internal/common"
	"github.com/zcombinatorio/swap-engine/internal/storage"
)

// KeyStore reads pool key material and the whitelist from postgres.
//
// Schema:
//
//	CREATE TABLE pool_keys (
//	    pool_address TEXT PRIMARY KEY,
//	    manager_key  TEXT NOT NULL,
//	    lp_owner_key TEXT NOT NULL,
//	    whitelisted  BOOLEAN NOT NULL DEFAULT FALSE
//	);
type KeyStore struct {
	pool *pgxpool.Pool
}

func NewKeyStore(ctx context.Context, dsn string) (*KeyStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &KeyStore{pool: pool}, nil
}

func (ks *KeyStore) Close() {
	ks.pool.Close()
}

func (ks *KeyStore) PoolSecrets(ctx context.Context, pool solana.PublicKey) (*storage.PoolSecrets, error) {
	var managerRaw, lpOwnerRaw string
	err := ks.pool.QueryRow(ctx,
		`SELECT manager_key, lp_owner_key FROM pool_keys WHERE pool_address = $1 AND whitelisted`,
		pool.String(),
	).Scan(&managerRaw, &lpOwnerRaw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrPoolSecretsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: pool secrets for %s: %w", pool, err)
	}

	manager, err := common.ParsePrivateKey(managerRaw)
	if err != nil {
		return nil, fmt.Errorf("postgres: manager key for %s: %w", pool, err)
	}
	lpOwner, err := common.ParsePrivateKey(lpOwnerRaw)
	if err != nil {
		return nil, fmt.Errorf("postgres: lp owner key for %s: %w", pool, err)
	}
	return &storage.PoolSecrets{Manager: manager, LPOwner: lpOwner}, nil
}

func (ks *KeyStore) IsWhitelisted(ctx context.Context, pool solana.PublicKey) (bool, error) {
	var ok bool
	err := ks.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pool_keys WHERE pool_address = $1 AND whitelisted)`,
		pool.String(),
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("postgres: whitelist check for %s: %w", pool, err)
	}
	return ok, nil
}
