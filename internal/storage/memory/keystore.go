// Package memory provides in-process implementations of the storage
// interfaces for single-instance and dev deployments.
package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/zcombinatorio/swap-engine/internal/common"
	"github.com/zcombinatorio/swap-engine/internal/storage"
)

// KeyStore is an env-seeded key registry: one whitelist, one manager and
// one LP-owner key shared by every whitelisted pool.
type KeyStore struct {
	whitelist map[solana.PublicKey]bool
	secrets   storage.PoolSecrets
}

// NewKeyStore parses a comma-separated pool whitelist and the two signing
// keys. An empty whitelist yields a registry that authorizes nothing.
func NewKeyStore(whitelist, managerKey, lpOwnerKey string) (*KeyStore, error) {
	ks := &KeyStore{whitelist: make(map[solana.PublicKey]bool)}

	for _, raw := range strings.Split(whitelist, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		addr, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return nil, fmt.Errorf("whitelist entry %q: %w", raw, err)
		}
		ks.whitelist[addr] = true
	}

	if len(ks.whitelist) > 0 {
		manager, err := common.ParsePrivateKey(managerKey)
		if err != nil {
			return nil, fmt.Errorf("manager key: %w", err)
		}
		lpOwner, err := common.ParsePrivateKey(lpOwnerKey)
		if err != nil {
			return nil, fmt.Errorf("lp owner key: %w", err)
		}
		ks.secrets = storage.PoolSecrets{Manager: manager, LPOwner: lpOwner}
	}
	return ks, nil
}

func (ks *KeyStore) PoolSecrets(_ context.Context, pool solana.PublicKey) (*storage.PoolSecrets, error) {
	if !ks.whitelist[pool] {
		return nil, storage.ErrPoolSecretsNotFound
	}
	s := ks.secrets
	return &s, nil
}

func (ks *KeyStore) IsWhitelisted(_ context.Context, pool solana.PublicKey) (bool, error) {
	return ks.whitelist[pool], nil
}
