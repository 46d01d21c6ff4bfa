package memory

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcombinatorio/swap-engine/internal/storage"
)

func TestKeyStoreWhitelist(t *testing.T) {
	poolA := solana.NewWallet().PublicKey()
	poolB := solana.NewWallet().PublicKey()
	other := solana.NewWallet().PublicKey()
	manager := solana.NewWallet().PrivateKey
	lpOwner := solana.NewWallet().PrivateKey

	ks, err := NewKeyStore(
		poolA.String()+" , "+poolB.String(), // tolerate whitespace around entries
		manager.String(), lpOwner.String(),
	)
	require.NoError(t, err)

	ctx := context.Background()

	ok, err := ks.IsWhitelisted(ctx, poolA)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ks.IsWhitelisted(ctx, other)
	require.NoError(t, err)
	assert.False(t, ok)

	secrets, err := ks.PoolSecrets(ctx, poolB)
	require.NoError(t, err)
	assert.Equal(t, manager.PublicKey(), secrets.Manager.PublicKey())
	assert.Equal(t, lpOwner.PublicKey(), secrets.LPOwner.PublicKey())

	_, err = ks.PoolSecrets(ctx, other)
	assert.ErrorIs(t, err, storage.ErrPoolSecretsNotFound)
}

func TestKeyStoreEmptyWhitelistNeedsNoKeys(t *testing.T) {
	ks, err := NewKeyStore("", "", "")
	require.NoError(t, err)

	ok, err := ks.IsWhitelisted(context.Background(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyStoreRejectsBadInput(t *testing.T) {
	pool := solana.NewWallet().PublicKey().String()
	key := solana.NewWallet().PrivateKey.String()

	_, err := NewKeyStore("not-a-pubkey", key, key)
	assert.Error(t, err)

	_, err = NewKeyStore(pool, "bad-key", key)
	assert.Error(t, err)

	_, err = NewKeyStore(pool, key, "bad-key")
	assert.Error(t, err)
}
