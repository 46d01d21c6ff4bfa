package liquidity

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcombinatorio/swap-engine/internal/domain"
	"github.com/zcombinatorio/swap-engine/internal/storage"
	"github.com/zcombinatorio/swap-engine/internal/storage/memory"
)

func serviceFixture(t *testing.T, whitelisted ...solana.PublicKey) (*Service, *memory.RequestStore) {
	t.Helper()

	var wl string
	for i, pool := range whitelisted {
		if i > 0 {
			wl += ","
		}
		wl += pool.String()
	}
	manager := solana.NewWallet().PrivateKey
	lpOwner := solana.NewWallet().PrivateKey
	keys, err := memory.NewKeyStore(wl, manager.String(), lpOwner.String())
	require.NoError(t, err)

	store := memory.NewRequestStore()
	return NewService(keys, store, nil, nil, nil, nil, 2*time.Minute, 1, time.Millisecond), store
}

func TestBuildWithdrawPercentageBounds(t *testing.T) {
	svc, _ := serviceFixture(t)
	pool := solana.NewWallet().PublicKey()

	for _, pct := range []float64{0, -1, 50.01, 100} {
		_, err := svc.BuildWithdraw(context.Background(), pool, pct)
		assert.ErrorIs(t, err, ErrInvalidPercentage, "percentage %v", pct)
	}
}

func TestBuildOperationsRejectUnlistedPool(t *testing.T) {
	svc, _ := serviceFixture(t) // empty whitelist
	pool := solana.NewWallet().PublicKey()
	ctx := context.Background()

	_, err := svc.BuildWithdraw(ctx, pool, 25)
	assert.ErrorIs(t, err, ErrNotWhitelisted)

	_, err = svc.BuildDeposit(ctx, pool, 100, 100)
	assert.ErrorIs(t, err, ErrNotWhitelisted)

	_, err = svc.BuildCleanupSwap(ctx, pool)
	assert.ErrorIs(t, err, ErrNotWhitelisted)
}

func TestConfirmRejectsMalformedTransaction(t *testing.T) {
	svc, _ := serviceFixture(t)

	_, err := svc.Confirm(context.Background(), domain.ActionWithdraw, "req-1", "@@not-base64@@")
	assert.Error(t, err)
}

func TestConfirmUnknownRequest(t *testing.T) {
	svc, _ := serviceFixture(t)
	tx := signedDummyTransaction(t)

	_, err := svc.Confirm(context.Background(), domain.ActionWithdraw, "missing", tx)
	assert.ErrorIs(t, err, storage.ErrRequestNotFound)
}

func TestConfirmActionMismatchConsumesRequest(t *testing.T) {
	pool := solana.NewWallet().PublicKey()
	svc, store := serviceFixture(t, pool)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &domain.PendingRequest{
		ID:        "req-1",
		Action:    domain.ActionWithdraw,
		Pool:      pool,
		ExpiresAt: time.Now().Add(time.Minute),
	}))

	tx := signedDummyTransaction(t)
	_, err := svc.Confirm(ctx, domain.ActionDeposit, "req-1", tx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrRequestNotFound)

	// the record is consumed whatever the outcome; replays see nothing
	_, err = svc.Confirm(ctx, domain.ActionWithdraw, "req-1", tx)
	assert.ErrorIs(t, err, storage.ErrRequestNotFound)
}

func signedDummyTransaction(t *testing.T) string {
	t.Helper()
	wallet := solana.NewWallet()
	tx := buildTestTransaction(t, wallet, 1)
	signTransaction(t, tx, wallet)
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}
