package liquidity

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcombinatorio/swap-engine/internal/domain"
)

// blockhashValidStub answers every isBlockhashValid call with a fixed value.
func blockhashValidStub(t *testing.T, valid bool) *rpc.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":%t}}`, valid)
	}))
	t.Cleanup(srv.Close)
	return rpc.New(srv.URL)
}

func buildTestTransaction(t *testing.T, payer *solana.Wallet, lamports uint64) *solana.Transaction {
	t.Helper()
	dest := solana.NewWallet().PublicKey()
	ix := system.NewTransferInstruction(lamports, payer.PublicKey(), dest).Build()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		solana.Hash{1, 2, 3},
		solana.TransactionPayer(payer.PublicKey()),
	)
	require.NoError(t, err)
	return tx
}

func signTransaction(t *testing.T, tx *solana.Transaction, signer *solana.Wallet) {
	t.Helper()
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(signer.PublicKey()) {
			return &signer.PrivateKey
		}
		return nil
	})
	require.NoError(t, err)
}

func pendingFor(t *testing.T, tx *solana.Transaction) *domain.PendingRequest {
	t.Helper()
	hash, err := MessageHash(tx)
	require.NoError(t, err)
	return &domain.PendingRequest{ID: "req-1", MessageHash: hash}
}

func TestVerifySubmissionAccepts(t *testing.T) {
	manager := solana.NewWallet()
	tx := buildTestTransaction(t, manager, 100)
	pending := pendingFor(t, tx)
	signTransaction(t, tx, manager)

	svc := &Service{rpc: blockhashValidStub(t, true)}
	err := svc.verifySubmission(context.Background(), pending, tx, manager.PublicKey())
	assert.NoError(t, err)
}

func TestVerifySubmissionBlockhashExpired(t *testing.T) {
	manager := solana.NewWallet()
	tx := buildTestTransaction(t, manager, 100)
	pending := pendingFor(t, tx)
	signTransaction(t, tx, manager)

	svc := &Service{rpc: blockhashValidStub(t, false)}
	err := svc.verifySubmission(context.Background(), pending, tx, manager.PublicKey())
	assert.ErrorIs(t, err, ErrBlockhashExpired)
}

func TestVerifySubmissionFeePayerMismatch(t *testing.T) {
	manager := solana.NewWallet()
	imposter := solana.NewWallet()
	tx := buildTestTransaction(t, imposter, 100)
	pending := pendingFor(t, tx)
	signTransaction(t, tx, imposter)

	svc := &Service{rpc: blockhashValidStub(t, true)}
	err := svc.verifySubmission(context.Background(), pending, tx, manager.PublicKey())
	assert.ErrorIs(t, err, ErrFeePayerMismatch)
}

func TestVerifySubmissionUnsignedRejected(t *testing.T) {
	manager := solana.NewWallet()
	tx := buildTestTransaction(t, manager, 100)
	pending := pendingFor(t, tx)
	// never signed: the signature slot is a zero placeholder at best

	svc := &Service{rpc: blockhashValidStub(t, true)}
	err := svc.verifySubmission(context.Background(), pending, tx, manager.PublicKey())
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifySubmissionWrongSignerRejected(t *testing.T) {
	manager := solana.NewWallet()
	tx := buildTestTransaction(t, manager, 100)
	pending := pendingFor(t, tx)

	// forge: a valid ed25519 signature, but from the wrong key
	msg, err := tx.Message.MarshalBinary()
	require.NoError(t, err)
	forged, err := solana.NewWallet().PrivateKey.Sign(msg)
	require.NoError(t, err)
	tx.Signatures = []solana.Signature{forged}

	svc := &Service{rpc: blockhashValidStub(t, true)}
	err = svc.verifySubmission(context.Background(), pending, tx, manager.PublicKey())
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifySubmissionTamperedTransactionRejected(t *testing.T) {
	manager := solana.NewWallet()
	original := buildTestTransaction(t, manager, 100)
	pending := pendingFor(t, original)

	// properly signed transaction whose message differs from the one built
	swapped := buildTestTransaction(t, manager, 999)
	signTransaction(t, swapped, manager)

	svc := &Service{rpc: blockhashValidStub(t, true)}
	err := svc.verifySubmission(context.Background(), pending, swapped, manager.PublicKey())
	assert.ErrorIs(t, err, ErrHashMismatch)
}

func TestParseSignedTransactionRoundTrip(t *testing.T) {
	manager := solana.NewWallet()
	tx := buildTestTransaction(t, manager, 100)
	signTransaction(t, tx, manager)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	encoded := base64.StdEncoding.EncodeToString(raw)

	parsed, err := ParseSignedTransaction(encoded)
	require.NoError(t, err)

	wantHash, err := MessageHash(tx)
	require.NoError(t, err)
	gotHash, err := MessageHash(parsed)
	require.NoError(t, err)
	assert.Equal(t, wantHash, gotHash)
	assert.Equal(t, tx.Signatures, parsed.Signatures)
}

func TestParseSignedTransactionRejectsGarbage(t *testing.T) {
	_, err := ParseSignedTransaction("not base64!!!")
	assert.Error(t, err)

	_, err = ParseSignedTransaction(base64.StdEncoding.EncodeToString([]byte("junk")))
	assert.Error(t, err)
}
