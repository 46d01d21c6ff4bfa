package liquidity

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/zcombinatorio/swap-engine/internal/domain"
)

var (
	ErrBlockhashExpired = errors.New("transaction blockhash expired")
	ErrFeePayerMismatch = errors.New("fee payer mismatch")
	ErrSignatureInvalid = errors.New("manager signature invalid")
	ErrHashMismatch     = errors.New("transaction hash mismatch")
)

// MessageHash is the replay-protection binding: SHA-256 over the serialized
// message. Signing does not alter the message, so the hash computed at
// build time must match the signed submission bit for bit.
func MessageHash(tx *solana.Transaction) ([]byte, error) {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("serialize message: %w", err)
	}
	sum := sha256.Sum256(msg)
	return sum[:], nil
}

// ParseSignedTransaction decodes the base64 transaction a caller submits at
// confirm time.
func ParseSignedTransaction(raw string) (*solana.Transaction, error) {
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(data))
	if err != nil {
		return nil, fmt.Errorf("parse transaction: %w", err)
	}
	return tx, nil
}

// verifySubmission runs the confirm-phase check chain in order: blockhash
// validity, fee payer identity, signature validity, message-hash equality.
// Every failure fails closed; nothing is ever submitted on partial
// verification.
func (s *Service) verifySubmission(ctx context.Context, pending *domain.PendingRequest, tx *solana.Transaction, manager solana.PublicKey) error {
	valid, err := s.rpc.IsBlockhashValid(ctx, tx.Message.RecentBlockhash, rpc.CommitmentProcessed)
	if err != nil {
		return fmt.Errorf("blockhash check: %w", err)
	}
	if !valid.Value {
		return ErrBlockhashExpired
	}

	if len(tx.Message.AccountKeys) == 0 || !tx.Message.AccountKeys[0].Equals(manager) {
		return ErrFeePayerMismatch
	}

	// The manager must have actually signed: a zero placeholder passes
	// no cryptographic check.
	if len(tx.Signatures) == 0 || tx.Signatures[0].IsZero() {
		return ErrSignatureInvalid
	}
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("serialize message: %w", err)
	}
	if !tx.Signatures[0].Verify(manager, msg) {
		return ErrSignatureInvalid
	}

	hash := sha256.Sum256(msg)
	if !bytes.Equal(hash[:], pending.MessageHash) {
		return ErrHashMismatch
	}
	return nil
}
