package domain

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// LiquidityAction is the kind of rebalance operation a pending request
// represents.
type LiquidityAction string

const (
	ActionWithdraw    LiquidityAction = "withdraw"
	ActionDeposit     LiquidityAction = "deposit"
	ActionCleanupSwap LiquidityAction = "cleanup-swap"
)

// PendingRequest is the server-side record of a built-but-unconfirmed
// liquidity transaction. MessageHash binds the confirm phase to the exact
// unsigned message handed out at build time.
type PendingRequest struct {
	ID          string           `json:"id"`
	Action      LiquidityAction  `json:"action"`
	Pool        solana.PublicKey `json:"pool"`
	FeePayer    solana.PublicKey `json:"feePayer"`
	Blockhash   solana.Hash      `json:"blockhash"`
	MessageHash []byte           `json:"messageHash"`
	CreatedAt   time.Time        `json:"createdAt"`
	ExpiresAt   time.Time        `json:"expiresAt"`
}

// Expired reports whether the request is past its TTL at the given instant.
func (r *PendingRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// LiquidityBuildResult is returned from the build phase of any liquidity
// operation: the unsigned transaction plus the handle the caller must echo
// back at confirm time.
type LiquidityBuildResult struct {
	RequestID   string    `json:"requestId"`
	Transaction string    `json:"transaction"` // base64 unsigned tx
	ExpiresAt   time.Time `json:"expiresAt"`

	// Human-readable operation summary (amounts in raw units).
	Summary map[string]string `json:"summary,omitempty"`
}

// LiquidityConfirmResult is returned after a verified, countersigned
// transaction has been submitted.
type LiquidityConfirmResult struct {
	Signature string `json:"signature"`
	Confirmed bool   `json:"confirmed"`
}
