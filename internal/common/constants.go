// Package common contains common constants and variables used across services
package common

import "github.com/gagliardetto/solana-go"

var (
	TokenProgramID  = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	Token2022ID     = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	ATAProgramID    = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	SystemProgramID = solana.SystemProgramID

	// WSOLMint is the wrapped-SOL mint; the native asset side of the
	// distinguished ZC/SOL pair.
	WSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

const (
	// MaxTransactionBytes is the hard on-chain limit for a serialized
	// transaction (IPv6 MTU minus headers). A concatenated multi-hop swap
	// is measured against this before choosing legacy vs. v0 encoding.
	MaxTransactionBytes = 1232

	// NativeFeeReserveLamports is held back from "max amount" swaps when the
	// input is SOL so the wallet can still pay network fees.
	NativeFeeReserveLamports = 10_000_000

	// BpsDenominator is the basis-point scale used for slippage and price
	// impact everywhere in the engine.
	BpsDenominator = 10_000
)
