// Package domain holds the core data model shared by the routing, quoting
// and liquidity services.
package domain

import (
	"github.com/gagliardetto/solana-go"

	"github.com/zcombinatorio/swap-engine/internal/common"
)

// Token is one entry of the deploy-time token table.
type Token struct {
	Symbol   string           `json:"symbol"`
	Mint     solana.PublicKey `json:"mint"`
	Decimals uint8            `json:"decimals"`
	Name     string           `json:"name,omitempty"`
	LogoURI  string           `json:"logoURI,omitempty"`
}

// IsNative reports whether the token is (wrapped) SOL.
func (t Token) IsNative() bool {
	return t.Mint.Equals(common.WSOLMint)
}
