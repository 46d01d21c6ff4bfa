package dbc

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// CurveState is the borsh-encoded bonding-curve account, minus the 8-byte
// anchor discriminator.
type CurveState struct {
	Config     solana.PublicKey
	BaseMint   solana.PublicKey
	QuoteMint  solana.PublicKey
	BaseVault  solana.PublicKey
	QuoteVault solana.PublicKey

	VirtualBaseReserve  uint64
	VirtualQuoteReserve uint64
	RealBaseReserve     uint64
	RealQuoteReserve    uint64

	TradeFeeBps      uint16
	MigrationFeeTier uint8

	// MigrationProgress is 0 while trading, 1 once the curve is complete
	// and 2 after liquidity has moved to the graduated cp-amm pool.
	MigrationProgress uint8
}

// Curve is a hydrated bonding-curve pool.
type Curve struct {
	Address solana.PublicKey
	State   CurveState
}

// Migrated reports whether liquidity has left the curve for a cp-amm pool.
func (c *Curve) Migrated() bool {
	return c.State.MigrationProgress >= 2
}

// Direction returns the virtual (reserveIn, reserveOut) for a trade entering
// with the given mint, and whether it is a base-for-quote trade.
func (c *Curve) Direction(inputMint solana.PublicKey) (virtualIn, virtualOut uint64, baseForQuote bool, err error) {
	switch {
	case inputMint.Equals(c.State.BaseMint):
		return c.State.VirtualBaseReserve, c.State.VirtualQuoteReserve, true, nil
	case inputMint.Equals(c.State.QuoteMint):
		return c.State.VirtualQuoteReserve, c.State.VirtualBaseReserve, false, nil
	default:
		return 0, 0, false, fmt.Errorf("dbc: mint %s not in curve %s", inputMint, c.Address)
	}
}

type Client struct {
	rpc       *rpc.Client
	programID solana.PublicKey
}

func NewClient(rpcClient *rpc.Client, programID solana.PublicKey) *Client {
	return &Client{rpc: rpcClient, programID: programID}
}

func (c *Client) ProgramID() solana.PublicKey {
	return c.programID
}

// FetchCurve reads and decodes the bonding-curve account.
func (c *Client) FetchCurve(ctx context.Context, address solana.PublicKey) (*Curve, error) {
	info, err := c.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("dbc: fetch curve %s: %w", address, err)
	}
	data := info.Value.Data.GetBinary()
	if len(data) <= 8 {
		return nil, fmt.Errorf("dbc: curve account %s too short", address)
	}

	var state CurveState
	if err := bin.NewBorshDecoder(data[8:]).Decode(&state); err != nil {
		return nil, fmt.Errorf("dbc: decode curve %s: %w", address, err)
	}
	return &Curve{Address: address, State: state}, nil
}
