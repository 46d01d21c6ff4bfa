package cpamm

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// PoolState is the borsh-encoded on-chain pool account, minus the 8-byte
// anchor discriminator.
type PoolState struct {
	TokenAMint  solana.PublicKey
	TokenBMint  solana.PublicKey
	TokenAVault solana.PublicKey
	TokenBVault solana.PublicKey
	LPMint      solana.PublicKey

	TradeFeeNumerator   uint64
	TradeFeeDenominator uint64
}

// Pool is a fully hydrated pool: static layout plus live vault balances.
type Pool struct {
	Address solana.PublicKey
	State   PoolState

	ReserveA uint64
	ReserveB uint64
}

// Direction returns (reserveIn, reserveOut) for a trade entering with the
// given mint, and whether the mint is the pool's A side.
func (p *Pool) Direction(inputMint solana.PublicKey) (reserveIn, reserveOut uint64, aToB bool, err error) {
	switch {
	case inputMint.Equals(p.State.TokenAMint):
		return p.ReserveA, p.ReserveB, true, nil
	case inputMint.Equals(p.State.TokenBMint):
		return p.ReserveB, p.ReserveA, false, nil
	default:
		return 0, 0, false, fmt.Errorf("cpamm: mint %s not in pool %s", inputMint, p.Address)
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

// FetchPool reads the pool account and both vault balances.
func (c *Client) FetchPool(ctx context.Context, address solana.PublicKey) (*Pool, error) {
	info, err := c.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("cpamm: fetch pool %s: %w", address, err)
	}
	data := info.Value.Data.GetBinary()
	if len(data) <= 8 {
		return nil, fmt.Errorf("cpamm: pool account %s too short", address)
	}

	var state PoolState
	if err := bin.NewBorshDecoder(data[8:]).Decode(&state); err != nil {
		return nil, fmt.Errorf("cpamm: decode pool %s: %w", address, err)
	}

	res, err := c.rpc.GetMultipleAccounts(ctx, state.TokenAVault, state.TokenBVault)
	if err != nil {
		return nil, fmt.Errorf("cpamm: fetch vaults for %s: %w", address, err)
	}
	if len(res.Value) != 2 || res.Value[0] == nil || res.Value[1] == nil {
		return nil, fmt.Errorf("cpamm: missing vault accounts for %s", address)
	}

	pool := &Pool{Address: address, State: state}
	for i, acc := range res.Value {
		var ta token.Account
		if err := bin.NewBinDecoder(acc.Data.GetBinary()).Decode(&ta); err != nil {
			return nil, fmt.Errorf("cpamm: decode vault %d for %s: %w", i, address, err)
		}
		if i == 0 {
			pool.ReserveA = ta.Amount
		} else {
			pool.ReserveB = ta.Amount
		}
	}
	return pool, nil
}
