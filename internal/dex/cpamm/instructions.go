package cpamm

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/zcombinatorio/swap-engine/internal/common"
)

var (
	swapDiscriminator            = bin.SighashTypeID(bin.SIGHASH_GLOBAL_NAMESPACE, "swap")
	addLiquidityDiscriminator    = bin.SighashTypeID(bin.SIGHASH_GLOBAL_NAMESPACE, "add_liquidity")
	removeLiquidityDiscriminator = bin.SighashTypeID(bin.SIGHASH_GLOBAL_NAMESPACE, "remove_liquidity")
)

type swapArgs struct {
	AmountIn     uint64
	MinAmountOut uint64
}

type addLiquidityArgs struct {
	MaxAmountA uint64
	MaxAmountB uint64
	MinLPOut   uint64
}

type removeLiquidityArgs struct {
	LPAmount   uint64
	MinAmountA uint64
	MinAmountB uint64
}

func encodeArgs(discriminator bin.TypeID, args interface{}) ([]byte, error) {
	buf := make([]byte, 0, 32)
	buf = append(buf, discriminator.Bytes()...)
	body, err := bin.MarshalBorsh(args)
	if err != nil {
		return nil, fmt.Errorf("cpamm: encode args: %w", err)
	}
	return append(buf, body...), nil
}

// BuildSwapInstruction assembles the exact-in swap for a hydrated pool.
// Direction follows from which vault matches the user's input mint.
func (c *Client) BuildSwapInstruction(
	pool *Pool,
	user solana.PublicKey,
	userInputATA solana.PublicKey,
	userOutputATA solana.PublicKey,
	inputMint solana.PublicKey,
	amountIn uint64,
	minAmountOut uint64,
) (solana.Instruction, error) {
	_, _, aToB, err := pool.Direction(inputMint)
	if err != nil {
		return nil, err
	}
	inVault, outVault := pool.State.TokenAVault, pool.State.TokenBVault
	if !aToB {
		inVault, outVault = outVault, inVault
	}

	data, err := encodeArgs(swapDiscriminator, swapArgs{
		AmountIn:     amountIn,
		MinAmountOut: minAmountOut,
	})
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(pool.Address).WRITE(),
		solana.Meta(inVault).WRITE(),
		solana.Meta(outVault).WRITE(),
		solana.Meta(userInputATA).WRITE(),
		solana.Meta(userOutputATA).WRITE(),
		solana.Meta(user).SIGNER(),
		solana.Meta(common.TokenProgramID),
	}
	return solana.NewInstruction(c.programID, accounts, data), nil
}

// BuildRemoveLiquidityInstruction burns LP tokens held by lpOwner and
// releases both sides of the pool to the owner's token accounts.
func (c *Client) BuildRemoveLiquidityInstruction(
	pool *Pool,
	lpOwner solana.PublicKey,
	lpTokenAccount solana.PublicKey,
	ownerAccountA solana.PublicKey,
	ownerAccountB solana.PublicKey,
	lpAmount uint64,
	minAmountA uint64,
	minAmountB uint64,
) (solana.Instruction, error) {
	data, err := encodeArgs(removeLiquidityDiscriminator, removeLiquidityArgs{
		LPAmount:   lpAmount,
		MinAmountA: minAmountA,
		MinAmountB: minAmountB,
	})
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(pool.Address).WRITE(),
		solana.Meta(pool.State.LPMint).WRITE(),
		solana.Meta(pool.State.TokenAVault).WRITE(),
		solana.Meta(pool.State.TokenBVault).WRITE(),
		solana.Meta(lpTokenAccount).WRITE(),
		solana.Meta(ownerAccountA).WRITE(),
		solana.Meta(ownerAccountB).WRITE(),
		solana.Meta(lpOwner).SIGNER(),
		solana.Meta(common.TokenProgramID),
	}
	return solana.NewInstruction(c.programID, accounts, data), nil
}

// BuildAddLiquidityInstruction deposits up to maxAmountA/maxAmountB from the
// owner's token accounts; the program takes the balanced portion.
func (c *Client) BuildAddLiquidityInstruction(
	pool *Pool,
	lpOwner solana.PublicKey,
	lpTokenAccount solana.PublicKey,
	ownerAccountA solana.PublicKey,
	ownerAccountB solana.PublicKey,
	maxAmountA uint64,
	maxAmountB uint64,
	minLPOut uint64,
) (solana.Instruction, error) {
	data, err := encodeArgs(addLiquidityDiscriminator, addLiquidityArgs{
		MaxAmountA: maxAmountA,
		MaxAmountB: maxAmountB,
		MinLPOut:   minLPOut,
	})
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.Meta(pool.Address).WRITE(),
		solana.Meta(pool.State.LPMint).WRITE(),
		solana.Meta(pool.State.TokenAVault).WRITE(),
		solana.Meta(pool.State.TokenBVault).WRITE(),
		solana.Meta(lpTokenAccount).WRITE(),
		solana.Meta(ownerAccountA).WRITE(),
		solana.Meta(ownerAccountB).WRITE(),
		solana.Meta(lpOwner).SIGNER(),
		solana.Meta(common.TokenProgramID),
	}
	return solana.NewInstruction(c.programID, accounts, data), nil
}
