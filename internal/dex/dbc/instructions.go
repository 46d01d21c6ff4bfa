package dbc

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/zcombinatorio/swap-engine/internal/common"
)

var swapDiscriminator = bin.SighashTypeID(bin.SIGHASH_GLOBAL_NAMESPACE, "swap")

type swapArgs struct {
	AmountIn     uint64
	MinAmountOut uint64

	// SwapBaseForQuote tells the program which direction the trade runs;
	// the curve account holds both vaults, unlike cp-amm pools.
	SwapBaseForQuote bool
}

// BuildSwapInstruction assembles an exact-in trade against the curve.
func (c *Client) BuildSwapInstruction(
	curve *Curve,
	user solana.PublicKey,
	userInputATA solana.PublicKey,
	userOutputATA solana.PublicKey,
	inputMint solana.PublicKey,
	amountIn uint64,
	minAmountOut uint64,
) (solana.Instruction, error) {
	_, _, baseForQuote, err := curve.Direction(inputMint)
	if err != nil {
		return nil, err
	}

	data := swapDiscriminator.Bytes()
	body, err := bin.MarshalBorsh(swapArgs{
		AmountIn:         amountIn,
		MinAmountOut:     minAmountOut,
		SwapBaseForQuote: baseForQuote,
	})
	if err != nil {
		return nil, fmt.Errorf("dbc: encode swap args: %w", err)
	}
	data = append(data, body...)

	accounts := solana.AccountMetaSlice{
		solana.Meta(curve.State.Config),
		solana.Meta(curve.Address).WRITE(),
		solana.Meta(curve.State.BaseVault).WRITE(),
		solana.Meta(curve.State.QuoteVault).WRITE(),
		solana.Meta(userInputATA).WRITE(),
		solana.Meta(userOutputATA).WRITE(),
		solana.Meta(user).SIGNER(),
		solana.Meta(common.TokenProgramID),
	}
	return solana.NewInstruction(c.programID, accounts, data), nil
}
