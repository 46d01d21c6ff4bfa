package builder

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog/log"

	"github.com/zcombinatorio/swap-engine/internal/common"
	"github.com/zcombinatorio/swap-engine/internal/dex/cpamm"
	"github.com/zcombinatorio/swap-engine/internal/dex/dbc"
	"github.com/zcombinatorio/swap-engine/internal/domain"
	"github.com/zcombinatorio/swap-engine/internal/services/market"
	"github.com/zcombinatorio/swap-engine/internal/services/router"
)

var (
	ErrInvalidRoute        = errors.New("invalid route")
	ErrNoLookupTable       = errors.New("address lookup table not available")
	ErrInsufficientBalance = errors.New("insufficient balance for swap")
)

// SwapRequest is the ephemeral, in-memory request for one swap execution.
type SwapRequest struct {
	Owner solana.PublicKey

	// Signer is the wallet signing and paying for the transaction. Nil
	// means build-only: the unsigned transaction is returned for an
	// external wallet to sign.
	Signer solana.PrivateKey

	From        domain.Token
	To          domain.Token
	AmountIn    uint64
	IsMaxAmount bool
	SlippageBps uint16
}

// Executor builds, sizes, signs and submits multi-hop swap transactions.
type Executor struct {
	finder   *router.Finder
	resolver *market.Resolver
	cpamm    *cpamm.Client
	dbc      *dbc.Client
	rpc      *rpc.Client

	blockhash *BlockhashCache
	luts      *LUTManager

	confirmAttempts int
	confirmInterval time.Duration
}

func NewExecutor(
	finder *router.Finder,
	resolver *market.Resolver,
	cpammClient *cpamm.Client,
	dbcClient *dbc.Client,
	rpcClient *rpc.Client,
	blockhash *BlockhashCache,
	luts *LUTManager,
	confirmAttempts int,
	confirmInterval time.Duration,
) *Executor {
	return &Executor{
		finder:          finder,
		resolver:        resolver,
		cpamm:           cpammClient,
		dbc:             dbcClient,
		rpc:             rpcClient,
		blockhash:       blockhash,
		luts:            luts,
		confirmAttempts: confirmAttempts,
		confirmInterval: confirmInterval,
	}
}

// ExecuteSwap runs the full build→size→sign→submit→confirm pipeline.
// A returned ErrConfirmTimeout still carries the result with the signature:
// status is unknown, not failed.
func (e *Executor) ExecuteSwap(ctx context.Context, req SwapRequest) (*domain.SwapResult, error) {
	if req.SlippageBps == 0 {
		req.SlippageBps = 50
	}

	route, err := e.finder.FindRoute(req.From, req.To, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoute, err)
	}
	pools, err := e.resolver.ResolveRoute(ctx, route)
	if err != nil {
		return nil, err
	}

	amountIn, err := e.resolveAmount(ctx, req)
	if err != nil {
		return nil, err
	}

	// Sequential hop walk: each hop's quoted output is the next hop's
	// input, and each hop gets its own slippage-reduced minimum.
	instructions := make([]solana.Instruction, 0, len(pools))
	running := amountIn
	var lastMinOut uint64
	for i, pool := range pools {
		ix, out, minOut, err := e.buildHop(ctx, pool, req.Owner, running, req.SlippageBps)
		if err != nil {
			return nil, fmt.Errorf("hop %d (%s): %w", i, pool.Address, err)
		}
		instructions = append(instructions, ix)
		running = out
		lastMinOut = minOut
	}

	blockhash, _, err := e.blockhash.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(req.Owner))
	if err != nil {
		return nil, fmt.Errorf("assemble transaction: %w", err)
	}

	// Three hops never fit a legacy transaction, so skip the size probe.
	versioned := len(pools) == 3
	if !versioned {
		size, err := serializedSize(tx)
		if err != nil {
			return nil, err
		}
		versioned = size > common.MaxTransactionBytes
	}
	if versioned {
		tables := e.luts.AddressTables()
		if len(tables) == 0 {
			return nil, ErrNoLookupTable
		}
		tx, err = solana.NewTransaction(instructions, blockhash,
			solana.TransactionPayer(req.Owner),
			solana.TransactionAddressTables(tables),
		)
		if err != nil {
			return nil, fmt.Errorf("assemble versioned transaction: %w", err)
		}
	}

	result := &domain.SwapResult{
		AmountIn:     amountIn,
		AmountOut:    running,
		MinAmountOut: lastMinOut,
		Versioned:    versioned,
	}

	if req.Signer == nil {
		raw, err := tx.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("serialize transaction: %w", err)
		}
		result.Transaction = base64.StdEncoding.EncodeToString(raw)
		return result, nil
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(req.Owner) {
			return &req.Signer
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := e.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return nil, fmt.Errorf("submit transaction: %w", err)
	}
	result.Signature = sig.String()

	log.Info().
		Str("signature", result.Signature).
		Int("hops", len(pools)).
		Bool("versioned", versioned).
		Msg("swap submitted")

	if err := ConfirmSignature(ctx, e.rpc, sig, e.confirmAttempts, e.confirmInterval); err != nil {
		if errors.Is(err, ErrConfirmTimeout) {
			return result, err
		}
		return nil, err
	}
	result.Confirmed = true
	return result, nil
}

// resolveAmount reads the live on-chain balance for max-amount swaps rather
// than trusting a client-supplied figure, holding back the fee reserve when
// the input is the native asset.
func (e *Executor) resolveAmount(ctx context.Context, req SwapRequest) (uint64, error) {
	if !req.IsMaxAmount {
		if req.AmountIn == 0 {
			return 0, fmt.Errorf("%w: zero amount", ErrInvalidRoute)
		}
		return req.AmountIn, nil
	}

	if req.From.IsNative() {
		res, err := e.rpc.GetBalance(ctx, req.Owner, rpc.CommitmentFinalized)
		if err != nil {
			return 0, fmt.Errorf("fetch balance: %w", err)
		}
		if res.Value <= common.NativeFeeReserveLamports {
			return 0, ErrInsufficientBalance
		}
		return res.Value - common.NativeFeeReserveLamports, nil
	}

	ata, _, err := solana.FindAssociatedTokenAddress(req.Owner, req.From.Mint)
	if err != nil {
		return 0, fmt.Errorf("derive token account: %w", err)
	}
	res, err := e.rpc.GetTokenAccountBalance(ctx, ata, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("fetch token balance: %w", err)
	}
	amount, err := strconv.ParseUint(res.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse token balance: %w", err)
	}
	if amount == 0 {
		return 0, ErrInsufficientBalance
	}
	return amount, nil
}

// buildHop quotes one hop against live state and assembles its instruction
// with a slippage-reduced minimum-output threshold.
func (e *Executor) buildHop(ctx context.Context, pool domain.PoolInfo, owner solana.PublicKey, amountIn uint64, slippageBps uint16) (solana.Instruction, uint64, uint64, error) {
	inATA, _, err := solana.FindAssociatedTokenAddress(owner, pool.InputToken.Mint)
	if err != nil {
		return nil, 0, 0, err
	}
	outATA, _, err := solana.FindAssociatedTokenAddress(owner, pool.OutputToken.Mint)
	if err != nil {
		return nil, 0, 0, err
	}

	switch pool.Type {
	case domain.PoolTypeCpAmm:
		state, err := e.cpamm.FetchPool(ctx, pool.Address)
		if err != nil {
			return nil, 0, 0, err
		}
		reserveIn, reserveOut, _, err := state.Direction(pool.InputToken.Mint)
		if err != nil {
			return nil, 0, 0, err
		}
		res, err := cpamm.GetAmountOut(amountIn, reserveIn, reserveOut,
			state.State.TradeFeeNumerator, state.State.TradeFeeDenominator)
		if err != nil {
			return nil, 0, 0, err
		}
		minOut := domain.ApplySlippageFloor(res.AmountOut, slippageBps)
		ix, err := e.cpamm.BuildSwapInstruction(state, owner, inATA, outATA, pool.InputToken.Mint, amountIn, minOut)
		if err != nil {
			return nil, 0, 0, err
		}
		return ix, res.AmountOut, minOut, nil

	case domain.PoolTypeDbc:
		curve, err := e.dbc.FetchCurve(ctx, pool.Address)
		if err != nil {
			return nil, 0, 0, err
		}
		virtualIn, virtualOut, _, err := curve.Direction(pool.InputToken.Mint)
		if err != nil {
			return nil, 0, 0, err
		}
		out, _, err := dbc.GetAmountOut(amountIn, virtualIn, virtualOut, curve.State.TradeFeeBps)
		if err != nil {
			return nil, 0, 0, err
		}
		minOut := domain.ApplySlippageFloor(out, slippageBps)
		ix, err := e.dbc.BuildSwapInstruction(curve, owner, inATA, outATA, pool.InputToken.Mint, amountIn, minOut)
		if err != nil {
			return nil, 0, 0, err
		}
		return ix, out, minOut, nil

	default:
		return nil, 0, 0, fmt.Errorf("unknown pool type %q", pool.Type)
	}
}

// serializedSize measures the signed wire size without requiring
// signatures: message bytes plus the signature array the header demands.
func serializedSize(tx *solana.Transaction) (int, error) {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("serialize message: %w", err)
	}
	return len(msg) + 1 + 64*int(tx.Message.Header.NumRequiredSignatures), nil
}
