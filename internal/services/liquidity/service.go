package liquidity

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/zcombinatorio/swap-engine/internal/dex/cpamm"
	"github.com/zcombinatorio/swap-engine/internal/domain"
	"github.com/zcombinatorio/swap-engine/internal/jupiter"
	"github.com/zcombinatorio/swap-engine/internal/services/builder"
	"github.com/zcombinatorio/swap-engine/internal/storage"
)

var (
	ErrNotWhitelisted    = errors.New("pool not whitelisted")
	ErrInvalidPercentage = errors.New("withdrawal percentage must be in (0, 50]")
	ErrNoLeftover        = errors.New("no leftover balances to clean up")
)

// rebalanceSlippageBps bounds how far execution may drift from the state
// read at build time for minimum-output/minimum-received thresholds.
const rebalanceSlippageBps = 100

// Service owns the three rebalance operations. Builds are stateless compute
// plus one store write; confirms serialize per pool through the keyed lock.
type Service struct {
	keys  storage.KeyStore
	store storage.RequestStore
	locks *keyedLocks

	cpamm     *cpamm.Client
	rpc       *rpc.Client
	blockhash *builder.BlockhashCache
	jup       *jupiter.Client

	ttl             time.Duration
	confirmAttempts int
	confirmInterval time.Duration
}

func NewService(
	keys storage.KeyStore,
	store storage.RequestStore,
	cpammClient *cpamm.Client,
	rpcClient *rpc.Client,
	blockhash *builder.BlockhashCache,
	jup *jupiter.Client,
	ttl time.Duration,
	confirmAttempts int,
	confirmInterval time.Duration,
) *Service {
	return &Service{
		keys:            keys,
		store:           store,
		locks:           newKeyedLocks(),
		cpamm:           cpammClient,
		rpc:             rpcClient,
		blockhash:       blockhash,
		jup:             jup,
		ttl:             ttl,
		confirmAttempts: confirmAttempts,
		confirmInterval: confirmInterval,
	}
}

// authorize runs the whitelist gate before any other I/O, then loads the
// pool's signing material.
func (s *Service) authorize(ctx context.Context, pool solana.PublicKey) (*storage.PoolSecrets, error) {
	ok, err := s.keys.IsWhitelisted(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("whitelist check: %w", err)
	}
	if !ok {
		return nil, ErrNotWhitelisted
	}
	secrets, err := s.keys.PoolSecrets(ctx, pool)
	if err != nil {
		return nil, err
	}
	return secrets, nil
}

// BuildWithdraw builds an unsigned remove-liquidity transaction for a
// percentage of the LP position. Capped at 50% per call so a fat-fingered
// request cannot empty the position.
func (s *Service) BuildWithdraw(ctx context.Context, poolAddr solana.PublicKey, percentage float64) (*domain.LiquidityBuildResult, error) {
	if percentage <= 0 || percentage > 50 {
		return nil, ErrInvalidPercentage
	}
	secrets, err := s.authorize(ctx, poolAddr)
	if err != nil {
		return nil, err
	}
	manager := secrets.Manager.PublicKey()
	lpOwner := secrets.LPOwner.PublicKey()

	pool, err := s.cpamm.FetchPool(ctx, poolAddr)
	if err != nil {
		return nil, err
	}

	lpATA, _, err := solana.FindAssociatedTokenAddress(lpOwner, pool.State.LPMint)
	if err != nil {
		return nil, err
	}
	lpBalance, err := s.tokenBalance(ctx, lpATA)
	if err != nil {
		return nil, fmt.Errorf("fetch lp balance: %w", err)
	}
	lpAmount := decimal.NewFromUint64(lpBalance).
		Mul(decimal.NewFromFloat(percentage)).
		Div(decimal.NewFromInt(100)).
		Truncate(0).BigInt().Uint64()
	if lpAmount == 0 {
		return nil, fmt.Errorf("lp position too small for %.2f%% withdrawal", percentage)
	}

	supply, err := s.lpSupply(ctx, pool.State.LPMint)
	if err != nil {
		return nil, err
	}
	estA := mulDiv(pool.ReserveA, lpAmount, supply)
	estB := mulDiv(pool.ReserveB, lpAmount, supply)
	minA := domain.ApplySlippageFloor(estA, rebalanceSlippageBps)
	minB := domain.ApplySlippageFloor(estB, rebalanceSlippageBps)

	ownerA, _, err := solana.FindAssociatedTokenAddress(lpOwner, pool.State.TokenAMint)
	if err != nil {
		return nil, err
	}
	ownerB, _, err := solana.FindAssociatedTokenAddress(lpOwner, pool.State.TokenBMint)
	if err != nil {
		return nil, err
	}

	ix, err := s.cpamm.BuildRemoveLiquidityInstruction(pool, lpOwner, lpATA, ownerA, ownerB, lpAmount, minA, minB)
	if err != nil {
		return nil, err
	}

	return s.storeUnsigned(ctx, domain.ActionWithdraw, poolAddr, manager, []solana.Instruction{ix}, map[string]string{
		"lpAmount":         strconv.FormatUint(lpAmount, 10),
		"estimatedAmountA": strconv.FormatUint(estA, 10),
		"estimatedAmountB": strconv.FormatUint(estB, 10),
	})
}

// BuildDeposit builds an unsigned add-liquidity transaction. Zero amounts
// on both sides activate cleanup mode: the LP owner's live token balances
// are read and balanced at the pool's current price, with the price-implied
// excess left over for a later cleanup swap.
func (s *Service) BuildDeposit(ctx context.Context, poolAddr solana.PublicKey, amountA, amountB uint64) (*domain.LiquidityBuildResult, error) {
	secrets, err := s.authorize(ctx, poolAddr)
	if err != nil {
		return nil, err
	}
	manager := secrets.Manager.PublicKey()
	lpOwner := secrets.LPOwner.PublicKey()

	pool, err := s.cpamm.FetchPool(ctx, poolAddr)
	if err != nil {
		return nil, err
	}
	ownerA, _, err := solana.FindAssociatedTokenAddress(lpOwner, pool.State.TokenAMint)
	if err != nil {
		return nil, err
	}
	ownerB, _, err := solana.FindAssociatedTokenAddress(lpOwner, pool.State.TokenBMint)
	if err != nil {
		return nil, err
	}

	cleanup := amountA == 0 && amountB == 0
	if cleanup {
		if amountA, err = s.tokenBalance(ctx, ownerA); err != nil {
			return nil, fmt.Errorf("fetch token A balance: %w", err)
		}
		if amountB, err = s.tokenBalance(ctx, ownerB); err != nil {
			return nil, fmt.Errorf("fetch token B balance: %w", err)
		}
	}

	plan, err := PlanBalancedDeposit(amountA, amountB, pool.ReserveA, pool.ReserveB)
	if err != nil {
		return nil, err
	}
	if plan.AmountA == 0 || plan.AmountB == 0 {
		return nil, ErrNoLeftover
	}

	supply, err := s.lpSupply(ctx, pool.State.LPMint)
	if err != nil {
		return nil, err
	}
	estLP := mulDiv(supply, plan.AmountA, pool.ReserveA)
	minLP := domain.ApplySlippageFloor(estLP, rebalanceSlippageBps)

	lpATA, _, err := solana.FindAssociatedTokenAddress(lpOwner, pool.State.LPMint)
	if err != nil {
		return nil, err
	}
	ix, err := s.cpamm.BuildAddLiquidityInstruction(pool, lpOwner, lpATA, ownerA, ownerB, plan.AmountA, plan.AmountB, minLP)
	if err != nil {
		return nil, err
	}

	return s.storeUnsigned(ctx, domain.ActionDeposit, poolAddr, manager, []solana.Instruction{ix}, map[string]string{
		"cleanupMode": strconv.FormatBool(cleanup),
		"depositedA":  strconv.FormatUint(plan.AmountA, 10),
		"depositedB":  strconv.FormatUint(plan.AmountB, 10),
		"leftoverA":   strconv.FormatUint(plan.LeftoverA, 10),
		"leftoverB":   strconv.FormatUint(plan.LeftoverB, 10),
	})
}

// BuildCleanupSwap sizes a dust-sweeping trade at half the price-implied
// excess and builds it against the pool directly. The aggregator is
// consulted for the expected output first; its quote tightens the minimum
// received, and any aggregator failure falls back to pool math.
func (s *Service) BuildCleanupSwap(ctx context.Context, poolAddr solana.PublicKey) (*domain.LiquidityBuildResult, error) {
	secrets, err := s.authorize(ctx, poolAddr)
	if err != nil {
		return nil, err
	}
	manager := secrets.Manager.PublicKey()
	lpOwner := secrets.LPOwner.PublicKey()

	pool, err := s.cpamm.FetchPool(ctx, poolAddr)
	if err != nil {
		return nil, err
	}
	ownerA, _, err := solana.FindAssociatedTokenAddress(lpOwner, pool.State.TokenAMint)
	if err != nil {
		return nil, err
	}
	ownerB, _, err := solana.FindAssociatedTokenAddress(lpOwner, pool.State.TokenBMint)
	if err != nil {
		return nil, err
	}
	availA, err := s.tokenBalance(ctx, ownerA)
	if err != nil {
		return nil, fmt.Errorf("fetch token A balance: %w", err)
	}
	availB, err := s.tokenBalance(ctx, ownerB)
	if err != nil {
		return nil, fmt.Errorf("fetch token B balance: %w", err)
	}

	plan, err := PlanCleanupSwap(availA, availB, pool.ReserveA, pool.ReserveB)
	if err != nil {
		return nil, err
	}
	if plan.AmountIn == 0 {
		return nil, ErrNoLeftover
	}

	inputMint, inATA, outATA := pool.State.TokenAMint, ownerA, ownerB
	if !plan.InputIsA {
		inputMint, inATA, outATA = pool.State.TokenBMint, ownerB, ownerA
	}

	expectedOut, err := s.cleanupQuote(ctx, pool, inputMint, plan.AmountIn)
	if err != nil {
		return nil, err
	}
	minOut := domain.ApplySlippageFloor(expectedOut, rebalanceSlippageBps)

	ix, err := s.cpamm.BuildSwapInstruction(pool, lpOwner, inATA, outATA, inputMint, plan.AmountIn, minOut)
	if err != nil {
		return nil, err
	}

	return s.storeUnsigned(ctx, domain.ActionCleanupSwap, poolAddr, manager, []solana.Instruction{ix}, map[string]string{
		"inputMint":   inputMint.String(),
		"amountIn":    strconv.FormatUint(plan.AmountIn, 10),
		"expectedOut": strconv.FormatUint(expectedOut, 10),
	})
}

// cleanupQuote prices the cleanup trade, preferring the aggregator and
// degrading to the pool's own math on any aggregator failure.
func (s *Service) cleanupQuote(ctx context.Context, pool *cpamm.Pool, inputMint solana.PublicKey, amountIn uint64) (uint64, error) {
	outputMint := pool.State.TokenBMint
	if inputMint.Equals(pool.State.TokenBMint) {
		outputMint = pool.State.TokenAMint
	}

	if s.jup != nil {
		resp, err := s.jup.Quote(ctx, jupiter.QuoteRequest{
			InputMint:  inputMint.String(),
			OutputMint: outputMint.String(),
			Amount:     strconv.FormatUint(amountIn, 10),
		})
		if err == nil {
			if out, perr := strconv.ParseUint(resp.OutAmount, 10, 64); perr == nil && out > 0 {
				return out, nil
			}
		} else {
			log.Warn().Err(err).Msg("aggregator quote failed for cleanup swap, using pool math")
		}
	}

	reserveIn, reserveOut, _, err := pool.Direction(inputMint)
	if err != nil {
		return 0, err
	}
	res, err := cpamm.GetAmountOut(amountIn, reserveIn, reserveOut,
		pool.State.TradeFeeNumerator, pool.State.TradeFeeDenominator)
	if err != nil {
		return 0, err
	}
	return res.AmountOut, nil
}

// storeUnsigned assembles the unsigned transaction with the manager as fee
// payer, records its message hash under a fresh request id, and returns the
// build result.
func (s *Service) storeUnsigned(
	ctx context.Context,
	action domain.LiquidityAction,
	pool solana.PublicKey,
	manager solana.PublicKey,
	instructions []solana.Instruction,
	summary map[string]string,
) (*domain.LiquidityBuildResult, error) {
	blockhash, _, err := s.blockhash.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch blockhash: %w", err)
	}
	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(manager))
	if err != nil {
		return nil, fmt.Errorf("assemble transaction: %w", err)
	}
	hash, err := MessageHash(tx)
	if err != nil {
		return nil, err
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}

	now := time.Now()
	pending := &domain.PendingRequest{
		ID:          uuid.NewString(),
		Action:      action,
		Pool:        pool,
		FeePayer:    manager,
		Blockhash:   blockhash,
		MessageHash: hash,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	if err := s.store.Put(ctx, pending); err != nil {
		return nil, fmt.Errorf("store pending request: %w", err)
	}

	log.Info().
		Str("requestId", pending.ID).
		Str("action", string(action)).
		Str("pool", pool.String()).
		Msg("liquidity transaction built")

	return &domain.LiquidityBuildResult{
		RequestID:   pending.ID,
		Transaction: base64.StdEncoding.EncodeToString(raw),
		ExpiresAt:   pending.ExpiresAt,
		Summary:     summary,
	}, nil
}

// Confirm consumes a pending request, serializes on the pool lock, runs the
// verification chain, countersigns with the LP owner and submits. The
// pending record is gone after this call whatever the outcome; a failed
// verification requires a fresh build.
func (s *Service) Confirm(ctx context.Context, action domain.LiquidityAction, requestID, signedTx string) (*domain.LiquidityConfirmResult, error) {
	tx, err := ParseSignedTransaction(signedTx)
	if err != nil {
		return nil, err
	}

	pending, err := s.store.Take(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pending.Action != action {
		return nil, fmt.Errorf("request %s is a %s, not a %s", requestID, pending.Action, action)
	}

	secrets, err := s.authorize(ctx, pending.Pool)
	if err != nil {
		return nil, err
	}

	// Serialize against other rebalance operations on this pool: a
	// withdraw and a deposit must never race on one LP position.
	release, err := s.locks.Acquire(ctx, pending.Pool.String())
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.verifySubmission(ctx, pending, tx, secrets.Manager.PublicKey()); err != nil {
		return nil, err
	}

	lpOwner := secrets.LPOwner
	if _, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(lpOwner.PublicKey()) {
			return &lpOwner
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("countersign transaction: %w", err)
	}

	sig, err := s.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return nil, fmt.Errorf("submit transaction: %w", err)
	}

	result := &domain.LiquidityConfirmResult{Signature: sig.String()}

	// Best effort: the transaction is already on the wire, so a polling
	// timeout is reported with the signature, never rolled back.
	if err := builder.ConfirmSignature(ctx, s.rpc, sig, s.confirmAttempts, s.confirmInterval); err != nil {
		log.Warn().Err(err).
			Str("signature", result.Signature).
			Str("requestId", requestID).
			Msg("liquidity confirmation did not finalize")
		return result, nil
	}
	result.Confirmed = true

	log.Info().
		Str("signature", result.Signature).
		Str("action", string(action)).
		Str("pool", pending.Pool.String()).
		Msg("liquidity operation confirmed")
	return result, nil
}

func (s *Service) tokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	res, err := s.rpc.GetTokenAccountBalance(ctx, account, rpc.CommitmentFinalized)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(res.Value.Amount, 10, 64)
}

func (s *Service) lpSupply(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	res, err := s.rpc.GetTokenSupply(ctx, mint, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("fetch lp supply: %w", err)
	}
	supply, err := strconv.ParseUint(res.Value.Amount, 10, 64)
	if err != nil || supply == 0 {
		return 0, fmt.Errorf("invalid lp supply %q", res.Value.Amount)
	}
	return supply, nil
}
