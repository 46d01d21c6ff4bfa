package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/zcombinatorio/swap-engine/internal/http/httputil"
	"github.com/zcombinatorio/swap-engine/internal/metrics"
	"github.com/zcombinatorio/swap-engine/internal/services/builder"
	"github.com/zcombinatorio/swap-engine/internal/services/market"
	"github.com/zcombinatorio/swap-engine/internal/services/router"
)

type SwapHandler struct {
	registry *market.Registry
	executor *builder.Executor

	// signer is the configured executor wallet; nil means every swap is
	// returned unsigned for the caller's wallet to sign.
	signer solana.PrivateKey
}

func NewSwapHandler(registry *market.Registry, executor *builder.Executor, signer solana.PrivateKey) *SwapHandler {
	return &SwapHandler{registry: registry, executor: executor, signer: signer}
}

func (h *SwapHandler) Root() string {
	return "/swap"
}

func (h *SwapHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.POST("", h.executeSwap)
}

type SwapHandlerRequest struct {
	// Input and output token symbols from the registry
	From string `json:"from" binding:"required" example:"SOL"`
	To   string `json:"to" binding:"required" example:"TEST"`

	// Amount in smallest token units; ignored when isMaxAmount is set
	Amount string `json:"amount" example:"1000000000"`

	// Swap the full live balance (minus the fee reserve for SOL)
	IsMaxAmount bool `json:"isMaxAmount" example:"false"`

	// Slippage tolerance in basis points; default 50
	SlippageBps uint16 `json:"slippageBps" example:"50"`

	// Wallet executing the swap; required when no server-side signer is
	// configured, in which case the transaction is returned unsigned
	UserWallet string `json:"userWallet" example:"9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"`
}

// @Summary Execute swap
// @Description Build, size-check, sign and submit a multi-hop swap, polling for confirmation.
// @Description Routes of three hops always use a versioned transaction with the configured lookup table;
// @Description shorter routes fall back to it only when the legacy serialization exceeds the byte limit.
// @Tags swap
// @Accept json
// @Produce json
// @Param request body SwapHandlerRequest true "Swap request"
// @Success 200 {object} httputil.Response{data=domain.SwapResult}
// @Failure 400 {object} httputil.Response "Invalid parameters or insufficient balance"
// @Failure 404 {object} httputil.Response "No route or pool for the pair"
// @Failure 500 {object} httputil.Response "Lookup table unavailable or submission failure"
// @Router /api/v1/swap [post]
func (h *SwapHandler) executeSwap(c *gin.Context) {
	start := time.Now()
	defer func() {
		metrics.SwapDuration.Observe(time.Since(start).Seconds())
	}()

	var req SwapHandlerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	from, ok := h.registry.Token(req.From)
	if !ok {
		httputil.BadRequest(c, "unknown token: "+req.From)
		return
	}
	to, ok := h.registry.Token(req.To)
	if !ok {
		httputil.BadRequest(c, "unknown token: "+req.To)
		return
	}

	var amountIn uint64
	if !req.IsMaxAmount {
		var err error
		amountIn, err = strconv.ParseUint(req.Amount, 10, 64)
		if err != nil || amountIn == 0 {
			httputil.BadRequest(c, "invalid amount: must be a positive integer")
			return
		}
	}

	execReq := builder.SwapRequest{
		Signer:      h.signer,
		From:        from,
		To:          to,
		AmountIn:    amountIn,
		IsMaxAmount: req.IsMaxAmount,
		SlippageBps: req.SlippageBps,
	}
	if h.signer != nil {
		execReq.Owner = h.signer.PublicKey()
	} else {
		owner, err := solana.PublicKeyFromBase58(req.UserWallet)
		if err != nil {
			httputil.BadRequest(c, "userWallet required when no server signer is configured")
			return
		}
		execReq.Owner = owner
	}

	result, err := h.executor.ExecuteSwap(c.Request.Context(), execReq)
	if err != nil && !errors.Is(err, builder.ErrConfirmTimeout) {
		metrics.SwapRequests.WithLabelValues("error").Inc()
		switch {
		case errors.Is(err, builder.ErrInvalidRoute):
			if errors.Is(err, router.ErrSameToken) {
				httputil.BadRequest(c, "input and output tokens are identical")
			} else {
				httputil.NotFound(c, "no route found between tokens")
			}
		case errors.Is(err, market.ErrPoolNotFound):
			httputil.NotFound(c, "no pool found for token pair")
		case errors.Is(err, builder.ErrInsufficientBalance):
			httputil.BadRequest(c, "insufficient balance for swap")
		case errors.Is(err, builder.ErrNoLookupTable):
			httputil.InternalError(c, "address lookup table not available")
		default:
			httputil.InternalError(c, "swap failed: "+err.Error())
		}
		return
	}

	if result.Versioned {
		metrics.VersionedTransactions.Inc()
	}
	metrics.SwapRequests.WithLabelValues("success").Inc()

	// A confirmation timeout still returns the signature: status is
	// unknown, and the caller can verify independently.
	httputil.Success(c, result)
}
