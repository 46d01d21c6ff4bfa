package http

import (
	"errors"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/zcombinatorio/swap-engine/internal/domain"
	"github.com/zcombinatorio/swap-engine/internal/http/httputil"
	"github.com/zcombinatorio/swap-engine/internal/http/middlewares"
	"github.com/zcombinatorio/swap-engine/internal/metrics"
	"github.com/zcombinatorio/swap-engine/internal/services/liquidity"
	"github.com/zcombinatorio/swap-engine/internal/storage"
)

type LiquidityHandler struct {
	svc     *liquidity.Service
	limiter *middlewares.RateLimiter
}

func NewLiquidityHandler(svc *liquidity.Service, limiter *middlewares.RateLimiter) *LiquidityHandler {
	return &LiquidityHandler{svc: svc, limiter: limiter}
}

func (h *LiquidityHandler) Root() string {
	return "/liquidity"
}

func (h *LiquidityHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	// All liquidity mutations share the per-IP budget.
	pub.Use(h.limiter.Middleware())

	pub.POST("/withdraw/build", h.buildWithdraw)
	pub.POST("/withdraw/confirm", h.confirm(domain.ActionWithdraw))
	pub.POST("/deposit/build", h.buildDeposit)
	pub.POST("/deposit/confirm", h.confirm(domain.ActionDeposit))
	pub.POST("/cleanup/swap/build", h.buildCleanupSwap)
	pub.POST("/cleanup/swap/confirm", h.confirm(domain.ActionCleanupSwap))
}

type WithdrawBuildRequest struct {
	PoolAddress string `json:"poolAddress" binding:"required"`

	// Percentage of the LP position to withdraw, in (0, 50]
	WithdrawalPercentage float64 `json:"withdrawalPercentage" binding:"required"`
}

type DepositBuildRequest struct {
	PoolAddress string `json:"poolAddress" binding:"required"`

	// Raw-unit amounts; both zero or omitted activates cleanup mode
	TokenAAmount string `json:"tokenAAmount"`
	TokenBAmount string `json:"tokenBAmount"`
}

type CleanupSwapBuildRequest struct {
	PoolAddress string `json:"poolAddress" binding:"required"`
}

type ConfirmRequest struct {
	RequestID         string `json:"requestId" binding:"required"`
	SignedTransaction string `json:"signedTransaction" binding:"required"`
}

// @Summary Build withdraw transaction
// @Description Build an unsigned remove-liquidity transaction for a percentage of the LP position.
// @Description The manager wallet signs the returned transaction out-of-band, then calls the confirm endpoint.
// @Tags liquidity
// @Accept json
// @Produce json
// @Param request body WithdrawBuildRequest true "Withdraw build request"
// @Success 200 {object} httputil.Response{data=domain.LiquidityBuildResult}
// @Failure 400 {object} httputil.Response "Invalid pool address or percentage"
// @Failure 403 {object} httputil.Response "Pool not whitelisted"
// @Failure 429 {object} map[string]string "Rate limit exceeded"
// @Router /api/v1/liquidity/withdraw/build [post]
func (h *LiquidityHandler) buildWithdraw(c *gin.Context) {
	var req WithdrawBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	pool, err := solana.PublicKeyFromBase58(req.PoolAddress)
	if err != nil {
		httputil.BadRequest(c, "invalid poolAddress")
		return
	}

	res, err := h.svc.BuildWithdraw(c.Request.Context(), pool, req.WithdrawalPercentage)
	h.respond(c, domain.ActionWithdraw, "build", res, err)
}

// @Summary Build deposit transaction
// @Description Build an unsigned add-liquidity transaction. Omitting both amounts activates cleanup
// @Description mode: live LP-owner balances are balanced at the pool price and the excess is reported as leftover.
// @Tags liquidity
// @Accept json
// @Produce json
// @Param request body DepositBuildRequest true "Deposit build request"
// @Success 200 {object} httputil.Response{data=domain.LiquidityBuildResult}
// @Failure 400 {object} httputil.Response "Invalid parameters or nothing to deposit"
// @Failure 403 {object} httputil.Response "Pool not whitelisted"
// @Router /api/v1/liquidity/deposit/build [post]
func (h *LiquidityHandler) buildDeposit(c *gin.Context) {
	var req DepositBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	pool, err := solana.PublicKeyFromBase58(req.PoolAddress)
	if err != nil {
		httputil.BadRequest(c, "invalid poolAddress")
		return
	}
	amountA, ok := parseOptionalAmount(req.TokenAAmount)
	if !ok {
		httputil.BadRequest(c, "invalid tokenAAmount")
		return
	}
	amountB, ok := parseOptionalAmount(req.TokenBAmount)
	if !ok {
		httputil.BadRequest(c, "invalid tokenBAmount")
		return
	}

	res, err := h.svc.BuildDeposit(c.Request.Context(), pool, amountA, amountB)
	h.respond(c, domain.ActionDeposit, "build", res, err)
}

// @Summary Build cleanup swap transaction
// @Description Size a dust-sweeping trade at half the price-implied excess of the LP owner's leftover
// @Description balances and build it as an unsigned transaction.
// @Tags liquidity
// @Accept json
// @Produce json
// @Param request body CleanupSwapBuildRequest true "Cleanup swap build request"
// @Success 200 {object} httputil.Response{data=domain.LiquidityBuildResult}
// @Failure 400 {object} httputil.Response "No leftover to clean up"
// @Failure 403 {object} httputil.Response "Pool not whitelisted"
// @Router /api/v1/liquidity/cleanup/swap/build [post]
func (h *LiquidityHandler) buildCleanupSwap(c *gin.Context) {
	var req CleanupSwapBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	pool, err := solana.PublicKeyFromBase58(req.PoolAddress)
	if err != nil {
		httputil.BadRequest(c, "invalid poolAddress")
		return
	}

	res, err := h.svc.BuildCleanupSwap(c.Request.Context(), pool)
	h.respond(c, domain.ActionCleanupSwap, "build", res, err)
}

// @Summary Confirm liquidity transaction
// @Description Verify a manager-signed transaction against the pending request (expiry, blockhash,
// @Description fee payer, signature, message hash), countersign with the LP owner and submit.
// @Tags liquidity
// @Accept json
// @Produce json
// @Param request body ConfirmRequest true "Confirm request"
// @Success 200 {object} httputil.Response{data=domain.LiquidityConfirmResult} "Submitted; confirmed may be false on polling timeout"
// @Failure 400 {object} httputil.Response "Unknown/expired request or failed verification"
// @Failure 403 {object} httputil.Response "Pool not whitelisted"
// @Router /api/v1/liquidity/withdraw/confirm [post]
func (h *LiquidityHandler) confirm(action domain.LiquidityAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConfirmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
		res, err := h.svc.Confirm(c.Request.Context(), action, req.RequestID, req.SignedTransaction)
		h.respond(c, action, "confirm", res, err)
	}
}

// respond maps service errors onto the failure taxonomy: 403 authorization,
// 400 client/staleness/tampering, 500 misconfiguration.
func (h *LiquidityHandler) respond(c *gin.Context, action domain.LiquidityAction, phase string, data interface{}, err error) {
	if err == nil {
		metrics.LiquidityRequests.WithLabelValues(string(action), phase, "success").Inc()
		httputil.Success(c, data)
		return
	}
	metrics.LiquidityRequests.WithLabelValues(string(action), phase, "error").Inc()

	switch {
	case errors.Is(err, liquidity.ErrNotWhitelisted):
		httputil.Forbidden(c, "pool not whitelisted")
	case errors.Is(err, storage.ErrPoolSecretsNotFound):
		httputil.InternalError(c, "missing pool configuration")
	case errors.Is(err, storage.ErrRequestNotFound):
		httputil.BadRequest(c, "request not found or expired")
	case errors.Is(err, liquidity.ErrInvalidPercentage),
		errors.Is(err, liquidity.ErrNoLeftover),
		errors.Is(err, liquidity.ErrEmptyPool),
		errors.Is(err, liquidity.ErrNothingToPlan):
		httputil.BadRequest(c, err.Error())
	case errors.Is(err, liquidity.ErrBlockhashExpired),
		errors.Is(err, liquidity.ErrFeePayerMismatch),
		errors.Is(err, liquidity.ErrSignatureInvalid),
		errors.Is(err, liquidity.ErrHashMismatch):
		metrics.LiquidityVerifyFailures.WithLabelValues(verifyReason(err)).Inc()
		httputil.BadRequest(c, err.Error())
	default:
		httputil.ErrorWithDetails(c, 500, "liquidity operation failed", err.Error())
	}
}

func verifyReason(err error) string {
	switch {
	case errors.Is(err, liquidity.ErrBlockhashExpired):
		return "blockhash_expired"
	case errors.Is(err, liquidity.ErrFeePayerMismatch):
		return "fee_payer_mismatch"
	case errors.Is(err, liquidity.ErrSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, liquidity.ErrHashMismatch):
		return "hash_mismatch"
	default:
		return "other"
	}
}

func parseOptionalAmount(raw string) (uint64, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
