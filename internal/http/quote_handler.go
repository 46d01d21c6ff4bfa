// Package http exposes the engine over a gin JSON API.
package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/zcombinatorio/swap-engine/internal/domain"
	"github.com/zcombinatorio/swap-engine/internal/http/httputil"
	"github.com/zcombinatorio/swap-engine/internal/metrics"
	"github.com/zcombinatorio/swap-engine/internal/services/market"
	"github.com/zcombinatorio/swap-engine/internal/services/quote"
)

type QuoteHandler struct {
	registry *market.Registry
	engine   *quote.Engine
}

func NewQuoteHandler(registry *market.Registry, engine *quote.Engine) *QuoteHandler {
	return &QuoteHandler{registry: registry, engine: engine}
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getQuote)
}

// QuoteResponse is the quote payload with amounts rendered at both raw and
// human precision. Data is null when no quote is available.
type QuoteResponse struct {
	*domain.Quote
	AmountInUI  string `json:"amountInUi"`
	AmountOutUI string `json:"amountOutUi"`
}

// @Summary Get swap quote
// @Description Price an exact-in trade between two registry tokens, routing through up to three pools.
// @Tags quote
// @Produce json
// @Param from query string true "Input token symbol" example(SOL)
// @Param to query string true "Output token symbol" example(TEST)
// @Param amount query string true "Human-readable input amount" example(1.5)
// @Param slippageBps query int false "Slippage tolerance in basis points" example(50)
// @Success 200 {object} httputil.Response{data=QuoteResponse} "Quote, or null data when no quote is available"
// @Failure 400 {object} httputil.Response "Invalid parameters"
// @Router /api/v1/quote [get]
func (h *QuoteHandler) getQuote(c *gin.Context) {
	start := time.Now()
	defer func() {
		metrics.QuoteDuration.Observe(time.Since(start).Seconds())
	}()

	from, ok := h.registry.Token(c.Query("from"))
	if !ok {
		httputil.BadRequest(c, "unknown token: "+c.Query("from"))
		return
	}
	to, ok := h.registry.Token(c.Query("to"))
	if !ok {
		httputil.BadRequest(c, "unknown token: "+c.Query("to"))
		return
	}

	amountHuman, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		httputil.BadRequest(c, "invalid amount")
		return
	}
	amountIn, err := domain.ToRaw(amountHuman, from.Decimals)
	if err != nil || amountIn == 0 {
		httputil.BadRequest(c, "amount out of range")
		return
	}

	slippageBps := uint16(50)
	if raw := c.Query("slippageBps"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 16)
		if err != nil || v >= 10_000 {
			httputil.BadRequest(c, "invalid slippageBps")
			return
		}
		slippageBps = uint16(v)
	}

	q, err := h.engine.Quote(c.Request.Context(), from, to, amountIn, slippageBps)
	if err != nil {
		metrics.QuoteRequests.WithLabelValues("none", "error").Inc()
		httputil.BadRequest(c, err.Error())
		return
	}
	if q == nil {
		// No route or an absorbed internal failure; rendered uniformly.
		metrics.QuoteRequests.WithLabelValues("none", "no_quote").Inc()
		httputil.Success(c, nil)
		return
	}

	metrics.QuoteRequests.WithLabelValues(string(q.Source), "success").Inc()
	if q.PriceImpactBps != nil {
		metrics.PriceImpact.Observe(float64(*q.PriceImpactBps))
	}

	httputil.Success(c, QuoteResponse{
		Quote:       q,
		AmountInUI:  domain.FromRaw(q.AmountIn, from.Decimals).String(),
		AmountOutUI: domain.FromRaw(q.AmountOut, to.Decimals).String(),
	})
}
