package domain

// QuoteSource identifies which pricing path produced a quote.
type QuoteSource string

const (
	QuoteSourceCustom  QuoteSource = "custom"
	QuoteSourceJupiter QuoteSource = "jupiter"
)

// HopQuote is the outcome of pricing a single hop.
type HopQuote struct {
	Pool      PoolInfo `json:"-"`
	AmountIn  uint64   `json:"amountIn,string"`
	AmountOut uint64   `json:"amountOut,string"`
	FeeAmount uint64   `json:"feeAmount,string"`

	// PriceImpactBps is nil when the curve math could not produce a
	// meaningful figure; the hop output is still valid.
	PriceImpactBps *uint32 `json:"priceImpactBps,omitempty"`
}

// Quote is a full multi-hop quote in raw token units.
type Quote struct {
	Route        Route       `json:"route"`
	Kind         RouteKind   `json:"kind,omitempty"`
	Source       QuoteSource `json:"source"`
	AmountIn     uint64      `json:"amountIn,string"`
	AmountOut    uint64      `json:"amountOut,string"`
	MinAmountOut uint64      `json:"minAmountOut,string"`
	SlippageBps  uint16      `json:"slippageBps"`

	// PriceImpactBps is the sum of per-hop impacts; an approximation that
	// slightly overstates the true compounded impact. Nil when any hop
	// could not report one.
	PriceImpactBps *uint32 `json:"priceImpactBps,omitempty"`

	Hops []HopQuote `json:"hops"`
}

// SwapResult is what the executor returns after a submitted swap settles,
// or the unsigned transaction when built for an external wallet.
type SwapResult struct {
	Signature    string `json:"signature,omitempty"`
	Transaction  string `json:"transaction,omitempty"`
	AmountIn     uint64 `json:"amountIn,string"`
	AmountOut    uint64 `json:"amountOut,string"`
	MinAmountOut uint64 `json:"minAmountOut,string"`
	Versioned    bool   `json:"versioned"`
	Confirmed    bool   `json:"confirmed"`
}
