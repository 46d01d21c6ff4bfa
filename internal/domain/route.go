package domain

// RouteKind classifies a found route by shape; the transaction builder and
// the UI both branch on it.
type RouteKind string

const (
	RouteDirectCpAmm RouteKind = "direct-cp-amm"
	RouteDirectDbc   RouteKind = "direct-dbc"
	RouteDouble      RouteKind = "double"
	RouteTriple      RouteKind = "triple"
	RouteInvalid     RouteKind = "invalid"
)

// Hop is one edge of a route: a pool crossed in a specific direction.
type Hop struct {
	Pool PoolConfig `json:"pool"`
	From Token      `json:"from"`
	To   Token      `json:"to"`
}

// Route is an ordered list of hops from an input token to an output token.
type Route struct {
	Input  Token `json:"input"`
	Output Token `json:"output"`
	Hops   []Hop `json:"hops"`
}

// Tokens returns the token path including both endpoints.
func (r Route) Tokens() []Token {
	if len(r.Hops) == 0 {
		return nil
	}
	out := make([]Token, 0, len(r.Hops)+1)
	out = append(out, r.Hops[0].From)
	for _, h := range r.Hops {
		out = append(out, h.To)
	}
	return out
}
