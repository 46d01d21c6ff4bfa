// Package market holds the deploy-time token table and pool list, the
// adjacency index the route finder searches, and the on-chain pool resolver.
package market

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"

	"github.com/zcombinatorio/swap-engine/internal/domain"
)

// Edge is one traversable pool from a given token.
type Edge struct {
	Pool domain.PoolConfig
	To   string // neighbor token symbol
}

// Registry is the static market definition plus its adjacency index. Built
// once at startup; read-only afterwards, so safe for concurrent use.
type Registry struct {
	tokens   map[string]domain.Token
	byMint   map[solana.PublicKey]domain.Token
	pools    []domain.PoolConfig
	adjacent map[string][]Edge
}

func NewRegistry(tokens []domain.Token, pools []domain.PoolConfig) (*Registry, error) {
	r := &Registry{
		tokens:   make(map[string]domain.Token, len(tokens)),
		byMint:   make(map[solana.PublicKey]domain.Token, len(tokens)),
		adjacent: make(map[string][]Edge),
		pools:    pools,
	}
	for _, t := range tokens {
		if _, dup := r.tokens[t.Symbol]; dup {
			return nil, fmt.Errorf("market: duplicate token symbol %q", t.Symbol)
		}
		r.tokens[t.Symbol] = t
		r.byMint[t.Mint] = t
	}
	for _, p := range pools {
		if _, ok := r.tokens[p.TokenA]; !ok {
			return nil, fmt.Errorf("market: pool %s references unknown token %q", p.Address, p.TokenA)
		}
		if _, ok := r.tokens[p.TokenB]; !ok {
			return nil, fmt.Errorf("market: pool %s references unknown token %q", p.Address, p.TokenB)
		}
		if p.Type == domain.PoolTypeDbc && p.QuoteToken != p.TokenA && p.QuoteToken != p.TokenB {
			return nil, fmt.Errorf("market: dbc pool %s quote token %q is not a pool side", p.Address, p.QuoteToken)
		}
		// Each pool is an undirected edge; index order follows the
		// declared pool order, which fixes BFS tie-breaking.
		r.adjacent[p.TokenA] = append(r.adjacent[p.TokenA], Edge{Pool: p, To: p.TokenB})
		r.adjacent[p.TokenB] = append(r.adjacent[p.TokenB], Edge{Pool: p, To: p.TokenA})
	}
	return r, nil
}

func (r *Registry) Token(symbol string) (domain.Token, bool) {
	t, ok := r.tokens[symbol]
	return t, ok
}

func (r *Registry) TokenByMint(mint solana.PublicKey) (domain.Token, bool) {
	t, ok := r.byMint[mint]
	return t, ok
}

func (r *Registry) Pools() []domain.PoolConfig {
	return r.pools
}

// Neighbors returns the edges leaving a token, in declared pool order.
func (r *Registry) Neighbors(symbol string) []Edge {
	return r.adjacent[symbol]
}

// PoolFor returns the configured pool connecting two tokens, if any.
func (r *Registry) PoolFor(a, b string) (domain.PoolConfig, bool) {
	for _, e := range r.adjacent[a] {
		if e.To == b {
			return e.Pool, true
		}
	}
	return domain.PoolConfig{}, false
}

// marketFile is the JSON shape of an external market definition.
type marketFile struct {
	Tokens []struct {
		Symbol   string `json:"symbol"`
		Mint     string `json:"mint"`
		Decimals uint8  `json:"decimals"`
		Name     string `json:"name"`
		LogoURI  string `json:"logoURI"`
	} `json:"tokens"`
	Pools []struct {
		Address    string `json:"address"`
		Type       string `json:"type"`
		TokenA     string `json:"tokenA"`
		TokenB     string `json:"tokenB"`
		QuoteToken string `json:"quoteToken"`
	} `json:"pools"`
}

// LoadRegistry builds the registry from a JSON market file, or from the
// compiled-in dev market when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(DevTokens(), DevPools())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("market: read %s: %w", path, err)
	}
	var mf marketFile
	if err := sonic.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("market: parse %s: %w", path, err)
	}

	tokens := make([]domain.Token, 0, len(mf.Tokens))
	for _, t := range mf.Tokens {
		mint, err := solana.PublicKeyFromBase58(t.Mint)
		if err != nil {
			return nil, fmt.Errorf("market: token %s mint: %w", t.Symbol, err)
		}
		tokens = append(tokens, domain.Token{
			Symbol:   t.Symbol,
			Mint:     mint,
			Decimals: t.Decimals,
			Name:     t.Name,
			LogoURI:  t.LogoURI,
		})
	}

	pools := make([]domain.PoolConfig, 0, len(mf.Pools))
	for _, p := range mf.Pools {
		addr, err := solana.PublicKeyFromBase58(p.Address)
		if err != nil {
			return nil, fmt.Errorf("market: pool address %s: %w", p.Address, err)
		}
		pt := domain.PoolType(p.Type)
		if pt != domain.PoolTypeCpAmm && pt != domain.PoolTypeDbc {
			return nil, fmt.Errorf("market: pool %s has unknown type %q", p.Address, p.Type)
		}
		pools = append(pools, domain.PoolConfig{
			Address:    addr,
			Type:       pt,
			TokenA:     p.TokenA,
			TokenB:     p.TokenB,
			QuoteToken: p.QuoteToken,
		})
	}
	return NewRegistry(tokens, pools)
}
