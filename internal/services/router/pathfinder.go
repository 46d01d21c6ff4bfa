// Package router finds swap paths through the configured pool graph.
package router

import (
	"errors"

	"github.com/zcombinatorio/swap-engine/internal/domain"
	"github.com/zcombinatorio/swap-engine/internal/services/market"
)

var (
	ErrSameToken = errors.New("input and output tokens are identical")
	ErrNoRoute   = errors.New("no route found within hop limit")
)

// Finder runs breadth-first search over the registry's adjacency index.
// Pure over static data; safe for concurrent use.
type Finder struct {
	registry *market.Registry
	maxHops  int
}

func NewFinder(registry *market.Registry, maxHops int) *Finder {
	if maxHops < 1 || maxHops > 3 {
		maxHops = 3
	}
	return &Finder{registry: registry, maxHops: maxHops}
}

type searchNode struct {
	symbol string
	hops   []domain.Hop
}

// FindRoute returns the first shortest path from one token to another.
// BFS guarantees minimal hop count; among equal-length paths the declared
// pool order decides, which is a documented but weak tie-break. maxHops <= 0
// uses the finder's configured cap; larger values are clamped to it.
func (f *Finder) FindRoute(from, to domain.Token, maxHops int) (domain.Route, error) {
	if from.Symbol == to.Symbol {
		return domain.Route{}, ErrSameToken
	}
	if maxHops <= 0 || maxHops > f.maxHops {
		maxHops = f.maxHops
	}

	visited := map[string]bool{from.Symbol: true}
	queue := []searchNode{{symbol: from.Symbol}}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if len(node.hops) == maxHops {
			continue
		}
		fromTok, _ := f.registry.Token(node.symbol)

		for _, edge := range f.registry.Neighbors(node.symbol) {
			if visited[edge.To] {
				continue
			}
			toTok, _ := f.registry.Token(edge.To)
			hops := append(append([]domain.Hop(nil), node.hops...), domain.Hop{
				Pool: edge.Pool,
				From: fromTok,
				To:   toTok,
			})
			if edge.To == to.Symbol {
				return domain.Route{Input: from, Output: to, Hops: hops}, nil
			}
			visited[edge.To] = true
			queue = append(queue, searchNode{symbol: edge.To, hops: hops})
		}
	}
	return domain.Route{}, ErrNoRoute
}

// Classify derives the route kind used by the transaction builder and UI.
func Classify(route domain.Route) domain.RouteKind {
	switch len(route.Hops) {
	case 1:
		if route.Hops[0].Pool.Type == domain.PoolTypeDbc {
			return domain.RouteDirectDbc
		}
		return domain.RouteDirectCpAmm
	case 2:
		return domain.RouteDouble
	case 3:
		return domain.RouteTriple
	default:
		return domain.RouteInvalid
	}
}
