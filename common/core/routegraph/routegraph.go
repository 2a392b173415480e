package routegraph

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/routegrapherrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/fractions"
	"github.com/alexkalak/go_univ3_quoting/common/core/v3pool"
	"github.com/alexkalak/go_univ3_quoting/common/core/v3route"
	"github.com/alexkalak/go_univ3_quoting/common/core/v3trade"
	"github.com/alexkalak/go_univ3_quoting/common/models"
)

type RouteGraph interface {
	FindRoutes(input, output models.TokenIdentificator, maxHops int) ([]*v3route.Route, error)
	BestTradeExactInput(input, output models.TokenIdentificator, amountIn *big.Int, maxHops int) (*v3trade.Trade, error)
	BestTradeExactOutput(input, output models.TokenIdentificator, amountOut *big.Int, maxHops int) (*v3trade.Trade, error)
	GetTokenByIndex(index int) (*models.Token, error)
	GetTokenIndexByIdentificator(identificator models.TokenIdentificator) (int, error)
	UpdatePool(pool *v3pool.Pool) error
}

// poolKey identifies a pool by its pair and fee tier. The factory deploys at
// most one pool per key, so it stands in for the pool address.
type poolKey struct {
	token0 models.TokenIdentificator
	token1 models.TokenIdentificator
	fee    int
}

type edge struct {
	From, To  int
	PoolIndex int
}

type routeGraph struct {
	mu          sync.RWMutex
	tokenIDs    map[models.TokenIdentificator]int
	tokens      []*models.Token
	poolIndexes map[poolKey]int
	pools       []*v3pool.Pool
	edgesGraph  map[int][]edge
}

// New indexes the pool snapshots into a token graph with one edge per pool
// and direction. Tokens on different chains are distinct nodes, so routes
// never cross chains.
func New(pools []*v3pool.Pool) (RouteGraph, error) {
	graph := &routeGraph{
		tokenIDs:    map[models.TokenIdentificator]int{},
		tokens:      make([]*models.Token, 0),
		poolIndexes: map[poolKey]int{},
		pools:       make([]*v3pool.Pool, 0, len(pools)),
		edgesGraph:  map[int][]edge{},
	}

	for _, pool := range pools {
		key := keyOf(pool)
		if _, ok := graph.poolIndexes[key]; ok {
			return nil, routegrapherrors.ErrDuplicatePool
		}

		poolIndex := len(graph.pools)
		graph.poolIndexes[key] = poolIndex
		graph.pools = append(graph.pools, pool)

		token0Index := graph.tokenIndex(pool.Token0)
		token1Index := graph.tokenIndex(pool.Token1)

		graph.edgesGraph[token0Index] = append(graph.edgesGraph[token0Index], edge{
			From:      token0Index,
			To:        token1Index,
			PoolIndex: poolIndex,
		})
		graph.edgesGraph[token1Index] = append(graph.edgesGraph[token1Index], edge{
			From:      token1Index,
			To:        token0Index,
			PoolIndex: poolIndex,
		})
	}

	return graph, nil
}

func keyOf(pool *v3pool.Pool) poolKey {
	return poolKey{
		token0: canonical(pool.Token0.GetIdentificator()),
		token1: canonical(pool.Token1.GetIdentificator()),
		fee:    pool.Fee,
	}
}

// canonical normalizes the address spelling so checksummed and lowercase
// forms of one token hit the same map key, matching Token.Equal.
func canonical(identificator models.TokenIdentificator) models.TokenIdentificator {
	identificator.Address = common.HexToAddress(identificator.Address).Hex()
	return identificator
}

func (g *routeGraph) tokenIndex(token *models.Token) int {
	id := canonical(token.GetIdentificator())
	if index, ok := g.tokenIDs[id]; ok {
		return index
	}
	index := len(g.tokens)
	g.tokens = append(g.tokens, token)
	g.tokenIDs[id] = index
	return index
}

type path struct {
	tokenIndex  int
	poolIndexes []int
	hops        []int
}

// FindRoutes walks the graph from the input token collecting every simple
// path that reaches the output token in at most maxHops pools. Each path
// uses a pool and a token at most once.
func (g *routeGraph) FindRoutes(input, output models.TokenIdentificator, maxHops int) ([]*v3route.Route, error) {
	if maxHops <= 0 {
		return nil, routegrapherrors.ErrMaxHopsNonPositive
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	startIndex, ok := g.tokenIDs[canonical(input)]
	if !ok {
		return nil, routegrapherrors.ErrTokenNotFound
	}
	endIndex, ok := g.tokenIDs[canonical(output)]
	if !ok {
		return nil, routegrapherrors.ErrTokenNotFound
	}

	routes := []*v3route.Route{}
	stack := []path{{
		tokenIndex:  startIndex,
		poolIndexes: []int{},
		hops:        []int{startIndex},
	}}

	for len(stack) > 0 {
		n := len(stack) - 1
		current := stack[n]
		stack = stack[:n]

	edgeLoop:
		for _, e := range g.edgesGraph[current.tokenIndex] {
			for _, used := range current.poolIndexes {
				if used == e.PoolIndex {
					continue edgeLoop
				}
			}
			for _, visited := range current.hops {
				if visited == e.To {
					continue edgeLoop
				}
			}

			updatedPools := append([]int(nil), current.poolIndexes...)
			updatedPools = append(updatedPools, e.PoolIndex)

			if e.To == endIndex {
				route, err := g.buildRoute(updatedPools, startIndex, endIndex)
				if err != nil {
					return nil, err
				}
				routes = append(routes, route)
				continue
			}

			if len(updatedPools) >= maxHops {
				continue
			}

			updatedHops := append([]int(nil), current.hops...)
			updatedHops = append(updatedHops, e.To)

			stack = append(stack, path{
				tokenIndex:  e.To,
				poolIndexes: updatedPools,
				hops:        updatedHops,
			})
		}
	}

	return routes, nil
}

func (g *routeGraph) buildRoute(poolIndexes []int, startIndex, endIndex int) (*v3route.Route, error) {
	pools := make([]*v3pool.Pool, len(poolIndexes))
	for i, poolIndex := range poolIndexes {
		pools[i] = g.pools[poolIndex]
	}
	return v3route.NewRoute(pools, g.tokens[startIndex], g.tokens[endIndex])
}

// BestTradeExactInput quotes the given input amount over every route within
// maxHops and keeps the trade with the largest output. Routes whose
// simulation fails, for example from exhausted liquidity, are skipped.
func (g *routeGraph) BestTradeExactInput(input, output models.TokenIdentificator, amountIn *big.Int, maxHops int) (*v3trade.Trade, error) {
	routes, err := g.FindRoutes(input, output, maxHops)
	if err != nil {
		return nil, err
	}

	var best *v3trade.Trade
	for _, route := range routes {
		trade, err := v3trade.FromRoute(route, fractions.FromRawAmount(route.Input, amountIn), v3trade.ExactInput)
		if err != nil {
			continue
		}
		if best == nil || trade.OutputAmount.GreaterThan(best.OutputAmount.Fraction) {
			best = trade
		}
	}
	if best == nil {
		return nil, routegrapherrors.ErrNoRouteFound
	}
	return best, nil
}

// BestTradeExactOutput quotes the given output amount over every route
// within maxHops and keeps the trade with the smallest input.
func (g *routeGraph) BestTradeExactOutput(input, output models.TokenIdentificator, amountOut *big.Int, maxHops int) (*v3trade.Trade, error) {
	routes, err := g.FindRoutes(input, output, maxHops)
	if err != nil {
		return nil, err
	}

	var best *v3trade.Trade
	for _, route := range routes {
		trade, err := v3trade.FromRoute(route, fractions.FromRawAmount(route.Output, amountOut), v3trade.ExactOutput)
		if err != nil {
			continue
		}
		if best == nil || trade.InputAmount.LessThan(best.InputAmount.Fraction) {
			best = trade
		}
	}
	if best == nil {
		return nil, routegrapherrors.ErrNoRouteFound
	}
	return best, nil
}

func (g *routeGraph) GetTokenByIndex(index int) (*models.Token, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if index < 0 || index >= len(g.tokens) {
		return nil, routegrapherrors.ErrInvalidTokenIndex
	}
	return g.tokens[index], nil
}

func (g *routeGraph) GetTokenIndexByIdentificator(identificator models.TokenIdentificator) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if index, ok := g.tokenIDs[canonical(identificator)]; ok {
		return index, nil
	}
	return 0, routegrapherrors.ErrTokenNotFound
}

// UpdatePool swaps in a fresh snapshot for the pool with the same pair and
// fee. The graph's edges address pools by index, so every route built after
// the update sees the new state.
func (g *routeGraph) UpdatePool(pool *v3pool.Pool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	index, ok := g.poolIndexes[keyOf(pool)]
	if !ok {
		return routegrapherrors.ErrPoolNotFound
	}
	g.pools[index] = pool
	return nil
}
