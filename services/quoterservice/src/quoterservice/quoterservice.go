package quoterservice

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/alexkalak/go_univ3_quoting/common/core/fractions"
	"github.com/alexkalak/go_univ3_quoting/common/core/routegraph"
	"github.com/alexkalak/go_univ3_quoting/common/core/v3pool"
	"github.com/alexkalak/go_univ3_quoting/common/core/v3position"
	"github.com/alexkalak/go_univ3_quoting/common/core/v3trade"
	"github.com/alexkalak/go_univ3_quoting/common/models"
	"github.com/alexkalak/go_univ3_quoting/common/repo/quoterepo"
	"github.com/alexkalak/go_univ3_quoting/common/repo/tokenrepo"
	"github.com/alexkalak/go_univ3_quoting/common/repo/v3poolsrepo"
)

const defaultMaxHops = 3

var ErrUnknownToken = errors.New("token not found for chain")
var ErrPoolNotFound = errors.New("pool not found")

type QuoterService interface {
	QuoteExactInput(request QuoteRequest) (QuoteResponse, error)
	QuoteExactOutput(request QuoteRequest) (QuoteResponse, error)
	QuoteMintAmounts(request MintRequest) (MintResponse, error)
	RecentQuotes(limit uint64) ([]models.QuoteResult, error)
	RefreshGraph() error
}

type QuoteRequest struct {
	TokenIn     string
	TokenOut    string
	Amount      *big.Int
	MaxHops     int
	SlippageBps uint
}

type QuoteResponse struct {
	TradeType   string
	AmountIn    *big.Int
	AmountOut   *big.Int
	AmountLimit *big.Int
	RoutePath   string
	TokenPath   []string
	PoolCount   int
	BlockNumber int
}

type MintRequest struct {
	PoolAddress string
	TickLower   int
	TickUpper   int
	Liquidity   *big.Int
	SlippageBps uint
}

type MintResponse struct {
	Amount0    *big.Int
	Amount1    *big.Int
	Amount0Min *big.Int
	Amount1Min *big.Int
}

type QuoterServiceDependencies struct {
	TokenRepo          tokenrepo.TokenRepo
	V3PoolCacheRepo    v3poolsrepo.V3PoolCacheRepo
	V3PoolDBRepo       v3poolsrepo.V3PoolDBRepo
	V3PoolSnapshotRepo v3poolsrepo.V3PoolSnapshotRepo
	QuoteRepo          quoterepo.V3QuoteRepo
}

func (d *QuoterServiceDependencies) validate() error {
	if d.TokenRepo == nil {
		return errors.New("quoter service dependencies TokenRepo cannot be nil")
	}
	if d.V3PoolCacheRepo == nil {
		return errors.New("quoter service dependencies V3PoolCacheRepo cannot be nil")
	}
	if d.V3PoolDBRepo == nil {
		return errors.New("quoter service dependencies V3PoolDBRepo cannot be nil")
	}
	if d.QuoteRepo == nil {
		return errors.New("quoter service dependencies QuoteRepo cannot be nil")
	}
	return nil
}

type quoterService struct {
	chainID uint

	mu          sync.RWMutex
	graph       routegraph.RouteGraph
	tokensMap   map[models.TokenIdentificator]*models.Token
	poolModels  map[models.V3PoolIdentificator]models.UniswapV3Pool
	blockNumber uint64

	tokenRepo          tokenrepo.TokenRepo
	v3PoolCacheRepo    v3poolsrepo.V3PoolCacheRepo
	v3PoolDBRepo       v3poolsrepo.V3PoolDBRepo
	v3PoolSnapshotRepo v3poolsrepo.V3PoolSnapshotRepo
	quoteRepo          quoterepo.V3QuoteRepo
}

func New(chainID uint, dependencies QuoterServiceDependencies) (QuoterService, error) {
	if err := dependencies.validate(); err != nil {
		return nil, err
	}

	service := &quoterService{
		chainID:            chainID,
		tokenRepo:          dependencies.TokenRepo,
		v3PoolCacheRepo:    dependencies.V3PoolCacheRepo,
		v3PoolDBRepo:       dependencies.V3PoolDBRepo,
		v3PoolSnapshotRepo: dependencies.V3PoolSnapshotRepo,
		quoteRepo:          dependencies.QuoteRepo,
	}

	if err := service.RefreshGraph(); err != nil {
		return nil, err
	}

	return service, nil
}

// RefreshGraph rebuilds the in-memory pool graph from the freshest snapshot
// source available: redis first, postgres when the cache is cold, the local
// bolt snapshot as the last resort.
func (s *quoterService) RefreshGraph() error {
	tokens, err := s.tokenRepo.GetTokensByChainID(s.chainID)
	if err != nil {
		return err
	}

	tokensMap := map[models.TokenIdentificator]*models.Token{}
	for _, token := range tokens {
		tokensMap[token.GetIdentificator()] = token
	}

	poolModels, blockNumber, err := s.loadPoolModels()
	if err != nil {
		return err
	}

	pools := make([]*v3pool.Pool, 0, len(poolModels))
	poolsByID := map[models.V3PoolIdentificator]models.UniswapV3Pool{}
	for _, poolModel := range poolModels {
		token0, ok0 := tokensMap[models.TokenIdentificator{Address: poolModel.Token0, ChainID: s.chainID}]
		token1, ok1 := tokensMap[models.TokenIdentificator{Address: poolModel.Token1, ChainID: s.chainID}]
		if !ok0 || !ok1 {
			continue
		}

		pool, err := v3pool.NewPoolFromModel(&poolModel, token0, token1)
		if err != nil {
			continue
		}

		pools = append(pools, pool)
		poolsByID[poolModel.GetIdentificator()] = poolModel
	}

	graph, err := routegraph.New(pools)
	if err != nil {
		return err
	}

	fmt.Println("quoter graph pools: ", len(pools), " block: ", blockNumber)

	s.mu.Lock()
	s.graph = graph
	s.tokensMap = tokensMap
	s.poolModels = poolsByID
	s.blockNumber = blockNumber
	s.mu.Unlock()

	return nil
}

func (s *quoterService) loadPoolModels() ([]models.UniswapV3Pool, uint64, error) {
	pools, err := s.v3PoolCacheRepo.GetNonDustyPools(s.chainID)
	if err == nil && len(pools) > 0 {
		blockNumber, _ := s.v3PoolCacheRepo.GetBlockNumber(s.chainID)
		return pools, blockNumber, nil
	}

	pools, err = s.v3PoolDBRepo.GetNonDustyPools(s.chainID)
	if err == nil && len(pools) > 0 {
		return pools, maxBlockNumber(pools), nil
	}

	if s.v3PoolSnapshotRepo == nil {
		return nil, 0, fmt.Errorf("no pool source available: %w", err)
	}

	pools, err = s.v3PoolSnapshotRepo.LoadPools(s.chainID)
	if err != nil {
		return nil, 0, err
	}
	blockNumber, _ := s.v3PoolSnapshotRepo.GetBlockNumber(s.chainID)
	return pools, blockNumber, nil
}

func maxBlockNumber(pools []models.UniswapV3Pool) uint64 {
	max := 0
	for _, pool := range pools {
		if pool.BlockNumber > max {
			max = pool.BlockNumber
		}
	}
	return uint64(max)
}

func (s *quoterService) QuoteExactInput(request QuoteRequest) (QuoteResponse, error) {
	s.mu.RLock()
	graph := s.graph
	blockNumber := s.blockNumber
	s.mu.RUnlock()

	maxHops := request.MaxHops
	if maxHops <= 0 {
		maxHops = defaultMaxHops
	}

	input := models.TokenIdentificator{Address: request.TokenIn, ChainID: s.chainID}
	output := models.TokenIdentificator{Address: request.TokenOut, ChainID: s.chainID}

	trade, err := graph.BestTradeExactInput(input, output, request.Amount, maxHops)
	if err != nil {
		return QuoteResponse{}, err
	}

	amountLimit, err := trade.MinimumAmountOut(slippageFraction(request.SlippageBps))
	if err != nil {
		return QuoteResponse{}, err
	}

	response := s.buildResponse(trade, amountLimit, blockNumber, false)
	s.persistQuote(response)

	return response, nil
}

func (s *quoterService) QuoteExactOutput(request QuoteRequest) (QuoteResponse, error) {
	s.mu.RLock()
	graph := s.graph
	blockNumber := s.blockNumber
	s.mu.RUnlock()

	maxHops := request.MaxHops
	if maxHops <= 0 {
		maxHops = defaultMaxHops
	}

	input := models.TokenIdentificator{Address: request.TokenIn, ChainID: s.chainID}
	output := models.TokenIdentificator{Address: request.TokenOut, ChainID: s.chainID}

	trade, err := graph.BestTradeExactOutput(input, output, request.Amount, maxHops)
	if err != nil {
		return QuoteResponse{}, err
	}

	amountLimit, err := trade.MaximumAmountIn(slippageFraction(request.SlippageBps))
	if err != nil {
		return QuoteResponse{}, err
	}

	response := s.buildResponse(trade, amountLimit, blockNumber, true)
	s.persistQuote(response)

	return response, nil
}

func (s *quoterService) buildResponse(trade *v3trade.Trade, amountLimit fractions.CurrencyAmount, blockNumber uint64, exactOutput bool) QuoteResponse {
	tokenPath := make([]string, 0, len(trade.Route.TokenPath))
	for _, token := range trade.Route.TokenPath {
		tokenPath = append(tokenPath, token.Address)
	}

	return QuoteResponse{
		TradeType:   string(trade.TradeType),
		AmountIn:    trade.InputAmount.Quotient(),
		AmountOut:   trade.OutputAmount.Quotient(),
		AmountLimit: amountLimit.Quotient(),
		RoutePath:   "0x" + hex.EncodeToString(trade.Route.EncodeToPath(exactOutput)),
		TokenPath:   tokenPath,
		PoolCount:   len(trade.Route.Pools),
		BlockNumber: int(blockNumber),
	}
}

func (s *quoterService) persistQuote(response QuoteResponse) {
	quote := models.QuoteResult{
		ChainID:     s.chainID,
		TradeType:   response.TradeType,
		TokenIn:     response.TokenPath[0],
		TokenOut:    response.TokenPath[len(response.TokenPath)-1],
		AmountIn:    response.AmountIn,
		AmountOut:   response.AmountOut,
		RoutePath:   response.RoutePath,
		PoolCount:   response.PoolCount,
		BlockNumber: response.BlockNumber,
	}

	if err := s.quoteRepo.CreateQuote(&quote); err != nil {
		fmt.Println("unable to persist quote: ", err)
	}
}

func (s *quoterService) QuoteMintAmounts(request MintRequest) (MintResponse, error) {
	s.mu.RLock()
	poolModel, ok := s.poolModels[models.V3PoolIdentificator{Address: request.PoolAddress, ChainID: s.chainID}]
	token0 := s.tokensMap[models.TokenIdentificator{Address: poolModel.Token0, ChainID: s.chainID}]
	token1 := s.tokensMap[models.TokenIdentificator{Address: poolModel.Token1, ChainID: s.chainID}]
	s.mu.RUnlock()

	if !ok {
		return MintResponse{}, fmt.Errorf("%w: %s", ErrPoolNotFound, request.PoolAddress)
	}
	if token0 == nil || token1 == nil {
		return MintResponse{}, fmt.Errorf("%w: pool %s", ErrUnknownToken, request.PoolAddress)
	}

	pool, err := v3pool.NewPoolFromModel(&poolModel, token0, token1)
	if err != nil {
		return MintResponse{}, err
	}

	position, err := v3position.NewPosition(pool, request.TickLower, request.TickUpper, request.Liquidity)
	if err != nil {
		return MintResponse{}, err
	}

	mintAmounts, err := position.MintAmounts()
	if err != nil {
		return MintResponse{}, err
	}

	minAmounts, err := position.MintAmountsWithSlippage(slippageFraction(request.SlippageBps))
	if err != nil {
		return MintResponse{}, err
	}

	return MintResponse{
		Amount0:    mintAmounts.Amount0,
		Amount1:    mintAmounts.Amount1,
		Amount0Min: minAmounts.Amount0,
		Amount1Min: minAmounts.Amount1,
	}, nil
}

func (s *quoterService) RecentQuotes(limit uint64) ([]models.QuoteResult, error) {
	return s.quoteRepo.GetRecentQuotes(s.chainID, limit)
}

func slippageFraction(bps uint) fractions.Fraction {
	fraction, err := fractions.NewFraction(big.NewInt(int64(bps)), big.NewInt(10000))
	if err != nil {
		// 10000 is never zero.
		panic(err)
	}
	return fraction
}
