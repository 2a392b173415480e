package subgraphs

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/machinebox/graphql"

	"github.com/alexkalak/go_univ3_quoting/common/external/subgraphs/subgrapherrors"
	"github.com/alexkalak/go_univ3_quoting/common/models"
)

type ExchangeType string
type ExchangeName string

const uniV3Fork ExchangeType = "uni_v3_fork"

//go:embed subgraphassets/subgraphurls.json
var subgraphUrlsMapString string

type subgraphUrlsMap map[uint]map[ExchangeType]map[ExchangeName]string

type SubgraphClient interface {
	GetTokens(ctx context.Context, chainID uint) ([]models.Token, error)
	GetV3Pools(ctx context.Context, chainID uint) ([]models.UniswapV3Pool, error)
	GetPoolTicks(ctx context.Context, chainID uint, poolAddress string) ([]models.TickRow, error)
}

type SubgraphClientConfig struct {
	APIKey string
}

type subgraphClient struct {
	subgraphUrlsMap subgraphUrlsMap
	apiKey          string
}

func NewSubgraphClient(config SubgraphClientConfig) (SubgraphClient, error) {
	subgraphUrlsMap := subgraphUrlsMap{}

	err := json.Unmarshal([]byte(subgraphUrlsMapString), &subgraphUrlsMap)
	if err != nil {
		return nil, errors.New("unable to parse subgraph urls map")
	}

	return &subgraphClient{
		subgraphUrlsMap: subgraphUrlsMap,
		apiKey:          config.APIKey,
	}, nil
}

func (s *subgraphClient) v3URL(chainID uint) (string, error) {
	url, ok := s.subgraphUrlsMap[chainID][uniV3Fork]["uniswap"]
	if !ok {
		return "", subgrapherrors.ErrExchangeTypeNotFound
	}
	return url, nil
}

const tokensChunkSize = 3000

func (s *subgraphClient) GetTokens(ctx context.Context, chainID uint) ([]models.Token, error) {
	url, err := s.v3URL(chainID)
	if err != nil {
		return nil, err
	}

	tokenResponsesArray := []TokenResponse{}

	currentChunk := 0
	wg := sync.WaitGroup{}
	parallelQueries := 5

	for {
		tokensToPush := make([]TokenResponse, parallelQueries*tokensChunkSize)
		var totalNewValue int32 = 0
		for i := range parallelQueries {
			chunk := currentChunk
			queryNumber := i
			wg.Go(func() {
				tokensArray, err := s.queryTokens(ctx, url, chunk*tokensChunkSize)
				if err != nil {
					fmt.Println(err)
					return
				}
				for i, token := range tokensArray {
					tokensToPush[(tokensChunkSize*queryNumber)+i] = token
				}
				atomic.AddInt32(&totalNewValue, int32(len(tokensArray)))
			})
			currentChunk++
		}
		wg.Wait()
		if totalNewValue == 0 {
			break
		}

		tokenResponsesArray = append(tokenResponsesArray, tokensToPush...)
	}

	result := make([]models.Token, 0, len(tokenResponsesArray))
	for _, tokenResp := range tokenResponsesArray {
		if tokenResp.ID == "" {
			continue
		}
		decimals, err := strconv.Atoi(tokenResp.Decimals)
		if err != nil {
			continue
		}
		result = append(result, models.Token{
			Address:  tokenResp.ID,
			ChainID:  chainID,
			Decimals: decimals,
			Name:     tokenResp.Name,
			Symbol:   tokenResp.Symbol,
		})
	}

	fmt.Println("subgraph tokens: ", len(result))

	return result, nil
}

//go:embed subgraphassets/v3gettokensquery.graphql
var tokensQuery string

func (s *subgraphClient) queryTokens(ctx context.Context, graphURL string, skip int) ([]TokenResponse, error) {
	client := graphql.NewClient(graphURL)
	if client == nil {
		return nil, errors.New("unable to create graphql client")
	}
	req := graphql.NewRequest(tokensQuery)
	req.Header.Add("Authorization", "Bearer "+s.apiKey)

	req.Var("first", tokensChunkSize)
	req.Var("skip", skip)

	respData := struct {
		Tokens []TokenResponse `json:"tokens"`
	}{}

	if err := client.Run(ctx, req, &respData); err != nil {
		return nil, err
	}

	return respData.Tokens, nil
}

const poolsChunkSize = 1000

func (s *subgraphClient) GetV3Pools(ctx context.Context, chainID uint) ([]models.UniswapV3Pool, error) {
	url, err := s.v3URL(chainID)
	if err != nil {
		return nil, err
	}

	poolResponsesArray := []PoolResponse{}

	parallelQueries := 5
	wg := sync.WaitGroup{}

	currentChunk := 0
	for {
		poolsToPush := make([]PoolResponse, parallelQueries*poolsChunkSize)
		var totalNewValue int32 = 0

		for i := range parallelQueries {
			chunk := currentChunk
			queryNumber := i
			wg.Go(func() {
				poolsArray, err := s.queryV3Pools(ctx, url, chunk*poolsChunkSize)
				if err != nil {
					fmt.Println(err)
					return
				}
				for i, pool := range poolsArray {
					poolsToPush[(poolsChunkSize*queryNumber)+i] = pool
				}
				atomic.AddInt32(&totalNewValue, int32(len(poolsArray)))
			})
			currentChunk++
		}
		wg.Wait()
		if totalNewValue == 0 {
			break
		}

		poolResponsesArray = append(poolResponsesArray, poolsToPush...)
	}

	result := make([]models.UniswapV3Pool, 0, len(poolResponsesArray))
	for _, poolResp := range poolResponsesArray {
		if poolResp.ID == "" || poolResp.Token0.ID == "" || poolResp.Token1.ID == "" {
			continue
		}
		feeTier, err := strconv.Atoi(poolResp.FeeTier)
		if err != nil {
			continue
		}
		result = append(result, models.UniswapV3Pool{
			Address: poolResp.ID,
			ChainID: chainID,
			FeeTier: feeTier,
			Token0:  poolResp.Token0.ID,
			Token1:  poolResp.Token1.ID,
		})
	}

	fmt.Println("subgraph pools: ", len(result))

	return result, nil
}

//go:embed subgraphassets/v3poolsquery.graphql
var poolsQuery string

func (s *subgraphClient) queryV3Pools(ctx context.Context, graphURL string, skip int) ([]PoolResponse, error) {
	client := graphql.NewClient(graphURL)
	if client == nil {
		return nil, errors.New("unable to create graphql client")
	}
	req := graphql.NewRequest(poolsQuery)
	req.Header.Add("Authorization", "Bearer "+s.apiKey)

	req.Var("first", poolsChunkSize)
	req.Var("skip", skip)

	respData := struct {
		Pools []PoolResponse `json:"pools"`
	}{}

	if err := client.Run(ctx, req, &respData); err != nil {
		return nil, err
	}

	return respData.Pools, nil
}

const ticksChunkSize = 1000

// GetPoolTicks pages through every initialized tick of one pool, ordered by
// tick index. The subgraph serves liquidity values as base 10 strings, which
// is exactly what TickRow stores, so no parsing happens here.
func (s *subgraphClient) GetPoolTicks(ctx context.Context, chainID uint, poolAddress string) ([]models.TickRow, error) {
	url, err := s.v3URL(chainID)
	if err != nil {
		return nil, err
	}

	result := []models.TickRow{}

	skip := 0
	for {
		ticksArray, err := s.queryPoolTicks(ctx, url, poolAddress, skip)
		if err != nil {
			return nil, err
		}
		if len(ticksArray) == 0 {
			break
		}

		for _, tickResp := range ticksArray {
			tickIdx, err := strconv.Atoi(tickResp.TickIdx)
			if err != nil {
				continue
			}
			result = append(result, models.TickRow{
				Index:          tickIdx,
				LiquidityNet:   tickResp.LiquidityNet,
				LiquidityGross: tickResp.LiquidityGross,
			})
		}

		skip += ticksChunkSize
	}

	return result, nil
}

//go:embed subgraphassets/v3poolticksquery.graphql
var ticksQuery string

func (s *subgraphClient) queryPoolTicks(ctx context.Context, graphURL, poolAddress string, skip int) ([]PoolTickResponse, error) {
	client := graphql.NewClient(graphURL)
	if client == nil {
		return nil, errors.New("unable to create graphql client")
	}
	req := graphql.NewRequest(ticksQuery)
	req.Header.Add("Authorization", "Bearer "+s.apiKey)

	req.Var("pool", poolAddress)
	req.Var("first", ticksChunkSize)
	req.Var("skip", skip)

	respData := struct {
		Ticks []PoolTickResponse `json:"ticks"`
	}{}

	if err := client.Run(ctx, req, &respData); err != nil {
		return nil, err
	}

	return respData.Ticks, nil
}
