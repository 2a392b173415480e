package rpcclient

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/alexkalak/go_univ3_quoting/common/models"
)

//go:embed rpcclientassets/v3pooldataABI.json
var v3PoolDataABIStr string

//go:embed rpcclientassets/multicallABI.json
var multicallABIStr string

// RpcClient reads on-chain pool state through batched view calls. It never
// submits transactions and never decodes event logs; everything it returns
// is plain numeric state re-attached to the pool models.
type RpcClient interface {
	GetBlockNumber(ctx context.Context, chainID uint) (uint64, error)
	GetPoolsData(ctx context.Context, pools []models.UniswapV3Pool, chainID uint, blockNumber *big.Int) ([]models.UniswapV3Pool, error)
	GetPoolsTicks(ctx context.Context, pools []models.UniswapV3Pool, chainID uint, blockNumber *big.Int) ([]models.UniswapV3Pool, error)
}

type RpcClientConfig struct {
	EthMainnetHttp string
}

type rpcClient struct {
	config RpcClientConfig
	//chainID -> client
	clients            map[uint]*ethclient.Client
	multicallAddresses map[uint]common.Address

	v3PoolDataABI abi.ABI
	multicallABI  abi.ABI
}

func NewRpcClient(config RpcClientConfig) (RpcClient, error) {
	ethClient, err := ethclient.Dial(config.EthMainnetHttp)
	if err != nil {
		return nil, err
	}

	v3PoolDataABI, err := abi.JSON(strings.NewReader(v3PoolDataABIStr))
	if err != nil {
		return nil, err
	}
	multicallABI, err := abi.JSON(strings.NewReader(multicallABIStr))
	if err != nil {
		return nil, err
	}

	return &rpcClient{
		clients: map[uint]*ethclient.Client{
			1: ethClient,
		},
		multicallAddresses: map[uint]common.Address{
			1: common.HexToAddress("0xca11bde05977b3631167028862be2a173976ca11"),
		},
		config:        config,
		v3PoolDataABI: v3PoolDataABI,
		multicallABI:  multicallABI,
	}, nil
}

type call struct {
	Target   common.Address
	CallData []byte
}

func (c *rpcClient) GetBlockNumber(ctx context.Context, chainID uint) (uint64, error) {
	client, ok := c.clients[chainID]
	if !ok {
		return 0, fmt.Errorf("client for chain %d not found", chainID)
	}

	return client.BlockNumber(ctx)
}

// Multicall batches view calls through the multicall3 aggregate entry point
// so one round trip serves a whole chunk of pools. A nil blockNumber reads
// the latest state.
func (c *rpcClient) Multicall(ctx context.Context, calls []call, blockNumber *big.Int, client *ethclient.Client, multicallAddress common.Address) ([][]byte, error) {
	callData, err := c.multicallABI.Pack("aggregate", calls)
	if err != nil {
		return nil, err
	}

	raw, err := client.CallContract(ctx, ethereum.CallMsg{
		To:   &multicallAddress,
		Data: callData,
	}, blockNumber)
	if err != nil {
		return nil, err
	}

	out, err := c.multicallABI.Unpack("aggregate", raw)
	if err != nil {
		return nil, err
	}
	if len(out) != 2 {
		return nil, errors.New("unexpected aggregate output shape")
	}

	returnData, ok := out[1].([][]byte)
	if !ok {
		return nil, errors.New("error convert aggregate return data")
	}

	return returnData, nil
}

func (c *rpcClient) GetPoolsData(ctx context.Context, pools []models.UniswapV3Pool, chainID uint, blockNumber *big.Int) ([]models.UniswapV3Pool, error) {
	client, ok := c.clients[chainID]
	if !ok {
		return nil, fmt.Errorf("client for chain %d not found", chainID)
	}

	multicallAddress, ok := c.multicallAddresses[chainID]
	if !ok {
		return nil, fmt.Errorf("multicall address for chain %d not found", chainID)
	}

	chunkSize := 10

	res := struct {
		mu    sync.Mutex
		pools []models.UniswapV3Pool
	}{}

	res.pools = make([]models.UniswapV3Pool, 0, len(pools))

	wg := sync.WaitGroup{}
	for offset := 0; offset < len(pools); offset += chunkSize * 7 {
		for chunkStart := offset; chunkStart < min(offset+chunkSize*7, len(pools)); chunkStart += chunkSize {
			slice := pools[chunkStart:min(chunkStart+chunkSize, len(pools))]

			repeatedTimes := 0
			f := func() {}
			f = func() {
				calls := []call{}

				for _, pool := range slice {
					poolAddress := common.HexToAddress(pool.Address)
					data, err := c.v3PoolDataABI.Pack("liquidity")
					if err != nil {
						return
					}
					calls = append(calls, call{poolAddress, data})

					data, err = c.v3PoolDataABI.Pack("tickSpacing")
					if err != nil {
						return
					}
					calls = append(calls, call{poolAddress, data})

					data, err = c.v3PoolDataABI.Pack("slot0")
					if err != nil {
						return
					}
					calls = append(calls, call{poolAddress, data})
				}

				returnBytes, err := c.Multicall(ctx, calls, blockNumber, client, multicallAddress)
				if err != nil {
					fmt.Println("Error calling rpc multicall", err)
					if repeatedTimes < 2 {
						repeatedTimes++
						time.Sleep(1 * time.Second)
						f()
					}
					return
				}

				updatedPools, err := c.handleGetPoolDataReturnBytes(slice, returnBytes)
				if err != nil {
					return
				}
				res.mu.Lock()
				res.pools = append(res.pools, updatedPools...)
				res.mu.Unlock()
			}

			wg.Go(f)
		}
		wg.Wait()
	}
	wg.Wait()

	if blockNumber != nil {
		for i := range res.pools {
			res.pools[i].BlockNumber = int(blockNumber.Int64())
		}
	}

	fmt.Println("pools data refreshed: ", len(res.pools))

	return res.pools, nil
}

func (c *rpcClient) handleGetPoolDataReturnBytes(pools []models.UniswapV3Pool, returnBytes [][]byte) ([]models.UniswapV3Pool, error) {
	poolPackLen := 3
	if len(pools)*poolPackLen != len(returnBytes) {
		return nil, errors.New("multicall data len is corrupted")
	}

	updatedPools := make([]models.UniswapV3Pool, 0, len(pools))
	for poolIndex := range pools {
		liquidityData := returnBytes[poolIndex*poolPackLen]
		tickSpacingData := returnBytes[poolIndex*poolPackLen+1]
		slot0Data := returnBytes[poolIndex*poolPackLen+2]

		liquidityOut, err := c.v3PoolDataABI.Unpack("liquidity", liquidityData)
		if err != nil {
			fmt.Println("Error unpacking liquidity ", err)
			continue
		}
		liquidity, ok := liquidityOut[0].(*big.Int)
		if !ok {
			return nil, errors.New("error convert liquidity")
		}

		tickSpacingOut, err := c.v3PoolDataABI.Unpack("tickSpacing", tickSpacingData)
		if err != nil {
			fmt.Println("Error unpacking tickSpacing", err)
			return nil, err
		}
		tickSpacing, ok := tickSpacingOut[0].(*big.Int)
		if !ok {
			return nil, errors.New("error convert tickSpacing")
		}

		slot0Out, err := c.v3PoolDataABI.Unpack("slot0", slot0Data)
		if err != nil {
			fmt.Println("Error unpacking slot0", err)
			return nil, err
		}

		sqrtPriceX96, ok := slot0Out[0].(*big.Int)
		if !ok {
			return nil, errors.New("error convert sqrtPrice")
		}
		tick, ok := slot0Out[1].(*big.Int)
		if !ok {
			return nil, errors.New("error convert tick")
		}

		pool := pools[poolIndex]
		pool.Liquidity = liquidity
		pool.TickSpacing = int(tickSpacing.Int64())
		pool.SqrtPriceX96 = sqrtPriceX96
		pool.Tick = int(tick.Int64())

		updatedPools = append(updatedPools, pool)
	}

	return updatedPools, nil
}
