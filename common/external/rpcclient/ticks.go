package rpcclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/alexkalak/go_univ3_quoting/common/models"
)

// wordRadius bitmap words are read on each side of the current tick's word.
// One word covers 256*tickSpacing ticks, so the window is wide enough for
// any realistic single quote; a swap that would leave it needs a fresh,
// wider snapshot.
const wordRadius = 10

func (c *rpcClient) GetPoolsTicks(ctx context.Context, pools []models.UniswapV3Pool, chainID uint, blockNumber *big.Int) ([]models.UniswapV3Pool, error) {
	client, ok := c.clients[chainID]
	if !ok {
		return nil, fmt.Errorf("client for chain %d not found", chainID)
	}

	multicallAddress, ok := c.multicallAddresses[chainID]
	if !ok {
		return nil, fmt.Errorf("multicall address for chain %d not found", chainID)
	}

	res := struct {
		mu    sync.Mutex
		pools []models.UniswapV3Pool
	}{}

	res.pools = make([]models.UniswapV3Pool, 0, len(pools))

	parallelPools := 20

	wg := sync.WaitGroup{}
	for offset := 0; offset < len(pools); offset += parallelPools {
		for _, pool := range pools[offset:min(offset+parallelPools, len(pools))] {
			repeatedTimes := 0
			f := func() {}
			f = func() {
				updated, err := c.getPoolTicks(ctx, pool, blockNumber, client, multicallAddress)
				if err != nil {
					fmt.Println("Error reading pool ticks", pool.Address, err)
					if repeatedTimes < 2 {
						repeatedTimes++
						time.Sleep(1 * time.Second)
						f()
					}
					return
				}

				res.mu.Lock()
				res.pools = append(res.pools, updated)
				res.mu.Unlock()
			}

			wg.Go(f)
		}
		wg.Wait()
	}
	wg.Wait()

	return res.pools, nil
}

// getPoolTicks reads the bitmap words around the pool's current tick, then
// fetches tick data for every initialized index the words reveal.
func (c *rpcClient) getPoolTicks(ctx context.Context, pool models.UniswapV3Pool, blockNumber *big.Int, client *ethclient.Client, multicallAddress common.Address) (models.UniswapV3Pool, error) {
	if pool.TickSpacing <= 0 {
		return pool, errors.New("pool tick spacing not set")
	}

	poolAddress := common.HexToAddress(pool.Address)

	currentWord := floorDiv(floorDiv(pool.Tick, pool.TickSpacing), 256)
	words := make([]int, 0, 2*wordRadius+1)
	for word := currentWord - wordRadius; word <= currentWord+wordRadius; word++ {
		words = append(words, word)
	}

	calls := make([]call, 0, len(words))
	for _, word := range words {
		data, err := c.v3PoolDataABI.Pack("tickBitmap", int16(word))
		if err != nil {
			return pool, err
		}
		calls = append(calls, call{poolAddress, data})
	}

	returnBytes, err := c.Multicall(ctx, calls, blockNumber, client, multicallAddress)
	if err != nil {
		return pool, err
	}
	if len(returnBytes) != len(words) {
		return pool, errors.New("multicall data len is corrupted")
	}

	initializedTicks := []int{}
	for i, word := range words {
		bitmapOut, err := c.v3PoolDataABI.Unpack("tickBitmap", returnBytes[i])
		if err != nil {
			return pool, err
		}
		bitmap, ok := bitmapOut[0].(*big.Int)
		if !ok {
			return pool, errors.New("error convert tick bitmap")
		}

		for bit := range 256 {
			if bitmap.Bit(bit) == 1 {
				compressed := word*256 + bit
				initializedTicks = append(initializedTicks, compressed*pool.TickSpacing)
			}
		}
	}

	tickRows, err := c.getTickRows(ctx, poolAddress, initializedTicks, blockNumber, client, multicallAddress)
	if err != nil {
		return pool, err
	}

	pool.TickLower = (currentWord - wordRadius) * 256 * pool.TickSpacing
	pool.TickUpper = ((currentWord+wordRadius+1)*256 - 1) * pool.TickSpacing
	if err := pool.SetTicks(tickRows); err != nil {
		return pool, err
	}

	return pool, nil
}

const ticksCallChunkSize = 100

func (c *rpcClient) getTickRows(ctx context.Context, poolAddress common.Address, tickIndexes []int, blockNumber *big.Int, client *ethclient.Client, multicallAddress common.Address) ([]models.TickRow, error) {
	rows := make([]models.TickRow, 0, len(tickIndexes))

	for offset := 0; offset < len(tickIndexes); offset += ticksCallChunkSize {
		slice := tickIndexes[offset:min(offset+ticksCallChunkSize, len(tickIndexes))]

		calls := make([]call, 0, len(slice))
		for _, tickIndex := range slice {
			data, err := c.v3PoolDataABI.Pack("ticks", big.NewInt(int64(tickIndex)))
			if err != nil {
				return nil, err
			}
			calls = append(calls, call{poolAddress, data})
		}

		returnBytes, err := c.Multicall(ctx, calls, blockNumber, client, multicallAddress)
		if err != nil {
			return nil, err
		}
		if len(returnBytes) != len(slice) {
			return nil, errors.New("multicall data len is corrupted")
		}

		for i, tickIndex := range slice {
			tickOut, err := c.v3PoolDataABI.Unpack("ticks", returnBytes[i])
			if err != nil {
				return nil, err
			}

			liquidityGross, ok := tickOut[0].(*big.Int)
			if !ok {
				return nil, errors.New("error convert liquidityGross")
			}
			liquidityNet, ok := tickOut[1].(*big.Int)
			if !ok {
				return nil, errors.New("error convert liquidityNet")
			}

			rows = append(rows, models.TickRow{
				Index:          tickIndex,
				LiquidityNet:   liquidityNet.String(),
				LiquidityGross: liquidityGross.String(),
			})
		}
	}

	return rows, nil
}

// floorDiv rounds toward negative infinity, matching the on-chain word
// arithmetic for negative ticks.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
