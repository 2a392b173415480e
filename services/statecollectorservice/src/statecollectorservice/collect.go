package statecollectorservice

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/alexkalak/go_univ3_quoting/common/models"
)

func (s *stateCollectorService) Start(ctx context.Context) error {
	fmt.Println("Starting state collector on chain", s.config.ChainID)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		blockNumber, err := s.rpcClient.GetBlockNumber(ctx, s.config.ChainID)
		if err != nil {
			fmt.Println("Unable to get block number", err)
			continue
		}

		if blockNumber <= s.lastPublishedBlock {
			continue
		}

		if err := s.collectBlock(ctx, blockNumber); err != nil {
			fmt.Println("Unable to collect block", blockNumber, err)
			continue
		}

		s.lastPublishedBlock = blockNumber
	}
}

func (s *stateCollectorService) collectBlock(ctx context.Context, blockNumber uint64) error {
	startTime := time.Now()

	cachedPools, err := s.v3PoolCacheRepo.GetPools(s.config.ChainID)
	if err != nil {
		return err
	}
	if len(cachedPools) == 0 {
		fmt.Println("No pools in cache, skipping block", blockNumber)
		return nil
	}

	freshPools, err := s.rpcClient.GetPoolsData(ctx, cachedPools, s.config.ChainID, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return err
	}

	cachedByID := make(map[models.V3PoolIdentificator]models.UniswapV3Pool, len(cachedPools))
	for _, pool := range cachedPools {
		cachedByID[pool.GetIdentificator()] = pool
	}

	events := []models.V3PoolEvent{}
	for _, fresh := range freshPools {
		cached, ok := cachedByID[fresh.GetIdentificator()]
		if ok && !poolStateChanged(cached, fresh) {
			continue
		}

		events = append(events, models.V3PoolEvent{
			Type:         models.V3_EVENT_STATE,
			ChainID:      s.config.ChainID,
			PoolAddress:  fresh.Address,
			BlockNumber:  int(blockNumber),
			SqrtPriceX96: fresh.SqrtPriceX96.String(),
			Tick:         fresh.Tick,
			Liquidity:    fresh.Liquidity.String(),
		})
	}

	if len(events) > 0 {
		if err := s.kafkaClient.sendPoolEvents(ctx, events); err != nil {
			return err
		}
	}

	err = s.kafkaClient.sendPoolEvent(ctx, models.V3PoolEvent{
		Type:        models.V3_EVENT_BLOCK_OVER,
		ChainID:     s.config.ChainID,
		BlockNumber: int(blockNumber),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Block %d: %d of %d pools changed, took %s\n", blockNumber, len(events), len(freshPools), time.Since(startTime))
	return nil
}

func poolStateChanged(cached, fresh models.UniswapV3Pool) bool {
	if cached.SqrtPriceX96 == nil || fresh.SqrtPriceX96 == nil {
		return true
	}
	if cached.Liquidity == nil || fresh.Liquidity == nil {
		return true
	}

	return cached.Tick != fresh.Tick ||
		cached.SqrtPriceX96.Cmp(fresh.SqrtPriceX96) != 0 ||
		cached.Liquidity.Cmp(fresh.Liquidity) != 0
}
