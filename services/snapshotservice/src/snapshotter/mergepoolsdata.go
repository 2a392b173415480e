package snapshotter

import (
	"context"
	"fmt"
	"math/big"
	"time"
)

// MergePoolsData refreshes slot0, liquidity and the windowed tick lists of
// every pool over RPC at blockNumber (latest when nil), then writes the
// refreshed snapshot to pg, the redis cache and the bolt file under the
// same block number.
func (s *snapshotter) MergePoolsData(ctx context.Context, chainID uint, blockNumber *big.Int) error {
	startTime := time.Now()

	if blockNumber == nil {
		latest, err := s.rpcClient.GetBlockNumber(ctx, chainID)
		if err != nil {
			return err
		}
		blockNumber = new(big.Int).SetUint64(latest)
	}

	pools, err := s.v3PoolDBRepo.GetPools(chainID)
	if err != nil {
		return err
	}
	fmt.Println("Refreshing", len(pools), "pools at block", blockNumber)

	pools, err = s.rpcClient.GetPoolsData(ctx, pools, chainID, blockNumber)
	if err != nil {
		return err
	}

	pools, err = s.rpcClient.GetPoolsTicks(ctx, pools, chainID, blockNumber)
	if err != nil {
		return err
	}

	for i := range pools {
		pools[i].BlockNumber = int(blockNumber.Int64())
		pools[i].IsDusty = pools[i].SqrtPriceX96 == nil ||
			pools[i].SqrtPriceX96.Sign() == 0 ||
			pools[i].Liquidity == nil
	}

	if err := s.v3PoolDBRepo.UpdatePoolStates(pools); err != nil {
		return err
	}

	if err := s.v3PoolCacheRepo.SetPools(chainID, pools); err != nil {
		return err
	}
	if err := s.v3PoolCacheRepo.SetBlockNumber(chainID, blockNumber.Uint64()); err != nil {
		return err
	}

	if err := s.v3PoolSnapshotRepo.SavePools(chainID, pools); err != nil {
		return err
	}
	if err := s.v3PoolSnapshotRepo.SetBlockNumber(chainID, blockNumber.Uint64()); err != nil {
		return err
	}

	fmt.Println("Pools data merged, took", time.Since(startTime))
	return nil
}
