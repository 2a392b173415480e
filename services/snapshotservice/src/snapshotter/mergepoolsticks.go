package snapshotter

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexkalak/go_univ3_quoting/common/models"
)

const parallelTickQueries = 5
const ticksFlushChunkSize = 200

// MergePoolsTicks seeds the tick list of every non dusty pool from the
// subgraph. The window is set to the full span of known ticks; the RPC
// refresh narrows it around the current tick later.
func (s *snapshotter) MergePoolsTicks(ctx context.Context, chainID uint) error {
	pools, err := s.v3PoolDBRepo.GetPools(chainID)
	if err != nil {
		return err
	}

	updated := make([]models.UniswapV3Pool, 0, len(pools))
	var updatedMu sync.Mutex

	for chunkStart := 0; chunkStart < len(pools); chunkStart += parallelTickQueries {
		chunkEnd := min(chunkStart+parallelTickQueries, len(pools))

		wg := sync.WaitGroup{}
		for i := chunkStart; i < chunkEnd; i++ {
			pool := pools[i]
			wg.Go(func() {
				ticks, err := s.subgraphClient.GetPoolTicks(ctx, chainID, pool.Address)
				if err != nil {
					fmt.Println("Unable to get ticks for pool", pool.Address, err)
					return
				}
				if len(ticks) == 0 {
					return
				}

				if err := pool.SetTicks(ticks); err != nil {
					fmt.Println("Unable to encode ticks for pool", pool.Address, err)
					return
				}
				pool.TickLower = ticks[0].Index
				pool.TickUpper = ticks[len(ticks)-1].Index

				updatedMu.Lock()
				updated = append(updated, pool)
				updatedMu.Unlock()
			})
		}
		wg.Wait()

		if chunkEnd%100 < parallelTickQueries {
			fmt.Println("Pools ticks fetched", chunkEnd, "of", len(pools))
		}
	}

	for i := 0; i < len(updated); i += ticksFlushChunkSize {
		end := min(i+ticksFlushChunkSize, len(updated))

		if err := s.v3PoolDBRepo.UpdatePoolStates(updated[i:end]); err != nil {
			return err
		}
	}

	fmt.Println("Pools with ticks merged", len(updated))
	return nil
}
