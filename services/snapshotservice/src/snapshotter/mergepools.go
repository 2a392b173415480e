package snapshotter

import (
	"context"
	"fmt"
	"math/big"

	"github.com/alexkalak/go_univ3_quoting/common/models"
)

const poolsUpsertChunkSize = 2000

// A pool fresh from the subgraph has no usable state yet. It is inserted
// dusty with zeroed slot0 so quoting skips it until MergePoolsData has run.
const defaultTicksJSON = "[]"

func (s *snapshotter) MergePools(ctx context.Context, chainID uint) error {
	tokens, err := s.tokenRepo.GetTokensByChainID(chainID)
	if err != nil {
		return err
	}

	pools, err := s.subgraphClient.GetV3Pools(ctx, chainID)
	if err != nil {
		return err
	}

	tokensMap := map[string]any{}
	for _, token := range tokens {
		tokensMap[token.Address] = new(any)
	}

	poolsMap := map[string]any{}
	toUpsert := make([]models.UniswapV3Pool, 0, len(pools))

	badPools := 0
	for _, pool := range pools {
		_, ok1 := tokensMap[pool.Token0]
		_, ok2 := tokensMap[pool.Token1]
		if !ok1 || !ok2 {
			badPools++
			continue
		}

		if _, ok := poolsMap[pool.Address]; ok {
			fmt.Println("found duplicate pool", pool.Address)
			continue
		}
		poolsMap[pool.Address] = new(any)

		pool.SqrtPriceX96 = big.NewInt(0)
		pool.Liquidity = big.NewInt(0)
		pool.TicksJSON = defaultTicksJSON
		pool.IsDusty = true

		toUpsert = append(toUpsert, pool)
	}

	for i := 0; i < len(toUpsert); i += poolsUpsertChunkSize {
		end := min(i+poolsUpsertChunkSize, len(toUpsert))

		if err := s.v3PoolDBRepo.UpsertPools(toUpsert[i:end]); err != nil {
			return err
		}
		fmt.Println("Pools upserted", end)
	}

	fmt.Println("Pools skipped for unknown tokens", badPools)
	return nil
}
