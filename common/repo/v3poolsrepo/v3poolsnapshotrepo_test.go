package v3poolsrepo

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/alexkalak/go_univ3_quoting/common/models"
)

func snapshotRepoFixture(t *testing.T) V3PoolSnapshotRepo {
	t.Helper()
	repo, err := NewSnapshotRepo(V3PoolSnapshotRepoConfig{
		Path: filepath.Join(t.TempDir(), "pools.db"),
	})
	if err != nil {
		t.Fatalf("NewSnapshotRepo error: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func snapshotPool(t *testing.T, address string, tick int) models.UniswapV3Pool {
	t.Helper()
	pool := models.UniswapV3Pool{
		Address:      address,
		ChainID:      1,
		Token0:       "0x0000000000000000000000000000000000000001",
		Token1:       "0x0000000000000000000000000000000000000002",
		SqrtPriceX96: big.NewInt(79228162514264337),
		Liquidity:    big.NewInt(1000000),
		Tick:         tick,
		TickSpacing:  60,
		TickLower:    -887220,
		TickUpper:    887220,
		FeeTier:      3000,
		BlockNumber:  100,
	}
	err := pool.SetTicks([]models.TickRow{
		{Index: -887220, LiquidityNet: "1000000", LiquidityGross: "1000000"},
		{Index: 887220, LiquidityNet: "-1000000", LiquidityGross: "1000000"},
	})
	if err != nil {
		t.Fatalf("SetTicks error: %v", err)
	}
	return pool
}

func TestSnapshotRepoRoundTrip(t *testing.T) {
	repo := snapshotRepoFixture(t)

	saved := []models.UniswapV3Pool{
		snapshotPool(t, "0x000000000000000000000000000000000000000a", 0),
		snapshotPool(t, "0x000000000000000000000000000000000000000b", 120),
	}
	if err := repo.SavePools(1, saved); err != nil {
		t.Fatalf("SavePools error: %v", err)
	}

	loaded, err := repo.LoadPools(1)
	if err != nil {
		t.Fatalf("LoadPools error: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d pools, want 2", len(loaded))
	}

	byAddress := map[string]models.UniswapV3Pool{}
	for _, pool := range loaded {
		byAddress[pool.Address] = pool
	}
	for _, want := range saved {
		got, ok := byAddress[want.Address]
		if !ok {
			t.Fatalf("pool %s missing after reload", want.Address)
		}
		if got.Tick != want.Tick || got.TicksJSON != want.TicksJSON {
			t.Errorf("pool %s = tick %d ticks %s, want tick %d ticks %s",
				want.Address, got.Tick, got.TicksJSON, want.Tick, want.TicksJSON)
		}
		if got.SqrtPriceX96.Cmp(want.SqrtPriceX96) != 0 || got.Liquidity.Cmp(want.Liquidity) != 0 {
			t.Errorf("pool %s numeric fields changed", want.Address)
		}
	}
}

func TestSnapshotRepoOverwritesPool(t *testing.T) {
	repo := snapshotRepoFixture(t)
	address := "0x000000000000000000000000000000000000000a"

	if err := repo.SavePools(1, []models.UniswapV3Pool{snapshotPool(t, address, 0)}); err != nil {
		t.Fatalf("SavePools error: %v", err)
	}

	moved := snapshotPool(t, address, 300)
	moved.BlockNumber = 101
	if err := repo.SavePools(1, []models.UniswapV3Pool{moved}); err != nil {
		t.Fatalf("SavePools error: %v", err)
	}

	loaded, err := repo.LoadPools(1)
	if err != nil {
		t.Fatalf("LoadPools error: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded %d pools, want 1", len(loaded))
	}
	if loaded[0].Tick != 300 || loaded[0].BlockNumber != 101 {
		t.Errorf("pool = tick %d block %d, want tick 300 block 101", loaded[0].Tick, loaded[0].BlockNumber)
	}
}

func TestSnapshotRepoBlockNumber(t *testing.T) {
	repo := snapshotRepoFixture(t)

	blockNumber, err := repo.GetBlockNumber(1)
	if err != nil {
		t.Fatalf("GetBlockNumber error: %v", err)
	}
	if blockNumber != 0 {
		t.Errorf("fresh snapshot block number = %d, want 0", blockNumber)
	}

	if err := repo.SetBlockNumber(1, 18923411); err != nil {
		t.Fatalf("SetBlockNumber error: %v", err)
	}

	blockNumber, err = repo.GetBlockNumber(1)
	if err != nil {
		t.Fatalf("GetBlockNumber error: %v", err)
	}
	if blockNumber != 18923411 {
		t.Errorf("block number = %d, want 18923411", blockNumber)
	}

	// The reserved key shares the bucket with the pools and must not leak
	// into the pool listing.
	loaded, err := repo.LoadPools(1)
	if err != nil {
		t.Fatalf("LoadPools error: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("loaded %d pools from a bucket holding only the block number", len(loaded))
	}
}

func TestSnapshotRepoChainsAreIsolated(t *testing.T) {
	repo := snapshotRepoFixture(t)

	if err := repo.SavePools(1, []models.UniswapV3Pool{snapshotPool(t, "0x000000000000000000000000000000000000000a", 0)}); err != nil {
		t.Fatalf("SavePools error: %v", err)
	}

	loaded, err := repo.LoadPools(56)
	if err != nil {
		t.Fatalf("LoadPools error: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("chain 56 sees %d pools saved for chain 1", len(loaded))
	}
}
