package main

import (
	"context"

	"github.com/alexkalak/go_univ3_quoting/common/external/rpcclient"
	"github.com/alexkalak/go_univ3_quoting/common/external/subgraphs"
	"github.com/alexkalak/go_univ3_quoting/common/helpers/envhelper"
	"github.com/alexkalak/go_univ3_quoting/common/periphery/pgdatabase"
	"github.com/alexkalak/go_univ3_quoting/common/repo/tokenrepo"
	"github.com/alexkalak/go_univ3_quoting/common/repo/v3poolsrepo"
	"github.com/alexkalak/go_univ3_quoting/services/snapshotservice/src/snapshotter"
)

func main() {
	env, err := envhelper.GetEnv()
	if err != nil {
		panic(err)
	}

	pgConf := pgdatabase.PgDatabaseConfig{
		Host:     env.POSTGRES_HOST,
		Port:     env.POSTGRES_PORT,
		User:     env.POSTGRES_USER,
		Password: env.POSTGRES_PASSWORD,
		DBName:   env.POSTGRES_DB_NAME,
		SSLMode:  env.POSTGRES_SSL_MODE,
	}
	pgDB, err := pgdatabase.New(pgConf)
	if err != nil {
		panic(err)
	}

	subgraphClient, err := subgraphs.NewSubgraphClient(subgraphs.SubgraphClientConfig{
		APIKey: env.SUBGRAPH_API_TOKEN,
	})
	if err != nil {
		panic(err)
	}

	rpcClient, err := rpcclient.NewRpcClient(rpcclient.RpcClientConfig{
		EthMainnetHttp: env.ETH_MAINNET_RPC_HTTP,
	})
	if err != nil {
		panic(err)
	}

	tokenRepo, err := tokenrepo.NewDBRepo(tokenrepo.TokenRepoDependencies{
		Database: pgDB,
	})
	if err != nil {
		panic(err)
	}
	v3PoolDBRepo, err := v3poolsrepo.NewDBRepo(v3poolsrepo.V3PoolDBRepoDependencies{
		Database: pgDB,
	})
	if err != nil {
		panic(err)
	}
	v3PoolCacheRepo, err := v3poolsrepo.NewCacheRepo(context.Background(), v3poolsrepo.V3PoolCacheRepoConfig{
		RedisServer: env.REDIS_SERVER,
	})
	if err != nil {
		panic(err)
	}
	v3PoolSnapshotRepo, err := v3poolsrepo.NewSnapshotRepo(v3poolsrepo.V3PoolSnapshotRepoConfig{
		Path: env.BOLT_SNAPSHOT_PATH,
	})
	if err != nil {
		panic(err)
	}
	defer v3PoolSnapshotRepo.Close()

	snapshotService, err := snapshotter.New(snapshotter.SnapshotterDependencies{
		SubgraphClient:     subgraphClient,
		RpcClient:          rpcClient,
		TokenRepo:          tokenRepo,
		V3PoolDBRepo:       v3PoolDBRepo,
		V3PoolCacheRepo:    v3PoolCacheRepo,
		V3PoolSnapshotRepo: v3PoolSnapshotRepo,
	})
	if err != nil {
		panic(err)
	}

	mergeTokens(snapshotService)
	mergePools(snapshotService)
	mergePoolsTicks(snapshotService)
	mergePoolsData(snapshotService)
}

func mergeTokens(snapshotService snapshotter.Snapshotter) {
	var chainID uint = 1

	if err := snapshotService.MergeTokens(context.Background(), chainID); err != nil {
		panic(err)
	}
}

func mergePools(snapshotService snapshotter.Snapshotter) {
	var chainID uint = 1

	if err := snapshotService.MergePools(context.Background(), chainID); err != nil {
		panic(err)
	}
}

func mergePoolsTicks(snapshotService snapshotter.Snapshotter) {
	var chainID uint = 1

	if err := snapshotService.MergePoolsTicks(context.Background(), chainID); err != nil {
		panic(err)
	}
}

func mergePoolsData(snapshotService snapshotter.Snapshotter) {
	var chainID uint = 1

	if err := snapshotService.MergePoolsData(context.Background(), chainID, nil); err != nil {
		panic(err)
	}
}
