package main

import (
	"context"
	"time"

	"github.com/alexkalak/go_univ3_quoting/common/external/cexclient"
	"github.com/alexkalak/go_univ3_quoting/common/helpers/envhelper"
	"github.com/alexkalak/go_univ3_quoting/common/periphery/pgdatabase"
	"github.com/alexkalak/go_univ3_quoting/common/repo/tokenrepo"
	"github.com/alexkalak/go_univ3_quoting/common/repo/v3poolsrepo"
	"github.com/alexkalak/go_univ3_quoting/services/spreadmonitorservice/src/spreadmonitor"
)

// ETH/USDT 0.05% and WBTC/USDT 0.3% on mainnet. Both pools quote USDT per
// coin already, so neither needs inverting.
var targets = []spreadmonitor.SpreadTarget{
	{
		PoolAddress: "0x11b815efb8f581194ae79006d24e0d814b7697f6",
		CexSymbol:   "ETHUSDT",
	},
	{
		PoolAddress: "0x9db9e0e53058c89e5b94e29621a205198648425b",
		CexSymbol:   "BTCUSDT",
	},
}

func main() {
	env, err := envhelper.GetEnv()
	if err != nil {
		panic(err)
	}

	var chainID uint = 1

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

	tokenRepo, err := tokenrepo.NewDBRepo(tokenrepo.TokenRepoDependencies{
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

	cexClient, err := cexclient.NewCexClient(cexclient.CexClientConfig{
		APIKey:    env.BYBIT_API_KEY,
		APISecret: env.BYBIT_API_SECRET,
	})
	if err != nil {
		panic(err)
	}

	spreadMonitor, err := spreadmonitor.New(spreadmonitor.SpreadMonitorConfig{
		ChainID:      chainID,
		PollInterval: 5 * time.Second,
		Targets:      targets,
	}, spreadmonitor.SpreadMonitorDependencies{
		CexClient:       cexClient,
		TokenRepo:       tokenRepo,
		V3PoolCacheRepo: v3PoolCacheRepo,
	})
	if err != nil {
		panic(err)
	}

	if err := spreadMonitor.Start(context.Background()); err != nil {
		panic(err)
	}
}
