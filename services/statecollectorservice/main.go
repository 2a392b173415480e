package main

import (
	"context"
	"time"

	"github.com/alexkalak/go_univ3_quoting/common/external/rpcclient"
	"github.com/alexkalak/go_univ3_quoting/common/helpers/envhelper"
	"github.com/alexkalak/go_univ3_quoting/common/repo/v3poolsrepo"
	"github.com/alexkalak/go_univ3_quoting/services/statecollectorservice/src/statecollectorservice"
)

func main() {
	env, err := envhelper.GetEnv()
	if err != nil {
		panic(err)
	}

	var chainID uint = 1

	rpcClient, err := rpcclient.NewRpcClient(rpcclient.RpcClientConfig{
		EthMainnetHttp: env.ETH_MAINNET_RPC_HTTP,
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

	stateCollectorService, err := statecollectorservice.New(statecollectorservice.StateCollectorServiceConfig{
		ChainID:          chainID,
		KafkaServer:      env.KAFKA_SERVER,
		KafkaEventsTopic: env.KAFKA_V3_POOL_EVENTS_TOPIC,
		PollInterval:     3 * time.Second,
	}, statecollectorservice.StateCollectorServiceDependencies{
		RpcClient:       rpcClient,
		V3PoolCacheRepo: v3PoolCacheRepo,
	})
	if err != nil {
		panic(err)
	}

	if err := stateCollectorService.Start(context.Background()); err != nil {
		panic(err)
	}
}
