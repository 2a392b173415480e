package main

import (
	"context"

	"github.com/alexkalak/go_univ3_quoting/common/helpers/envhelper"
	"github.com/alexkalak/go_univ3_quoting/common/periphery/pgdatabase"
	"github.com/alexkalak/go_univ3_quoting/common/repo/v3poolsrepo"
	"github.com/alexkalak/go_univ3_quoting/services/poolsyncservice/src/poolsyncservice"
)

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

	poolSyncService, err := poolsyncservice.New(poolsyncservice.PoolSyncServiceConfig{
		ChainID:          chainID,
		KafkaServer:      env.KAFKA_SERVER,
		KafkaEventsTopic: env.KAFKA_V3_POOL_EVENTS_TOPIC,
	}, poolsyncservice.PoolSyncServiceDependencies{
		V3PoolDBRepo:       v3PoolDBRepo,
		V3PoolCacheRepo:    v3PoolCacheRepo,
		V3PoolSnapshotRepo: v3PoolSnapshotRepo,
	})
	if err != nil {
		panic(err)
	}

	if err := poolSyncService.Start(context.Background()); err != nil {
		panic(err)
	}
}
