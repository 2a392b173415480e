package main

import (
	"context"
	"fmt"

	"github.com/alexkalak/go_univ3_quoting/common/helpers/envhelper"
	"github.com/alexkalak/go_univ3_quoting/common/periphery/pgdatabase"
	"github.com/alexkalak/go_univ3_quoting/common/repo/quoterepo"
	"github.com/alexkalak/go_univ3_quoting/common/repo/tokenrepo"
	"github.com/alexkalak/go_univ3_quoting/common/repo/v3poolsrepo"
	"github.com/alexkalak/go_univ3_quoting/services/quoterservice/src/controllers/quoterhttp"
	"github.com/alexkalak/go_univ3_quoting/services/quoterservice/src/quoterservice"
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

	quoteRepo, err := quoterepo.NewDBRepo(quoterepo.V3QuoteRepoDependencies{
		Database: pgDB,
	})
	if err != nil {
		panic(err)
	}

	quoterService, err := quoterservice.New(chainID, quoterservice.QuoterServiceDependencies{
		TokenRepo:          tokenRepo,
		V3PoolCacheRepo:    v3PoolCacheRepo,
		V3PoolDBRepo:       v3PoolDBRepo,
		V3PoolSnapshotRepo: v3PoolSnapshotRepo,
		QuoteRepo:          quoteRepo,
	})
	if err != nil {
		panic(err)
	}

	server, err := quoterhttp.New(quoterhttp.QuoterHTTPServerConfig{
		Port: env.QUOTER_HTTP_PORT,
	}, quoterhttp.QuoterHTTPServerDependencies{
		QuoterService: quoterService,
	})
	if err != nil {
		panic(err)
	}

	fmt.Println("quoter listening on port ", env.QUOTER_HTTP_PORT)
	if err := server.Start(); err != nil {
		panic(err)
	}
}
