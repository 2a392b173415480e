package snapshotter

import (
	"context"
	"errors"
	"math/big"

	"github.com/alexkalak/go_univ3_quoting/common/external/rpcclient"
	"github.com/alexkalak/go_univ3_quoting/common/external/subgraphs"
	"github.com/alexkalak/go_univ3_quoting/common/repo/tokenrepo"
	"github.com/alexkalak/go_univ3_quoting/common/repo/v3poolsrepo"
)

// Snapshotter bootstraps the pool universe. MergeTokens and MergePools pull
// the token and pool lists from the subgraph into pg, MergePoolsTicks seeds
// tick lists from the subgraph, MergePoolsData refreshes live state over RPC
// and writes the result to pg, redis and the bolt snapshot at once.
type Snapshotter interface {
	MergeTokens(ctx context.Context, chainID uint) error
	MergePools(ctx context.Context, chainID uint) error
	MergePoolsTicks(ctx context.Context, chainID uint) error
	MergePoolsData(ctx context.Context, chainID uint, blockNumber *big.Int) error
}

type SnapshotterDependencies struct {
	SubgraphClient     subgraphs.SubgraphClient
	RpcClient          rpcclient.RpcClient
	TokenRepo          tokenrepo.TokenRepo
	V3PoolDBRepo       v3poolsrepo.V3PoolDBRepo
	V3PoolCacheRepo    v3poolsrepo.V3PoolCacheRepo
	V3PoolSnapshotRepo v3poolsrepo.V3PoolSnapshotRepo
}

func (d *SnapshotterDependencies) validate() error {
	if d.SubgraphClient == nil {
		return errors.New("SnapshotterDependencies.SubgraphClient cannot be empty")
	}
	if d.RpcClient == nil {
		return errors.New("SnapshotterDependencies.RpcClient cannot be empty")
	}
	if d.TokenRepo == nil {
		return errors.New("SnapshotterDependencies.TokenRepo cannot be empty")
	}
	if d.V3PoolDBRepo == nil {
		return errors.New("SnapshotterDependencies.V3PoolDBRepo cannot be empty")
	}
	if d.V3PoolCacheRepo == nil {
		return errors.New("SnapshotterDependencies.V3PoolCacheRepo cannot be empty")
	}
	if d.V3PoolSnapshotRepo == nil {
		return errors.New("SnapshotterDependencies.V3PoolSnapshotRepo cannot be empty")
	}

	return nil
}

type snapshotter struct {
	subgraphClient     subgraphs.SubgraphClient
	rpcClient          rpcclient.RpcClient
	tokenRepo          tokenrepo.TokenRepo
	v3PoolDBRepo       v3poolsrepo.V3PoolDBRepo
	v3PoolCacheRepo    v3poolsrepo.V3PoolCacheRepo
	v3PoolSnapshotRepo v3poolsrepo.V3PoolSnapshotRepo
}

func New(dependencies SnapshotterDependencies) (Snapshotter, error) {
	if err := dependencies.validate(); err != nil {
		return nil, err
	}

	return &snapshotter{
		subgraphClient:     dependencies.SubgraphClient,
		rpcClient:          dependencies.RpcClient,
		tokenRepo:          dependencies.TokenRepo,
		v3PoolDBRepo:       dependencies.V3PoolDBRepo,
		v3PoolCacheRepo:    dependencies.V3PoolCacheRepo,
		v3PoolSnapshotRepo: dependencies.V3PoolSnapshotRepo,
	}, nil
}
