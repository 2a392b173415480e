package poolsyncservice

import (
	"context"
	"errors"

	"github.com/alexkalak/go_univ3_quoting/common/models"
	"github.com/alexkalak/go_univ3_quoting/common/repo/v3poolsrepo"
)

type PoolSyncService interface {
	Start(ctx context.Context) error
}

type PoolSyncServiceConfig struct {
	ChainID          uint
	KafkaServer      string
	KafkaEventsTopic string
}

func (c *PoolSyncServiceConfig) validate() error {
	if c.ChainID == 0 {
		return errors.New("pool sync service config ChainID not set")
	}
	if c.KafkaServer == "" {
		return errors.New("pool sync service config KafkaServer not set")
	}
	if c.KafkaEventsTopic == "" {
		return errors.New("pool sync service config KafkaEventsTopic not set")
	}
	return nil
}

type PoolSyncServiceDependencies struct {
	V3PoolDBRepo       v3poolsrepo.V3PoolDBRepo
	V3PoolCacheRepo    v3poolsrepo.V3PoolCacheRepo
	V3PoolSnapshotRepo v3poolsrepo.V3PoolSnapshotRepo
}

func (d *PoolSyncServiceDependencies) validate() error {
	if d.V3PoolDBRepo == nil {
		return errors.New("pool sync service dependencies V3PoolDBRepo cannot be nil")
	}
	if d.V3PoolCacheRepo == nil {
		return errors.New("pool sync service dependencies V3PoolCacheRepo cannot be nil")
	}
	if d.V3PoolSnapshotRepo == nil {
		return errors.New("pool sync service dependencies V3PoolSnapshotRepo cannot be nil")
	}
	return nil
}

type poolSyncService struct {
	config PoolSyncServiceConfig

	currentCheckingBlock    uint64
	currentBlockPoolChanges map[models.V3PoolIdentificator]models.UniswapV3Pool

	v3PoolDBRepo       v3poolsrepo.V3PoolDBRepo
	v3PoolCacheRepo    v3poolsrepo.V3PoolCacheRepo
	v3PoolSnapshotRepo v3poolsrepo.V3PoolSnapshotRepo
}

func New(config PoolSyncServiceConfig, dependencies PoolSyncServiceDependencies) (PoolSyncService, error) {
	if err := dependencies.validate(); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &poolSyncService{
		config:                  config,
		currentBlockPoolChanges: map[models.V3PoolIdentificator]models.UniswapV3Pool{},
		v3PoolDBRepo:            dependencies.V3PoolDBRepo,
		v3PoolCacheRepo:         dependencies.V3PoolCacheRepo,
		v3PoolSnapshotRepo:      dependencies.V3PoolSnapshotRepo,
	}, nil
}
