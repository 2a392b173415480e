package statecollectorservice

import (
	"context"
	"errors"
	"time"

	"github.com/alexkalak/go_univ3_quoting/common/external/rpcclient"
	"github.com/alexkalak/go_univ3_quoting/common/repo/v3poolsrepo"
)

// StateCollectorService polls pool state over RPC once per new block and
// publishes the diffs against the cache as pool events, closing every block
// with a block_over marker.
type StateCollectorService interface {
	Start(ctx context.Context) error
}

type StateCollectorServiceConfig struct {
	ChainID          uint
	KafkaServer      string
	KafkaEventsTopic string
	PollInterval     time.Duration
}

func (c *StateCollectorServiceConfig) validate() error {
	if c.ChainID == 0 {
		return errors.New("StateCollectorServiceConfig.ChainID cannot be empty")
	}
	if c.KafkaServer == "" {
		return errors.New("StateCollectorServiceConfig.KafkaServer cannot be empty")
	}
	if c.KafkaEventsTopic == "" {
		return errors.New("StateCollectorServiceConfig.KafkaEventsTopic cannot be empty")
	}
	if c.PollInterval <= 0 {
		return errors.New("StateCollectorServiceConfig.PollInterval cannot be empty")
	}

	return nil
}

type StateCollectorServiceDependencies struct {
	RpcClient       rpcclient.RpcClient
	V3PoolCacheRepo v3poolsrepo.V3PoolCacheRepo
}

func (d *StateCollectorServiceDependencies) validate() error {
	if d.RpcClient == nil {
		return errors.New("StateCollectorServiceDependencies.RpcClient cannot be empty")
	}
	if d.V3PoolCacheRepo == nil {
		return errors.New("StateCollectorServiceDependencies.V3PoolCacheRepo cannot be empty")
	}

	return nil
}

type stateCollectorService struct {
	config StateCollectorServiceConfig

	rpcClient       rpcclient.RpcClient
	v3PoolCacheRepo v3poolsrepo.V3PoolCacheRepo

	kafkaClient kafkaClient

	lastPublishedBlock uint64
}

func New(config StateCollectorServiceConfig, dependencies StateCollectorServiceDependencies) (StateCollectorService, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if err := dependencies.validate(); err != nil {
		return nil, err
	}

	kafkaClient, err := newKafkaClient(kafkaClientConfig{
		KafkaServer: config.KafkaServer,
		KafkaTopic:  config.KafkaEventsTopic,
	})
	if err != nil {
		return nil, err
	}

	return &stateCollectorService{
		config:          config,
		rpcClient:       dependencies.RpcClient,
		v3PoolCacheRepo: dependencies.V3PoolCacheRepo,
		kafkaClient:     kafkaClient,
	}, nil
}
