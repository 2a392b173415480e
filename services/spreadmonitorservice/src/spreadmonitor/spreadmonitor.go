package spreadmonitor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/alexkalak/go_univ3_quoting/common/external/cexclient"
	"github.com/alexkalak/go_univ3_quoting/common/helpers/pricefloat"
	"github.com/alexkalak/go_univ3_quoting/common/models"
	"github.com/alexkalak/go_univ3_quoting/common/repo/tokenrepo"
	"github.com/alexkalak/go_univ3_quoting/common/repo/v3poolsrepo"
)

// SpreadTarget pairs one cached pool with the bybit spot symbol quoting the
// same pair. Inverted flips the pool price when the pool's token0/token1
// order is the reverse of the CEX symbol.
type SpreadTarget struct {
	PoolAddress string
	CexSymbol   string
	Inverted    bool
}

type SpreadMonitor interface {
	Start(ctx context.Context) error
}

type SpreadMonitorConfig struct {
	ChainID      uint
	PollInterval time.Duration
	Targets      []SpreadTarget
}

func (c *SpreadMonitorConfig) validate() error {
	if c.ChainID == 0 {
		return errors.New("SpreadMonitorConfig.ChainID cannot be empty")
	}
	if c.PollInterval <= 0 {
		return errors.New("SpreadMonitorConfig.PollInterval cannot be empty")
	}
	if len(c.Targets) == 0 {
		return errors.New("SpreadMonitorConfig.Targets cannot be empty")
	}

	return nil
}

type SpreadMonitorDependencies struct {
	CexClient       cexclient.CexClient
	TokenRepo       tokenrepo.TokenRepo
	V3PoolCacheRepo v3poolsrepo.V3PoolCacheRepo
}

func (d *SpreadMonitorDependencies) validate() error {
	if d.CexClient == nil {
		return errors.New("SpreadMonitorDependencies.CexClient cannot be empty")
	}
	if d.TokenRepo == nil {
		return errors.New("SpreadMonitorDependencies.TokenRepo cannot be empty")
	}
	if d.V3PoolCacheRepo == nil {
		return errors.New("SpreadMonitorDependencies.V3PoolCacheRepo cannot be empty")
	}

	return nil
}

type spreadMonitor struct {
	config SpreadMonitorConfig

	cexClient       cexclient.CexClient
	tokenRepo       tokenrepo.TokenRepo
	v3PoolCacheRepo v3poolsrepo.V3PoolCacheRepo
}

func New(config SpreadMonitorConfig, dependencies SpreadMonitorDependencies) (SpreadMonitor, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if err := dependencies.validate(); err != nil {
		return nil, err
	}

	return &spreadMonitor{
		config:          config,
		cexClient:       dependencies.CexClient,
		tokenRepo:       dependencies.TokenRepo,
		v3PoolCacheRepo: dependencies.V3PoolCacheRepo,
	}, nil
}

func (m *spreadMonitor) Start(ctx context.Context) error {
	fmt.Println("Starting spread monitor,", len(m.config.Targets), "targets")

	ticker := time.NewTicker(m.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		for _, target := range m.config.Targets {
			if err := m.reportTarget(ctx, target); err != nil {
				fmt.Println("Unable to report", target.CexSymbol, err)
			}
		}
	}
}

func (m *spreadMonitor) reportTarget(ctx context.Context, target SpreadTarget) error {
	poolMid, blockNumber, err := m.poolMidPrice(target)
	if err != nil {
		return err
	}

	ticker, err := m.cexClient.GetSpotTicker(ctx, target.CexSymbol)
	if err != nil {
		return err
	}
	cexMid := ticker.Mid()

	spreadBps := new(big.Float).SetPrec(pricefloat.Prec)
	spreadBps.Sub(cexMid, poolMid)
	spreadBps.Quo(spreadBps, poolMid)
	spreadBps.Mul(spreadBps, big.NewFloat(10000))

	fmt.Printf("%s block=%d pool=%s cex=%s spread=%sbps\n",
		target.CexSymbol,
		blockNumber,
		poolMid.Text('f', 8),
		cexMid.Text('f', 8),
		spreadBps.Text('f', 2),
	)
	return nil
}

// poolMidPrice reads the cached pool and converts its sqrt price into the
// human readable quote of the CEX symbol's direction.
func (m *spreadMonitor) poolMidPrice(target SpreadTarget) (*big.Float, int, error) {
	pool, err := m.v3PoolCacheRepo.GetPoolByIdentificator(models.V3PoolIdentificator{
		Address: target.PoolAddress,
		ChainID: m.config.ChainID,
	})
	if err != nil {
		return nil, 0, err
	}
	if pool.SqrtPriceX96 == nil || pool.SqrtPriceX96.Sign() == 0 {
		return nil, 0, fmt.Errorf("pool %s has no price yet", target.PoolAddress)
	}

	token0, err := m.tokenRepo.GetTokenByIdentificator(models.TokenIdentificator{
		Address: pool.Token0,
		ChainID: m.config.ChainID,
	})
	if err != nil {
		return nil, 0, err
	}
	token1, err := m.tokenRepo.GetTokenByIdentificator(models.TokenIdentificator{
		Address: pool.Token1,
		ChainID: m.config.ChainID,
	})
	if err != nil {
		return nil, 0, err
	}

	price := pricefloat.PriceFromSqrtRatioX96(pool.SqrtPriceX96)
	price = pricefloat.AdjustForDecimals(price, token0.Decimals, token1.Decimals)

	if target.Inverted {
		if price.Sign() == 0 {
			return nil, 0, fmt.Errorf("pool %s price is zero", target.PoolAddress)
		}
		price = new(big.Float).SetPrec(pricefloat.Prec).Quo(big.NewFloat(1), price)
	}

	return price, pool.BlockNumber, nil
}
