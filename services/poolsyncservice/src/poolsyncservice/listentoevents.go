package poolsyncservice

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/alexkalak/go_univ3_quoting/common/core/liquiditymath"
	"github.com/alexkalak/go_univ3_quoting/common/models"
)

// Start consumes pool events from kafka and applies them to the cached pool
// snapshots. Changes accumulate per block; a block_over event flushes the
// block's pools to redis and the bolt snapshot on the spot and hands them to
// a postgres updater goroutine.
func (s *poolSyncService) Start(ctx context.Context) error {
	flushChannel := make(chan []models.UniswapV3Pool, 64)
	go s.startPostgresUpdater(ctx, flushChannel)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{s.config.KafkaServer},
		Topic:   s.config.KafkaEventsTopic,
		GroupID: "poolsync",
	})
	defer reader.Close()

	lastTimeLogged := time.Now()
	msgCount := 0

	fmt.Println("listening for pool events...")
	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Println("failed to read message:", err)
			continue
		}

		msgCount++
		if time.Since(lastTimeLogged) > time.Second {
			fmt.Println(msgCount, "events")
			msgCount = 0
			lastTimeLogged = time.Now()
		}

		event := models.V3PoolEvent{}
		if err := event.FillFromJSON(m.Value); err != nil {
			fmt.Println("malformed event:", err)
			continue
		}
		if event.ChainID != s.config.ChainID {
			continue
		}

		if err := s.handleEvent(&event, flushChannel); err != nil {
			fmt.Println("error handling event:", err)
		}
	}
}

func (s *poolSyncService) handleEvent(event *models.V3PoolEvent, flushChannel chan<- []models.UniswapV3Pool) error {
	if event.Type == models.V3_EVENT_BLOCK_OVER {
		return s.flushBlock(event, flushChannel)
	}

	s.currentCheckingBlock = uint64(event.BlockNumber)

	pool, err := s.poolForEvent(event)
	if err != nil {
		return err
	}

	switch event.Type {
	case models.V3_EVENT_SWAP, models.V3_EVENT_STATE:
		err = applySlot0Event(&pool, event)
	case models.V3_EVENT_MINT:
		err = applyMintBurnEvent(&pool, event, false)
	case models.V3_EVENT_BURN:
		err = applyMintBurnEvent(&pool, event, true)
	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}
	if err != nil {
		return err
	}

	pool.BlockNumber = event.BlockNumber
	s.currentBlockPoolChanges[pool.GetIdentificator()] = pool

	return nil
}

// poolForEvent prefers the copy already touched this block so consecutive
// events within one block compound instead of clobbering each other.
func (s *poolSyncService) poolForEvent(event *models.V3PoolEvent) (models.UniswapV3Pool, error) {
	poolIdentificator := models.V3PoolIdentificator{
		Address: event.PoolAddress,
		ChainID: s.config.ChainID,
	}

	if pool, ok := s.currentBlockPoolChanges[poolIdentificator]; ok {
		return pool, nil
	}

	return s.v3PoolCacheRepo.GetPoolByIdentificator(poolIdentificator)
}

func (s *poolSyncService) flushBlock(event *models.V3PoolEvent, flushChannel chan<- []models.UniswapV3Pool) error {
	if s.currentCheckingBlock != uint64(event.BlockNumber) || len(s.currentBlockPoolChanges) == 0 {
		return nil
	}

	pools := make([]models.UniswapV3Pool, 0, len(s.currentBlockPoolChanges))
	for _, pool := range s.currentBlockPoolChanges {
		pools = append(pools, pool)
	}
	clear(s.currentBlockPoolChanges)

	if err := s.v3PoolCacheRepo.SetPools(s.config.ChainID, pools); err != nil {
		return err
	}
	if err := s.v3PoolCacheRepo.SetBlockNumber(s.config.ChainID, s.currentCheckingBlock); err != nil {
		return err
	}

	if err := s.v3PoolSnapshotRepo.SavePools(s.config.ChainID, pools); err != nil {
		return err
	}
	if err := s.v3PoolSnapshotRepo.SetBlockNumber(s.config.ChainID, s.currentCheckingBlock); err != nil {
		return err
	}

	flushChannel <- pools

	return nil
}

func (s *poolSyncService) startPostgresUpdater(ctx context.Context, flushChannel <-chan []models.UniswapV3Pool) {
	for {
		select {
		case <-ctx.Done():
			return
		case pools := <-flushChannel:
			if err := s.v3PoolDBRepo.UpdatePoolStates(pools); err != nil {
				fmt.Println("error flushing pools to postgres:", err)
			}
		}
	}
}

// applySlot0Event replaces the pool's price, tick and active liquidity with
// the post-event values the producer read from slot0.
func applySlot0Event(pool *models.UniswapV3Pool, event *models.V3PoolEvent) error {
	sqrtPriceX96, ok := new(big.Int).SetString(event.SqrtPriceX96, 10)
	if !ok {
		return fmt.Errorf("%w: sqrt_price_x96=%q", models.ErrMalformedAmount, event.SqrtPriceX96)
	}
	liquidity, ok := new(big.Int).SetString(event.Liquidity, 10)
	if !ok {
		return fmt.Errorf("%w: liquidity=%q", models.ErrMalformedAmount, event.Liquidity)
	}

	pool.SqrtPriceX96 = sqrtPriceX96
	pool.Liquidity = liquidity
	pool.Tick = event.Tick

	if pool.Tick < pool.TickLower || pool.Tick > pool.TickUpper {
		// The price left the snapshotted tick window; quotes against this
		// pool would cross unknown ticks. Flag it until the next full
		// state refresh widens the window.
		pool.IsDusty = true
	}

	return nil
}

// applyMintBurnEvent adjusts the tick rows at the position's bounds and,
// when the range straddles the current tick, the active liquidity. Burns
// are mints with the delta negated.
func applyMintBurnEvent(pool *models.UniswapV3Pool, event *models.V3PoolEvent, burn bool) error {
	amount, ok := new(big.Int).SetString(event.Amount, 10)
	if !ok {
		return fmt.Errorf("%w: amount=%q", models.ErrMalformedAmount, event.Amount)
	}

	grossDelta := amount
	if burn {
		grossDelta = new(big.Int).Neg(amount)
	}
	netDelta := grossDelta

	ticks, err := pool.Ticks()
	if err != nil {
		return err
	}

	ticks, err = adjustTick(ticks, event.TickLower, netDelta, grossDelta)
	if err != nil {
		return err
	}
	ticks, err = adjustTick(ticks, event.TickUpper, new(big.Int).Neg(netDelta), grossDelta)
	if err != nil {
		return err
	}

	if err := pool.SetTicks(ticks); err != nil {
		return err
	}

	if event.TickLower <= pool.Tick && pool.Tick < event.TickUpper {
		if pool.Liquidity == nil {
			return errors.New("pool liquidity unknown")
		}
		liquidity, err := liquiditymath.AddDelta(pool.Liquidity, netDelta)
		if err != nil {
			return err
		}
		pool.Liquidity = liquidity
	}

	return nil
}

// adjustTick applies a signed liquidityNet delta at one tick index, keeping
// the rows sorted. liquidityGross moves by the position-size change, which
// is the same magnitude at both bounds: up for mints, down for burns. A row
// that ends with zero gross liquidity is no longer initialized and is
// dropped.
func adjustTick(ticks []models.TickRow, tickIndex int, netDelta, grossDelta *big.Int) ([]models.TickRow, error) {
	position := sort.Search(len(ticks), func(i int) bool {
		return ticks[i].Index >= tickIndex
	})

	if position < len(ticks) && ticks[position].Index == tickIndex {
		net, ok := new(big.Int).SetString(ticks[position].LiquidityNet, 10)
		if !ok {
			return nil, fmt.Errorf("%w: liquidity_net=%q", models.ErrMalformedAmount, ticks[position].LiquidityNet)
		}
		gross, ok := new(big.Int).SetString(ticks[position].LiquidityGross, 10)
		if !ok {
			return nil, fmt.Errorf("%w: liquidity_gross=%q", models.ErrMalformedAmount, ticks[position].LiquidityGross)
		}

		net.Add(net, netDelta)
		gross.Add(gross, grossDelta)

		if gross.Sign() <= 0 {
			return append(ticks[:position], ticks[position+1:]...), nil
		}

		ticks[position].LiquidityNet = net.String()
		ticks[position].LiquidityGross = gross.String()
		return ticks, nil
	}

	if grossDelta.Sign() <= 0 {
		// A burn on a tick the snapshot never saw; nothing to remove.
		return ticks, nil
	}

	row := models.TickRow{
		Index:          tickIndex,
		LiquidityNet:   netDelta.String(),
		LiquidityGross: grossDelta.String(),
	}

	ticks = append(ticks, models.TickRow{})
	copy(ticks[position+1:], ticks[position:])
	ticks[position] = row
	return ticks, nil
}
