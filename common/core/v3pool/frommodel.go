package v3pool

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/poolerrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/ticklist"
	"github.com/alexkalak/go_univ3_quoting/common/models"
)

// NewPoolFromModel builds a swap ready pool from a stored snapshot. The two
// tokens must be the ones the snapshot names; they carry the decimals and
// symbols the snapshot does not store. A snapshot without ticks yields a pool
// that can be priced but not swapped through.
func NewPoolFromModel(pool *models.UniswapV3Pool, token0, token1 *models.Token) (*Pool, error) {
	if token0.ChainID != pool.ChainID || common.HexToAddress(token0.Address) != common.HexToAddress(pool.Token0) {
		return nil, fmt.Errorf("%w: token0 %s for pool %s", poolerrors.ErrModelTokenMismatch, token0.Address, pool.Address)
	}
	if token1.ChainID != pool.ChainID || common.HexToAddress(token1.Address) != common.HexToAddress(pool.Token1) {
		return nil, fmt.Errorf("%w: token1 %s for pool %s", poolerrors.ErrModelTokenMismatch, token1.Address, pool.Address)
	}

	ticks := []ticklist.Tick{}
	if pool.TicksJSON != "" {
		rows, err := pool.Ticks()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", poolerrors.ErrMalformedTickData, err)
		}

		ticks = make([]ticklist.Tick, 0, len(rows))
		for _, row := range rows {
			liquidityNet, ok := new(big.Int).SetString(row.LiquidityNet, 10)
			if !ok {
				return nil, fmt.Errorf("%w: liquidity_net %q at tick %d", poolerrors.ErrMalformedTickData, row.LiquidityNet, row.Index)
			}

			liquidityGross, ok := new(big.Int).SetString(row.LiquidityGross, 10)
			if !ok {
				return nil, fmt.Errorf("%w: liquidity_gross %q at tick %d", poolerrors.ErrMalformedTickData, row.LiquidityGross, row.Index)
			}

			ticks = append(ticks, ticklist.Tick{
				Index:          row.Index,
				LiquidityNet:   liquidityNet,
				LiquidityGross: liquidityGross,
			})
		}
	}

	return NewPool(token0, token1, pool.FeeTier, pool.SqrtPriceX96, pool.Liquidity, pool.Tick, ticks)
}
