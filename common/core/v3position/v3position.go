package v3position

import (
	"math/big"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/positionerrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/fixedpoint"
	"github.com/alexkalak/go_univ3_quoting/common/core/fractions"
	"github.com/alexkalak/go_univ3_quoting/common/core/liquiditymath"
	"github.com/alexkalak/go_univ3_quoting/common/core/sqrtpricemath"
	"github.com/alexkalak/go_univ3_quoting/common/core/tickmath"
	"github.com/alexkalak/go_univ3_quoting/common/core/v3pool"
)

// Position is a fixed amount of liquidity between two tick boundaries of a
// pool snapshot. Like the pool it is immutable; amounts are recomputed from
// the snapshot on every call instead of being cached on read.
type Position struct {
	Pool      *v3pool.Pool
	TickLower int
	TickUpper int
	Liquidity *big.Int
}

// MintAmounts carries the token amounts a liquidity change corresponds to.
type MintAmounts struct {
	Amount0 *big.Int
	Amount1 *big.Int
}

// NewPosition validates the range against the pool's tick spacing and the
// usable tick bounds.
func NewPosition(pool *v3pool.Pool, tickLower, tickUpper int, liquidity *big.Int) (*Position, error) {
	if tickLower >= tickUpper {
		return nil, positionerrors.ErrTickOrder
	}
	if tickLower < tickmath.MinTick || tickUpper > tickmath.MaxTick {
		return nil, positionerrors.ErrTickOutOfBounds
	}
	if tickLower%pool.TickSpacing != 0 || tickUpper%pool.TickSpacing != 0 {
		return nil, positionerrors.ErrTickNotSpaced
	}
	if liquidity.Sign() < 0 {
		return nil, positionerrors.ErrNegativeLiquidity
	}

	return &Position{
		Pool:      pool,
		TickLower: tickLower,
		TickUpper: tickUpper,
		Liquidity: new(big.Int).Set(liquidity),
	}, nil
}

// FromAmounts builds the position holding the most liquidity the two token
// amounts can fund for the range at the pool's current price.
func FromAmounts(pool *v3pool.Pool, tickLower, tickUpper int, amount0, amount1 *big.Int, useFullPrecision bool) (*Position, error) {
	ratioLower, err := tickmath.SqrtRatioAtTick(tickLower)
	if err != nil {
		return nil, err
	}
	ratioUpper, err := tickmath.SqrtRatioAtTick(tickUpper)
	if err != nil {
		return nil, err
	}

	liquidity, err := liquiditymath.MaxLiquidityForAmounts(pool.SqrtRatioX96, ratioLower, ratioUpper, amount0, amount1, useFullPrecision)
	if err != nil {
		return nil, err
	}
	return NewPosition(pool, tickLower, tickUpper, liquidity)
}

// Token0PriceLower returns the token0 price at the lower tick boundary.
func (p *Position) Token0PriceLower() (fractions.Price, error) {
	return fractions.PriceAtTick(p.Pool.Token0, p.Pool.Token1, p.TickLower)
}

// Token0PriceUpper returns the token0 price at the upper tick boundary.
func (p *Position) Token0PriceUpper() (fractions.Price, error) {
	return fractions.PriceAtTick(p.Pool.Token0, p.Pool.Token1, p.TickUpper)
}

// Amount0 returns the token0 the position could be burned for at the current
// pool price.
func (p *Position) Amount0() (fractions.CurrencyAmount, error) {
	ratioLower, ratioUpper, err := p.rangeRatios()
	if err != nil {
		return fractions.CurrencyAmount{}, err
	}

	var amount *big.Int
	switch {
	case p.Pool.TickCurrent < p.TickLower:
		amount, err = sqrtpricemath.GetAmount0Delta(ratioLower, ratioUpper, p.Liquidity, false)
	case p.Pool.TickCurrent < p.TickUpper:
		amount, err = sqrtpricemath.GetAmount0Delta(p.Pool.SqrtRatioX96, ratioUpper, p.Liquidity, false)
	default:
		amount = new(big.Int)
	}
	if err != nil {
		return fractions.CurrencyAmount{}, err
	}
	return fractions.FromRawAmount(p.Pool.Token0, amount), nil
}

// Amount1 returns the token1 the position could be burned for at the current
// pool price.
func (p *Position) Amount1() (fractions.CurrencyAmount, error) {
	ratioLower, ratioUpper, err := p.rangeRatios()
	if err != nil {
		return fractions.CurrencyAmount{}, err
	}

	var amount *big.Int
	switch {
	case p.Pool.TickCurrent < p.TickLower:
		amount = new(big.Int)
	case p.Pool.TickCurrent < p.TickUpper:
		amount, err = sqrtpricemath.GetAmount1Delta(ratioLower, p.Pool.SqrtRatioX96, p.Liquidity, false)
	default:
		amount, err = sqrtpricemath.GetAmount1Delta(ratioLower, ratioUpper, p.Liquidity, false)
	}
	if err != nil {
		return fractions.CurrencyAmount{}, err
	}
	return fractions.FromRawAmount(p.Pool.Token1, amount), nil
}

// MintAmounts returns the token amounts required to mint the position's
// liquidity, rounding against the minter.
func (p *Position) MintAmounts() (MintAmounts, error) {
	ratioLower, ratioUpper, err := p.rangeRatios()
	if err != nil {
		return MintAmounts{}, err
	}

	switch {
	case p.Pool.TickCurrent < p.TickLower:
		amount0, err := sqrtpricemath.GetAmount0Delta(ratioLower, ratioUpper, p.Liquidity, true)
		if err != nil {
			return MintAmounts{}, err
		}
		return MintAmounts{Amount0: amount0, Amount1: new(big.Int)}, nil
	case p.Pool.TickCurrent < p.TickUpper:
		amount0, err := sqrtpricemath.GetAmount0Delta(p.Pool.SqrtRatioX96, ratioUpper, p.Liquidity, true)
		if err != nil {
			return MintAmounts{}, err
		}
		amount1, err := sqrtpricemath.GetAmount1Delta(ratioLower, p.Pool.SqrtRatioX96, p.Liquidity, true)
		if err != nil {
			return MintAmounts{}, err
		}
		return MintAmounts{Amount0: amount0, Amount1: amount1}, nil
	default:
		amount1, err := sqrtpricemath.GetAmount1Delta(ratioLower, ratioUpper, p.Liquidity, true)
		if err != nil {
			return MintAmounts{}, err
		}
		return MintAmounts{Amount0: new(big.Int), Amount1: amount1}, nil
	}
}

// MintAmountsWithSlippage returns the minimum amounts still required if the
// price moves by up to the tolerance before the mint lands. It prices the
// position's liquidity against counterfactual pools at both edges of the
// tolerated price band and keeps each token's worst case.
func (p *Position) MintAmountsWithSlippage(slippageTolerance fractions.Fraction) (MintAmounts, error) {
	sqrtRatioLowerX96, sqrtRatioUpperX96, err := p.ratiosAfterSlippage(slippageTolerance)
	if err != nil {
		return MintAmounts{}, err
	}

	poolLower, err := p.counterfactualPool(sqrtRatioLowerX96)
	if err != nil {
		return MintAmounts{}, err
	}
	poolUpper, err := p.counterfactualPool(sqrtRatioUpperX96)
	if err != nil {
		return MintAmounts{}, err
	}

	mint, err := p.MintAmounts()
	if err != nil {
		return MintAmounts{}, err
	}
	toCreate, err := FromAmounts(p.Pool, p.TickLower, p.TickUpper, mint.Amount0, mint.Amount1, false)
	if err != nil {
		return MintAmounts{}, err
	}

	// Token0 is scarcest when the price lands at the top of the band,
	// token1 when it lands at the bottom.
	atUpper, err := NewPosition(poolUpper, p.TickLower, p.TickUpper, toCreate.Liquidity)
	if err != nil {
		return MintAmounts{}, err
	}
	upperAmounts, err := atUpper.MintAmounts()
	if err != nil {
		return MintAmounts{}, err
	}
	atLower, err := NewPosition(poolLower, p.TickLower, p.TickUpper, toCreate.Liquidity)
	if err != nil {
		return MintAmounts{}, err
	}
	lowerAmounts, err := atLower.MintAmounts()
	if err != nil {
		return MintAmounts{}, err
	}

	return MintAmounts{Amount0: upperAmounts.Amount0, Amount1: lowerAmounts.Amount1}, nil
}

func (p *Position) rangeRatios() (*big.Int, *big.Int, error) {
	ratioLower, err := tickmath.SqrtRatioAtTick(p.TickLower)
	if err != nil {
		return nil, nil, err
	}
	ratioUpper, err := tickmath.SqrtRatioAtTick(p.TickUpper)
	if err != nil {
		return nil, nil, err
	}
	return ratioLower, ratioUpper, nil
}

// ratiosAfterSlippage shifts the pool's token0 price down and up by the
// tolerance and converts both edges back to sqrt ratios, clamped to the
// usable ratio range.
func (p *Position) ratiosAfterSlippage(slippageTolerance fractions.Fraction) (*big.Int, *big.Int, error) {
	one := fractions.NewFractionFromInt(1)
	if slippageTolerance.LessThan(fractions.NewFractionFromInt(0)) {
		return nil, nil, positionerrors.ErrNegativeSlippage
	}
	if !slippageTolerance.LessThan(one) {
		return nil, nil, positionerrors.ErrSlippageTooLarge
	}

	price := p.Pool.Token0Price.AsFraction()
	priceLower := price.Multiply(one.Subtract(slippageTolerance))
	priceUpper := price.Multiply(one.Add(slippageTolerance))

	sqrtRatioLowerX96, err := fixedpoint.EncodeSqrtRatioX96(priceLower.Numerator, priceLower.Denominator)
	if err != nil {
		return nil, nil, err
	}
	if sqrtRatioLowerX96.Cmp(tickmath.MinSqrtRatio) <= 0 {
		sqrtRatioLowerX96 = new(big.Int).Add(tickmath.MinSqrtRatio, big.NewInt(1))
	}

	sqrtRatioUpperX96, err := fixedpoint.EncodeSqrtRatioX96(priceUpper.Numerator, priceUpper.Denominator)
	if err != nil {
		return nil, nil, err
	}
	if sqrtRatioUpperX96.Cmp(tickmath.MaxSqrtRatio) >= 0 {
		sqrtRatioUpperX96 = new(big.Int).Sub(tickmath.MaxSqrtRatio, big.NewInt(1))
	}

	return sqrtRatioLowerX96, sqrtRatioUpperX96, nil
}

// counterfactualPool snapshots the pool pair at a hypothetical price with no
// liquidity and no tick data.
func (p *Position) counterfactualPool(sqrtRatioX96 *big.Int) (*v3pool.Pool, error) {
	tick, err := tickmath.TickAtSqrtRatio(sqrtRatioX96)
	if err != nil {
		return nil, err
	}
	return v3pool.NewPool(p.Pool.Token0, p.Pool.Token1, p.Pool.Fee, sqrtRatioX96, new(big.Int), tick, nil)
}
