package liquiditymath

import (
	"math/big"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/matherrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/fixedpoint"
	"github.com/alexkalak/go_univ3_quoting/common/core/sqrtpricemath"
)

// AddDelta applies a signed liquidity change to the current in-range
// liquidity. The result must stay non-negative.
func AddDelta(liquidity, delta *big.Int) (*big.Int, error) {
	res := new(big.Int).Add(liquidity, delta)
	if res.Sign() < 0 {
		return nil, matherrors.ErrNegativeLiquidityDelta
	}
	return res, nil
}

// MaxLiquidityForAmount0Imprecise returns the largest liquidity amount0 can
// fund across the given sqrt ratio range. The intermediate product is
// truncated to 96 bits of precision before the final division.
func MaxLiquidityForAmount0Imprecise(sqrtRatioAX96, sqrtRatioBX96, amount0 *big.Int) (*big.Int, error) {
	sqrtRatioAX96, sqrtRatioBX96 = sqrtpricemath.InvertRatioIfNeeded(sqrtRatioAX96, sqrtRatioBX96)

	intermediate, err := fixedpoint.MulDiv(sqrtRatioAX96, sqrtRatioBX96, fixedpoint.Q96)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDiv(amount0, intermediate, new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
}

// MaxLiquidityForAmount0Precise returns the largest liquidity amount0 can
// fund across the given sqrt ratio range, carrying the full product through
// a single division.
func MaxLiquidityForAmount0Precise(sqrtRatioAX96, sqrtRatioBX96, amount0 *big.Int) (*big.Int, error) {
	sqrtRatioAX96, sqrtRatioBX96 = sqrtpricemath.InvertRatioIfNeeded(sqrtRatioAX96, sqrtRatioBX96)

	numerator := new(big.Int).Mul(amount0, sqrtRatioAX96)
	numerator.Mul(numerator, sqrtRatioBX96)
	denominator := new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)
	denominator.Mul(denominator, fixedpoint.Q96)
	if denominator.Sign() == 0 {
		return nil, matherrors.ErrDivisionByZero
	}
	return numerator.Div(numerator, denominator), nil
}

// MaxLiquidityForAmount1 returns the largest liquidity amount1 can fund
// across the given sqrt ratio range.
func MaxLiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1 *big.Int) (*big.Int, error) {
	sqrtRatioAX96, sqrtRatioBX96 = sqrtpricemath.InvertRatioIfNeeded(sqrtRatioAX96, sqrtRatioBX96)

	return fixedpoint.MulDiv(amount1, fixedpoint.Q96, new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96))
}

// MaxLiquidityForAmounts returns the largest liquidity both token amounts
// can fund together for a range, given the pool's current sqrt ratio. When
// the current ratio is inside the range the smaller of the two per-token
// liquidities wins.
func MaxLiquidityForAmounts(sqrtRatioCurrentX96, sqrtRatioAX96, sqrtRatioBX96, amount0, amount1 *big.Int, useFullPrecision bool) (*big.Int, error) {
	sqrtRatioAX96, sqrtRatioBX96 = sqrtpricemath.InvertRatioIfNeeded(sqrtRatioAX96, sqrtRatioBX96)

	if sqrtRatioCurrentX96.Cmp(sqrtRatioAX96) <= 0 {
		return maxLiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0, useFullPrecision)
	}

	if sqrtRatioCurrentX96.Cmp(sqrtRatioBX96) < 0 {
		// Inside the range token0 only covers the upper half and token1 the
		// lower half, so each side binds over its own sub-range.
		liquidity0, err := maxLiquidityForAmount0(sqrtRatioCurrentX96, sqrtRatioBX96, amount0, useFullPrecision)
		if err != nil {
			return nil, err
		}
		liquidity1, err := MaxLiquidityForAmount1(sqrtRatioAX96, sqrtRatioCurrentX96, amount1)
		if err != nil {
			return nil, err
		}
		if liquidity0.Cmp(liquidity1) < 0 {
			return liquidity0, nil
		}
		return liquidity1, nil
	}

	return MaxLiquidityForAmount1(sqrtRatioAX96, sqrtRatioBX96, amount1)
}

func maxLiquidityForAmount0(sqrtRatioAX96, sqrtRatioBX96, amount0 *big.Int, useFullPrecision bool) (*big.Int, error) {
	if useFullPrecision {
		return MaxLiquidityForAmount0Precise(sqrtRatioAX96, sqrtRatioBX96, amount0)
	}
	return MaxLiquidityForAmount0Imprecise(sqrtRatioAX96, sqrtRatioBX96, amount0)
}
