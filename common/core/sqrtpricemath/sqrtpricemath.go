package sqrtpricemath

import (
	"math/big"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/matherrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/fixedpoint"
)

var one = big.NewInt(1)

// InvertRatioIfNeeded orders two sqrt ratios ascending.
func InvertRatioIfNeeded(sqrtRatioAX96, sqrtRatioBX96 *big.Int) (*big.Int, *big.Int) {
	if sqrtRatioAX96.Cmp(sqrtRatioBX96) > 0 {
		return sqrtRatioBX96, sqrtRatioAX96
	}
	return sqrtRatioAX96, sqrtRatioBX96
}

// GetAmount0Delta returns the token0 amount covering the price range between
// the two sqrt ratios at the given liquidity. roundUp is true for amounts the
// user must supply and false for amounts the user may withdraw.
func GetAmount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) (*big.Int, error) {
	sqrtRatioAX96, sqrtRatioBX96 = InvertRatioIfNeeded(sqrtRatioAX96, sqrtRatioBX96)

	numerator1 := new(big.Int).Lsh(liquidity, 96)
	numerator2 := new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)

	if sqrtRatioAX96.Sign() <= 0 {
		return nil, matherrors.ErrSqrtRatioNonPositive
	}

	if roundUp {
		inner, err := fixedpoint.MulDivRoundingUp(numerator1, numerator2, sqrtRatioBX96)
		if err != nil {
			return nil, err
		}
		return fixedpoint.MulDivRoundingUp(inner, one, sqrtRatioAX96)
	}

	res := new(big.Int).Mul(numerator1, numerator2)
	res.Div(res, sqrtRatioBX96)
	return res.Div(res, sqrtRatioAX96), nil
}

// GetAmount1Delta returns the token1 amount covering the price range between
// the two sqrt ratios at the given liquidity.
func GetAmount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int, roundUp bool) (*big.Int, error) {
	sqrtRatioAX96, sqrtRatioBX96 = InvertRatioIfNeeded(sqrtRatioAX96, sqrtRatioBX96)

	diff := new(big.Int).Sub(sqrtRatioBX96, sqrtRatioAX96)

	if roundUp {
		return fixedpoint.MulDivRoundingUp(liquidity, diff, fixedpoint.Q96)
	}

	res := new(big.Int).Mul(liquidity, diff)
	return res.Div(res, fixedpoint.Q96), nil
}

// GetNextSqrtPriceFromInput returns the sqrt ratio after spending amountIn of
// the input token at the given liquidity, rounding so the protocol never
// undercharges.
func GetNextSqrtPriceFromInput(sqrtPX96, liquidity, amountIn *big.Int, zeroForOne bool) (*big.Int, error) {
	if sqrtPX96 == nil || sqrtPX96.Sign() <= 0 {
		return nil, matherrors.ErrSqrtRatioNonPositive
	}
	if liquidity == nil || liquidity.Sign() <= 0 {
		return nil, matherrors.ErrLiquidityNonPositive
	}

	if zeroForOne {
		return getNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountIn, true)
	}
	return getNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountIn, true)
}

// GetNextSqrtPriceFromOutput returns the sqrt ratio after paying out amountOut
// of the output token at the given liquidity.
func GetNextSqrtPriceFromOutput(sqrtPX96, liquidity, amountOut *big.Int, zeroForOne bool) (*big.Int, error) {
	if sqrtPX96 == nil || sqrtPX96.Sign() <= 0 {
		return nil, matherrors.ErrSqrtRatioNonPositive
	}
	if liquidity == nil || liquidity.Sign() <= 0 {
		return nil, matherrors.ErrLiquidityNonPositive
	}

	if zeroForOne {
		return getNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amountOut, false)
	}
	return getNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amountOut, false)
}

func getNextSqrtPriceFromAmount0RoundingUp(sqrtPX96, liquidity, amount *big.Int, add bool) (*big.Int, error) {
	if amount.Sign() == 0 {
		return new(big.Int).Set(sqrtPX96), nil
	}

	numerator1 := new(big.Int).Lsh(liquidity, 96)

	if add {
		product := fixedpoint.MultiplyIn256(amount, sqrtPX96)
		if new(big.Int).Div(product, amount).Cmp(sqrtPX96) == 0 {
			denominator := fixedpoint.AddIn256(numerator1, product)
			if denominator.Cmp(numerator1) >= 0 {
				return fixedpoint.MulDivRoundingUp(numerator1, sqrtPX96, denominator)
			}
		}
		// The product does not fit 256 bits; divide first instead.
		denominator := new(big.Int).Add(new(big.Int).Div(numerator1, sqrtPX96), amount)
		return fixedpoint.MulDivRoundingUp(numerator1, one, denominator)
	}

	product := fixedpoint.MultiplyIn256(amount, sqrtPX96)
	if new(big.Int).Div(product, amount).Cmp(sqrtPX96) != 0 {
		return nil, matherrors.ErrAmount0ProductOverflow
	}
	if numerator1.Cmp(product) <= 0 {
		return nil, matherrors.ErrSqrtRatioUnderflow
	}
	denominator := new(big.Int).Sub(numerator1, product)
	return fixedpoint.MulDivRoundingUp(numerator1, sqrtPX96, denominator)
}

func getNextSqrtPriceFromAmount1RoundingDown(sqrtPX96, liquidity, amount *big.Int, add bool) (*big.Int, error) {
	if add {
		var quotient *big.Int
		if amount.Cmp(fixedpoint.MaxUint160) <= 0 {
			quotient = new(big.Int).Lsh(amount, 96)
			quotient.Div(quotient, liquidity)
		} else {
			var err error
			quotient, err = fixedpoint.MulDiv(amount, fixedpoint.Q96, liquidity)
			if err != nil {
				return nil, err
			}
		}
		return quotient.Add(quotient, sqrtPX96), nil
	}

	quotient, err := fixedpoint.MulDivRoundingUp(amount, fixedpoint.Q96, liquidity)
	if err != nil {
		return nil, err
	}
	if sqrtPX96.Cmp(quotient) <= 0 {
		return nil, matherrors.ErrSqrtRatioUnderflow
	}
	return new(big.Int).Sub(sqrtPX96, quotient), nil
}
