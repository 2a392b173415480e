package swapmath

import (
	"math/big"

	"github.com/alexkalak/go_univ3_quoting/common/core/fixedpoint"
	"github.com/alexkalak/go_univ3_quoting/common/core/sqrtpricemath"
)

// StepResult is the outcome of advancing a swap within a single tick range.
// AmountIn and AmountOut are always non-negative; FeeAmount is taken from
// the input token on top of AmountIn.
type StepResult struct {
	SqrtRatioNextX96 *big.Int
	AmountIn         *big.Int
	AmountOut        *big.Int
	FeeAmount        *big.Int
}

// ComputeSwapStep moves the price from the current sqrt ratio toward the
// target as far as the remaining amount allows. A non-negative
// amountRemaining is remaining input, a negative one remaining output. The
// direction of the step follows from how current and target compare.
func ComputeSwapStep(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining *big.Int, feePips int) (*StepResult, error) {
	zeroForOne := sqrtRatioCurrentX96.Cmp(sqrtRatioTargetX96) >= 0
	exactIn := amountRemaining.Sign() >= 0

	fee := big.NewInt(int64(feePips))
	feeComplement := new(big.Int).Sub(fixedpoint.MaxFee, fee)
	amountRemainingAbs := new(big.Int).Neg(amountRemaining)

	res := &StepResult{
		AmountIn:  new(big.Int),
		AmountOut: new(big.Int),
	}
	var err error

	if exactIn {
		amountRemainingLessFee := new(big.Int).Mul(amountRemaining, feeComplement)
		amountRemainingLessFee.Div(amountRemainingLessFee, fixedpoint.MaxFee)

		if zeroForOne {
			res.AmountIn, err = sqrtpricemath.GetAmount0Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, true)
		} else {
			res.AmountIn, err = sqrtpricemath.GetAmount1Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, true)
		}
		if err != nil {
			return nil, err
		}

		if amountRemainingLessFee.Cmp(res.AmountIn) >= 0 {
			res.SqrtRatioNextX96 = new(big.Int).Set(sqrtRatioTargetX96)
		} else {
			res.SqrtRatioNextX96, err = sqrtpricemath.GetNextSqrtPriceFromInput(sqrtRatioCurrentX96, liquidity, amountRemainingLessFee, zeroForOne)
			if err != nil {
				return nil, err
			}
		}
	} else {
		if zeroForOne {
			res.AmountOut, err = sqrtpricemath.GetAmount1Delta(sqrtRatioTargetX96, sqrtRatioCurrentX96, liquidity, false)
		} else {
			res.AmountOut, err = sqrtpricemath.GetAmount0Delta(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, false)
		}
		if err != nil {
			return nil, err
		}

		if amountRemainingAbs.Cmp(res.AmountOut) >= 0 {
			res.SqrtRatioNextX96 = new(big.Int).Set(sqrtRatioTargetX96)
		} else {
			res.SqrtRatioNextX96, err = sqrtpricemath.GetNextSqrtPriceFromOutput(sqrtRatioCurrentX96, liquidity, amountRemainingAbs, zeroForOne)
			if err != nil {
				return nil, err
			}
		}
	}

	reachedTarget := sqrtRatioTargetX96.Cmp(res.SqrtRatioNextX96) == 0

	// Settle both sides against the price actually reached. The side that
	// decided the step is already final when the target was hit.
	if zeroForOne {
		if !(reachedTarget && exactIn) {
			res.AmountIn, err = sqrtpricemath.GetAmount0Delta(res.SqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, true)
			if err != nil {
				return nil, err
			}
		}
		if !(reachedTarget && !exactIn) {
			res.AmountOut, err = sqrtpricemath.GetAmount1Delta(res.SqrtRatioNextX96, sqrtRatioCurrentX96, liquidity, false)
			if err != nil {
				return nil, err
			}
		}
	} else {
		if !(reachedTarget && exactIn) {
			res.AmountIn, err = sqrtpricemath.GetAmount1Delta(sqrtRatioCurrentX96, res.SqrtRatioNextX96, liquidity, true)
			if err != nil {
				return nil, err
			}
		}
		if !(reachedTarget && !exactIn) {
			res.AmountOut, err = sqrtpricemath.GetAmount0Delta(sqrtRatioCurrentX96, res.SqrtRatioNextX96, liquidity, false)
			if err != nil {
				return nil, err
			}
		}
	}

	if !exactIn && res.AmountOut.Cmp(amountRemainingAbs) > 0 {
		res.AmountOut = new(big.Int).Set(amountRemainingAbs)
	}

	if exactIn && !reachedTarget {
		// The price ran out of room before the input did; the leftover
		// input is all fee.
		res.FeeAmount = new(big.Int).Sub(amountRemaining, res.AmountIn)
	} else {
		res.FeeAmount, err = fixedpoint.MulDivRoundingUp(res.AmountIn, fee, feeComplement)
		if err != nil {
			return nil, err
		}
	}

	return res, nil
}
