package v3pool

import (
	"math/big"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/poolerrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/fractions"
	"github.com/alexkalak/go_univ3_quoting/common/core/liquiditymath"
	"github.com/alexkalak/go_univ3_quoting/common/core/swapmath"
	"github.com/alexkalak/go_univ3_quoting/common/core/ticklist"
	"github.com/alexkalak/go_univ3_quoting/common/core/tickmath"
)

var one = big.NewInt(1)

// SwapResult is the end state of a simulated swap. AmountCalculated is the
// unspecified side: negative output for an exact-input swap, positive input
// including fees for an exact-output swap.
type SwapResult struct {
	AmountCalculated *big.Int
	SqrtRatioX96     *big.Int
	Liquidity        *big.Int
	TickCurrent      int
}

// GetOutputAmount quotes how much of the other token an exact input buys and
// returns the pool snapshot after the swap. A nil sqrtPriceLimitX96 lets the
// swap run until the input is exhausted.
func (p *Pool) GetOutputAmount(inputAmount fractions.CurrencyAmount, sqrtPriceLimitX96 *big.Int) (fractions.CurrencyAmount, *Pool, error) {
	if !p.InvolvesToken(inputAmount.Token) {
		return fractions.CurrencyAmount{}, nil, poolerrors.ErrTokenNotInvolved
	}

	zeroForOne := inputAmount.Token.Equal(p.Token0)

	result, err := p.Swap(zeroForOne, inputAmount.Quotient(), sqrtPriceLimitX96)
	if err != nil {
		return fractions.CurrencyAmount{}, nil, err
	}

	outputToken := p.Token1
	if !zeroForOne {
		outputToken = p.Token0
	}
	outputAmount := fractions.FromRawAmount(outputToken, new(big.Int).Neg(result.AmountCalculated))

	pool, err := NewPool(p.Token0, p.Token1, p.Fee, result.SqrtRatioX96, result.Liquidity, result.TickCurrent, p.Ticks)
	if err != nil {
		return fractions.CurrencyAmount{}, nil, err
	}
	return outputAmount, pool, nil
}

// GetInputAmount quotes how much input an exact output costs, fees included,
// and returns the pool snapshot after the swap.
func (p *Pool) GetInputAmount(outputAmount fractions.CurrencyAmount, sqrtPriceLimitX96 *big.Int) (fractions.CurrencyAmount, *Pool, error) {
	if !p.InvolvesToken(outputAmount.Token) {
		return fractions.CurrencyAmount{}, nil, poolerrors.ErrTokenNotInvolved
	}

	zeroForOne := outputAmount.Token.Equal(p.Token1)

	result, err := p.Swap(zeroForOne, new(big.Int).Neg(outputAmount.Quotient()), sqrtPriceLimitX96)
	if err != nil {
		return fractions.CurrencyAmount{}, nil, err
	}

	inputToken := p.Token0
	if !zeroForOne {
		inputToken = p.Token1
	}
	inputAmount := fractions.FromRawAmount(inputToken, result.AmountCalculated)

	pool, err := NewPool(p.Token0, p.Token1, p.Fee, result.SqrtRatioX96, result.Liquidity, result.TickCurrent, p.Ticks)
	if err != nil {
		return fractions.CurrencyAmount{}, nil, err
	}
	return inputAmount, pool, nil
}

// Swap walks the price across initialized ticks until the specified amount is
// consumed or the price limit is reached. A non-negative amountSpecified is
// exact input, a negative one exact output. The limit must lie strictly
// between the current price and the usable sqrt ratio bound in the swap
// direction; nil selects that bound.
func (p *Pool) Swap(zeroForOne bool, amountSpecified, sqrtPriceLimitX96 *big.Int) (*SwapResult, error) {
	if sqrtPriceLimitX96 == nil {
		if zeroForOne {
			sqrtPriceLimitX96 = new(big.Int).Add(tickmath.MinSqrtRatio, one)
		} else {
			sqrtPriceLimitX96 = new(big.Int).Sub(tickmath.MaxSqrtRatio, one)
		}
	}

	if zeroForOne {
		if sqrtPriceLimitX96.Cmp(tickmath.MinSqrtRatio) <= 0 || sqrtPriceLimitX96.Cmp(p.SqrtRatioX96) >= 0 {
			return nil, poolerrors.ErrInvalidPriceLimit
		}
	} else {
		if sqrtPriceLimitX96.Cmp(tickmath.MaxSqrtRatio) >= 0 || sqrtPriceLimitX96.Cmp(p.SqrtRatioX96) <= 0 {
			return nil, poolerrors.ErrInvalidPriceLimit
		}
	}

	exactInput := amountSpecified.Sign() >= 0

	amountRemaining := new(big.Int).Set(amountSpecified)
	amountCalculated := new(big.Int)
	sqrtRatioX96 := new(big.Int).Set(p.SqrtRatioX96)
	tick := p.TickCurrent
	liquidity := new(big.Int).Set(p.Liquidity)

	for amountRemaining.Sign() != 0 && sqrtRatioX96.Cmp(sqrtPriceLimitX96) != 0 {
		sqrtRatioStartX96 := sqrtRatioX96
		tickStart := tick

		tickNext, initialized, err := ticklist.NextInitializedTickWithinOneWord(p.Ticks, tick, zeroForOne, p.TickSpacing)
		if err != nil {
			return nil, err
		}
		if tickNext < tickmath.MinTick {
			tickNext = tickmath.MinTick
		} else if tickNext > tickmath.MaxTick {
			tickNext = tickmath.MaxTick
		}

		sqrtRatioNextTickX96, err := tickmath.SqrtRatioAtTick(tickNext)
		if err != nil {
			return nil, err
		}

		target := sqrtRatioNextTickX96
		if zeroForOne && sqrtRatioNextTickX96.Cmp(sqrtPriceLimitX96) < 0 ||
			!zeroForOne && sqrtRatioNextTickX96.Cmp(sqrtPriceLimitX96) > 0 {
			target = sqrtPriceLimitX96
		}

		step, err := swapmath.ComputeSwapStep(sqrtRatioX96, target, liquidity, amountRemaining, p.Fee)
		if err != nil {
			return nil, err
		}
		sqrtRatioX96 = step.SqrtRatioNextX96

		if exactInput {
			amountRemaining.Sub(amountRemaining, new(big.Int).Add(step.AmountIn, step.FeeAmount))
			amountCalculated.Sub(amountCalculated, step.AmountOut)
		} else {
			amountRemaining.Add(amountRemaining, step.AmountOut)
			amountCalculated.Add(amountCalculated, new(big.Int).Add(step.AmountIn, step.FeeAmount))
		}

		if sqrtRatioX96.Cmp(sqrtRatioNextTickX96) == 0 {
			// The step ended on the tick boundary; cross it.
			if initialized {
				crossed, err := ticklist.GetTick(p.Ticks, tickNext)
				if err != nil {
					return nil, err
				}
				liquidityNet := crossed.LiquidityNet
				if zeroForOne {
					liquidityNet = new(big.Int).Neg(liquidityNet)
				}
				liquidity, err = liquiditymath.AddDelta(liquidity, liquidityNet)
				if err != nil {
					return nil, err
				}
			}
			if zeroForOne {
				tick = tickNext - 1
			} else {
				tick = tickNext
			}
		} else if sqrtRatioX96.Cmp(sqrtRatioStartX96) != 0 {
			tick, err = tickmath.TickAtSqrtRatio(sqrtRatioX96)
			if err != nil {
				return nil, err
			}
		}

		// A step that moves neither the price nor the tick would repeat
		// forever.
		if sqrtRatioX96.Cmp(sqrtRatioStartX96) == 0 && tick == tickStart && amountRemaining.Sign() != 0 {
			return nil, poolerrors.ErrSwapNoProgress
		}
	}

	return &SwapResult{
		AmountCalculated: amountCalculated,
		SqrtRatioX96:     sqrtRatioX96,
		Liquidity:        liquidity,
		TickCurrent:      tick,
	}, nil
}
