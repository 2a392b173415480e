package v3trade

import (
	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/tradeerrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/fractions"
	"github.com/alexkalak/go_univ3_quoting/common/core/v3route"
)

// TradeType selects which side of a trade is fixed and whether the route is
// a single hop. The string values match the quoter interface method names.
type TradeType string

const (
	ExactInput        TradeType = "exactInput"
	ExactOutput       TradeType = "exactOutput"
	ExactInputSingle  TradeType = "exactInputSingle"
	ExactOutputSingle TradeType = "exactOutputSingle"
)

// Trade is the simulated result of swapping along a route. It holds only the
// route's total input and output; intermediate hop amounts are not kept.
type Trade struct {
	Route        *v3route.Route
	InputAmount  fractions.CurrencyAmount
	OutputAmount fractions.CurrencyAmount
	TradeType    TradeType
}

// FromRoute simulates the route hop by hop. Exact input trades walk the
// pools forward from the input token, each hop's output feeding the next
// hop. Exact output trades walk backward from the output token, asking each
// pool for the input the running amount costs.
func FromRoute(route *v3route.Route, amount fractions.CurrencyAmount, tradeType TradeType) (*Trade, error) {
	switch tradeType {
	case ExactInput, ExactInputSingle:
		if !amount.Token.Equal(route.Input) {
			return nil, tradeerrors.ErrInputTokenMismatch
		}

		current := amount
		for _, pool := range route.Pools {
			next, _, err := pool.GetOutputAmount(current, nil)
			if err != nil {
				return nil, err
			}
			current = next
		}
		return newTrade(route, amount, current, tradeType)

	case ExactOutput, ExactOutputSingle:
		if !amount.Token.Equal(route.Output) {
			return nil, tradeerrors.ErrOutputTokenMismatch
		}

		current := amount
		for i := len(route.Pools) - 1; i >= 0; i-- {
			previous, _, err := route.Pools[i].GetInputAmount(current, nil)
			if err != nil {
				return nil, err
			}
			current = previous
		}
		return newTrade(route, current, amount, tradeType)

	default:
		return nil, tradeerrors.ErrUnknownTradeType
	}
}

func newTrade(route *v3route.Route, input, output fractions.CurrencyAmount, tradeType TradeType) (*Trade, error) {
	inputAmount, err := fractions.FromFractionalAmount(route.Input, input.Numerator, input.Denominator)
	if err != nil {
		return nil, err
	}
	outputAmount, err := fractions.FromFractionalAmount(route.Output, output.Numerator, output.Denominator)
	if err != nil {
		return nil, err
	}
	return &Trade{
		Route:        route,
		InputAmount:  inputAmount,
		OutputAmount: outputAmount,
		TradeType:    tradeType,
	}, nil
}

// MinimumAmountOut is the least output the trade may settle for under the
// slippage tolerance, rounded down. Exact output trades return the quoted
// output unchanged since that side is already fixed.
func (t *Trade) MinimumAmountOut(slippageTolerance fractions.Fraction) (fractions.CurrencyAmount, error) {
	if slippageTolerance.LessThan(fractions.NewFractionFromInt(0)) {
		return fractions.CurrencyAmount{}, tradeerrors.ErrNegativeSlippage
	}
	if t.TradeType == ExactOutput || t.TradeType == ExactOutputSingle {
		return t.OutputAmount, nil
	}

	scale, err := fractions.NewFractionFromInt(1).Add(slippageTolerance).Invert()
	if err != nil {
		return fractions.CurrencyAmount{}, err
	}
	adjusted := scale.Multiply(fractions.NewFractionFromBig(t.OutputAmount.Quotient())).Quotient()
	return fractions.FromRawAmount(t.OutputAmount.Token, adjusted), nil
}

// MaximumAmountIn is the most input the trade may cost under the slippage
// tolerance. Exact input trades return the quoted input unchanged.
func (t *Trade) MaximumAmountIn(slippageTolerance fractions.Fraction) (fractions.CurrencyAmount, error) {
	if slippageTolerance.LessThan(fractions.NewFractionFromInt(0)) {
		return fractions.CurrencyAmount{}, tradeerrors.ErrNegativeSlippage
	}
	if t.TradeType == ExactInput || t.TradeType == ExactInputSingle {
		return t.InputAmount, nil
	}

	adjusted := fractions.NewFractionFromInt(1).
		Add(slippageTolerance).
		Multiply(fractions.NewFractionFromBig(t.InputAmount.Quotient())).
		Quotient()
	return fractions.FromRawAmount(t.InputAmount.Token, adjusted), nil
}
