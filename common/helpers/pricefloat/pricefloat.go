package pricefloat

import (
	"math/big"

	"github.com/ALTree/bigfloat"

	"github.com/alexkalak/go_univ3_quoting/common/core/fixedpoint"
)

// Prec is the mantissa precision of every float this package hands out.
// These values are for display and monitoring; quoting math stays on
// big.Int in the core packages.
const Prec = 128

var tickBase, _, _ = big.ParseFloat("1.0001", 10, Prec, big.ToNearestEven)

// PriceAtTick returns 1.0001^tick, the raw token1/token0 price of a tick.
func PriceAtTick(tick int) *big.Float {
	base := new(big.Float).Copy(tickBase)
	exponent := new(big.Float).SetPrec(Prec).SetInt64(int64(tick))
	return bigfloat.Pow(base, exponent)
}

// PriceFromSqrtRatioX96 squares a Q64.96 sqrt price down to the raw
// token1/token0 price.
func PriceFromSqrtRatioX96(sqrtRatioX96 *big.Int) *big.Float {
	ratio := new(big.Float).SetPrec(Prec).SetInt(sqrtRatioX96)
	ratio.Quo(ratio, new(big.Float).SetPrec(Prec).SetInt(fixedpoint.Q96))
	return ratio.Mul(ratio, ratio)
}

// AdjustForDecimals rescales a raw token1/token0 price by the decimal gap of
// the pair, giving the human readable quote. The input is not modified.
func AdjustForDecimals(price *big.Float, decimals0, decimals1 int) *big.Float {
	adjusted := new(big.Float).SetPrec(Prec).Set(price)
	switch {
	case decimals0 > decimals1:
		adjusted.Mul(adjusted, pow10(decimals0-decimals1))
	case decimals1 > decimals0:
		adjusted.Quo(adjusted, pow10(decimals1-decimals0))
	}
	return adjusted
}

func pow10(n int) *big.Float {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	return new(big.Float).SetPrec(Prec).SetInt(scale)
}
