package fractions

import (
	"math/big"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/fractionerrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/fixedpoint"
	"github.com/alexkalak/go_univ3_quoting/common/core/tickmath"
	"github.com/alexkalak/go_univ3_quoting/common/models"
)

// Price is an exchange rate between two tokens held as an exact fraction.
// The numerator counts quote token units, the denominator base token units,
// both in raw smallest-unit terms.
type Price struct {
	Fraction
	BaseToken  *models.Token
	QuoteToken *models.Token

	scalar Fraction
}

// NewPrice builds a price from raw unit counts: denominator base units buy
// numerator quote units.
func NewPrice(baseToken, quoteToken *models.Token, denominator, numerator *big.Int) (Price, error) {
	if denominator.Sign() == 0 {
		return Price{}, fractionerrors.ErrZeroDenominator
	}
	return Price{
		Fraction: Fraction{
			Numerator:   new(big.Int).Set(numerator),
			Denominator: new(big.Int).Set(denominator),
		},
		BaseToken:  baseToken,
		QuoteToken: quoteToken,
		scalar: Fraction{
			Numerator:   decimalScale(baseToken),
			Denominator: decimalScale(quoteToken),
		},
	}, nil
}

// PriceFromFraction reinterprets a raw fraction as a price of quote units
// per base unit.
func PriceFromFraction(fraction Fraction, baseToken, quoteToken *models.Token) (Price, error) {
	return NewPrice(baseToken, quoteToken, fraction.Denominator, fraction.Numerator)
}

// PriceAtTick returns the price of quoteToken in terms of baseToken at the
// given tick, derived from the squared sqrt ratio against Q192.
func PriceAtTick(baseToken, quoteToken *models.Token, tick int) (Price, error) {
	sqrtRatioX96, err := tickmath.SqrtRatioAtTick(tick)
	if err != nil {
		return Price{}, err
	}
	ratioX192 := new(big.Int).Mul(sqrtRatioX96, sqrtRatioX96)

	if baseToken.SortsBefore(quoteToken) {
		return NewPrice(baseToken, quoteToken, fixedpoint.Q192, ratioX192)
	}
	return NewPrice(baseToken, quoteToken, ratioX192, fixedpoint.Q192)
}

// TickAtPrice returns the first tick whose price is at or past the given
// price in the direction prices grow for its base token.
func TickAtPrice(price Price) (int, error) {
	sorted := price.BaseToken.SortsBefore(price.QuoteToken)

	var sqrtRatioX96 *big.Int
	var err error
	if sorted {
		sqrtRatioX96, err = fixedpoint.EncodeSqrtRatioX96(price.Numerator, price.Denominator)
	} else {
		sqrtRatioX96, err = fixedpoint.EncodeSqrtRatioX96(price.Denominator, price.Numerator)
	}
	if err != nil {
		return 0, err
	}

	tick, err := tickmath.TickAtSqrtRatio(sqrtRatioX96)
	if err != nil {
		return 0, err
	}

	nextTickPrice, err := PriceAtTick(price.BaseToken, price.QuoteToken, tick+1)
	if err != nil {
		return 0, err
	}

	if sorted {
		if !price.LessThan(nextTickPrice.Fraction) {
			tick++
		}
	} else {
		if !price.GreaterThan(nextTickPrice.Fraction) {
			tick++
		}
	}
	return tick, nil
}

// Multiply chains two prices into a price of the rightmost quote token in
// terms of the leftmost base token. The left quote token must be the right
// base token.
func (p Price) Multiply(other Price) (Price, error) {
	if !p.QuoteToken.Equal(other.BaseToken) {
		return Price{}, fractionerrors.ErrBaseQuoteMismatch
	}
	product := p.Fraction.Multiply(other.Fraction)
	return NewPrice(p.BaseToken, other.QuoteToken, product.Denominator, product.Numerator)
}

// AdjustedForDecimals returns the price as whole quote tokens per whole base
// token instead of raw smallest units.
func (p Price) AdjustedForDecimals() Fraction {
	return p.Fraction.Multiply(p.scalar)
}

// FloatPrice returns an approximate raw-unit price for diagnostics.
func (p Price) FloatPrice() *big.Float {
	return p.FloatQuotient()
}

// ToSignificant renders the decimal-adjusted price with the given number of
// significant digits. Display only.
func (p Price) ToSignificant(sigDigits int) string {
	return p.AdjustedForDecimals().FloatQuotient().Text('g', sigDigits)
}
