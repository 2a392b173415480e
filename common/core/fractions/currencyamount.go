package fractions

import (
	"math/big"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/fractionerrors"
	"github.com/alexkalak/go_univ3_quoting/common/models"
)

var ten = big.NewInt(10)

// CurrencyAmount is a token amount held as an exact fraction of the token's
// smallest unit. Raw amounts are assumed to be scaled to the token's
// decimals already.
type CurrencyAmount struct {
	Fraction
	Token        *models.Token
	DecimalScale *big.Int
}

// FromRawAmount wraps an integer amount of the token's smallest unit.
func FromRawAmount(token *models.Token, amount *big.Int) CurrencyAmount {
	return CurrencyAmount{
		Fraction: Fraction{
			Numerator:   new(big.Int).Set(amount),
			Denominator: big.NewInt(1),
		},
		Token:        token,
		DecimalScale: decimalScale(token),
	}
}

// FromFractionalAmount wraps a fractional amount of the token's smallest
// unit, as produced by hop-by-hop trade math.
func FromFractionalAmount(token *models.Token, numerator, denominator *big.Int) (CurrencyAmount, error) {
	if denominator.Sign() == 0 {
		return CurrencyAmount{}, fractionerrors.ErrZeroDenominator
	}
	return CurrencyAmount{
		Fraction: Fraction{
			Numerator:   new(big.Int).Set(numerator),
			Denominator: new(big.Int).Set(denominator),
		},
		Token:        token,
		DecimalScale: decimalScale(token),
	}, nil
}

// ToSignificant renders the amount in whole-token units with the given
// number of significant digits. Display only.
func (c CurrencyAmount) ToSignificant(sigDigits int) string {
	scaled := c.FloatQuotient()
	scaled.Quo(scaled, new(big.Float).SetInt(c.DecimalScale))
	return scaled.Text('g', sigDigits)
}

// ToFixed renders the amount in whole-token units with a fixed number of
// decimal places. Display only.
func (c CurrencyAmount) ToFixed(decimalPlaces int) string {
	scaled := c.FloatQuotient()
	scaled.Quo(scaled, new(big.Float).SetInt(c.DecimalScale))
	return scaled.Text('f', decimalPlaces)
}

func decimalScale(token *models.Token) *big.Int {
	return new(big.Int).Exp(ten, big.NewInt(int64(token.Decimals)), nil)
}
