package fractions

import (
	"math/big"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/fractionerrors"
)

var one = big.NewInt(1)

// Fraction is an exact rational value. All monetary and slippage arithmetic
// runs on Fractions so no precision is lost before the final integer
// quotient is taken. Values are never reduced; the numerator and denominator
// stay exactly as the arithmetic produced them.
type Fraction struct {
	Numerator   *big.Int
	Denominator *big.Int
}

// NewFraction builds a fraction from copies of the given numerator and
// denominator. The denominator must be nonzero.
func NewFraction(numerator, denominator *big.Int) (Fraction, error) {
	if denominator.Sign() == 0 {
		return Fraction{}, fractionerrors.ErrZeroDenominator
	}
	return Fraction{
		Numerator:   new(big.Int).Set(numerator),
		Denominator: new(big.Int).Set(denominator),
	}, nil
}

// NewFractionFromInt builds the whole-number fraction value/1.
func NewFractionFromInt(value int64) Fraction {
	return Fraction{
		Numerator:   big.NewInt(value),
		Denominator: big.NewInt(1),
	}
}

// NewFractionFromBig builds the whole-number fraction value/1 from a copy of
// the given integer.
func NewFractionFromBig(value *big.Int) Fraction {
	return Fraction{
		Numerator:   new(big.Int).Set(value),
		Denominator: big.NewInt(1),
	}
}

// Add returns f + other. When both sides share a denominator the result
// keeps it instead of multiplying the denominators out.
func (f Fraction) Add(other Fraction) Fraction {
	if f.Denominator.Cmp(other.Denominator) == 0 {
		return Fraction{
			Numerator:   new(big.Int).Add(f.Numerator, other.Numerator),
			Denominator: new(big.Int).Set(f.Denominator),
		}
	}

	left := new(big.Int).Mul(f.Numerator, other.Denominator)
	right := new(big.Int).Mul(other.Numerator, f.Denominator)
	return Fraction{
		Numerator:   left.Add(left, right),
		Denominator: new(big.Int).Mul(f.Denominator, other.Denominator),
	}
}

// Subtract returns f - other, keeping a shared denominator when possible.
func (f Fraction) Subtract(other Fraction) Fraction {
	if f.Denominator.Cmp(other.Denominator) == 0 {
		return Fraction{
			Numerator:   new(big.Int).Sub(f.Numerator, other.Numerator),
			Denominator: new(big.Int).Set(f.Denominator),
		}
	}

	left := new(big.Int).Mul(f.Numerator, other.Denominator)
	right := new(big.Int).Mul(other.Numerator, f.Denominator)
	return Fraction{
		Numerator:   left.Sub(left, right),
		Denominator: new(big.Int).Mul(f.Denominator, other.Denominator),
	}
}

// Multiply returns f * other.
func (f Fraction) Multiply(other Fraction) Fraction {
	return Fraction{
		Numerator:   new(big.Int).Mul(f.Numerator, other.Numerator),
		Denominator: new(big.Int).Mul(f.Denominator, other.Denominator),
	}
}

// Divide returns f / other. Dividing by a fraction with a zero numerator
// fails because the result would have a zero denominator.
func (f Fraction) Divide(other Fraction) (Fraction, error) {
	if other.Numerator.Sign() == 0 {
		return Fraction{}, fractionerrors.ErrZeroDenominator
	}
	return Fraction{
		Numerator:   new(big.Int).Mul(f.Numerator, other.Denominator),
		Denominator: new(big.Int).Mul(f.Denominator, other.Numerator),
	}, nil
}

// Invert returns the reciprocal of f.
func (f Fraction) Invert() (Fraction, error) {
	if f.Numerator.Sign() == 0 {
		return Fraction{}, fractionerrors.ErrZeroDenominator
	}
	return Fraction{
		Numerator:   new(big.Int).Set(f.Denominator),
		Denominator: new(big.Int).Set(f.Numerator),
	}, nil
}

// Quotient returns the fraction rounded toward negative infinity.
func (f Fraction) Quotient() *big.Int {
	quo, rem := new(big.Int).QuoRem(f.Numerator, f.Denominator, new(big.Int))
	if rem.Sign() != 0 && (f.Numerator.Sign() < 0) != (f.Denominator.Sign() < 0) {
		quo.Sub(quo, one)
	}
	return quo
}

// FloatQuotient returns an approximate quotient for display and diagnostics.
// It must never feed back into amount math.
func (f Fraction) FloatQuotient() *big.Float {
	num := new(big.Float).SetInt(f.Numerator)
	den := new(big.Float).SetInt(f.Denominator)
	return num.Quo(num, den)
}

// LessThan reports f < other.
func (f Fraction) LessThan(other Fraction) bool {
	left := new(big.Int).Mul(f.Numerator, other.Denominator)
	right := new(big.Int).Mul(other.Numerator, f.Denominator)
	return left.Cmp(right) < 0
}

// GreaterThan reports f > other.
func (f Fraction) GreaterThan(other Fraction) bool {
	left := new(big.Int).Mul(f.Numerator, other.Denominator)
	right := new(big.Int).Mul(other.Numerator, f.Denominator)
	return left.Cmp(right) > 0
}

// EqualTo reports f == other as rational values, so 1/2 equals 2/4.
func (f Fraction) EqualTo(other Fraction) bool {
	left := new(big.Int).Mul(f.Numerator, other.Denominator)
	right := new(big.Int).Mul(other.Numerator, f.Denominator)
	return left.Cmp(right) == 0
}

// AsFraction returns a plain copy, detaching wrapper types from their extra
// fields.
func (f Fraction) AsFraction() Fraction {
	return Fraction{
		Numerator:   new(big.Int).Set(f.Numerator),
		Denominator: new(big.Int).Set(f.Denominator),
	}
}
