package fixedpoint

import (
	"math/big"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/matherrors"
)

var Q96 = new(big.Int).Lsh(big.NewInt(1), 96)
var Q192 = new(big.Int).Mul(Q96, Q96)

var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
var MaxUint160 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 160), big.NewInt(1))
var MaxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// MaxFee is the fee denominator; fee tiers are expressed in hundredths of a bip.
var MaxFee = big.NewInt(1_000_000)

var one = big.NewInt(1)

// MostSignificantBit returns the 0-based index of the highest set bit of x.
func MostSignificantBit(x *big.Int) (int, error) {
	if x == nil || x.Sign() <= 0 {
		return 0, matherrors.ErrNonPositiveValue
	}
	return x.BitLen() - 1, nil
}

// MulShift computes (value * multiplier) >> 128 at full precision.
func MulShift(value *big.Int, multiplier *big.Int) *big.Int {
	res := new(big.Int).Mul(value, multiplier)
	return res.Rsh(res, 128)
}

func MulDiv(a, b, denominator *big.Int) (*big.Int, error) {
	if denominator == nil || denominator.Sign() == 0 {
		return nil, matherrors.ErrDivisionByZero
	}
	product := new(big.Int).Mul(a, b)
	return product.Div(product, denominator), nil
}

// MulDivRoundingUp computes a*b/denominator rounded away from zero on any remainder.
func MulDivRoundingUp(a, b, denominator *big.Int) (*big.Int, error) {
	if denominator == nil || denominator.Sign() == 0 {
		return nil, matherrors.ErrDivisionByZero
	}
	product := new(big.Int).Mul(a, b)
	quotient, remainder := new(big.Int).DivMod(product, denominator, new(big.Int))
	if remainder.Sign() != 0 {
		quotient.Add(quotient, one)
	}
	return quotient, nil
}

// Isqrt returns the exact floor square root of n.
func Isqrt(n *big.Int) (*big.Int, error) {
	if n == nil || n.Sign() < 0 {
		return nil, matherrors.ErrNegativeSquareRoot
	}
	return new(big.Int).Sqrt(n), nil
}

// EncodeSqrtRatioX96 builds the Q64.96 sqrt ratio for the reserve ratio
// amount1/amount0. Amounts are assumed to be normalized for token decimals.
func EncodeSqrtRatioX96(amount1, amount0 *big.Int) (*big.Int, error) {
	if amount0 == nil || amount0.Sign() == 0 {
		return nil, matherrors.ErrDivisionByZero
	}
	numerator := new(big.Int).Lsh(amount1, 192)
	ratioX192 := numerator.Div(numerator, amount0)
	return Isqrt(ratioX192)
}

// MultiplyIn256 multiplies and wraps the product to 256 bits, matching
// unchecked uint256 multiplication.
func MultiplyIn256(x, y *big.Int) *big.Int {
	product := new(big.Int).Mul(x, y)
	return product.And(product, MaxUint256)
}

// AddIn256 adds and wraps the sum to 256 bits, matching unchecked uint256
// addition.
func AddIn256(x, y *big.Int) *big.Int {
	sum := new(big.Int).Add(x, y)
	return sum.And(sum, MaxUint256)
}
