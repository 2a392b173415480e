package tickmath

import (
	"math/big"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/matherrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/fixedpoint"
)

const MinTick = -887272
const MaxTick = 887272

// MinSqrtRatio is SqrtRatioAtTick(MinTick), MaxSqrtRatio is
// SqrtRatioAtTick(MaxTick); both are exact.
var MinSqrtRatio = big.NewInt(4295128739)
var MaxSqrtRatio = mustBig("1461446703485210103287273052203988822378723970342")

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("tickmath: invalid integer literal " + s)
	}
	return v
}

func mustHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		panic("tickmath: invalid integer literal " + s)
	}
	return v
}

// One multiplier per bit of the absolute tick, bit 0x2 first. Each is
// sqrt(1.0001)^-(2^n) in Q128.128.
var sqrtRatioMultipliers = []*big.Int{
	mustHex("0xfff97272373d413259a46990580e213a"),
	mustHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
	mustHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
	mustHex("0xffcb9843d60f6159c9db58835c926644"),
	mustHex("0xff973b41fa98c081472e6896dfb254c0"),
	mustHex("0xff2ea16466c96a3843ec78b326b52861"),
	mustHex("0xfe5dee046a99a2a811c461f1969c3053"),
	mustHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
	mustHex("0xf987a7253ac413176f2b074cf7815e54"),
	mustHex("0xf3392b0822b70005940c7a398e4b70f3"),
	mustHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
	mustHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
	mustHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
	mustHex("0x70d869a156d2a1b890bb3df62baf32f7"),
	mustHex("0x31be135f97d08fd981231505542fcfa6"),
	mustHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
	mustHex("0x5d6af8dedb81196699c329225ee604"),
	mustHex("0x2216e584f5fa1ea926041bedfe98"),
	mustHex("0x48a170391f7dc42444e8fa2"),
}

var seedOddTick = mustHex("0xfffcb933bd6fad37aa2d162d1a594001")
var seedEvenTick = mustHex("0x100000000000000000000000000000000")

var magicSqrt10001 = mustBig("255738958999603826347141")
var magicTickLow = mustBig("3402992956809132418596140100660247210")
var magicTickHigh = mustBig("291339464771989622907027621153398088495")

// SqrtRatioAtTick converts a tick index to its Q64.96 sqrt ratio, bit-exact
// with the on-chain computation including the final round-up.
func SqrtRatioAtTick(tick int) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, matherrors.ErrTickOutOfBounds
	}

	absTick := tick
	if tick < 0 {
		absTick = -tick
	}

	var ratio *big.Int
	if absTick&0x1 != 0 {
		ratio = new(big.Int).Set(seedOddTick)
	} else {
		ratio = new(big.Int).Set(seedEvenTick)
	}

	for i, multiplier := range sqrtRatioMultipliers {
		if absTick&(1<<(i+1)) != 0 {
			ratio = fixedpoint.MulShift(ratio, multiplier)
		}
	}

	if tick > 0 {
		ratio = new(big.Int).Div(fixedpoint.MaxUint256, ratio)
	}

	// Downscale Q128.128 to Q64.96, rounding up on any remainder.
	remainder := new(big.Int)
	ratio.QuoRem(ratio, q32, remainder)
	if remainder.Sign() != 0 {
		ratio.Add(ratio, big.NewInt(1))
	}
	return ratio, nil
}

var q32 = new(big.Int).Lsh(big.NewInt(1), 32)

// TickAtSqrtRatio converts a Q64.96 sqrt ratio to the greatest tick whose
// ratio is at most the argument. The domain is [MinSqrtRatio, MaxSqrtRatio).
func TickAtSqrtRatio(sqrtRatioX96 *big.Int) (int, error) {
	if sqrtRatioX96 == nil || sqrtRatioX96.Cmp(MinSqrtRatio) < 0 || sqrtRatioX96.Cmp(MaxSqrtRatio) >= 0 {
		return 0, matherrors.ErrSqrtRatioOutOfBounds
	}

	sqrtRatioX128 := new(big.Int).Lsh(sqrtRatioX96, 32)

	msb, err := fixedpoint.MostSignificantBit(sqrtRatioX128)
	if err != nil {
		return 0, err
	}

	r := new(big.Int)
	if msb >= 128 {
		r.Rsh(sqrtRatioX128, uint(msb-127))
	} else {
		r.Lsh(sqrtRatioX128, uint(127-msb))
	}

	log2 := new(big.Int).Lsh(big.NewInt(int64(msb-128)), 64)

	for i := 0; i < 14; i++ {
		r.Mul(r, r)
		r.Rsh(r, 127)
		f := new(big.Int).Rsh(r, 128)
		log2.Or(log2, new(big.Int).Lsh(f, uint(63-i)))
		r.Rsh(r, uint(f.Uint64()))
	}

	logSqrt10001 := log2.Mul(log2, magicSqrt10001)

	tickLow := int(new(big.Int).Rsh(new(big.Int).Sub(logSqrt10001, magicTickLow), 128).Int64())
	tickHigh := int(new(big.Int).Rsh(new(big.Int).Add(logSqrt10001, magicTickHigh), 128).Int64())

	if tickLow == tickHigh {
		return tickLow, nil
	}

	ratioAtHigh, err := SqrtRatioAtTick(tickHigh)
	if err != nil {
		return 0, err
	}
	if ratioAtHigh.Cmp(sqrtRatioX96) <= 0 {
		return tickHigh, nil
	}
	return tickLow, nil
}
