package sqrtpricemath

import (
	"errors"
	"math/big"
	"testing"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/matherrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/fixedpoint"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("invalid big int literal %q", s)
	}
	return v
}

func encodeRatio(t *testing.T, amount1, amount0 int64) *big.Int {
	t.Helper()
	ratio, err := fixedpoint.EncodeSqrtRatioX96(big.NewInt(amount1), big.NewInt(amount0))
	if err != nil {
		t.Fatalf("EncodeSqrtRatioX96(%d, %d) error: %v", amount1, amount0, err)
	}
	return ratio
}

var oneEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
var tenthEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil)

func TestGetAmount0Delta(t *testing.T) {
	priceOne := encodeRatio(t, 1, 1)
	priceUp := encodeRatio(t, 121, 100)

	up, err := GetAmount0Delta(priceOne, priceUp, oneEther, true)
	if err != nil {
		t.Fatalf("GetAmount0Delta round up error: %v", err)
	}
	if want := mustBig(t, "90909090909090910"); up.Cmp(want) != 0 {
		t.Errorf("GetAmount0Delta round up = %s, want %s", up, want)
	}

	down, err := GetAmount0Delta(priceOne, priceUp, oneEther, false)
	if err != nil {
		t.Fatalf("GetAmount0Delta round down error: %v", err)
	}
	if want := new(big.Int).Sub(up, big.NewInt(1)); down.Cmp(want) != 0 {
		t.Errorf("GetAmount0Delta round down = %s, want %s", down, want)
	}

	// Argument order must not matter.
	swapped, err := GetAmount0Delta(priceUp, priceOne, oneEther, true)
	if err != nil {
		t.Fatalf("GetAmount0Delta swapped error: %v", err)
	}
	if swapped.Cmp(up) != 0 {
		t.Errorf("GetAmount0Delta is sensitive to argument order: %s vs %s", swapped, up)
	}
}

func TestGetAmount1Delta(t *testing.T) {
	priceOne := encodeRatio(t, 1, 1)
	priceUp := encodeRatio(t, 121, 100)

	up, err := GetAmount1Delta(priceOne, priceUp, oneEther, true)
	if err != nil {
		t.Fatalf("GetAmount1Delta round up error: %v", err)
	}
	if want := mustBig(t, "100000000000000000"); up.Cmp(want) != 0 {
		t.Errorf("GetAmount1Delta round up = %s, want %s", up, want)
	}

	down, err := GetAmount1Delta(priceOne, priceUp, oneEther, false)
	if err != nil {
		t.Fatalf("GetAmount1Delta round down error: %v", err)
	}
	if want := mustBig(t, "99999999999999999"); down.Cmp(want) != 0 {
		t.Errorf("GetAmount1Delta round down = %s, want %s", down, want)
	}
}

func TestGetNextSqrtPriceFromInput(t *testing.T) {
	priceOne := encodeRatio(t, 1, 1)

	t.Run("zero amount keeps price", func(t *testing.T) {
		got, err := GetNextSqrtPriceFromInput(priceOne, oneEther, big.NewInt(0), true)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if got.Cmp(priceOne) != 0 {
			t.Errorf("price moved on zero input: %s", got)
		}
	})

	t.Run("tenth of token0 in", func(t *testing.T) {
		got, err := GetNextSqrtPriceFromInput(priceOne, oneEther, tenthEther, true)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if want := mustBig(t, "72025602285694852357767227579"); got.Cmp(want) != 0 {
			t.Errorf("next price = %s, want %s", got, want)
		}
	})

	t.Run("tenth of token1 in", func(t *testing.T) {
		got, err := GetNextSqrtPriceFromInput(priceOne, oneEther, tenthEther, false)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if want := mustBig(t, "87150978765690771352898345369"); got.Cmp(want) != 0 {
			t.Errorf("next price = %s, want %s", got, want)
		}
	})

	t.Run("rejects zero price and liquidity", func(t *testing.T) {
		if _, err := GetNextSqrtPriceFromInput(big.NewInt(0), oneEther, tenthEther, true); !errors.Is(err, matherrors.ErrSqrtRatioNonPositive) {
			t.Errorf("zero price error = %v", err)
		}
		if _, err := GetNextSqrtPriceFromInput(priceOne, big.NewInt(0), tenthEther, true); !errors.Is(err, matherrors.ErrLiquidityNonPositive) {
			t.Errorf("zero liquidity error = %v", err)
		}
	})
}

func TestGetNextSqrtPriceFromOutput(t *testing.T) {
	priceOne := encodeRatio(t, 1, 1)

	t.Run("tenth of token1 out", func(t *testing.T) {
		got, err := GetNextSqrtPriceFromOutput(priceOne, oneEther, tenthEther, true)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		// Q96 minus ceil(Q96/10).
		want := new(big.Int).Sub(priceOne, mustBig(t, "7922816251426433759354395034"))
		if got.Cmp(want) != 0 {
			t.Errorf("next price = %s, want %s", got, want)
		}
	})

	t.Run("tenth of token0 out", func(t *testing.T) {
		got, err := GetNextSqrtPriceFromOutput(priceOne, oneEther, tenthEther, false)
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		if want := mustBig(t, "88031291682515930659493278152"); got.Cmp(want) != 0 {
			t.Errorf("next price = %s, want %s", got, want)
		}
	})

	t.Run("rejects draining the whole reserve", func(t *testing.T) {
		if _, err := GetNextSqrtPriceFromOutput(priceOne, oneEther, oneEther, false); !errors.Is(err, matherrors.ErrSqrtRatioUnderflow) {
			t.Errorf("token0 drain error = %v, want ErrSqrtRatioUnderflow", err)
		}
		if _, err := GetNextSqrtPriceFromOutput(priceOne, big.NewInt(1), oneEther, true); !errors.Is(err, matherrors.ErrSqrtRatioUnderflow) {
			t.Errorf("token1 drain error = %v, want ErrSqrtRatioUnderflow", err)
		}
	})
}
