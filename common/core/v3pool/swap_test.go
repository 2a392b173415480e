package v3pool

import (
	"errors"
	"math/big"
	"testing"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/poolerrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/fractions"
	"github.com/alexkalak/go_univ3_quoting/common/core/tickmath"
)

func TestGetOutputAmount(t *testing.T) {
	tests := []struct {
		name      string
		pool      func(*testing.T) *Pool
		inputIs0  bool
		input     string
		wantOut   string
		wantPrice string
		wantLiq   string
		wantTick  int
	}{
		{
			name:      "small token0 in",
			pool:      fullRangePool,
			inputIs0:  true,
			input:     "100",
			wantOut:   "98",
			wantPrice: "79228162514264329749955861424",
			wantLiq:   "1000000000000000000",
			wantTick:  -1,
		},
		{
			name:      "small token1 in",
			pool:      fullRangePool,
			inputIs0:  false,
			input:     "100",
			wantOut:   "98",
			wantPrice: "79228162514264345437132039248",
			wantLiq:   "1000000000000000000",
			wantTick:  0,
		},
		{
			name:      "larger token0 in moves the tick",
			pool:      fullRangePool,
			inputIs0:  true,
			input:     "1000000000000000",
			wantOut:   "996006981039903",
			wantPrice: "79149250711305166342700278159",
			wantLiq:   "1000000000000000000",
			wantTick:  -20,
		},
		{
			name:      "token0 in crosses the lower band boundary",
			pool:      multiTickPool,
			inputIs0:  true,
			input:     "10000000000000000",
			wantOut:   "9894398499457380",
			wantPrice: "78562905736585838206090410634",
			wantLiq:   "1000000000000000000",
			wantTick:  -169,
		},
		{
			name:      "token1 in crosses the upper band boundary",
			pool:      multiTickPool,
			inputIs0:  false,
			input:     "10000000000000000",
			wantOut:   "9894398499457380",
			wantPrice: "79899052568564899118062553770",
			wantLiq:   "1000000000000000000",
			wantTick:  168,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pool := tc.pool(t)
			inputToken, outputToken := pool.Token0, pool.Token1
			if !tc.inputIs0 {
				inputToken, outputToken = outputToken, inputToken
			}

			out, next, err := pool.GetOutputAmount(fractions.FromRawAmount(inputToken, mustBig(t, tc.input)), nil)
			if err != nil {
				t.Fatalf("GetOutputAmount error: %v", err)
			}

			if !out.Token.Equal(outputToken) {
				t.Errorf("output token = %s, want %s", out.Token.Symbol, outputToken.Symbol)
			}
			if got := out.Quotient(); got.Cmp(mustBig(t, tc.wantOut)) != 0 {
				t.Errorf("output = %s, want %s", got, tc.wantOut)
			}
			if next.SqrtRatioX96.Cmp(mustBig(t, tc.wantPrice)) != 0 {
				t.Errorf("price after = %s, want %s", next.SqrtRatioX96, tc.wantPrice)
			}
			if next.Liquidity.Cmp(mustBig(t, tc.wantLiq)) != 0 {
				t.Errorf("liquidity after = %s, want %s", next.Liquidity, tc.wantLiq)
			}
			if next.TickCurrent != tc.wantTick {
				t.Errorf("tick after = %d, want %d", next.TickCurrent, tc.wantTick)
			}
		})
	}
}

func TestGetInputAmount(t *testing.T) {
	tests := []struct {
		name      string
		pool      func(*testing.T) *Pool
		outputIs0 bool
		output    string
		wantIn    string
		wantPrice string
		wantLiq   string
		wantTick  int
	}{
		{
			name:      "small token0 out",
			pool:      fullRangePool,
			outputIs0: true,
			output:    "98",
			wantIn:    "100",
			wantPrice: "79228162514264345357903876734",
			wantLiq:   "1000000000000000000",
			wantTick:  0,
		},
		{
			name:      "small token1 out",
			pool:      fullRangePool,
			outputIs0: false,
			output:    "98",
			wantIn:    "100",
			wantPrice: "79228162514264329829184023938",
			wantLiq:   "1000000000000000000",
			wantTick:  -1,
		},
		{
			name:      "token0 out crosses the upper band boundary",
			pool:      multiTickPool,
			outputIs0: true,
			output:    "10000000000000000",
			wantIn:    "10107732137222630",
			wantPrice: "79907562381582954981068354102",
			wantLiq:   "1000000000000000000",
			wantTick:  170,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pool := tc.pool(t)
			outputToken, inputToken := pool.Token0, pool.Token1
			if !tc.outputIs0 {
				outputToken, inputToken = inputToken, outputToken
			}

			in, next, err := pool.GetInputAmount(fractions.FromRawAmount(outputToken, mustBig(t, tc.output)), nil)
			if err != nil {
				t.Fatalf("GetInputAmount error: %v", err)
			}

			if !in.Token.Equal(inputToken) {
				t.Errorf("input token = %s, want %s", in.Token.Symbol, inputToken.Symbol)
			}
			if got := in.Quotient(); got.Cmp(mustBig(t, tc.wantIn)) != 0 {
				t.Errorf("input = %s, want %s", got, tc.wantIn)
			}
			if next.SqrtRatioX96.Cmp(mustBig(t, tc.wantPrice)) != 0 {
				t.Errorf("price after = %s, want %s", next.SqrtRatioX96, tc.wantPrice)
			}
			if next.Liquidity.Cmp(mustBig(t, tc.wantLiq)) != 0 {
				t.Errorf("liquidity after = %s, want %s", next.Liquidity, tc.wantLiq)
			}
			if next.TickCurrent != tc.wantTick {
				t.Errorf("tick after = %d, want %d", next.TickCurrent, tc.wantTick)
			}
		})
	}
}

func TestSwapStopsAtPriceLimit(t *testing.T) {
	pool := multiTickPool(t)

	limit, err := tickmath.SqrtRatioAtTick(-30)
	if err != nil {
		t.Fatalf("SqrtRatioAtTick(-30) error: %v", err)
	}

	result, err := pool.Swap(true, mustBig(t, "100000000000000000"), limit)
	if err != nil {
		t.Fatalf("Swap error: %v", err)
	}

	if result.SqrtRatioX96.Cmp(limit) != 0 {
		t.Errorf("price = %s, want the limit %s", result.SqrtRatioX96, limit)
	}
	if want := mustBig(t, "-2248201019541174"); result.AmountCalculated.Cmp(want) != 0 {
		t.Errorf("amount calculated = %s, want %s", result.AmountCalculated, want)
	}
	if want := mustBig(t, "1500000000000000000"); result.Liquidity.Cmp(want) != 0 {
		t.Errorf("liquidity = %s, want %s (limit is inside the band)", result.Liquidity, want)
	}
	if result.TickCurrent != -30 {
		t.Errorf("tick = %d, want -30", result.TickCurrent)
	}
}

func TestSwapRejectsBadPriceLimits(t *testing.T) {
	pool := fullRangePool(t)
	amount := big.NewInt(1000)

	cases := []struct {
		name       string
		zeroForOne bool
		limit      *big.Int
	}{
		{"zero for one at current price", true, new(big.Int).Set(pool.SqrtRatioX96)},
		{"zero for one above current price", true, new(big.Int).Add(pool.SqrtRatioX96, big.NewInt(1))},
		{"zero for one at min ratio", true, new(big.Int).Set(tickmath.MinSqrtRatio)},
		{"one for zero at current price", false, new(big.Int).Set(pool.SqrtRatioX96)},
		{"one for zero below current price", false, new(big.Int).Sub(pool.SqrtRatioX96, big.NewInt(1))},
		{"one for zero at max ratio", false, new(big.Int).Set(tickmath.MaxSqrtRatio)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := pool.Swap(tc.zeroForOne, amount, tc.limit); !errors.Is(err, poolerrors.ErrInvalidPriceLimit) {
				t.Errorf("err = %v, want ErrInvalidPriceLimit", err)
			}
		})
	}
}

func TestGetOutputAmountRejectsForeignToken(t *testing.T) {
	pool := fullRangePool(t)
	other := testToken(t, "0x00000000000000000000000000000000000000aa", "CCC")

	in := fractions.FromRawAmount(other, big.NewInt(100))
	if _, _, err := pool.GetOutputAmount(in, nil); !errors.Is(err, poolerrors.ErrTokenNotInvolved) {
		t.Errorf("GetOutputAmount err = %v, want ErrTokenNotInvolved", err)
	}
	if _, _, err := pool.GetInputAmount(in, nil); !errors.Is(err, poolerrors.ErrTokenNotInvolved) {
		t.Errorf("GetInputAmount err = %v, want ErrTokenNotInvolved", err)
	}
}

func TestSwapLeavesPoolUnchanged(t *testing.T) {
	pool := fullRangePool(t)
	priceBefore := new(big.Int).Set(pool.SqrtRatioX96)
	liquidityBefore := new(big.Int).Set(pool.Liquidity)

	_, next, err := pool.GetOutputAmount(fractions.FromRawAmount(pool.Token0, mustBig(t, "1000000000000000")), nil)
	if err != nil {
		t.Fatalf("GetOutputAmount error: %v", err)
	}

	if pool.SqrtRatioX96.Cmp(priceBefore) != 0 || pool.Liquidity.Cmp(liquidityBefore) != 0 || pool.TickCurrent != 0 {
		t.Error("swap must not modify the source pool")
	}
	if next == pool {
		t.Error("swap must return a fresh snapshot")
	}
	if len(next.Ticks) != len(pool.Ticks) {
		t.Error("snapshot must carry the same tick list")
	}
}
