package pricefloat

import (
	"math/big"
	"testing"

	"github.com/alexkalak/go_univ3_quoting/common/core/fixedpoint"
	"github.com/alexkalak/go_univ3_quoting/common/core/tickmath"
)

func within(t *testing.T, got, want *big.Float, tolerance float64) {
	t.Helper()
	diff := new(big.Float).Sub(got, want)
	diff.Abs(diff)
	if diff.Cmp(big.NewFloat(tolerance)) > 0 {
		t.Errorf("got %s, want %s within %g", got.Text('g', 30), want.Text('g', 30), tolerance)
	}
}

func TestPriceAtTick(t *testing.T) {
	if PriceAtTick(0).Cmp(big.NewFloat(1)) != 0 {
		t.Errorf("PriceAtTick(0) = %s, want exactly 1", PriceAtTick(0).Text('g', 30))
	}

	within(t, PriceAtTick(1), big.NewFloat(1.0001), 1e-12)
	within(t, PriceAtTick(-1), big.NewFloat(1/1.0001), 1e-12)

	// Opposite ticks must price as reciprocals.
	product := new(big.Float).Mul(PriceAtTick(23028), PriceAtTick(-23028))
	within(t, product, big.NewFloat(1), 1e-20)
}

func TestPriceFromSqrtRatioX96(t *testing.T) {
	if PriceFromSqrtRatioX96(fixedpoint.Q96).Cmp(big.NewFloat(1)) != 0 {
		t.Error("the 1:1 sqrt ratio must price exactly 1")
	}

	ratio, err := tickmath.SqrtRatioAtTick(1)
	if err != nil {
		t.Fatalf("SqrtRatioAtTick error: %v", err)
	}
	within(t, PriceFromSqrtRatioX96(ratio), PriceAtTick(1), 1e-9)
}

func TestAdjustForDecimals(t *testing.T) {
	price := big.NewFloat(2)

	same := AdjustForDecimals(price, 18, 18)
	if same.Cmp(price) != 0 {
		t.Errorf("equal decimals changed the price: %s", same.Text('g', 10))
	}

	up := AdjustForDecimals(price, 18, 6)
	within(t, up, big.NewFloat(2e12), 1)

	down := AdjustForDecimals(price, 6, 18)
	within(t, down, big.NewFloat(2e-12), 1e-24)

	if price.Cmp(big.NewFloat(2)) != 0 {
		t.Error("input price was modified")
	}
}
