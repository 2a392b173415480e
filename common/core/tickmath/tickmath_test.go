package tickmath

import (
	"errors"
	"math/big"
	"testing"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/matherrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/fixedpoint"
)

func TestSqrtRatioAtTickBounds(t *testing.T) {
	got, err := SqrtRatioAtTick(MinTick)
	if err != nil {
		t.Fatalf("SqrtRatioAtTick(MinTick) error: %v", err)
	}
	if got.Cmp(MinSqrtRatio) != 0 {
		t.Errorf("SqrtRatioAtTick(MinTick) = %s, want %s", got, MinSqrtRatio)
	}

	got, err = SqrtRatioAtTick(MaxTick)
	if err != nil {
		t.Fatalf("SqrtRatioAtTick(MaxTick) error: %v", err)
	}
	if got.Cmp(MaxSqrtRatio) != 0 {
		t.Errorf("SqrtRatioAtTick(MaxTick) = %s, want %s", got, MaxSqrtRatio)
	}

	for _, tick := range []int{MinTick - 1, MaxTick + 1} {
		if _, err := SqrtRatioAtTick(tick); !errors.Is(err, matherrors.ErrTickOutOfBounds) {
			t.Errorf("SqrtRatioAtTick(%d) error = %v, want ErrTickOutOfBounds", tick, err)
		}
	}
}

func TestSqrtRatioAtTickZero(t *testing.T) {
	got, err := SqrtRatioAtTick(0)
	if err != nil {
		t.Fatalf("SqrtRatioAtTick(0) error: %v", err)
	}
	if got.Cmp(fixedpoint.Q96) != 0 {
		t.Errorf("SqrtRatioAtTick(0) = %s, want Q96", got)
	}
}

func TestSqrtRatioAtTickMonotonic(t *testing.T) {
	ticks := []int{MinTick, -500000, -75500, -1000, -1, 0, 1, 1000, 75500, 500000, MaxTick}
	var prev *big.Int
	for _, tick := range ticks {
		ratio, err := SqrtRatioAtTick(tick)
		if err != nil {
			t.Fatalf("SqrtRatioAtTick(%d) error: %v", tick, err)
		}
		if prev != nil && ratio.Cmp(prev) <= 0 {
			t.Errorf("SqrtRatioAtTick(%d) = %s is not above the previous tick's ratio %s", tick, ratio, prev)
		}
		prev = ratio
	}
}

func TestTickAtSqrtRatioRoundTrip(t *testing.T) {
	ticks := []int{
		MinTick, MinTick + 1, -887160, -500000, -75500, -3000, -60, -1,
		0, 1, 60, 3000, 75500, 500000, 887160, MaxTick - 1,
	}

	for _, tick := range ticks {
		ratio, err := SqrtRatioAtTick(tick)
		if err != nil {
			t.Fatalf("SqrtRatioAtTick(%d) error: %v", tick, err)
		}
		got, err := TickAtSqrtRatio(ratio)
		if err != nil {
			t.Fatalf("TickAtSqrtRatio(SqrtRatioAtTick(%d)) error: %v", tick, err)
		}
		if got != tick {
			t.Errorf("TickAtSqrtRatio(SqrtRatioAtTick(%d)) = %d", tick, got)
		}
	}
}

func TestTickAtSqrtRatioKnownValues(t *testing.T) {
	got, err := TickAtSqrtRatio(new(big.Int).Set(fixedpoint.Q96))
	if err != nil {
		t.Fatalf("TickAtSqrtRatio(Q96) error: %v", err)
	}
	if got != 0 {
		t.Errorf("TickAtSqrtRatio(Q96) = %d, want 0", got)
	}

	// The 1:1900 reserve ratio sits exactly on tick -75500.
	ratio, err := fixedpoint.EncodeSqrtRatioX96(big.NewInt(1), big.NewInt(1900))
	if err != nil {
		t.Fatalf("EncodeSqrtRatioX96(1, 1900) error: %v", err)
	}
	want, _ := new(big.Int).SetString("1817618704642608503278368873", 10)
	if ratio.Cmp(want) != 0 {
		t.Errorf("EncodeSqrtRatioX96(1, 1900) = %s, want %s", ratio, want)
	}
	got, err = TickAtSqrtRatio(ratio)
	if err != nil {
		t.Fatalf("TickAtSqrtRatio(%s) error: %v", ratio, err)
	}
	if got != -75500 {
		t.Errorf("TickAtSqrtRatio(EncodeSqrtRatioX96(1, 1900)) = %d, want -75500", got)
	}

	got, err = TickAtSqrtRatio(MinSqrtRatio)
	if err != nil {
		t.Fatalf("TickAtSqrtRatio(MinSqrtRatio) error: %v", err)
	}
	if got != MinTick {
		t.Errorf("TickAtSqrtRatio(MinSqrtRatio) = %d, want MinTick", got)
	}
}

func TestTickAtSqrtRatioDomain(t *testing.T) {
	below := new(big.Int).Sub(MinSqrtRatio, big.NewInt(1))
	if _, err := TickAtSqrtRatio(below); !errors.Is(err, matherrors.ErrSqrtRatioOutOfBounds) {
		t.Errorf("TickAtSqrtRatio(MinSqrtRatio-1) error = %v, want ErrSqrtRatioOutOfBounds", err)
	}

	// The upper bound is exclusive.
	if _, err := TickAtSqrtRatio(new(big.Int).Set(MaxSqrtRatio)); !errors.Is(err, matherrors.ErrSqrtRatioOutOfBounds) {
		t.Errorf("TickAtSqrtRatio(MaxSqrtRatio) error = %v, want ErrSqrtRatioOutOfBounds", err)
	}

	if _, err := TickAtSqrtRatio(new(big.Int).Sub(MaxSqrtRatio, big.NewInt(1))); err != nil {
		t.Errorf("TickAtSqrtRatio(MaxSqrtRatio-1) error: %v", err)
	}
}
