package models

import (
	"errors"
	"math/big"
	"testing"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("invalid big int literal %q", s)
	}
	return v
}

func snapshotFixture(t *testing.T) *UniswapV3Pool {
	t.Helper()
	pool := &UniswapV3Pool{
		Address:      "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640",
		ChainID:      1,
		Token0:       "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		Token1:       "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		SqrtPriceX96: mustBig(t, "1598212344652174209366576993"),
		Liquidity:    mustBig(t, "19525372370985778998"),
		Tick:         -78245,
		TickSpacing:  10,
		TickLower:    -78350,
		TickUpper:    -78140,
		FeeTier:      500,
		IsDusty:      false,
		BlockNumber:  18923411,
	}
	err := pool.SetTicks([]TickRow{
		{Index: -78340, LiquidityNet: "304592964173662481", LiquidityGross: "304592964173662481"},
		{Index: -78240, LiquidityNet: "-161249421193815379", LiquidityGross: "221249421193815379"},
	})
	if err != nil {
		t.Fatalf("SetTicks error: %v", err)
	}
	return pool
}

func TestUniswapV3PoolJSONRoundTrip(t *testing.T) {
	pool := snapshotFixture(t)

	raw, err := pool.GetJSON()
	if err != nil {
		t.Fatalf("GetJSON error: %v", err)
	}

	restored := &UniswapV3Pool{}
	if err := restored.FillFromJSON(raw); err != nil {
		t.Fatalf("FillFromJSON error: %v", err)
	}

	if restored.Address != pool.Address || restored.ChainID != pool.ChainID {
		t.Errorf("identity fields changed: got %s/%d", restored.Address, restored.ChainID)
	}
	if restored.Token0 != pool.Token0 || restored.Token1 != pool.Token1 {
		t.Errorf("token fields changed: got %s %s", restored.Token0, restored.Token1)
	}
	if restored.SqrtPriceX96.Cmp(pool.SqrtPriceX96) != 0 {
		t.Errorf("SqrtPriceX96 = %s, want %s", restored.SqrtPriceX96, pool.SqrtPriceX96)
	}
	if restored.Liquidity.Cmp(pool.Liquidity) != 0 {
		t.Errorf("Liquidity = %s, want %s", restored.Liquidity, pool.Liquidity)
	}
	if restored.Tick != pool.Tick || restored.TickSpacing != pool.TickSpacing {
		t.Errorf("tick fields changed: got %d/%d", restored.Tick, restored.TickSpacing)
	}
	if restored.TickLower != pool.TickLower || restored.TickUpper != pool.TickUpper {
		t.Errorf("tick window changed: got [%d, %d]", restored.TickLower, restored.TickUpper)
	}
	if restored.FeeTier != pool.FeeTier || restored.IsDusty != pool.IsDusty || restored.BlockNumber != pool.BlockNumber {
		t.Errorf("metadata changed: got %d/%v/%d", restored.FeeTier, restored.IsDusty, restored.BlockNumber)
	}

	ticks, err := restored.Ticks()
	if err != nil {
		t.Fatalf("Ticks error: %v", err)
	}
	want, err := pool.Ticks()
	if err != nil {
		t.Fatalf("Ticks error: %v", err)
	}
	if len(ticks) != len(want) {
		t.Fatalf("restored %d ticks, want %d", len(ticks), len(want))
	}
	for i := range ticks {
		if ticks[i] != want[i] {
			t.Errorf("tick %d = %+v, want %+v", i, ticks[i], want[i])
		}
	}
}

func TestUniswapV3PoolFillFromJSONMalformed(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		malformed bool
	}{
		{
			name:      "sqrt price not an integer",
			raw:       `{"address":"0xabc","chain_id":1,"sqrt_price_x96":"79228+","liquidity":"10"}`,
			malformed: true,
		},
		{
			name:      "missing liquidity",
			raw:       `{"address":"0xabc","chain_id":1,"sqrt_price_x96":"79228162514264337593543950336"}`,
			malformed: true,
		},
		{
			name: "not json at all",
			raw:  `ticks: nope`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pool := snapshotFixture(t)
			address, sqrtPrice := pool.Address, new(big.Int).Set(pool.SqrtPriceX96)

			err := pool.FillFromJSON([]byte(tc.raw))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tc.malformed && !errors.Is(err, ErrMalformedAmount) {
				t.Fatalf("error = %v, want ErrMalformedAmount", err)
			}

			if pool.Address != address || pool.SqrtPriceX96.Cmp(sqrtPrice) != 0 {
				t.Error("receiver was modified by a failed fill")
			}
		})
	}
}

func TestUniswapV3PoolTicksMalformed(t *testing.T) {
	pool := snapshotFixture(t)
	pool.TicksJSON = `{"index": 5}`

	if _, err := pool.Ticks(); err == nil {
		t.Fatal("expected an error for a non array ticks payload")
	}
}

func TestV3PoolIdentificatorString(t *testing.T) {
	pool := snapshotFixture(t)

	id := pool.GetIdentificator()
	want := "1.0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640"
	if id.String() != want {
		t.Errorf("String() = %s, want %s", id.String(), want)
	}
}

func TestV3PoolEventJSONRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		event V3PoolEvent
	}{
		{
			name: "swap",
			event: V3PoolEvent{
				Type:         V3_EVENT_SWAP,
				ChainID:      1,
				PoolAddress:  "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640",
				BlockNumber:  18923412,
				SqrtPriceX96: "1598201573546362391923883204",
				Tick:         -78246,
				Liquidity:    "19525372370985778998",
			},
		},
		{
			name: "mint",
			event: V3PoolEvent{
				Type:        V3_EVENT_MINT,
				ChainID:     1,
				PoolAddress: "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640",
				BlockNumber: 18923412,
				TickLower:   -78340,
				TickUpper:   -78240,
				Amount:      "304592964173662481",
			},
		},
		{
			name: "block over",
			event: V3PoolEvent{
				Type:        V3_EVENT_BLOCK_OVER,
				ChainID:     1,
				BlockNumber: 18923412,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := tc.event.GetJSON()
			if err != nil {
				t.Fatalf("GetJSON error: %v", err)
			}

			restored := V3PoolEvent{}
			if err := restored.FillFromJSON(raw); err != nil {
				t.Fatalf("FillFromJSON error: %v", err)
			}
			if restored != tc.event {
				t.Errorf("restored %+v, want %+v", restored, tc.event)
			}
		})
	}
}

func TestTokenEqual(t *testing.T) {
	usdc := &Token{Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", ChainID: 1}
	usdcChecksummed := &Token{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", ChainID: 1}
	usdcPolygon := &Token{Address: "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", ChainID: 137}

	if !usdc.Equal(usdcChecksummed) {
		t.Error("checksummed and lowercase spellings must compare equal")
	}
	if usdc.Equal(usdcPolygon) {
		t.Error("tokens on different chains must not compare equal")
	}
	if usdc.Equal(nil) {
		t.Error("a token must not equal nil")
	}
}
