package poolsyncservice

import (
	"math/big"
	"testing"

	"github.com/alexkalak/go_univ3_quoting/common/models"
)

func newTestPool(t *testing.T, ticks []models.TickRow) models.UniswapV3Pool {
	t.Helper()

	pool := models.UniswapV3Pool{
		Address:      "0xpool",
		ChainID:      1,
		SqrtPriceX96: new(big.Int).Lsh(big.NewInt(1), 96),
		Liquidity:    big.NewInt(1000000),
		Tick:         0,
		TickSpacing:  60,
		TickLower:    -600,
		TickUpper:    600,
	}
	if err := pool.SetTicks(ticks); err != nil {
		t.Fatalf("SetTicks: %v", err)
	}
	return pool
}

func TestApplySlot0Event(t *testing.T) {
	tests := []struct {
		name      string
		event     models.V3PoolEvent
		wantErr   bool
		wantDusty bool
	}{
		{
			name: "inside window",
			event: models.V3PoolEvent{
				SqrtPriceX96: "79228162514264337593543950336",
				Liquidity:    "5000",
				Tick:         120,
			},
		},
		{
			name: "tick left window",
			event: models.V3PoolEvent{
				SqrtPriceX96: "79228162514264337593543950336",
				Liquidity:    "5000",
				Tick:         700,
			},
			wantDusty: true,
		},
		{
			name: "malformed price",
			event: models.V3PoolEvent{
				SqrtPriceX96: "not-a-number",
				Liquidity:    "5000",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newTestPool(t, nil)

			err := applySlot0Event(&pool, &tt.event)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("applySlot0Event: %v", err)
			}

			if pool.Tick != tt.event.Tick {
				t.Errorf("Tick = %d, want %d", pool.Tick, tt.event.Tick)
			}
			if pool.Liquidity.String() != tt.event.Liquidity {
				t.Errorf("Liquidity = %s, want %s", pool.Liquidity, tt.event.Liquidity)
			}
			if pool.IsDusty != tt.wantDusty {
				t.Errorf("IsDusty = %v, want %v", pool.IsDusty, tt.wantDusty)
			}
		})
	}
}

func TestApplyMintBurnEvent(t *testing.T) {
	t.Run("mint straddling current tick", func(t *testing.T) {
		pool := newTestPool(t, nil)
		event := models.V3PoolEvent{
			Type:      models.V3_EVENT_MINT,
			TickLower: -120,
			TickUpper: 120,
			Amount:    "500",
		}

		if err := applyMintBurnEvent(&pool, &event, false); err != nil {
			t.Fatalf("applyMintBurnEvent: %v", err)
		}

		if got, want := pool.Liquidity.String(), "1000500"; got != want {
			t.Errorf("Liquidity = %s, want %s", got, want)
		}

		ticks, err := pool.Ticks()
		if err != nil {
			t.Fatalf("Ticks: %v", err)
		}
		if len(ticks) != 2 {
			t.Fatalf("got %d tick rows, want 2", len(ticks))
		}
		if ticks[0].Index != -120 || ticks[0].LiquidityNet != "500" || ticks[0].LiquidityGross != "500" {
			t.Errorf("lower row = %+v", ticks[0])
		}
		if ticks[1].Index != 120 || ticks[1].LiquidityNet != "-500" || ticks[1].LiquidityGross != "500" {
			t.Errorf("upper row = %+v", ticks[1])
		}
	})

	t.Run("mint above current tick leaves active liquidity", func(t *testing.T) {
		pool := newTestPool(t, nil)
		event := models.V3PoolEvent{
			Type:      models.V3_EVENT_MINT,
			TickLower: 60,
			TickUpper: 180,
			Amount:    "500",
		}

		if err := applyMintBurnEvent(&pool, &event, false); err != nil {
			t.Fatalf("applyMintBurnEvent: %v", err)
		}

		if got, want := pool.Liquidity.String(), "1000000"; got != want {
			t.Errorf("Liquidity = %s, want %s", got, want)
		}
	})

	t.Run("burn removes emptied rows", func(t *testing.T) {
		pool := newTestPool(t, []models.TickRow{
			{Index: -120, LiquidityNet: "500", LiquidityGross: "500"},
			{Index: 120, LiquidityNet: "-500", LiquidityGross: "500"},
		})
		event := models.V3PoolEvent{
			Type:      models.V3_EVENT_BURN,
			TickLower: -120,
			TickUpper: 120,
			Amount:    "500",
		}

		if err := applyMintBurnEvent(&pool, &event, true); err != nil {
			t.Fatalf("applyMintBurnEvent: %v", err)
		}

		if got, want := pool.Liquidity.String(), "999500"; got != want {
			t.Errorf("Liquidity = %s, want %s", got, want)
		}

		ticks, err := pool.Ticks()
		if err != nil {
			t.Fatalf("Ticks: %v", err)
		}
		if len(ticks) != 0 {
			t.Errorf("got %d tick rows, want 0", len(ticks))
		}
	})

	t.Run("partial burn keeps rows", func(t *testing.T) {
		pool := newTestPool(t, []models.TickRow{
			{Index: -120, LiquidityNet: "500", LiquidityGross: "500"},
			{Index: 120, LiquidityNet: "-500", LiquidityGross: "500"},
		})
		event := models.V3PoolEvent{
			Type:      models.V3_EVENT_BURN,
			TickLower: -120,
			TickUpper: 120,
			Amount:    "200",
		}

		if err := applyMintBurnEvent(&pool, &event, true); err != nil {
			t.Fatalf("applyMintBurnEvent: %v", err)
		}

		ticks, err := pool.Ticks()
		if err != nil {
			t.Fatalf("Ticks: %v", err)
		}
		if len(ticks) != 2 {
			t.Fatalf("got %d tick rows, want 2", len(ticks))
		}
		if ticks[0].LiquidityNet != "300" || ticks[0].LiquidityGross != "300" {
			t.Errorf("lower row = %+v", ticks[0])
		}
		if ticks[1].LiquidityNet != "-300" || ticks[1].LiquidityGross != "300" {
			t.Errorf("upper row = %+v", ticks[1])
		}
	})

	t.Run("burn on unknown tick is a no-op for rows", func(t *testing.T) {
		pool := newTestPool(t, nil)
		event := models.V3PoolEvent{
			Type:      models.V3_EVENT_BURN,
			TickLower: 60,
			TickUpper: 180,
			Amount:    "500",
		}

		if err := applyMintBurnEvent(&pool, &event, true); err != nil {
			t.Fatalf("applyMintBurnEvent: %v", err)
		}

		ticks, err := pool.Ticks()
		if err != nil {
			t.Fatalf("Ticks: %v", err)
		}
		if len(ticks) != 0 {
			t.Errorf("got %d tick rows, want 0", len(ticks))
		}
	})
}

func TestAdjustTickKeepsRowsSorted(t *testing.T) {
	ticks := []models.TickRow{
		{Index: -240, LiquidityNet: "10", LiquidityGross: "10"},
		{Index: 240, LiquidityNet: "-10", LiquidityGross: "10"},
	}

	ticks, err := adjustTick(ticks, 0, big.NewInt(7), big.NewInt(7))
	if err != nil {
		t.Fatalf("adjustTick: %v", err)
	}

	if len(ticks) != 3 {
		t.Fatalf("got %d tick rows, want 3", len(ticks))
	}
	for i := 1; i < len(ticks); i++ {
		if ticks[i-1].Index >= ticks[i].Index {
			t.Errorf("rows not sorted at %d: %d >= %d", i, ticks[i-1].Index, ticks[i].Index)
		}
	}
	if ticks[1].Index != 0 || ticks[1].LiquidityNet != "7" {
		t.Errorf("inserted row = %+v", ticks[1])
	}
}
