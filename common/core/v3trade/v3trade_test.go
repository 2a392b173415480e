package v3trade

import (
	"errors"
	"math/big"
	"testing"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/tradeerrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/feetier"
	"github.com/alexkalak/go_univ3_quoting/common/core/fixedpoint"
	"github.com/alexkalak/go_univ3_quoting/common/core/fractions"
	"github.com/alexkalak/go_univ3_quoting/common/core/ticklist"
	"github.com/alexkalak/go_univ3_quoting/common/core/v3pool"
	"github.com/alexkalak/go_univ3_quoting/common/core/v3route"
	"github.com/alexkalak/go_univ3_quoting/common/models"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("invalid big int literal %q", s)
	}
	return v
}

func testToken(t *testing.T, address, symbol string) *models.Token {
	t.Helper()
	return &models.Token{
		Name:     symbol,
		Symbol:   symbol,
		Address:  address,
		ChainID:  1,
		Decimals: 18,
	}
}

func fullRangePool(t *testing.T, token0, token1 *models.Token, fee int, liquidity *big.Int) *v3pool.Pool {
	t.Helper()
	spacing, err := feetier.TickSpacing(fee)
	if err != nil {
		t.Fatalf("TickSpacing error: %v", err)
	}
	bound := (887272 / spacing) * spacing
	ticks := []ticklist.Tick{
		{Index: -bound, LiquidityNet: new(big.Int).Set(liquidity), LiquidityGross: new(big.Int).Set(liquidity)},
		{Index: bound, LiquidityNet: new(big.Int).Neg(liquidity), LiquidityGross: new(big.Int).Set(liquidity)},
	}
	pool, err := v3pool.NewPool(token0, token1, fee, fixedpoint.Q96, liquidity, 0, ticks)
	if err != nil {
		t.Fatalf("NewPool error: %v", err)
	}
	return pool
}

// twoHopRoute chains a 0.3% AAA/BBB pool holding 1e18 liquidity into a
// 0.05% BBB/CCC pool holding 2e18.
func twoHopRoute(t *testing.T) (*v3route.Route, *models.Token, *models.Token) {
	t.Helper()
	token1 := testToken(t, "0x0000000000000000000000000000000000000001", "AAA")
	token2 := testToken(t, "0x0000000000000000000000000000000000000002", "BBB")
	token3 := testToken(t, "0x0000000000000000000000000000000000000003", "CCC")
	oneEther := mustBig(t, "1000000000000000000")
	twoEther := mustBig(t, "2000000000000000000")

	poolA := fullRangePool(t, token1, token2, feetier.FeeMedium, oneEther)
	poolB := fullRangePool(t, token2, token3, feetier.FeeLow, twoEther)

	route, err := v3route.NewRoute([]*v3pool.Pool{poolA, poolB}, token1, token3)
	if err != nil {
		t.Fatalf("NewRoute error: %v", err)
	}
	return route, token1, token3
}

func TestTradeFromRouteExactInput(t *testing.T) {
	route, token1, token3 := twoHopRoute(t)

	trade, err := FromRoute(route, fractions.FromRawAmount(token1, mustBig(t, "1000000000000000")), ExactInput)
	if err != nil {
		t.Fatalf("FromRoute error: %v", err)
	}

	if trade.TradeType != ExactInput {
		t.Errorf("trade type = %s, want %s", trade.TradeType, ExactInput)
	}
	if !trade.InputAmount.Token.Equal(token1) {
		t.Errorf("input token = %s, want %s", trade.InputAmount.Token.Symbol, token1.Symbol)
	}
	if got := trade.InputAmount.Quotient(); got.Cmp(mustBig(t, "1000000000000000")) != 0 {
		t.Errorf("input amount = %s, want 1000000000000000", got)
	}
	if !trade.OutputAmount.Token.Equal(token3) {
		t.Errorf("output token = %s, want %s", trade.OutputAmount.Token.Symbol, token3.Symbol)
	}
	if got := trade.OutputAmount.Quotient(); got.Cmp(mustBig(t, "995013705011321")) != 0 {
		t.Errorf("output amount = %s, want 995013705011321", got)
	}
}

func TestTradeFromRouteExactOutput(t *testing.T) {
	route, token1, token3 := twoHopRoute(t)

	trade, err := FromRoute(route, fractions.FromRawAmount(token3, mustBig(t, "1000000000000000")), ExactOutput)
	if err != nil {
		t.Fatalf("FromRoute error: %v", err)
	}

	if got := trade.OutputAmount.Quotient(); got.Cmp(mustBig(t, "1000000000000000")) != 0 {
		t.Errorf("output amount = %s, want 1000000000000000", got)
	}
	if !trade.InputAmount.Token.Equal(token1) {
		t.Errorf("input token = %s, want %s", trade.InputAmount.Token.Symbol, token1.Symbol)
	}
	if got := trade.InputAmount.Quotient(); got.Cmp(mustBig(t, "1005018813453450")) != 0 {
		t.Errorf("input amount = %s, want 1005018813453450", got)
	}
}

func TestTradeFromRouteSingleHop(t *testing.T) {
	token1 := testToken(t, "0x0000000000000000000000000000000000000001", "AAA")
	token2 := testToken(t, "0x0000000000000000000000000000000000000002", "BBB")
	pool := fullRangePool(t, token1, token2, feetier.FeeMedium, mustBig(t, "1000000000000000000"))

	route, err := v3route.NewRoute([]*v3pool.Pool{pool}, token1, token2)
	if err != nil {
		t.Fatalf("NewRoute error: %v", err)
	}

	exactIn, err := FromRoute(route, fractions.FromRawAmount(token1, big.NewInt(100)), ExactInputSingle)
	if err != nil {
		t.Fatalf("FromRoute error: %v", err)
	}
	if got := exactIn.OutputAmount.Quotient(); got.Cmp(big.NewInt(98)) != 0 {
		t.Errorf("output amount = %s, want 98", got)
	}

	exactOut, err := FromRoute(route, fractions.FromRawAmount(token2, big.NewInt(98)), ExactOutputSingle)
	if err != nil {
		t.Fatalf("FromRoute error: %v", err)
	}
	if got := exactOut.InputAmount.Quotient(); got.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("input amount = %s, want 100", got)
	}
}

func TestTradeFromRouteValidation(t *testing.T) {
	route, token1, token3 := twoHopRoute(t)
	amount := fractions.FromRawAmount(token1, big.NewInt(1000))

	_, err := FromRoute(route, fractions.FromRawAmount(token3, big.NewInt(1000)), ExactInput)
	if !errors.Is(err, tradeerrors.ErrInputTokenMismatch) {
		t.Errorf("FromRoute error = %v, want %v", err, tradeerrors.ErrInputTokenMismatch)
	}

	_, err = FromRoute(route, amount, ExactOutput)
	if !errors.Is(err, tradeerrors.ErrOutputTokenMismatch) {
		t.Errorf("FromRoute error = %v, want %v", err, tradeerrors.ErrOutputTokenMismatch)
	}

	_, err = FromRoute(route, amount, TradeType("exactMiddle"))
	if !errors.Is(err, tradeerrors.ErrUnknownTradeType) {
		t.Errorf("FromRoute error = %v, want %v", err, tradeerrors.ErrUnknownTradeType)
	}
}

func TestMinimumAmountOut(t *testing.T) {
	route, token1, token3 := twoHopRoute(t)

	trade, err := FromRoute(route, fractions.FromRawAmount(token1, mustBig(t, "1000000000000000")), ExactInput)
	if err != nil {
		t.Fatalf("FromRoute error: %v", err)
	}

	tolerance := func(num, den int64) fractions.Fraction {
		f, err := fractions.NewFraction(big.NewInt(num), big.NewInt(den))
		if err != nil {
			t.Fatalf("NewFraction error: %v", err)
		}
		return f
	}

	got, err := trade.MinimumAmountOut(tolerance(0, 1))
	if err != nil {
		t.Fatalf("MinimumAmountOut error: %v", err)
	}
	if got.Quotient().Cmp(mustBig(t, "995013705011321")) != 0 {
		t.Errorf("minimum out at zero tolerance = %s, want the quoted output", got.Quotient())
	}

	got, err = trade.MinimumAmountOut(tolerance(1, 100))
	if err != nil {
		t.Fatalf("MinimumAmountOut error: %v", err)
	}
	if got.Quotient().Cmp(mustBig(t, "985162084169624")) != 0 {
		t.Errorf("minimum out at 1%% = %s, want 985162084169624", got.Quotient())
	}
	if !got.Token.Equal(token3) {
		t.Errorf("minimum out token = %s, want %s", got.Token.Symbol, token3.Symbol)
	}

	_, err = trade.MinimumAmountOut(tolerance(-1, 100))
	if !errors.Is(err, tradeerrors.ErrNegativeSlippage) {
		t.Errorf("MinimumAmountOut error = %v, want %v", err, tradeerrors.ErrNegativeSlippage)
	}

	// The output side of an exact output trade is already fixed.
	exactOut, err := FromRoute(route, fractions.FromRawAmount(token3, mustBig(t, "1000000000000000")), ExactOutput)
	if err != nil {
		t.Fatalf("FromRoute error: %v", err)
	}
	got, err = exactOut.MinimumAmountOut(tolerance(1, 100))
	if err != nil {
		t.Fatalf("MinimumAmountOut error: %v", err)
	}
	if got.Quotient().Cmp(mustBig(t, "1000000000000000")) != 0 {
		t.Errorf("minimum out for exact output = %s, want 1000000000000000", got.Quotient())
	}
}

func TestMaximumAmountIn(t *testing.T) {
	route, token1, token3 := twoHopRoute(t)

	trade, err := FromRoute(route, fractions.FromRawAmount(token3, mustBig(t, "1000000000000000")), ExactOutput)
	if err != nil {
		t.Fatalf("FromRoute error: %v", err)
	}

	tolerance := func(num, den int64) fractions.Fraction {
		f, err := fractions.NewFraction(big.NewInt(num), big.NewInt(den))
		if err != nil {
			t.Fatalf("NewFraction error: %v", err)
		}
		return f
	}

	got, err := trade.MaximumAmountIn(tolerance(0, 1))
	if err != nil {
		t.Fatalf("MaximumAmountIn error: %v", err)
	}
	if got.Quotient().Cmp(mustBig(t, "1005018813453450")) != 0 {
		t.Errorf("maximum in at zero tolerance = %s, want the quoted input", got.Quotient())
	}

	got, err = trade.MaximumAmountIn(tolerance(1, 100))
	if err != nil {
		t.Fatalf("MaximumAmountIn error: %v", err)
	}
	if got.Quotient().Cmp(mustBig(t, "1015069001587984")) != 0 {
		t.Errorf("maximum in at 1%% = %s, want 1015069001587984", got.Quotient())
	}
	if !got.Token.Equal(token1) {
		t.Errorf("maximum in token = %s, want %s", got.Token.Symbol, token1.Symbol)
	}

	_, err = trade.MaximumAmountIn(tolerance(-1, 100))
	if !errors.Is(err, tradeerrors.ErrNegativeSlippage) {
		t.Errorf("MaximumAmountIn error = %v, want %v", err, tradeerrors.ErrNegativeSlippage)
	}

	// The input side of an exact input trade is already fixed.
	exactIn, err := FromRoute(route, fractions.FromRawAmount(token1, mustBig(t, "1000000000000000")), ExactInput)
	if err != nil {
		t.Fatalf("FromRoute error: %v", err)
	}
	got, err = exactIn.MaximumAmountIn(tolerance(1, 100))
	if err != nil {
		t.Fatalf("MaximumAmountIn error: %v", err)
	}
	if got.Quotient().Cmp(mustBig(t, "1000000000000000")) != 0 {
		t.Errorf("maximum in for exact input = %s, want 1000000000000000", got.Quotient())
	}
}
