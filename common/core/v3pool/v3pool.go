package v3pool

import (
	"math/big"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/matherrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/poolerrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/feetier"
	"github.com/alexkalak/go_univ3_quoting/common/core/fixedpoint"
	"github.com/alexkalak/go_univ3_quoting/common/core/fractions"
	"github.com/alexkalak/go_univ3_quoting/common/core/ticklist"
	"github.com/alexkalak/go_univ3_quoting/common/core/tickmath"
	"github.com/alexkalak/go_univ3_quoting/common/models"
)

// Pool is an immutable snapshot of a concentrated liquidity pool. Swaps never
// modify it; they return the amounts together with a new snapshot. The tick
// list holds every initialized tick of the pool and is shared between
// snapshots, refreshing pool state means building a new Pool from a new list.
type Pool struct {
	Token0       *models.Token
	Token1       *models.Token
	Fee          int
	SqrtRatioX96 *big.Int
	Liquidity    *big.Int
	TickCurrent  int
	TickSpacing  int
	Ticks        []ticklist.Tick
	ChainID      uint

	Token0Price fractions.Price
	Token1Price fractions.Price
}

// NewPool validates a pool snapshot. Tokens must already be in address order,
// the sqrt price must agree with the current tick and the tick list, when
// present, must be sorted and aligned to the fee tier's spacing. An empty
// tick list is accepted; such a pool can be priced but not swapped through.
func NewPool(token0, token1 *models.Token, fee int, sqrtRatioX96, liquidity *big.Int, tickCurrent int, ticks []ticklist.Tick) (*Pool, error) {
	if token0.ChainID != token1.ChainID {
		return nil, poolerrors.ErrChainIDMismatch
	}
	if !token0.SortsBefore(token1) {
		return nil, poolerrors.ErrTokenOrder
	}

	tickSpacing, err := feetier.TickSpacing(fee)
	if err != nil {
		return nil, err
	}

	if liquidity.Sign() < 0 {
		return nil, poolerrors.ErrNegativeLiquidity
	}

	if sqrtRatioX96.Cmp(tickmath.MinSqrtRatio) <= 0 || sqrtRatioX96.Cmp(tickmath.MaxSqrtRatio) >= 0 {
		return nil, matherrors.ErrSqrtRatioOutOfBounds
	}

	ratioAtTick, err := tickmath.SqrtRatioAtTick(tickCurrent)
	if err != nil {
		return nil, err
	}
	if sqrtRatioX96.Cmp(ratioAtTick) < 0 {
		return nil, poolerrors.ErrPriceTickMismatch
	}
	ratioAtNextTick, err := tickmath.SqrtRatioAtTick(tickCurrent + 1)
	if err != nil {
		return nil, err
	}
	if sqrtRatioX96.Cmp(ratioAtNextTick) > 0 {
		return nil, poolerrors.ErrPriceTickMismatch
	}

	if len(ticks) > 0 {
		if err := ticklist.ValidateList(ticks, tickSpacing); err != nil {
			return nil, err
		}
	}

	ratioSquared := new(big.Int).Mul(sqrtRatioX96, sqrtRatioX96)
	token0Price, err := fractions.NewPrice(token0, token1, fixedpoint.Q192, ratioSquared)
	if err != nil {
		return nil, err
	}
	token1Price, err := fractions.NewPrice(token1, token0, ratioSquared, fixedpoint.Q192)
	if err != nil {
		return nil, err
	}

	return &Pool{
		Token0:       token0,
		Token1:       token1,
		Fee:          fee,
		SqrtRatioX96: new(big.Int).Set(sqrtRatioX96),
		Liquidity:    new(big.Int).Set(liquidity),
		TickCurrent:  tickCurrent,
		TickSpacing:  tickSpacing,
		Ticks:        ticks,
		ChainID:      token0.ChainID,
		Token0Price:  token0Price,
		Token1Price:  token1Price,
	}, nil
}

// InvolvesToken reports whether the token is one of the pool's pair.
func (p *Pool) InvolvesToken(token *models.Token) bool {
	return token.Equal(p.Token0) || token.Equal(p.Token1)
}

// PriceOf returns the price of the given pool token in terms of the other.
func (p *Pool) PriceOf(token *models.Token) (fractions.Price, error) {
	if token.Equal(p.Token0) {
		return p.Token0Price, nil
	}
	if token.Equal(p.Token1) {
		return p.Token1Price, nil
	}
	return fractions.Price{}, poolerrors.ErrTokenNotInvolved
}
