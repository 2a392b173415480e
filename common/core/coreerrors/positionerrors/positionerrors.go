package positionerrors

import "errors"

var ErrTickOrder = errors.New("tick lower must be strictly below tick upper")
var ErrTickOutOfBounds = errors.New("position ticks are outside the valid tick bounds")
var ErrTickNotSpaced = errors.New("position ticks must be multiples of the pool tick spacing")
var ErrNegativeLiquidity = errors.New("position liquidity cannot be negative")
var ErrNegativeSlippage = errors.New("slippage tolerance cannot be negative")
var ErrSlippageTooLarge = errors.New("slippage tolerance must stay below one")
