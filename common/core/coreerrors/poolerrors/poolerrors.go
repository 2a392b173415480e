package poolerrors

import "errors"

var ErrTokenOrder = errors.New("token0 must sort before token1 by address")
var ErrChainIDMismatch = errors.New("pool tokens must share one chain id")
var ErrNegativeLiquidity = errors.New("pool liquidity cannot be negative")
var ErrPriceTickMismatch = errors.New("sqrt ratio is inconsistent with the current tick")
var ErrInvalidPriceLimit = errors.New("sqrt price limit is not valid for the swap direction")
var ErrTokenNotInvolved = errors.New("token is not one of the pool tokens")
var ErrSwapNoProgress = errors.New("swap step made no progress")
var ErrModelTokenMismatch = errors.New("token does not match the pool snapshot")
var ErrMalformedTickData = errors.New("pool snapshot tick data is malformed")
