package matherrors

import "errors"

var ErrNonPositiveValue = errors.New("most significant bit is only defined for positive values")
var ErrDivisionByZero = errors.New("division by zero")
var ErrNegativeSquareRoot = errors.New("square root is not defined for negative values")
var ErrTickOutOfBounds = errors.New("tick is outside the valid tick bounds")
var ErrSqrtRatioOutOfBounds = errors.New("sqrt ratio is outside the valid sqrt ratio bounds")
var ErrSqrtRatioNonPositive = errors.New("sqrt ratio must be positive")
var ErrLiquidityNonPositive = errors.New("liquidity must be positive")
var ErrAmount0ProductOverflow = errors.New("amount0 product does not fit into 256 bits")
var ErrSqrtRatioUnderflow = errors.New("amount exceeds the reserves available at the current sqrt ratio")
var ErrNegativeLiquidityDelta = errors.New("liquidity delta produces negative liquidity")
