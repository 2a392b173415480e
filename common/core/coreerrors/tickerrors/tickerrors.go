package tickerrors

import "errors"

var ErrEmptyTickList = errors.New("tick list cannot be empty")
var ErrTickNotFound = errors.New("tick is not contained in the tick list")
var ErrTicksUnsorted = errors.New("tick list must be sorted by index without duplicates")
var ErrTickNotSpaced = errors.New("tick index is not a multiple of the tick spacing")
var ErrTickSpacingNonPositive = errors.New("tick spacing must be positive")
var ErrBelowSmallestTick = errors.New("tick is below the smallest initialized tick")
var ErrAtOrAboveLargestTick = errors.New("tick is at or above the largest initialized tick")
var ErrTickOutOfUsableRange = errors.New("tick must lie strictly inside the usable tick range")
