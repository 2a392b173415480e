package ticklist

import (
	"math/big"

	"github.com/alexkalak/go_univ3_quoting/common/core/coreerrors/tickerrors"
	"github.com/alexkalak/go_univ3_quoting/common/core/tickmath"
)

// Tick is one initialized tick boundary of a pool snapshot. LiquidityNet is
// the signed change of in-range liquidity when the boundary is crossed
// upward; LiquidityGross is the total liquidity referencing the boundary.
type Tick struct {
	Index          int
	LiquidityNet   *big.Int
	LiquidityGross *big.Int
}

// ValidateList checks that ticks is non-empty, strictly ascending by index
// and aligned to the tick spacing.
func ValidateList(ticks []Tick, tickSpacing int) error {
	if tickSpacing <= 0 {
		return tickerrors.ErrTickSpacingNonPositive
	}
	if len(ticks) == 0 {
		return tickerrors.ErrEmptyTickList
	}

	for i, tick := range ticks {
		if tick.Index%tickSpacing != 0 {
			return tickerrors.ErrTickNotSpaced
		}
		if i > 0 && ticks[i-1].Index >= tick.Index {
			return tickerrors.ErrTicksUnsorted
		}
	}
	return nil
}

func isBelowSmallest(ticks []Tick, tick int) bool {
	return tick < ticks[0].Index
}

// isAtOrAboveLargest treats the largest initialized tick itself as exhausted
// so upward searches never read past the end of the list.
func isAtOrAboveLargest(ticks []Tick, tick int) bool {
	return tick >= ticks[len(ticks)-1].Index
}

// findLargest returns the position of the largest tick index less than or
// equal to tick. The tick must not be below the smallest entry.
func findLargest(ticks []Tick, tick int) int {
	l, r := 0, len(ticks)-1
	for {
		i := (l + r) / 2
		if ticks[i].Index <= tick && (i == len(ticks)-1 || ticks[i+1].Index > tick) {
			return i
		}
		if ticks[i].Index < tick {
			l = i + 1
		} else {
			r = i - 1
		}
	}
}

// GetTick returns the initialized tick with exactly the given index.
func GetTick(ticks []Tick, index int) (Tick, error) {
	if len(ticks) == 0 {
		return Tick{}, tickerrors.ErrEmptyTickList
	}
	if isBelowSmallest(ticks, index) {
		return Tick{}, tickerrors.ErrTickNotFound
	}

	found := ticks[findLargest(ticks, index)]
	if found.Index != index {
		return Tick{}, tickerrors.ErrTickNotFound
	}
	return found, nil
}

// NextInitializedTick returns the closest initialized tick at or below the
// given tick when lte is true, or strictly above it otherwise.
func NextInitializedTick(ticks []Tick, tick int, lte bool) (Tick, error) {
	if len(ticks) == 0 {
		return Tick{}, tickerrors.ErrEmptyTickList
	}

	if lte {
		if isBelowSmallest(ticks, tick) {
			return Tick{}, tickerrors.ErrBelowSmallestTick
		}
		if isAtOrAboveLargest(ticks, tick) {
			return ticks[len(ticks)-1], nil
		}
		return ticks[findLargest(ticks, tick)], nil
	}

	if isAtOrAboveLargest(ticks, tick) {
		return Tick{}, tickerrors.ErrAtOrAboveLargestTick
	}
	if isBelowSmallest(ticks, tick) {
		return ticks[0], nil
	}
	return ticks[findLargest(ticks, tick)+1], nil
}

// NextInitializedTickWithinOneWord returns the next tick boundary to process
// when swapping away from tick in the given direction, and whether that
// boundary is an initialized tick. The search never leaves the 256-slot
// bitmap word holding the starting position; when the word has no
// initialized tick in the direction the word edge is returned uninitialized.
func NextInitializedTickWithinOneWord(ticks []Tick, tick int, lte bool, tickSpacing int) (int, bool, error) {
	if tickSpacing <= 0 {
		return 0, false, tickerrors.ErrTickSpacingNonPositive
	}
	if len(ticks) == 0 {
		return 0, false, tickerrors.ErrEmptyTickList
	}

	compressed := floorDiv(tick, tickSpacing)

	if lte {
		wordPos := compressed >> 8
		minimum := (wordPos << 8) * tickSpacing

		if isBelowSmallest(ticks, tick) {
			return minimum, false, nil
		}

		next, err := NextInitializedTick(ticks, tick, lte)
		if err != nil {
			return 0, false, err
		}
		boundary := max(minimum, next.Index)
		return boundary, boundary == next.Index, nil
	}

	wordPos := (compressed + 1) >> 8
	maximum := ((wordPos+1)<<8)*tickSpacing - 1

	if isAtOrAboveLargest(ticks, tick) {
		return maximum, false, nil
	}

	next, err := NextInitializedTick(ticks, tick, lte)
	if err != nil {
		return 0, false, err
	}
	boundary := min(maximum, next.Index)
	return boundary, boundary == next.Index, nil
}

// NearestUsableTick rounds tick to the nearest multiple of tickSpacing,
// breaking exact halves toward the even multiple, and steps the result back
// inside [MinTick, MaxTick] when rounding left the usable range.
func NearestUsableTick(tick, tickSpacing int) (int, error) {
	if tickSpacing <= 0 {
		return 0, tickerrors.ErrTickSpacingNonPositive
	}
	if tick <= tickmath.MinTick || tick >= tickmath.MaxTick {
		return 0, tickerrors.ErrTickOutOfUsableRange
	}

	rounded := roundHalfEven(tick, tickSpacing) * tickSpacing
	if rounded < tickmath.MinTick {
		return rounded + tickSpacing, nil
	}
	if rounded > tickmath.MaxTick {
		return rounded - tickSpacing, nil
	}
	return rounded, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// roundHalfEven rounds the rational a/b, b > 0, to the nearest integer and
// picks the even neighbor on exact halves.
func roundHalfEven(a, b int) int {
	q := floorDiv(a, b)
	rem := a - q*b

	twice := 2 * rem
	if twice < b {
		return q
	}
	if twice > b {
		return q + 1
	}
	if q%2 == 0 {
		return q
	}
	return q + 1
}
