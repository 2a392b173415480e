package feetier

import "errors"

// Fee tiers in hundredths of a bip, as deployed by the factory.
const (
	FeeLow    = 500
	FeeMedium = 3000
	FeeHigh   = 10000
)

var ErrUnknownFeeTier = errors.New("unknown fee tier")

var tickSpacings = map[int]int{
	FeeLow:    10,
	FeeMedium: 60,
	FeeHigh:   200,
}

// TickSpacing resolves the tick spacing a fee tier implies. Unknown tiers are
// rejected rather than defaulted.
func TickSpacing(feeTier int) (int, error) {
	spacing, ok := tickSpacings[feeTier]
	if !ok {
		return 0, ErrUnknownFeeTier
	}
	return spacing, nil
}

func Valid(feeTier int) bool {
	_, ok := tickSpacings[feeTier]
	return ok
}
