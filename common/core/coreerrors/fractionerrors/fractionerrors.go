package fractionerrors

import "errors"

var ErrZeroDenominator = errors.New("fraction denominator is zero")
var ErrBaseQuoteMismatch = errors.New("price multiplication requires the left quote token to be the right base token")
