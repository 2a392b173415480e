package tradeerrors

import "errors"

var ErrUnknownTradeType = errors.New("unknown trade type")
var ErrInputTokenMismatch = errors.New("amount token does not match the route input token")
var ErrOutputTokenMismatch = errors.New("amount token does not match the route output token")
var ErrNegativeSlippage = errors.New("slippage tolerance cannot be negative")
