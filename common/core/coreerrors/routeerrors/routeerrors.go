package routeerrors

import "errors"

var ErrEmptyRoute = errors.New("route must contain at least one pool")
var ErrChainIDMismatch = errors.New("route pools must share one chain id")
var ErrInputTokenMismatch = errors.New("input token is not a token of the first pool")
var ErrOutputTokenMismatch = errors.New("output token is not a token of the last pool")
var ErrPathNotChained = errors.New("consecutive route pools do not share a token")
