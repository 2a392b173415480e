package routegrapherrors

import "errors"

var ErrTokenNotFound = errors.New("token is not present in the route graph")
var ErrPoolNotFound = errors.New("pool is not present in the route graph")
var ErrDuplicatePool = errors.New("pool with the same pair and fee is already in the route graph")
var ErrNoRouteFound = errors.New("no route found between the given tokens")
var ErrMaxHopsNonPositive = errors.New("max hops must be positive")
var ErrInvalidTokenIndex = errors.New("token index is outside the route graph")
