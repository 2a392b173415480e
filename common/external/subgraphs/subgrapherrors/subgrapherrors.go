package subgrapherrors

import "errors"

var ErrInvalidSubgraphClient = errors.New("invalid subgraph client")
var ErrChainIDNotFound = errors.New("chain id not found")
var ErrExchangeTypeNotFound = errors.New("exchange type not found")
