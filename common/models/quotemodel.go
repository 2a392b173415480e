package models

import (
	"math/big"
	"time"
)

const (
	V3_QUOTE_TABLE        = "v3_quotes"
	V3_QUOTE_ID           = "id"
	V3_QUOTE_CHAIN_ID     = "chain_id"
	V3_QUOTE_TRADE_TYPE   = "trade_type"
	V3_QUOTE_TOKEN_IN     = "token_in"
	V3_QUOTE_TOKEN_OUT    = "token_out"
	V3_QUOTE_AMOUNT_IN    = "amount_in"
	V3_QUOTE_AMOUNT_OUT   = "amount_out"
	V3_QUOTE_ROUTE_PATH   = "route_path"
	V3_QUOTE_POOL_COUNT   = "pool_count"
	V3_QUOTE_BLOCK_NUMBER = "block_number"
	V3_QUOTE_CREATED_AT   = "created_at"
)

// QuoteResult is one served quote as persisted for later inspection.
// RoutePath is the hex encoded swap path of the winning route.
type QuoteResult struct {
	ID          int
	ChainID     uint
	TradeType   string
	TokenIn     string
	TokenOut    string
	AmountIn    *big.Int
	AmountOut   *big.Int
	RoutePath   string
	PoolCount   int
	BlockNumber int
	CreatedAt   time.Time
}
