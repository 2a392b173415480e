package models

import "encoding/json"

const (
	V3_EVENT_SWAP       = "swap"
	V3_EVENT_MINT       = "mint"
	V3_EVENT_BURN       = "burn"
	V3_EVENT_STATE      = "state"
	V3_EVENT_BLOCK_OVER = "block_over"
)

// V3PoolEvent is one pre decoded pool update on the events topic. Swap and
// state events carry the post event slot0 values, mint and burn carry the
// affected tick range and the liquidity delta as a base 10 string. A
// block_over event marks that every event of BlockNumber for the chain has
// been published.
type V3PoolEvent struct {
	Type        string `json:"type"`
	ChainID     uint   `json:"chain_id"`
	PoolAddress string `json:"pool_address"`
	BlockNumber int    `json:"block_number"`

	SqrtPriceX96 string `json:"sqrt_price_x96,omitempty"`
	Tick         int    `json:"tick,omitempty"`
	Liquidity    string `json:"liquidity,omitempty"`

	TickLower int    `json:"tick_lower,omitempty"`
	TickUpper int    `json:"tick_upper,omitempty"`
	Amount    string `json:"amount,omitempty"`
}

func (e *V3PoolEvent) GetJSON() ([]byte, error) {
	return json.Marshal(e)
}

func (e *V3PoolEvent) FillFromJSON(raw []byte) error {
	return json.Unmarshal(raw, e)
}
