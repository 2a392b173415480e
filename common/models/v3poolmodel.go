package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
)

const UNISWAP_V3_POOL_TABLE = "uniswap_v3_pools"

const UNISWAP_V3_POOL_ADDRESS = "address"
const UNISWAP_V3_POOL_CHAINID = "chain_id"
const UNISWAP_V3_POOL_TOKEN0 = "token0"
const UNISWAP_V3_POOL_TOKEN1 = "token1"
const UNISWAP_V3_POOL_SQRTPRICEX96 = "sqrt_price_x96"
const UNISWAP_V3_POOL_LIQUIDITY = "liquidity"

const UNISWAP_V3_POOL_TICK = "tick"
const UNISWAP_V3_POOL_TICK_SPACING = "tick_spacing"
const UNISWAP_V3_POOL_TICK_LOWER = "tick_lower"
const UNISWAP_V3_POOL_TICK_UPPER = "tick_upper"
const UNISWAP_V3_POOL_TICKS = "ticks_json"

const UNISWAP_V3_POOL_FEE_TIER = "fee_tier"
const UNISWAP_V3_POOL_IS_DUSTY = "is_dusty"
const UNISWAP_V3_POOL_BLOCK_NUMBER = "block_number"

var ErrMalformedAmount = errors.New("amount field is not a base 10 integer")

// TickRow is one initialized tick of a pool snapshot. Liquidity values travel
// as base 10 strings so the row survives JSON round trips without precision
// loss.
type TickRow struct {
	Index          int    `json:"index"`
	LiquidityNet   string `json:"liquidity_net"`
	LiquidityGross string `json:"liquidity_gross"`
}

// UniswapV3Pool mirrors one row of the pools table. TicksJSON holds the
// initialized ticks between TickLower and TickUpper as a JSON array; a quote
// that would cross outside that window needs a wider snapshot first.
type UniswapV3Pool struct {
	Address      string
	ChainID      uint
	Token0       string
	Token1       string
	SqrtPriceX96 *big.Int
	Liquidity    *big.Int
	Tick         int
	TickSpacing  int
	TickLower    int
	TickUpper    int
	TicksJSON    string
	FeeTier      int
	IsDusty      bool
	BlockNumber  int
}

func (p *UniswapV3Pool) Ticks() ([]TickRow, error) {
	ticks := []TickRow{}
	err := json.Unmarshal([]byte(p.TicksJSON), &ticks)
	if err != nil {
		return nil, err
	}

	return ticks, nil
}

func (p *UniswapV3Pool) SetTicks(ticks []TickRow) error {
	raw, err := json.Marshal(ticks)
	if err != nil {
		return err
	}

	p.TicksJSON = string(raw)
	return nil
}

type uniswapV3PoolJSON struct {
	Address      string `json:"address"`
	ChainID      uint   `json:"chain_id"`
	Token0       string `json:"token0"`
	Token1       string `json:"token1"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Liquidity    string `json:"liquidity"`
	Tick         int    `json:"tick"`
	TickSpacing  int    `json:"tick_spacing"`
	TickLower    int    `json:"tick_lower"`
	TickUpper    int    `json:"tick_upper"`
	TicksJSON    string `json:"ticks_json"`
	FeeTier      int    `json:"fee_tier"`
	IsDusty      bool   `json:"is_dusty"`
	BlockNumber  int    `json:"block_number"`
}

// GetJSON encodes the pool for the cache. Big integers are rendered as
// base 10 strings.
func (p *UniswapV3Pool) GetJSON() ([]byte, error) {
	dto := uniswapV3PoolJSON{
		Address:     p.Address,
		ChainID:     p.ChainID,
		Token0:      p.Token0,
		Token1:      p.Token1,
		Tick:        p.Tick,
		TickSpacing: p.TickSpacing,
		TickLower:   p.TickLower,
		TickUpper:   p.TickUpper,
		TicksJSON:   p.TicksJSON,
		FeeTier:     p.FeeTier,
		IsDusty:     p.IsDusty,
		BlockNumber: p.BlockNumber,
	}

	if p.SqrtPriceX96 != nil {
		dto.SqrtPriceX96 = p.SqrtPriceX96.String()
	}
	if p.Liquidity != nil {
		dto.Liquidity = p.Liquidity.String()
	}

	return json.Marshal(dto)
}

// FillFromJSON is the inverse of GetJSON. The receiver is only written once
// the whole payload has parsed.
func (p *UniswapV3Pool) FillFromJSON(raw []byte) error {
	dto := uniswapV3PoolJSON{}
	err := json.Unmarshal(raw, &dto)
	if err != nil {
		return err
	}

	sqrtPriceX96, ok := new(big.Int).SetString(dto.SqrtPriceX96, 10)
	if !ok {
		return fmt.Errorf("%w: %s=%q", ErrMalformedAmount, UNISWAP_V3_POOL_SQRTPRICEX96, dto.SqrtPriceX96)
	}

	liquidity, ok := new(big.Int).SetString(dto.Liquidity, 10)
	if !ok {
		return fmt.Errorf("%w: %s=%q", ErrMalformedAmount, UNISWAP_V3_POOL_LIQUIDITY, dto.Liquidity)
	}

	p.Address = dto.Address
	p.ChainID = dto.ChainID
	p.Token0 = dto.Token0
	p.Token1 = dto.Token1
	p.SqrtPriceX96 = sqrtPriceX96
	p.Liquidity = liquidity
	p.Tick = dto.Tick
	p.TickSpacing = dto.TickSpacing
	p.TickLower = dto.TickLower
	p.TickUpper = dto.TickUpper
	p.TicksJSON = dto.TicksJSON
	p.FeeTier = dto.FeeTier
	p.IsDusty = dto.IsDusty
	p.BlockNumber = dto.BlockNumber

	return nil
}

func (p *UniswapV3Pool) GetIdentificator() V3PoolIdentificator {
	return V3PoolIdentificator{
		Address: p.Address,
		ChainID: p.ChainID,
	}
}

type V3PoolIdentificator struct {
	Address string
	ChainID uint
}

func (p V3PoolIdentificator) String() string {
	return fmt.Sprintf("%d.%s", p.ChainID, p.Address)
}
