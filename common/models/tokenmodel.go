package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const TOKENS_TABLE = "tokens"
const TOKEN_NAME = "name"
const TOKEN_SYMBOL = "symbol"
const TOKEN_ADDRESS = "address"
const TOKEN_CHAINID = "chain_id"
const TOKEN_LOGOURI = "logo_uri"
const TOKEN_DECIMALS = "decimals"
const TOKEN_USD_PRICE = "usd_price"

type TokenIdentificator struct {
	Address string
	ChainID uint
}

type Token struct {
	Name     string
	Symbol   string
	Address  string
	ChainID  uint
	LogoURI  string
	Decimals int
	USDPrice *big.Float

	//Not in db
	HasLiquidity bool
}

func (t *Token) GetIdentificator() TokenIdentificator {
	return TokenIdentificator{
		Address: t.Address,
		ChainID: t.ChainID,
	}
}

// Equal compares tokens by chain and canonical address, so checksummed and
// lowercase spellings of the same address match.
func (t *Token) Equal(other *Token) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.ChainID != other.ChainID {
		return false
	}
	return common.HexToAddress(t.Address) == common.HexToAddress(other.Address)
}

// SortsBefore reports whether this token's address orders below the other's.
// Pool token0/token1 assignment follows this ordering.
func (t *Token) SortsBefore(other *Token) bool {
	self := common.HexToAddress(t.Address)
	them := common.HexToAddress(other.Address)
	return self.Cmp(them) < 0
}
