package cexclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	bybit "github.com/bybit-exchange/bybit.go.api"
)

var ErrSymbolNotFound = errors.New("symbol not found on exchange")
var ErrMalformedTicker = errors.New("malformed ticker response")

// SpotTicker is the slice of a Bybit spot ticker this module cares about:
// best bid and ask, parsed into floats. Prices here are diagnostics only and
// never feed a quote.
type SpotTicker struct {
	Symbol string
	Bid    *big.Float
	Ask    *big.Float
}

func (t SpotTicker) Mid() *big.Float {
	mid := new(big.Float).Add(t.Bid, t.Ask)
	return mid.Quo(mid, big.NewFloat(2))
}

type CexClient interface {
	GetSpotTicker(ctx context.Context, symbol string) (SpotTicker, error)
}

type CexClientConfig struct {
	APIKey    string
	APISecret string
}

type cexClient struct {
	client *bybit.Client
}

func NewCexClient(config CexClientConfig) (CexClient, error) {
	client := bybit.NewBybitHttpClient(config.APIKey, config.APISecret, bybit.WithBaseURL(bybit.MAINNET))
	if client == nil {
		return nil, errors.New("unable to create bybit client")
	}

	return &cexClient{client: client}, nil
}

type tickerEntry struct {
	Symbol    string `json:"symbol"`
	Bid1Price string `json:"bid1Price"`
	Ask1Price string `json:"ask1Price"`
}

type tickerResult struct {
	Category string        `json:"category"`
	List     []tickerEntry `json:"list"`
}

func (c *cexClient) GetSpotTicker(ctx context.Context, symbol string) (SpotTicker, error) {
	params := map[string]interface{}{
		"category": "spot",
		"symbol":   symbol,
	}

	resp, err := c.client.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
	if err != nil {
		return SpotTicker{}, err
	}
	if resp.RetCode != 0 {
		return SpotTicker{}, fmt.Errorf("bybit error %d: %s", resp.RetCode, resp.RetMsg)
	}

	// The client delivers Result as a generic map; round trip through JSON
	// to get a typed view.
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		return SpotTicker{}, err
	}

	result := tickerResult{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return SpotTicker{}, err
	}

	for _, entry := range result.List {
		if entry.Symbol != symbol {
			continue
		}

		bid, ok := new(big.Float).SetString(entry.Bid1Price)
		if !ok {
			return SpotTicker{}, fmt.Errorf("%w: bid %q", ErrMalformedTicker, entry.Bid1Price)
		}
		ask, ok := new(big.Float).SetString(entry.Ask1Price)
		if !ok {
			return SpotTicker{}, fmt.Errorf("%w: ask %q", ErrMalformedTicker, entry.Ask1Price)
		}

		return SpotTicker{Symbol: symbol, Bid: bid, Ask: ask}, nil
	}

	return SpotTicker{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
}
