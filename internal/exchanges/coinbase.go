package exchanges

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"spreadwatch/api"
)

type Coinbase struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

type coinbaseProduct struct {
	ID              string `json:"id"`
	BaseCurrency    string `json:"base_currency"`
	QuoteCurrency   string `json:"quote_currency"`
	Status          string `json:"status"`
	TradingDisabled bool   `json:"trading_disabled"`
}

type coinbaseTicker struct {
	Price  string `json:"price"`
	Volume string `json:"volume"` // 24h base volume
}

func NewCoinbase(client *http.Client, limiter *rate.Limiter) *Coinbase {
	return &Coinbase{
		client:  client,
		baseURL: "https://api.exchange.coinbase.com",
		limiter: limiter,
	}
}

func (c *Coinbase) Name() string {
	return "coinbase"
}

func (c *Coinbase) ListMarkets(ctx context.Context) (map[string]struct{}, error) {
	var products []coinbaseProduct
	if err := fetchJSON(ctx, c.client, c.limiter, c.baseURL+"/products", &products); err != nil {
		return nil, err
	}

	markets := make(map[string]struct{}, len(products))
	for _, p := range products {
		if p.Status != "online" || p.TradingDisabled {
			continue
		}
		markets[p.BaseCurrency+"/"+p.QuoteCurrency] = struct{}{}
	}
	return markets, nil
}

func (c *Coinbase) FetchTicker(ctx context.Context, pair string) (api.Ticker, error) {
	url := fmt.Sprintf("%s/products/%s/ticker", c.baseURL, coinbaseSymbol(pair))
	var ticker coinbaseTicker
	if err := fetchJSON(ctx, c.client, c.limiter, url, &ticker); err != nil {
		return api.Ticker{}, err
	}
	if ticker.Price == "" {
		return api.Ticker{}, fmt.Errorf("no ticker data for %s", pair)
	}

	last, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return api.Ticker{}, fmt.Errorf("error parsing last price: %w", err)
	}
	baseVolume, err := decimal.NewFromString(ticker.Volume)
	if err != nil {
		return api.Ticker{}, fmt.Errorf("error parsing volume: %w", err)
	}
	return api.Ticker{Last: last, QuoteVolume: baseVolume.Mul(last)}, nil
}

func coinbaseSymbol(pair string) string {
	return strings.ReplaceAll(pair, "/", "-")
}
