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

type Kucoin struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

type kucoinSymbolsResponse struct {
	Code string `json:"code"`
	Data []struct {
		BaseCurrency  string `json:"baseCurrency"`
		QuoteCurrency string `json:"quoteCurrency"`
		EnableTrading bool   `json:"enableTrading"`
	} `json:"data"`
}

type kucoinStatsResponse struct {
	Code string `json:"code"`
	Data struct {
		Last     string `json:"last"`
		VolValue string `json:"volValue"` // 24h quote volume
	} `json:"data"`
}

func NewKucoin(client *http.Client, limiter *rate.Limiter) *Kucoin {
	return &Kucoin{
		client:  client,
		baseURL: "https://api.kucoin.com",
		limiter: limiter,
	}
}

func (c *Kucoin) Name() string {
	return "kucoin"
}

func (c *Kucoin) ListMarkets(ctx context.Context) (map[string]struct{}, error) {
	var resp kucoinSymbolsResponse
	if err := fetchJSON(ctx, c.client, c.limiter, c.baseURL+"/api/v1/symbols", &resp); err != nil {
		return nil, err
	}
	if resp.Code != "200000" {
		return nil, fmt.Errorf("kucoin API error: code %s", resp.Code)
	}

	markets := make(map[string]struct{}, len(resp.Data))
	for _, s := range resp.Data {
		if !s.EnableTrading {
			continue
		}
		markets[s.BaseCurrency+"/"+s.QuoteCurrency] = struct{}{}
	}
	return markets, nil
}

func (c *Kucoin) FetchTicker(ctx context.Context, pair string) (api.Ticker, error) {
	url := fmt.Sprintf("%s/api/v1/market/stats?symbol=%s", c.baseURL, kucoinSymbol(pair))
	var resp kucoinStatsResponse
	if err := fetchJSON(ctx, c.client, c.limiter, url, &resp); err != nil {
		return api.Ticker{}, err
	}
	if resp.Code != "200000" {
		return api.Ticker{}, fmt.Errorf("kucoin API error: code %s", resp.Code)
	}
	if resp.Data.Last == "" {
		return api.Ticker{}, fmt.Errorf("no ticker data for %s", pair)
	}

	last, err := decimal.NewFromString(resp.Data.Last)
	if err != nil {
		return api.Ticker{}, fmt.Errorf("error parsing last price: %w", err)
	}
	volume, err := decimal.NewFromString(resp.Data.VolValue)
	if err != nil {
		return api.Ticker{}, fmt.Errorf("error parsing quote volume: %w", err)
	}
	return api.Ticker{Last: last, QuoteVolume: volume}, nil
}

func kucoinSymbol(pair string) string {
	return strings.ReplaceAll(pair, "/", "-")
}
