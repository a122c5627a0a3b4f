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

type Bitget struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

type bitgetSymbolsResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		BaseCoin  string `json:"baseCoin"`
		QuoteCoin string `json:"quoteCoin"`
		Status    string `json:"status"`
	} `json:"data"`
}

type bitgetTickersResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		LastPr      string `json:"lastPr"`
		QuoteVolume string `json:"quoteVolume"`
	} `json:"data"`
}

func NewBitget(client *http.Client, limiter *rate.Limiter) *Bitget {
	return &Bitget{
		client:  client,
		baseURL: "https://api.bitget.com",
		limiter: limiter,
	}
}

func (c *Bitget) Name() string {
	return "bitget"
}

func (c *Bitget) ListMarkets(ctx context.Context) (map[string]struct{}, error) {
	var resp bitgetSymbolsResponse
	if err := fetchJSON(ctx, c.client, c.limiter, c.baseURL+"/api/v2/spot/public/symbols", &resp); err != nil {
		return nil, err
	}
	if resp.Code != "00000" {
		return nil, fmt.Errorf("bitget API error: %s %s", resp.Code, resp.Msg)
	}

	markets := make(map[string]struct{}, len(resp.Data))
	for _, s := range resp.Data {
		if s.Status != "online" {
			continue
		}
		markets[s.BaseCoin+"/"+s.QuoteCoin] = struct{}{}
	}
	return markets, nil
}

func (c *Bitget) FetchTicker(ctx context.Context, pair string) (api.Ticker, error) {
	url := fmt.Sprintf("%s/api/v2/spot/market/tickers?symbol=%s", c.baseURL, bitgetSymbol(pair))
	var resp bitgetTickersResponse
	if err := fetchJSON(ctx, c.client, c.limiter, url, &resp); err != nil {
		return api.Ticker{}, err
	}
	if resp.Code != "00000" {
		return api.Ticker{}, fmt.Errorf("bitget API error: %s %s", resp.Code, resp.Msg)
	}
	if len(resp.Data) == 0 {
		return api.Ticker{}, fmt.Errorf("no ticker data for %s", pair)
	}

	last, err := decimal.NewFromString(resp.Data[0].LastPr)
	if err != nil {
		return api.Ticker{}, fmt.Errorf("error parsing last price: %w", err)
	}
	volume, err := decimal.NewFromString(resp.Data[0].QuoteVolume)
	if err != nil {
		return api.Ticker{}, fmt.Errorf("error parsing quote volume: %w", err)
	}
	return api.Ticker{Last: last, QuoteVolume: volume}, nil
}

func bitgetSymbol(pair string) string {
	return strings.ReplaceAll(pair, "/", "")
}
