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

type Kraken struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

type krakenAssetPairsResponse struct {
	Error  []string `json:"error"`
	Result map[string]struct {
		WSName string `json:"wsname"`
	} `json:"result"`
}

type krakenTickerResponse struct {
	Error  []string `json:"error"`
	Result map[string]struct {
		C []string `json:"c"` // last trade: price, lot volume
		V []string `json:"v"` // base volume: today, last 24h
		P []string `json:"p"` // vwap: today, last 24h
	} `json:"result"`
}

func NewKraken(client *http.Client, limiter *rate.Limiter) *Kraken {
	return &Kraken{
		client:  client,
		baseURL: "https://api.kraken.com/0/public",
		limiter: limiter,
	}
}

func (c *Kraken) Name() string {
	return "kraken"
}

func (c *Kraken) ListMarkets(ctx context.Context) (map[string]struct{}, error) {
	var resp krakenAssetPairsResponse
	if err := fetchJSON(ctx, c.client, c.limiter, c.baseURL+"/AssetPairs", &resp); err != nil {
		return nil, err
	}
	if len(resp.Error) > 0 {
		return nil, fmt.Errorf("kraken API error: %s", strings.Join(resp.Error, ", "))
	}

	markets := make(map[string]struct{}, len(resp.Result))
	for _, info := range resp.Result {
		if info.WSName == "" {
			continue
		}
		// Kraken names bitcoin XBT
		markets[strings.Replace(info.WSName, "XBT/", "BTC/", 1)] = struct{}{}
	}
	return markets, nil
}

func (c *Kraken) FetchTicker(ctx context.Context, pair string) (api.Ticker, error) {
	url := fmt.Sprintf("%s/Ticker?pair=%s", c.baseURL, krakenSymbol(pair))
	var resp krakenTickerResponse
	if err := fetchJSON(ctx, c.client, c.limiter, url, &resp); err != nil {
		return api.Ticker{}, err
	}
	if len(resp.Error) > 0 {
		return api.Ticker{}, fmt.Errorf("kraken API error: %s", strings.Join(resp.Error, ", "))
	}

	// The result is keyed by kraken's internal pair name; a single pair was
	// requested so take the only entry.
	for _, info := range resp.Result {
		if len(info.C) < 1 || len(info.V) < 2 || len(info.P) < 2 {
			return api.Ticker{}, fmt.Errorf("incomplete ticker data for %s", pair)
		}
		last, err := decimal.NewFromString(info.C[0])
		if err != nil {
			return api.Ticker{}, fmt.Errorf("error parsing last price: %w", err)
		}
		baseVolume, err := decimal.NewFromString(info.V[1])
		if err != nil {
			return api.Ticker{}, fmt.Errorf("error parsing volume: %w", err)
		}
		vwap, err := decimal.NewFromString(info.P[1])
		if err != nil {
			return api.Ticker{}, fmt.Errorf("error parsing vwap: %w", err)
		}
		return api.Ticker{Last: last, QuoteVolume: baseVolume.Mul(vwap)}, nil
	}
	return api.Ticker{}, fmt.Errorf("no ticker data for %s", pair)
}

func krakenSymbol(pair string) string {
	return strings.Replace(strings.ReplaceAll(pair, "/", ""), "BTC", "XBT", 1)
}
