package exchanges

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"spreadwatch/api"
)

// Binance uses the official SDK rather than a hand-rolled REST client.
type Binance struct {
	client  *binance.Client
	limiter *rate.Limiter
}

func NewBinance(timeout time.Duration, limiter *rate.Limiter) *Binance {
	client := binance.NewClient("", "")
	client.HTTPClient = &http.Client{Timeout: timeout}
	return &Binance{client: client, limiter: limiter}
}

func (b *Binance) Name() string {
	return "binance"
}

func (b *Binance) ListMarkets(ctx context.Context) (map[string]struct{}, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	info, err := b.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching exchange info: %w", err)
	}

	markets := make(map[string]struct{}, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" {
			continue
		}
		markets[s.BaseAsset+"/"+s.QuoteAsset] = struct{}{}
	}
	return markets, nil
}

func (b *Binance) FetchTicker(ctx context.Context, pair string) (api.Ticker, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return api.Ticker{}, fmt.Errorf("rate limit error: %w", err)
	}

	stats, err := b.client.NewListPriceChangeStatsService().Symbol(binanceSymbol(pair)).Do(ctx)
	if err != nil {
		return api.Ticker{}, fmt.Errorf("error fetching 24h stats: %w", err)
	}
	if len(stats) == 0 {
		return api.Ticker{}, fmt.Errorf("no ticker data for %s", pair)
	}

	last, err := decimal.NewFromString(stats[0].LastPrice)
	if err != nil {
		return api.Ticker{}, fmt.Errorf("error parsing last price: %w", err)
	}
	volume, err := decimal.NewFromString(stats[0].QuoteVolume)
	if err != nil {
		return api.Ticker{}, fmt.Errorf("error parsing quote volume: %w", err)
	}
	return api.Ticker{Last: last, QuoteVolume: volume}, nil
}

func binanceSymbol(pair string) string {
	return strings.ReplaceAll(pair, "/", "")
}
