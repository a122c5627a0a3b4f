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

type Bitfinex struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

func NewBitfinex(client *http.Client, limiter *rate.Limiter) *Bitfinex {
	return &Bitfinex{
		client:  client,
		baseURL: "https://api-pub.bitfinex.com/v2",
		limiter: limiter,
	}
}

func (c *Bitfinex) Name() string {
	return "bitfinex"
}

func (c *Bitfinex) ListMarkets(ctx context.Context) (map[string]struct{}, error) {
	// Response shape: [["ETHUSD","ETHUST","DOGE:USD",...]]
	var resp [][]string
	if err := fetchJSON(ctx, c.client, c.limiter, c.baseURL+"/conf/pub:list:pair:exchange", &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, fmt.Errorf("bitfinex returned no pair list")
	}

	markets := make(map[string]struct{}, len(resp[0]))
	for _, symbol := range resp[0] {
		base, quote, ok := bitfinexSplit(symbol)
		if !ok {
			continue
		}
		markets[base+"/"+quote] = struct{}{}
	}
	return markets, nil
}

func (c *Bitfinex) FetchTicker(ctx context.Context, pair string) (api.Ticker, error) {
	url := fmt.Sprintf("%s/ticker/%s", c.baseURL, bitfinexSymbol(pair))
	// Flat array: [BID, BID_SIZE, ASK, ASK_SIZE, DAILY_CHANGE,
	// DAILY_CHANGE_RELATIVE, LAST_PRICE, VOLUME, HIGH, LOW]
	var fields []float64
	if err := fetchJSON(ctx, c.client, c.limiter, url, &fields); err != nil {
		return api.Ticker{}, err
	}
	if len(fields) < 8 {
		return api.Ticker{}, fmt.Errorf("incomplete ticker data for %s", pair)
	}

	last := decimal.NewFromFloat(fields[6])
	baseVolume := decimal.NewFromFloat(fields[7])
	return api.Ticker{Last: last, QuoteVolume: baseVolume.Mul(last)}, nil
}

// Bitfinex calls USDT "UST" and joins long base names with a colon
// ("tDOGE:UST"); three-letter bases concatenate directly ("tETHUST").
func bitfinexSymbol(pair string) string {
	base, quote, err := splitPair(pair)
	if err != nil {
		return "t" + strings.ReplaceAll(pair, "/", "")
	}
	if quote == "USDT" {
		quote = "UST"
	}
	if len(base) > 3 {
		return "t" + base + ":" + quote
	}
	return "t" + base + quote
}

func bitfinexSplit(symbol string) (string, string, bool) {
	var base, quote string
	if b, q, ok := strings.Cut(symbol, ":"); ok {
		base, quote = b, q
	} else {
		if len(symbol) < 6 {
			return "", "", false
		}
		base, quote = symbol[:3], symbol[3:]
	}
	if quote == "UST" {
		quote = "USDT"
	}
	return base, quote, true
}
