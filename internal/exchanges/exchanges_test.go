package exchanges

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func testServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func testLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

func TestBuild_KnownAndUnknownExchanges(t *testing.T) {
	for _, name := range []string{"binance", "kraken", "coinbase", "kucoin", "bitget", "bitfinex"} {
		gw, err := Build(name, time.Second, 5, 10)
		require.NoError(t, err, name)
		assert.Equal(t, name, gw.Name())
	}

	_, err := Build("okx", time.Second, 5, 10)
	assert.Error(t, err)
}

func TestKraken_ListMarketsAndTicker(t *testing.T) {
	server := testServer(t, map[string]string{
		"/AssetPairs": `{"error":[],"result":{
			"XETHZUSD":{"wsname":"ETH/USD"},
			"ETHUSDT":{"wsname":"ETH/USDT"},
			"XXBTZUSD":{"wsname":"XBT/USD"}}}`,
		"/Ticker": `{"error":[],"result":{"ETHUSDT":{
			"c":["3000.50","0.1"],
			"v":["100.0","250.0"],
			"p":["2990.0","3001.0"]}}}`,
	})

	c := NewKraken(server.Client(), testLimiter())
	c.baseURL = server.URL

	markets, err := c.ListMarkets(context.Background())
	require.NoError(t, err)
	assert.Contains(t, markets, "ETH/USDT")
	assert.Contains(t, markets, "BTC/USD")
	assert.NotContains(t, markets, "XBT/USD")

	ticker, err := c.FetchTicker(context.Background(), "ETH/USDT")
	require.NoError(t, err)
	assert.True(t, ticker.Last.Equal(decimal.NewFromFloat(3000.50)))
	// quote volume = 24h base volume * 24h vwap
	assert.True(t, ticker.QuoteVolume.Equal(decimal.NewFromFloat(750250)), "got %s", ticker.QuoteVolume)
}

func TestKraken_APIError(t *testing.T) {
	server := testServer(t, map[string]string{
		"/Ticker": `{"error":["EQuery:Unknown asset pair"],"result":{}}`,
	})

	c := NewKraken(server.Client(), testLimiter())
	c.baseURL = server.URL

	_, err := c.FetchTicker(context.Background(), "NOPE/USDT")
	assert.ErrorContains(t, err, "Unknown asset pair")
}

func TestKucoin_ListMarketsAndTicker(t *testing.T) {
	server := testServer(t, map[string]string{
		"/api/v1/symbols": `{"code":"200000","data":[
			{"baseCurrency":"ETH","quoteCurrency":"USDT","enableTrading":true},
			{"baseCurrency":"OLD","quoteCurrency":"USDT","enableTrading":false}]}`,
		"/api/v1/market/stats": `{"code":"200000","data":{"last":"3001.2","volValue":"123456.78"}}`,
	})

	c := NewKucoin(server.Client(), testLimiter())
	c.baseURL = server.URL

	markets, err := c.ListMarkets(context.Background())
	require.NoError(t, err)
	assert.Contains(t, markets, "ETH/USDT")
	assert.NotContains(t, markets, "OLD/USDT")

	ticker, err := c.FetchTicker(context.Background(), "ETH/USDT")
	require.NoError(t, err)
	assert.True(t, ticker.Last.Equal(decimal.NewFromFloat(3001.2)))
	assert.True(t, ticker.QuoteVolume.Equal(decimal.NewFromFloat(123456.78)))
}

func TestKucoin_EmptyLastPriceIsAnError(t *testing.T) {
	server := testServer(t, map[string]string{
		"/api/v1/market/stats": `{"code":"200000","data":{"last":"","volValue":""}}`,
	})

	c := NewKucoin(server.Client(), testLimiter())
	c.baseURL = server.URL

	_, err := c.FetchTicker(context.Background(), "ETH/USDT")
	assert.ErrorContains(t, err, "no ticker data")
}

func TestCoinbase_ListMarketsAndTicker(t *testing.T) {
	server := testServer(t, map[string]string{
		"/products": `[
			{"id":"ETH-USDT","base_currency":"ETH","quote_currency":"USDT","status":"online","trading_disabled":false},
			{"id":"DEAD-USD","base_currency":"DEAD","quote_currency":"USD","status":"delisted","trading_disabled":true}]`,
		"/products/ETH-USDT/ticker": `{"price":"3000","volume":"10.5"}`,
	})

	c := NewCoinbase(server.Client(), testLimiter())
	c.baseURL = server.URL

	markets, err := c.ListMarkets(context.Background())
	require.NoError(t, err)
	assert.Contains(t, markets, "ETH/USDT")
	assert.NotContains(t, markets, "DEAD/USD")

	ticker, err := c.FetchTicker(context.Background(), "ETH/USDT")
	require.NoError(t, err)
	assert.True(t, ticker.Last.Equal(decimal.NewFromInt(3000)))
	// quote volume = base volume * last
	assert.True(t, ticker.QuoteVolume.Equal(decimal.NewFromFloat(31500)))
}

func TestBitget_ListMarketsAndTicker(t *testing.T) {
	server := testServer(t, map[string]string{
		"/api/v2/spot/public/symbols": `{"code":"00000","msg":"success","data":[
			{"baseCoin":"ETH","quoteCoin":"USDT","status":"online"},
			{"baseCoin":"GONE","quoteCoin":"USDT","status":"offline"}]}`,
		"/api/v2/spot/market/tickers": `{"code":"00000","msg":"success","data":[
			{"lastPr":"2999.9","quoteVolume":"555555.5"}]}`,
	})

	c := NewBitget(server.Client(), testLimiter())
	c.baseURL = server.URL

	markets, err := c.ListMarkets(context.Background())
	require.NoError(t, err)
	assert.Contains(t, markets, "ETH/USDT")
	assert.NotContains(t, markets, "GONE/USDT")

	ticker, err := c.FetchTicker(context.Background(), "ETH/USDT")
	require.NoError(t, err)
	assert.True(t, ticker.Last.Equal(decimal.NewFromFloat(2999.9)))
	assert.True(t, ticker.QuoteVolume.Equal(decimal.NewFromFloat(555555.5)))
}

func TestBitfinex_ListMarketsAndTicker(t *testing.T) {
	server := testServer(t, map[string]string{
		"/conf/pub:list:pair:exchange": `[["ETHUST","ETHUSD","DOGE:UST"]]`,
		"/ticker/tETHUST":              `[3000.1,10,3000.3,12,5.0,0.0016,3000.2,150.0,3050.0,2950.0]`,
	})

	c := NewBitfinex(server.Client(), testLimiter())
	c.baseURL = server.URL

	markets, err := c.ListMarkets(context.Background())
	require.NoError(t, err)
	assert.Contains(t, markets, "ETH/USDT")
	assert.Contains(t, markets, "ETH/USD")
	assert.Contains(t, markets, "DOGE/USDT")

	ticker, err := c.FetchTicker(context.Background(), "ETH/USDT")
	require.NoError(t, err)
	assert.True(t, ticker.Last.Equal(decimal.NewFromFloat(3000.2)))
	// quote volume = base volume * last
	assert.InDelta(t, 450030.0, ticker.QuoteVolume.InexactFloat64(), 0.01)
}

func TestSymbolMappings(t *testing.T) {
	assert.Equal(t, "ETHUSDT", binanceSymbol("ETH/USDT"))
	assert.Equal(t, "XBTUSD", krakenSymbol("BTC/USD"))
	assert.Equal(t, "ETH-USDT", coinbaseSymbol("ETH/USDT"))
	assert.Equal(t, "ETH-USDT", kucoinSymbol("ETH/USDT"))
	assert.Equal(t, "ETHUSDT", bitgetSymbol("ETH/USDT"))
	assert.Equal(t, "tETHUST", bitfinexSymbol("ETH/USDT"))
	assert.Equal(t, "tDOGE:UST", bitfinexSymbol("DOGE/USDT"))
	assert.Equal(t, "ethusdt", toLowerSymbol("ETH/USDT"))
}

func TestBinance_TickerViaSDK(t *testing.T) {
	server := testServer(t, map[string]string{
		"/api/v3/ticker/24hr": `{"symbol":"ETHUSDT","lastPrice":"3010.55","quoteVolume":"987654.32"}`,
		"/api/v3/exchangeInfo": `{"symbols":[
			{"symbol":"ETHUSDT","status":"TRADING","baseAsset":"ETH","quoteAsset":"USDT"},
			{"symbol":"DEADUSDT","status":"BREAK","baseAsset":"DEAD","quoteAsset":"USDT"}]}`,
	})

	b := NewBinance(time.Second, testLimiter())
	b.client.BaseURL = server.URL

	markets, err := b.ListMarkets(context.Background())
	require.NoError(t, err)
	assert.Contains(t, markets, "ETH/USDT")
	assert.NotContains(t, markets, "DEAD/USDT")

	ticker, err := b.FetchTicker(context.Background(), "ETH/USDT")
	require.NoError(t, err)
	assert.True(t, ticker.Last.Equal(decimal.NewFromFloat(3010.55)))
	assert.True(t, ticker.QuoteVolume.Equal(decimal.NewFromFloat(987654.32)))
}
