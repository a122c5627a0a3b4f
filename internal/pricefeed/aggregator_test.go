package pricefeed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spreadwatch/api"
)

type fakeGateway struct {
	name    string
	prices  map[string]float64
	err     error
	mu      sync.Mutex
	fetches map[string]int
}

func newFakeGateway(name string, prices map[string]float64, err error) *fakeGateway {
	return &fakeGateway{name: name, prices: prices, err: err, fetches: make(map[string]int)}
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) ListMarkets(ctx context.Context) (map[string]struct{}, error) {
	return nil, errors.New("not implemented")
}

func (g *fakeGateway) FetchTicker(ctx context.Context, pair string) (api.Ticker, error) {
	g.mu.Lock()
	g.fetches[pair]++
	g.mu.Unlock()

	if g.err != nil {
		return api.Ticker{}, g.err
	}
	price, ok := g.prices[pair]
	if !ok {
		return api.Ticker{}, errors.New("unknown pair")
	}
	return api.Ticker{Last: decimal.NewFromFloat(price), QuoteVolume: decimal.NewFromInt(1000)}, nil
}

func TestCollect_AllExchangesKeyed(t *testing.T) {
	a := newFakeGateway("binance", map[string]float64{"ETH/USDT": 3020}, nil)
	b := newFakeGateway("kraken", map[string]float64{"ETH/USDT": 3000}, nil)

	agg := NewAggregator([]api.Gateway{a, b}, time.Second, 4)
	snapshots := agg.Collect(context.Background(), []string{"ETH/USDT"})

	require.Contains(t, snapshots, "ETH/USDT")
	set := snapshots["ETH/USDT"]
	require.NotNil(t, set["binance"])
	require.NotNil(t, set["kraken"])
	assert.True(t, set["binance"].Last.Equal(decimal.NewFromInt(3020)))
	assert.True(t, set["kraken"].Last.Equal(decimal.NewFromInt(3000)))
}

func TestCollect_FailureLeavesAbsentSnapshot(t *testing.T) {
	a := newFakeGateway("binance", map[string]float64{"ETH/USDT": 3020}, nil)
	b := newFakeGateway("kraken", nil, errors.New("timeout"))

	agg := NewAggregator([]api.Gateway{a, b}, time.Second, 4)
	snapshots := agg.Collect(context.Background(), []string{"ETH/USDT"})

	set := snapshots["ETH/USDT"]
	require.NotNil(t, set["binance"])
	assert.Nil(t, set["kraken"])
	assert.False(t, set.HasValidPrice("kraken"))
}

func TestCollect_AllFailuresStillReturnsSet(t *testing.T) {
	a := newFakeGateway("binance", nil, errors.New("down"))
	b := newFakeGateway("kraken", nil, errors.New("down"))

	agg := NewAggregator([]api.Gateway{a, b}, time.Second, 4)
	snapshots := agg.Collect(context.Background(), []string{"ETH/USDT"})

	set := snapshots["ETH/USDT"]
	assert.Len(t, set, 2)
	assert.Nil(t, set["binance"])
	assert.Nil(t, set["kraken"])
}

func TestCollect_QueriesEachExchangeOncePerPair(t *testing.T) {
	prices := map[string]float64{"ETH/USDT": 3000, "LTC/USDT": 80}
	a := newFakeGateway("binance", prices, nil)
	b := newFakeGateway("kraken", prices, nil)

	agg := NewAggregator([]api.Gateway{a, b}, time.Second, 2)
	agg.Collect(context.Background(), []string{"ETH/USDT", "LTC/USDT"})

	for _, g := range []*fakeGateway{a, b} {
		assert.Equal(t, 1, g.fetches["ETH/USDT"], "%s ETH fetches", g.name)
		assert.Equal(t, 1, g.fetches["LTC/USDT"], "%s LTC fetches", g.name)
	}
}
