package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is a single observation of a trading pair on one exchange.
type Ticker struct {
	Last        decimal.Decimal
	QuoteVolume decimal.Decimal
}

// SnapshotSet maps an exchange name to the ticker observed for one pair
// during a polling cycle. A nil entry means the fetch failed or the
// exchange returned no data; a missing price is never coerced to zero.
type SnapshotSet map[string]*Ticker

// HasValidPrice reports whether the exchange contributed a usable last price.
func (s SnapshotSet) HasValidPrice(exchange string) bool {
	t, ok := s[exchange]
	return ok && t != nil && t.Last.IsPositive()
}

// Opportunity is a qualifying cross-exchange arbitrage, buying on
// BuyExchange and selling on the reference exchange. Simulated marks the
// illustrative placeholder returned when a cycle finds nothing real.
type Opportunity struct {
	Pair              string          `json:"pair"`
	BuyExchange       string          `json:"buy_exchange"`
	BuyPrice          decimal.Decimal `json:"buy_price"`
	SellExchange      string          `json:"sell_exchange"`
	SellPrice         decimal.Decimal `json:"sell_price"`
	ROI               decimal.Decimal `json:"roi"`
	Spread            decimal.Decimal `json:"spread"`
	AvgPrice          decimal.Decimal `json:"avg_price"`
	USDOperationValue decimal.Decimal `json:"usd_operation_value"`
	Simulated         bool            `json:"simulated,omitempty"`
}

// Transaction is an Opportunity recorded in the ledger.
type Transaction struct {
	ID string `json:"id"`
	Opportunity
	Timestamp time.Time `json:"timestamp"`
}

// Performance aggregates the full transaction history.
type Performance struct {
	TotalROI           decimal.Decimal `json:"total_roi"`
	TotalUSDOperations decimal.Decimal `json:"total_usd_operations"`
}
