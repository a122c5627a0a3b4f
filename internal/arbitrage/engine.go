// Package arbitrage computes cross-exchange opportunities from aggregated
// price snapshots. The sell side is pinned to the reference exchange; the
// buy side is the cheapest other exchange with a valid price.
package arbitrage

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"spreadwatch/api"
	"spreadwatch/internal/ledger"
	"spreadwatch/internal/telemetry"
)

var hundred = decimal.NewFromInt(100)

// Config holds the cost model and qualification parameters, all expressed
// as decimal fractions except FixedInvestment (USD notional).
type Config struct {
	ReferenceExchange string
	MinProfitMargin   decimal.Decimal
	TransactionFee    decimal.Decimal
	Slippage          decimal.Decimal
	FixedInvestment   decimal.Decimal
}

type Engine struct {
	cfg Config
	// exchangeOrder is the configured exchange order. Buy-side ties on the
	// minimum price resolve to the earliest exchange in this slice, keeping
	// evaluation deterministic for identical input.
	exchangeOrder []string
	ledger        *ledger.Ledger
	now           func() time.Time
}

func NewEngine(cfg Config, exchangeOrder []string, led *ledger.Ledger) *Engine {
	return &Engine{
		cfg:           cfg,
		exchangeOrder: exchangeOrder,
		ledger:        led,
		now:           time.Now,
	}
}

// Evaluate computes opportunities for every pair in the snapshot map and
// returns the qualifying ones. Each qualifying opportunity is also appended
// to the ledger as a timestamped transaction: the return value serves the
// current response, the ledger serves cumulative metrics.
func (e *Engine) Evaluate(ctx context.Context, snapshots map[string]api.SnapshotSet) []api.Opportunity {
	pairs := make([]string, 0, len(snapshots))
	for pair := range snapshots {
		pairs = append(pairs, pair)
	}
	sort.Strings(pairs)

	var results []api.Opportunity
	for _, pair := range pairs {
		if ctx.Err() != nil {
			break
		}
		if opp, ok := e.evaluatePair(pair, snapshots[pair]); ok {
			results = append(results, opp)
			e.record(opp)
		}
	}
	return results
}

func (e *Engine) evaluatePair(pair string, set api.SnapshotSet) (api.Opportunity, bool) {
	if !set.HasValidPrice(e.cfg.ReferenceExchange) {
		log.Warn().Str("pair", pair).Str("reference", e.cfg.ReferenceExchange).Msg("Pair has no valid reference exchange price")
		return api.Opportunity{}, false
	}
	sellPrice := set[e.cfg.ReferenceExchange].Last

	buyExchange, buyPrice, ok := e.cheapestOther(set)
	if !ok {
		log.Warn().Str("pair", pair).Msg("Pair has no valid price outside the reference exchange")
		return api.Opportunity{}, false
	}

	costFactor := e.cfg.TransactionFee.Add(e.cfg.Slippage)
	adjustedBuy := buyPrice.Mul(decimal.NewFromInt(1).Add(costFactor))
	adjustedSell := sellPrice.Mul(decimal.NewFromInt(1).Sub(costFactor))

	roi := decimal.Zero
	if adjustedBuy.IsPositive() {
		roi = adjustedSell.Sub(adjustedBuy).Div(adjustedBuy).Mul(hundred)
	}

	avgPrice := e.averageValidPrice(set)
	spread := decimal.Zero
	if avgPrice.IsPositive() {
		spread = sellPrice.Sub(buyPrice).Div(avgPrice).Mul(hundred)
	}

	log.Info().
		Str("pair", pair).
		Str("buy_exchange", buyExchange).
		Str("buy_price", buyPrice.String()).
		Str("sell_exchange", e.cfg.ReferenceExchange).
		Str("sell_price", sellPrice.String()).
		Str("roi_pct", roi.StringFixed(4)).
		Str("spread_pct", spread.StringFixed(4)).
		Msg("Pair evaluated")

	minMarginPct := e.cfg.MinProfitMargin.Mul(hundred)
	if roi.LessThan(minMarginPct) {
		return api.Opportunity{}, false
	}

	usdValue := e.cfg.FixedInvestment.Mul(decimal.NewFromInt(1).Add(roi.Div(hundred)))
	return api.Opportunity{
		Pair:              pair,
		BuyExchange:       buyExchange,
		BuyPrice:          buyPrice,
		SellExchange:      e.cfg.ReferenceExchange,
		SellPrice:         sellPrice,
		ROI:               roi,
		Spread:            spread,
		AvgPrice:          avgPrice,
		USDOperationValue: usdValue,
	}, true
}

// cheapestOther picks the non-reference exchange with the minimum valid
// last price. Iteration follows the configured exchange order, so the
// first strict minimum wins ties.
func (e *Engine) cheapestOther(set api.SnapshotSet) (string, decimal.Decimal, bool) {
	var (
		bestExchange string
		bestPrice    decimal.Decimal
		found        bool
	)
	for _, name := range e.exchangeOrder {
		if name == e.cfg.ReferenceExchange || !set.HasValidPrice(name) {
			continue
		}
		price := set[name].Last
		if !found || price.LessThan(bestPrice) {
			bestExchange, bestPrice, found = name, price, true
		}
	}
	return bestExchange, bestPrice, found
}

// averageValidPrice is the arithmetic mean over every exchange with a valid
// last price, reference included.
func (e *Engine) averageValidPrice(set api.SnapshotSet) decimal.Decimal {
	sum := decimal.Zero
	count := 0
	for _, name := range e.exchangeOrder {
		if set.HasValidPrice(name) {
			sum = sum.Add(set[name].Last)
			count++
		}
	}
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(count)))
}

func (e *Engine) record(opp api.Opportunity) {
	e.ledger.Append(api.Transaction{
		ID:          uuid.NewString(),
		Opportunity: opp,
		Timestamp:   e.now(),
	})
	telemetry.OpportunitiesTotal.Inc()
	telemetry.LedgerSize.Set(float64(e.ledger.Len()))
}

// SampleOpportunity is the illustrative placeholder substituted when a
// cycle qualifies nothing real. It is always marked Simulated so callers
// can tell it apart from live data, and it is never written to the ledger.
func SampleOpportunity() api.Opportunity {
	return api.Opportunity{
		Pair:              "ETH/USDT",
		BuyExchange:       "kraken",
		BuyPrice:          decimal.NewFromFloat(3000.0),
		SellExchange:      "binance",
		SellPrice:         decimal.NewFromFloat(3020.0),
		ROI:               decimal.NewFromFloat(0.67),
		Spread:            decimal.NewFromFloat(0.45),
		AvgPrice:          decimal.NewFromFloat(3010.0),
		USDOperationValue: decimal.NewFromFloat(100.67),
		Simulated:         true,
	}
}
