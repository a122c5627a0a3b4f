// Package pricefeed gathers per-exchange price snapshots for eligible pairs.
package pricefeed

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"spreadwatch/api"
	"spreadwatch/internal/telemetry"
)

type Aggregator struct {
	gateways    []api.Gateway
	timeout     time.Duration
	concurrency int
}

func NewAggregator(gateways []api.Gateway, timeout time.Duration, concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Aggregator{gateways: gateways, timeout: timeout, concurrency: concurrency}
}

// Collect queries every configured exchange's ticker for every pair, exactly
// once per (pair, exchange), with bounded concurrency and a per-call
// timeout. A failed fetch leaves a nil snapshot for that exchange only; the
// call itself never fails.
func (a *Aggregator) Collect(ctx context.Context, pairs []string) map[string]api.SnapshotSet {
	var mu sync.Mutex
	snapshots := make(map[string]api.SnapshotSet, len(pairs))
	for _, pair := range pairs {
		set := make(api.SnapshotSet, len(a.gateways))
		for _, gw := range a.gateways {
			set[gw.Name()] = nil
		}
		snapshots[pair] = set
	}

	var g errgroup.Group
	g.SetLimit(a.concurrency)

	for _, pair := range pairs {
		pair := pair
		for _, gw := range a.gateways {
			gw := gw
			g.Go(func() error {
				callCtx, cancel := context.WithTimeout(ctx, a.timeout)
				defer cancel()

				ticker, err := gw.FetchTicker(callCtx, pair)
				if err != nil {
					telemetry.FetchErrorsTotal.WithLabelValues(gw.Name(), "ticker").Inc()
					log.Error().Err(err).Str("exchange", gw.Name()).Str("pair", pair).Msg("Error fetching ticker")
					return nil
				}

				log.Info().Str("exchange", gw.Name()).Str("pair", pair).Str("last", ticker.Last.String()).Msg("Price fetched")
				mu.Lock()
				snapshots[pair][gw.Name()] = &ticker
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()

	return snapshots
}
