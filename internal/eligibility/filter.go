// Package eligibility decides which candidate pairs are worth pricing: a
// pair qualifies when at least two configured exchanges list it.
package eligibility

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"spreadwatch/api"
	"spreadwatch/internal/telemetry"
)

const minListings = 2

type Filter struct {
	gateways    []api.Gateway
	unsupported *UnsupportedPairs
}

func NewFilter(gateways []api.Gateway, unsupported *UnsupportedPairs) *Filter {
	return &Filter{gateways: gateways, unsupported: unsupported}
}

// Eligible returns the candidates listed on at least two exchanges, in the
// same relative order as the input. Pairs already memoized as unsupported
// are skipped without any exchange query; newly ineligible pairs are added
// to the unsupported set as a side effect.
func (f *Filter) Eligible(ctx context.Context, pairs []string) []string {
	var candidates []string
	for _, pair := range pairs {
		if f.unsupported.Contains(pair) {
			continue
		}
		candidates = append(candidates, pair)
	}
	if len(candidates) == 0 {
		return nil
	}

	markets := f.loadMarkets(ctx)

	var eligible []string
	for _, pair := range candidates {
		var listedOn []string
		for _, gw := range f.gateways {
			if m := markets[gw.Name()]; m != nil {
				if _, ok := m[pair]; ok {
					listedOn = append(listedOn, gw.Name())
				}
			}
		}
		if len(listedOn) >= minListings {
			log.Info().Str("pair", pair).Strs("exchanges", listedOn).Msg("Pair supported")
			eligible = append(eligible, pair)
		} else {
			log.Warn().Str("pair", pair).Msg("Pair not supported by at least 2 exchanges")
			f.unsupported.Add(pair)
		}
	}

	telemetry.UnsupportedPairs.Set(float64(f.unsupported.Len()))
	log.Info().Strs("pairs", eligible).Msg("Supported pairs")
	return eligible
}

// loadMarkets fetches every exchange's market list once for this run. A
// failed fetch degrades that exchange to "lists nothing" for the run.
func (f *Filter) loadMarkets(ctx context.Context) map[string]map[string]struct{} {
	var mu sync.Mutex
	markets := make(map[string]map[string]struct{}, len(f.gateways))

	g, ctx := errgroup.WithContext(ctx)
	for _, gw := range f.gateways {
		gw := gw
		g.Go(func() error {
			m, err := gw.ListMarkets(ctx)
			if err != nil {
				telemetry.FetchErrorsTotal.WithLabelValues(gw.Name(), "markets").Inc()
				log.Error().Err(err).Str("exchange", gw.Name()).Msg("Error loading markets")
				return nil
			}
			mu.Lock()
			markets[gw.Name()] = m
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return markets
}
