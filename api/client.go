package api

import (
	"context"
	"fmt"
	"net/http"
)

// Gateway is the per-exchange capability consumed by the scanner: list the
// tradable markets and fetch a ticker for a pair. Both calls are fallible
// and independently rate limited per exchange.
type Gateway interface {
	Name() string
	// ListMarkets returns the pairs tradable on the exchange, keyed by the
	// canonical "BASE/QUOTE" form.
	ListMarkets(ctx context.Context) (map[string]struct{}, error)
	FetchTicker(ctx context.Context, pair string) (Ticker, error)
}

func Get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("there was an error %w", err)
	}
	response, err := client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("there was an error %w", err)
	}
	return response, nil
}
