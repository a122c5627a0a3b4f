// Package exchanges implements the per-exchange gateway capability: one
// REST client per configured exchange, plus a websocket-backed variant for
// binance. Every client owns its HTTP timeout and rate limiter.
package exchanges

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"spreadwatch/api"
)

// Build constructs the gateway for a configured exchange name.
func Build(name string, timeout time.Duration, rps float64, burst int) (api.Gateway, error) {
	client := &http.Client{Timeout: timeout}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	switch name {
	case "binance":
		return NewBinance(timeout, limiter), nil
	case "kraken":
		return NewKraken(client, limiter), nil
	case "coinbase":
		return NewCoinbase(client, limiter), nil
	case "kucoin":
		return NewKucoin(client, limiter), nil
	case "bitget":
		return NewBitget(client, limiter), nil
	case "bitfinex":
		return NewBitfinex(client, limiter), nil
	}
	return nil, fmt.Errorf("unknown exchange %q", name)
}

func fetchJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, url string, v any) error {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit error: %w", err)
		}
	}

	response, err := api.Get(ctx, client, url)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(response.Body)
	response.Body.Close()
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", response.StatusCode, url)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("error unmarshaling JSON: %w", err)
	}
	return nil
}

func toLowerSymbol(pair string) string {
	return strings.ToLower(strings.ReplaceAll(pair, "/", ""))
}

func splitPair(pair string) (string, string, error) {
	base, quote, ok := strings.Cut(pair, "/")
	if !ok || base == "" || quote == "" {
		return "", "", fmt.Errorf("invalid pair %q", pair)
	}
	return base, quote, nil
}
