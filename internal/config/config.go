// Package config handles configuration loading with defaults and validation.
package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config is the complete startup configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Trading   TradingConfig   `yaml:"trading"`
	Exchanges ExchangesConfig `yaml:"exchanges"`
	Pairs     []string        `yaml:"pairs"`
	LogLevel  string          `yaml:"log_level"`
}

// ServerConfig contains the query endpoint settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// FallbackSample substitutes one marked illustrative opportunity when a
	// cycle qualifies nothing, so callers always see a non-empty result list.
	FallbackSample bool `yaml:"fallback_sample"`
	EnableMetrics  bool `yaml:"enable_metrics"`
}

// TradingConfig contains the cost model and qualification parameters.
type TradingConfig struct {
	MinProfitMargin float64 `yaml:"min_profit_margin"` // fraction, 0.002 = 0.2%
	TransactionFee  float64 `yaml:"transaction_fee"`   // fraction per application
	Slippage        float64 `yaml:"slippage"`          // fraction per application
	FixedInvestment float64 `yaml:"fixed_investment"`  // USD notional per simulated operation
}

// ExchangesConfig contains the configured exchange set. Names is ordered:
// the order is the deterministic tie-break for buy-side selection.
type ExchangesConfig struct {
	Names             []string `yaml:"names"`
	Reference         string   `yaml:"reference"`
	RequestTimeoutSec int      `yaml:"request_timeout_sec"`
	RateLimitPerSec   float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst    int      `yaml:"rate_limit_burst"`
	BinanceStream     bool     `yaml:"binance_stream"`
	Concurrency       int      `yaml:"concurrency"`
}

// DefaultConfig returns the configuration matching the reference behavior.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:     ":8080",
			FallbackSample: true,
			EnableMetrics:  true,
		},
		Trading: TradingConfig{
			MinProfitMargin: 0.002,
			TransactionFee:  0.001,
			Slippage:        0.0005,
			FixedInvestment: 100,
		},
		Exchanges: ExchangesConfig{
			Names:             []string{"binance", "kraken", "coinbase", "kucoin", "bitget", "bitfinex"},
			Reference:         "binance",
			RequestTimeoutSec: 10,
			RateLimitPerSec:   5,
			RateLimitBurst:    10,
			BinanceStream:     false,
			Concurrency:       8,
		},
		Pairs: []string{
			"ETH/USDT", "XRP/USDT", "ADA/USDT", "NEAR/USDT",
			"TRON/USDT", "DOT/USDT", "AVAX/USDT", "TON/USDT",
			"ENA/USDT", "AAVE/USDT", "LTC/USDT", "APT/USDT",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Exchanges.Names) < 2 {
		return fmt.Errorf("config: at least 2 exchanges are required, got %d", len(c.Exchanges.Names))
	}
	if !slices.Contains(c.Exchanges.Names, c.Exchanges.Reference) {
		return fmt.Errorf("config: reference exchange %q is not in the configured exchange list", c.Exchanges.Reference)
	}
	if len(c.Pairs) == 0 {
		return fmt.Errorf("config: no candidate pairs configured")
	}
	if c.Trading.TransactionFee < 0 || c.Trading.Slippage < 0 {
		return fmt.Errorf("config: transaction_fee and slippage must be non-negative")
	}
	if c.Trading.TransactionFee+c.Trading.Slippage >= 1 {
		return fmt.Errorf("config: transaction_fee + slippage must be below 1")
	}
	if c.Trading.FixedInvestment <= 0 {
		return fmt.Errorf("config: fixed_investment must be positive")
	}
	if c.Exchanges.RequestTimeoutSec <= 0 {
		return fmt.Errorf("config: request_timeout_sec must be positive")
	}
	if c.Exchanges.Concurrency <= 0 {
		return fmt.Errorf("config: concurrency must be positive")
	}
	return nil
}
