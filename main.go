package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"spreadwatch/api"
	"spreadwatch/internal/arbitrage"
	"spreadwatch/internal/config"
	"spreadwatch/internal/eligibility"
	"spreadwatch/internal/exchanges"
	"spreadwatch/internal/ledger"
	"spreadwatch/internal/pricefeed"
	"spreadwatch/internal/server"
	"spreadwatch/internal/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		utils.InitLogging("info")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	utils.InitLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	timeout := time.Duration(cfg.Exchanges.RequestTimeoutSec) * time.Second
	gateways, err := buildGateways(ctx, cfg, timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build exchange gateways")
	}

	unsupported := eligibility.NewUnsupportedPairs()
	led := ledger.New()

	filter := eligibility.NewFilter(gateways, unsupported)
	aggregator := pricefeed.NewAggregator(gateways, timeout, cfg.Exchanges.Concurrency)
	engine := arbitrage.NewEngine(arbitrage.Config{
		ReferenceExchange: cfg.Exchanges.Reference,
		MinProfitMargin:   decimal.NewFromFloat(cfg.Trading.MinProfitMargin),
		TransactionFee:    decimal.NewFromFloat(cfg.Trading.TransactionFee),
		Slippage:          decimal.NewFromFloat(cfg.Trading.Slippage),
		FixedInvestment:   decimal.NewFromFloat(cfg.Trading.FixedInvestment),
	}, cfg.Exchanges.Names, led)

	srv := server.New(cfg.Server, cfg.Pairs, filter, aggregator, engine, led)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	utils.WaitForShutdownSignal(cancel)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down HTTP server")
	}
	log.Info().Msg("Shutdown complete")
}

// buildGateways constructs one gateway per configured exchange, preserving
// the configured order. When the binance stream is enabled the REST
// gateway is wrapped with the live miniTicker cache.
func buildGateways(ctx context.Context, cfg *config.Config, timeout time.Duration) ([]api.Gateway, error) {
	gateways := make([]api.Gateway, 0, len(cfg.Exchanges.Names))
	for _, name := range cfg.Exchanges.Names {
		gw, err := exchanges.Build(name, timeout, cfg.Exchanges.RateLimitPerSec, cfg.Exchanges.RateLimitBurst)
		if err != nil {
			return nil, err
		}

		if name == "binance" && cfg.Exchanges.BinanceStream {
			stream := exchanges.NewBinanceStream(gw, timeout)
			go stream.Run(ctx, cfg.Pairs)
			gw = stream
		}
		gateways = append(gateways, gw)
	}
	return gateways, nil
}
