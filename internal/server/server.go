// Package server exposes the scan results over HTTP. Each request to the
// data endpoint triggers one full poll cycle; there is no background
// scheduler.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"spreadwatch/api"
	"spreadwatch/internal/arbitrage"
	"spreadwatch/internal/config"
	"spreadwatch/internal/eligibility"
	"spreadwatch/internal/ledger"
	"spreadwatch/internal/pricefeed"
	"spreadwatch/internal/telemetry"
)

type Server struct {
	cfg        config.ServerConfig
	pairs      []string
	filter     *eligibility.Filter
	aggregator *pricefeed.Aggregator
	engine     *arbitrage.Engine
	ledger     *ledger.Ledger
	srv        *http.Server
}

type dataResponse struct {
	Results            []api.Opportunity `json:"results"`
	Performance        api.Performance   `json:"performance"`
	TransactionHistory []api.Transaction `json:"transaction_history"`
}

func New(
	cfg config.ServerConfig,
	pairs []string,
	filter *eligibility.Filter,
	aggregator *pricefeed.Aggregator,
	engine *arbitrage.Engine,
	led *ledger.Ledger,
) *Server {
	s := &Server{
		cfg:        cfg,
		pairs:      pairs,
		filter:     filter,
		aggregator: aggregator,
		engine:     engine,
		ledger:     led,
	}
	s.srv = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: s.Handler(),
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/get_data", s.handleGetData)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.cfg.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	return mux
}

func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.cfg.ListenAddr).Msg("Starting HTTP server")
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// handleGetData runs one poll cycle and returns the qualifying
// opportunities, cumulative performance and the full transaction history.
func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	eligible := s.filter.Eligible(ctx, s.pairs)
	snapshots := s.aggregator.Collect(ctx, eligible)
	results := s.engine.Evaluate(ctx, snapshots)

	if len(results) == 0 && s.cfg.FallbackSample {
		log.Warn().Msg("No arbitrage opportunity found, substituting simulated sample")
		results = []api.Opportunity{arbitrage.SampleOpportunity()}
	}
	if results == nil {
		results = []api.Opportunity{}
	}

	history := s.ledger.Transactions()
	if history == nil {
		history = []api.Transaction{}
	}

	telemetry.CyclesTotal.Inc()
	telemetry.CycleDuration.Observe(time.Since(start).Seconds())

	s.writeJSON(w, dataResponse{
		Results:            results,
		Performance:        s.ledger.Summarize(),
		TransactionHistory: history,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}
