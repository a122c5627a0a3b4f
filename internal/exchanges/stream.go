package exchanges

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"spreadwatch/api"
	"spreadwatch/internal/messagetracker"
)

const (
	binanceWSURL     = "wss://stream.binance.com:9443/ws"
	streamPingPeriod = time.Minute
	staleCheckPeriod = 5 * time.Minute
	reconnectDelay   = 5 * time.Second
)

// BinanceStream keeps a live last-price cache fed by binance's miniTicker
// websocket stream. It implements the same gateway capability as the REST
// client and delegates to it for market lists and whenever the cached
// entry is missing or too old.
type BinanceStream struct {
	rest    api.Gateway
	url     string
	conn    *websocket.Conn
	tracker *messagetracker.MessageTracker
	maxAge  time.Duration

	mu      sync.RWMutex
	tickers map[string]streamEntry // keyed by exchange symbol, e.g. ETHUSDT
}

type streamEntry struct {
	ticker api.Ticker
	at     time.Time
}

type binanceWSRequest struct {
	ID     int         `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params"`
}

type binanceMiniTicker struct {
	EventType   string `json:"e"`
	Symbol      string `json:"s"`
	ClosePrice  string `json:"c"`
	QuoteVolume string `json:"q"`
}

func NewBinanceStream(rest api.Gateway, maxAge time.Duration) *BinanceStream {
	return &BinanceStream{
		rest:    rest,
		url:     binanceWSURL,
		tracker: messagetracker.New("binance", maxAge),
		maxAge:  maxAge,
		tickers: make(map[string]streamEntry),
	}
}

func (s *BinanceStream) Name() string {
	return "binance"
}

func (s *BinanceStream) ListMarkets(ctx context.Context) (map[string]struct{}, error) {
	return s.rest.ListMarkets(ctx)
}

// FetchTicker serves from the live cache when the entry is fresh and the
// feed is alive, otherwise falls back to the REST gateway.
func (s *BinanceStream) FetchTicker(ctx context.Context, pair string) (api.Ticker, error) {
	symbol := binanceSymbol(pair)

	s.mu.RLock()
	entry, ok := s.tickers[symbol]
	s.mu.RUnlock()

	if ok && !s.tracker.Stale() && time.Since(entry.at) <= s.maxAge {
		return entry.ticker, nil
	}
	return s.rest.FetchTicker(ctx, pair)
}

// Run connects, subscribes and reads until the context is cancelled,
// reconnecting after errors. Stream failures only cost cache freshness;
// FetchTicker keeps working through the REST fallback.
func (s *BinanceStream) Run(ctx context.Context, pairs []string) {
	for {
		select {
		case <-ctx.Done():
			s.disconnect()
			return
		default:
			log.Info().Str("exchange", s.Name()).Msg("Connecting to ticker stream")
			if err := s.connect(ctx); err != nil {
				log.Error().Err(err).Str("exchange", s.Name()).Msg("Failed to connect")
				s.sleep(ctx, reconnectDelay)
				continue
			}
			if err := s.subscribe(pairs); err != nil {
				log.Error().Err(err).Str("exchange", s.Name()).Msg("Failed to subscribe")
				s.disconnect()
				s.sleep(ctx, reconnectDelay)
				continue
			}
			if err := s.readMessages(ctx); err != nil {
				log.Error().Err(err).Str("exchange", s.Name()).Msg("Error reading stream")
				s.disconnect()
			}
		}
	}
}

func (s *BinanceStream) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("error connecting to binance WebSocket: %w", err)
	}
	s.conn = conn
	return nil
}

func (s *BinanceStream) disconnect() {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

func (s *BinanceStream) subscribe(pairs []string) error {
	streamParams := make([]string, len(pairs))
	for i, pair := range pairs {
		streamParams[i] = fmt.Sprintf("%s@miniTicker", toLowerSymbol(pair))
	}

	subscribeReq := binanceWSRequest{
		ID:     time.Now().Nanosecond(),
		Method: "SUBSCRIBE",
		Params: streamParams,
	}
	if err := s.conn.WriteJSON(subscribeReq); err != nil {
		return fmt.Errorf("error subscribing to miniTicker streams: %w", err)
	}
	log.Info().Str("exchange", s.Name()).Int("streams", len(streamParams)).Msg("Subscribed to miniTicker streams")
	return nil
}

func (s *BinanceStream) readMessages(ctx context.Context) error {
	staleTicker := time.NewTicker(staleCheckPeriod)
	defer staleTicker.Stop()

	pingTicker := time.NewTicker(streamPingPeriod)
	defer pingTicker.Stop()

	readChan := make(chan []byte)
	errChan := make(chan error)

	go func() {
		for {
			_, message, err := s.conn.ReadMessage()
			if err != nil {
				errChan <- err
				return
			}
			select {
			case readChan <- message:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-staleTicker.C:
			s.tracker.CheckStaleConnection()
		case <-pingTicker.C:
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("error sending ping: %w", err)
			}
		case err := <-errChan:
			return fmt.Errorf("error reading message: %w", err)
		case message := <-readChan:
			s.tracker.RecordMessage()
			if err := s.handleMessage(message); err != nil {
				log.Error().Err(err).Str("exchange", s.Name()).Msg("Error handling message")
			}
		}
	}
}

func (s *BinanceStream) handleMessage(message []byte) error {
	var event binanceMiniTicker
	if err := json.Unmarshal(message, &event); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	// Subscription acks and other control frames have no event type.
	if event.EventType != "24hrMiniTicker" || event.Symbol == "" {
		return nil
	}

	last, err := decimal.NewFromString(event.ClosePrice)
	if err != nil {
		return fmt.Errorf("error parsing close price: %w", err)
	}
	volume, err := decimal.NewFromString(event.QuoteVolume)
	if err != nil {
		return fmt.Errorf("error parsing quote volume: %w", err)
	}

	s.mu.Lock()
	s.tickers[event.Symbol] = streamEntry{
		ticker: api.Ticker{Last: last, QuoteVolume: volume},
		at:     time.Now(),
	}
	s.mu.Unlock()
	return nil
}

func (s *BinanceStream) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
