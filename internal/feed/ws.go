package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/observability"
	"fx-signal-lab/internal/pkgid"
)

// WSConfig configures the websocket source.
type WSConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the exponential backoff between attempts.
	MaxReconnectDelay time.Duration
	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration
	// ReadTimeout is the per-message read deadline.
	ReadTimeout time.Duration
}

// DefaultWSConfig returns the default websocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		ReadTimeout:       60 * time.Second,
	}
}

// wsPayload is the wire shape of one feed message. The bridge pushing
// market data speaks this shape; no broker protocol is implemented here.
type wsPayload struct {
	Symbol    string   `json:"symbol"`
	Timeframe int      `json:"timeframe"`
	Period    int      `json:"period"`
	Currency  int      `json:"currency"`
	Value     *float64 `json:"value,omitempty"`
	Bar       *wsBar   `json:"bar,omitempty"`
	TimeMs    int64    `json:"time_ms"`
}

type wsBar struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// WSSource reads raw updates from a websocket endpoint, reconnecting with
// exponential backoff when the connection drops.
type WSSource struct {
	endpoint string
	config   WSConfig
	logger   *slog.Logger
}

// NewWSSource creates a websocket source for the endpoint. A nil config
// uses DefaultWSConfig.
func NewWSSource(endpoint string, config *WSConfig, logger *slog.Logger) *WSSource {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WSSource{endpoint: endpoint, config: cfg, logger: logger}
}

// Subscribe dials the endpoint and returns a channel of updates. The first
// dial failing is an error; later drops reconnect transparently. The
// channel is closed when the context is cancelled.
func (s *WSSource) Subscribe(ctx context.Context) (<-chan domain.RawUpdate, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed dial %s: %w", s.endpoint, err)
	}

	out := make(chan domain.RawUpdate, 100)
	go s.readLoop(ctx, conn, out)
	return out, nil
}

func (s *WSSource) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: s.config.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	return conn, err
}

func (s *WSSource) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- domain.RawUpdate) {
	defer close(out)
	delay := s.config.ReconnectDelay

	for {
		if ctx.Err() != nil {
			conn.Close()
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			next, reErr := s.reconnect(ctx, &delay)
			if reErr != nil {
				return
			}
			conn = next
			continue
		}
		delay = s.config.ReconnectDelay

		update, err := decodePayload(data)
		if err != nil {
			s.logger.Warn("feed: dropping malformed payload", "error", err)
			continue
		}

		select {
		case out <- update:
		case <-ctx.Done():
			conn.Close()
			return
		}
	}
}

// reconnect retries the dial with exponential backoff until it succeeds or
// the context is cancelled. The delay pointer carries backoff state across
// calls within one read loop.
func (s *WSSource) reconnect(ctx context.Context, delay *time.Duration) (*websocket.Conn, error) {
	for {
		s.logger.Warn("feed: connection lost, reconnecting", "endpoint", s.endpoint, "delay", *delay)
		select {
		case <-time.After(*delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		if *delay < s.config.MaxReconnectDelay {
			*delay *= 2
			if *delay > s.config.MaxReconnectDelay {
				*delay = s.config.MaxReconnectDelay
			}
		}

		conn, err := s.dial(ctx)
		if err == nil {
			observability.RecordReconnect()
			s.logger.Info("feed: reconnected", "endpoint", s.endpoint)
			return conn, nil
		}
	}
}

// decodePayload converts one wire message into a raw update.
func decodePayload(data []byte) (domain.RawUpdate, error) {
	var p wsPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.RawUpdate{}, err
	}
	if p.Symbol == "" {
		return domain.RawUpdate{}, fmt.Errorf("payload missing symbol")
	}
	if p.Value == nil && p.Bar == nil {
		return domain.RawUpdate{}, fmt.Errorf("payload for %s carries neither value nor bar", p.Symbol)
	}

	u := domain.RawUpdate{
		Symbol:    p.Symbol,
		Timeframe: pkgid.Timeframe(p.Timeframe),
		Period:    pkgid.Period(p.Period),
		Currency:  pkgid.Currency(p.Currency),
		Value:     p.Value,
		Time:      time.UnixMilli(p.TimeMs).UTC(),
	}
	if p.Bar != nil {
		u.Bar = &domain.Bar{
			Time:  u.Time,
			Open:  p.Bar.Open,
			High:  p.Bar.High,
			Low:   p.Bar.Low,
			Close: p.Bar.Close,
		}
	}
	return u, nil
}
