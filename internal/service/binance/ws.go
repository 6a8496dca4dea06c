package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"CandlePull/internal/domain/models"
	applogger "CandlePull/pkg/logger"

	"github.com/gorilla/websocket"
)

// ErrUnavailable is surfaced after repeated failed handshakes in fail-fast
// mode, so the supervisor can distinguish "down" from "flaky".
var ErrUnavailable = errors.New("binance websocket unavailable")

const (
	defaultWSURL         = "wss://stream.binance.com:9443/ws"
	handshakeTimeout     = 10 * time.Second
	pingInterval         = 20 * time.Second
	readTimeout          = 60 * time.Second
	maxRetryDelay        = 60 * time.Second
	maxHandshakeFailures = 3
)

// WSStreamer streams finalised 1m klines from a single multiplexed Binance
// WebSocket connection.
type WSStreamer struct {
	baseURL  string
	symbols  []string // lowercase
	failFast bool
	l        *applogger.Logger
}

// NewWSStreamer creates a WS streamer for the given symbols. With failFast
// set, three consecutive failed handshakes terminate the stream with
// ErrUnavailable instead of retrying forever.
func NewWSStreamer(baseURL string, symbols []string, failFast bool, l *applogger.Logger) *WSStreamer {
	if baseURL == "" {
		baseURL = defaultWSURL
	}
	lower := make([]string, 0, len(symbols))
	for _, s := range symbols {
		lower = append(lower, strings.ToLower(s))
	}
	return &WSStreamer{baseURL: baseURL, symbols: lower, failFast: failFast, l: l}
}

func (w *WSStreamer) Name() string { return "ws" }

// wsKline mirrors the Binance kline event payload.
type wsKline struct {
	Symbol  string `json:"s"`
	Start   int64  `json:"t"` // ms
	IsFinal bool   `json:"x"`
	Open    string `json:"o"`
	High    string `json:"h"`
	Low     string `json:"l"`
	Close   string `json:"c"`
	Volume  string `json:"v"`
}

type wsEvent struct {
	EventType string          `json:"e"`
	Kline     wsKline         `json:"k"`
	Stream    string          `json:"stream"`
	Data      json.RawMessage `json:"data"`
}

// Run connects and streams closed 1m bars until ctx is cancelled or the
// stream becomes unavailable. Reconnects with exponential backoff and jitter.
func (w *WSStreamer) Run(ctx context.Context) (<-chan *models.Bar, <-chan error) {
	bars := make(chan *models.Bar, 256)
	errs := make(chan error, 1)

	go func() {
		defer close(bars)
		defer close(errs)

		if len(w.symbols) == 0 {
			errs <- fmt.Errorf("no symbols configured")
			return
		}

		streams := make([]string, 0, len(w.symbols))
		for _, s := range w.symbols {
			streams = append(streams, s+"@kline_1m")
		}
		url := w.baseURL + "/" + strings.Join(streams, "/")

		var attempt int
		var handshakeFailures int
		for {
			if ctx.Err() != nil {
				return
			}

			conn, err := w.dial(ctx, url)
			if err != nil {
				handshakeFailures++
				w.l.Warn("binance ws connect failed",
					applogger.Int("attempt", handshakeFailures),
					applogger.Error(err),
				)
				if w.failFast && handshakeFailures >= maxHandshakeFailures {
					errs <- fmt.Errorf("%w: %d consecutive handshake failures", ErrUnavailable, handshakeFailures)
					return
				}
				if !w.sleepBackoff(ctx, &attempt) {
					return
				}
				continue
			}

			handshakeFailures = 0
			attempt = 0
			w.l.Info("binance ws connected", applogger.Int("symbols", len(w.symbols)))

			err = w.readLoop(ctx, conn, bars)
			_ = conn.Close()
			if ctx.Err() != nil {
				return
			}
			w.l.Warn("binance ws read loop ended", applogger.Error(err))

			if !w.sleepBackoff(ctx, &attempt) {
				return
			}
		}
	}()

	return bars, errs
}

func (w *WSStreamer) dial(ctx context.Context, url string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return conn, nil
}

// readLoop reads frames until an error occurs, emitting a bar for every
// closed kline. Malformed messages are logged and dropped.
func (w *WSStreamer) readLoop(ctx context.Context, conn *websocket.Conn, bars chan<- *models.Bar) error {
	done := make(chan struct{})
	defer close(done)

	// ping loop; closing the conn on cancellation unblocks the pending read
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				_ = conn.Close()
				return
			case <-ticker.C:
				_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			}
		}
	}()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		bar, err := parseKlineMessage(msg)
		if err != nil {
			w.l.Warn("binance ws drop malformed message", applogger.Error(err))
			continue
		}
		if bar == nil {
			continue // open kline or non-kline frame
		}

		select {
		case bars <- bar:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// parseKlineMessage decodes a kline event and returns a bar for closed
// klines, nil for open klines and unrelated frames.
func parseKlineMessage(msg []byte) (*models.Bar, error) {
	var ev wsEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	// combined stream format wraps the event in a data field
	if ev.Stream != "" && len(ev.Data) > 0 {
		if err := json.Unmarshal(ev.Data, &ev); err != nil {
			return nil, fmt.Errorf("unmarshal stream data: %w", err)
		}
	}

	if ev.EventType != "kline" {
		return nil, nil
	}
	k := ev.Kline
	if !k.IsFinal {
		return nil, nil
	}

	bar := &models.Bar{
		Symbol:   strings.ToUpper(k.Symbol),
		Interval: "1m",
		Ts:       k.Start / 1000,
	}
	var err error
	if bar.Open, err = parsePrice(k.Open); err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if bar.High, err = parsePrice(k.High); err != nil {
		return nil, fmt.Errorf("high: %w", err)
	}
	if bar.Low, err = parsePrice(k.Low); err != nil {
		return nil, fmt.Errorf("low: %w", err)
	}
	if bar.Close, err = parsePrice(k.Close); err != nil {
		return nil, fmt.Errorf("close: %w", err)
	}
	if bar.Volume, err = parsePrice(k.Volume); err != nil {
		return nil, fmt.Errorf("volume: %w", err)
	}
	return bar, nil
}

// sleepBackoff waits min(2^attempt + U(0,1), 60s); returns false on cancel.
func (w *WSStreamer) sleepBackoff(ctx context.Context, attempt *int) bool {
	*attempt++
	delay := math.Pow(2, float64(*attempt)) + rand.Float64()
	if delay > maxRetryDelay.Seconds() {
		delay = maxRetryDelay.Seconds()
	}
	w.l.Info("binance ws reconnecting",
		applogger.Int("attempt", *attempt),
		applogger.String("delay", fmt.Sprintf("%.1fs", delay)),
	)
	select {
	case <-ctx.Done():
		return false
	case <-time.After(time.Duration(delay * float64(time.Second))):
		return true
	}
}
