package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CandlePull/internal/domain/models"
	xhttp "CandlePull/pkg/http"
	applogger "CandlePull/pkg/logger"
)

const (
	defaultRESTURL     = "https://api.binance.com/api/v3/klines"
	restRequestTimeout = 10 * time.Second
	minPollSeconds     = 1.0
)

// RESTPoller polls the public klines endpoint when the WebSocket is not an
// option. Every cycle it fetches the last two 1m klines per symbol and emits
// the most recent closed one, deduplicated by (symbol, ts).
type RESTPoller struct {
	baseURL     string
	symbols     []string // uppercase
	pollSeconds float64
	client      *xhttp.Client
	l           *applogger.Logger

	lastEmitted map[string]int64
}

func NewRESTPoller(baseURL string, symbols []string, pollSeconds float64, l *applogger.Logger) *RESTPoller {
	if baseURL == "" {
		baseURL = defaultRESTURL
	}
	if pollSeconds < minPollSeconds {
		pollSeconds = minPollSeconds
	}
	upper := make([]string, 0, len(symbols))
	for _, s := range symbols {
		upper = append(upper, strings.ToUpper(s))
	}
	return &RESTPoller{
		baseURL:     baseURL,
		symbols:     upper,
		pollSeconds: pollSeconds,
		client:      xhttp.NewClient(xhttp.WithTimeout(restRequestTimeout)),
		l:           l,
		lastEmitted: make(map[string]int64),
	}
}

func (p *RESTPoller) Name() string { return "rest" }

// Run polls until ctx is cancelled. Transient errors are logged and retried
// on the next cycle; the poller only terminates on its own when no symbols
// are configured.
func (p *RESTPoller) Run(ctx context.Context) (<-chan *models.Bar, <-chan error) {
	bars := make(chan *models.Bar, 256)
	errs := make(chan error, 1)

	go func() {
		defer close(bars)
		defer close(errs)

		if len(p.symbols) == 0 {
			errs <- fmt.Errorf("no symbols configured")
			return
		}

		p.l.Info("binance rest poller started",
			applogger.Int("symbols", len(p.symbols)),
			applogger.String("poll", fmt.Sprintf("%.1fs", p.pollSeconds)),
		)

		ticker := time.NewTicker(time.Duration(p.pollSeconds * float64(time.Second)))
		defer ticker.Stop()

		for {
			for _, symbol := range p.symbols {
				bar, err := p.fetchLatestClosedBar(ctx, symbol)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					p.l.Warn("binance rest fetch failed",
						applogger.String("symbol", symbol),
						applogger.Error(err),
					)
					continue
				}
				if bar == nil || bar.Ts <= p.lastEmitted[symbol] {
					continue
				}
				p.lastEmitted[symbol] = bar.Ts
				select {
				case bars <- bar:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return bars, errs
}

// fetchLatestClosedBar requests the last two klines; the most recent one is
// usually still open, so the second-to-last is the freshest closed bar.
func (p *RESTPoller) fetchLatestClosedBar(ctx context.Context, symbol string) (*models.Bar, error) {
	var raw [][]interface{}
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.baseURL,
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {"1m"},
			"limit":    {"2"},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("klines %s: %w", symbol, err)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("klines %s: got %d rows, want 2", symbol, len(raw))
	}
	return parseRESTKline(symbol, raw[len(raw)-2])
}

// parseRESTKline decodes one row of the klines array:
// [open_time_ms, open, high, low, close, volume, close_time_ms, ...].
func parseRESTKline(symbol string, row []interface{}) (*models.Bar, error) {
	if len(row) < 6 {
		return nil, fmt.Errorf("kline row too short: %d fields", len(row))
	}
	openTime, ok := row[0].(float64)
	if !ok {
		return nil, fmt.Errorf("kline open_time not numeric")
	}
	bar := &models.Bar{
		Symbol:   strings.ToUpper(symbol),
		Interval: "1m",
		Ts:       int64(openTime) / 1000,
	}
	fields := []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume}
	for i, dst := range fields {
		v, err := parseField(row[i+1])
		if err != nil {
			return nil, fmt.Errorf("kline field %d: %w", i+1, err)
		}
		*dst = v
	}
	return bar, nil
}

func parseField(v interface{}) (float64, error) {
	switch x := v.(type) {
	case string:
		return parsePrice(x)
	case float64:
		return x, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func parsePrice(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
