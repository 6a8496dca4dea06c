package models

// BarsRequest is the query for GET /v1/bars.
type BarsRequest struct {
	Symbol   string `query:"symbol" validate:"required"`
	Interval string `query:"interval" default:"1h"`
	Limit    int    `query:"limit" default:"300"` // clamped to [1, 1000]
}

// InstrumentsRequest is the query for GET /v1/meta/instruments.
type InstrumentsRequest struct {
	MinBars1m int `query:"min_bars_1m" default:"50" validate:"gte=0"`
}

// SignalRequest is the body for POST /v1/signal.
type SignalRequest struct {
	Symbol   string   `json:"symbol" validate:"required"`
	Horizons []string `json:"horizons" validate:"omitempty,dive,oneof=1m 5m 15m 1h 4h 1d 1w"`
	BarLimit int      `json:"bar_limit" default:"100" validate:"gte=20,lte=500"`
	Explain  bool     `json:"explain"`
	Debug    bool     `json:"debug"`
}

// InstrumentsResponse is the payload for GET /v1/meta/instruments.
type InstrumentsResponse struct {
	Symbols   []string                  `json:"symbols"`
	Intervals []string                  `json:"intervals"`
	Counts    map[string]map[string]int `json:"counts"`
}

// ProvidersResponse is the payload for GET /v1/providers.
type ProvidersResponse struct {
	Enabled []string         `json:"enabled"`
	Binance BinanceProviders `json:"binance"`
}

// BinanceProviders describes the Binance ingestion configuration and status.
type BinanceProviders struct {
	Transport       string   `json:"transport"`
	ActiveTransport string   `json:"active_transport"`
	Symbols         []string `json:"symbols"`
	RestPollSeconds float64  `json:"rest_poll_seconds"`
}

// HealthResponse is the payload for GET /health.
type HealthResponse struct {
	OK       bool   `json:"ok"`
	Ts       int64  `json:"ts"`
	Provider string `json:"provider"`
}
