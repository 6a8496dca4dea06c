package repository

import (
	"context"

	"CandlePull/internal/domain/models"
)

// BarStream produces finalised 1m bars from an upstream market data source.
type BarStream interface {
	// Run starts the producer and returns at once. Bars and errors are
	// delivered on the returned channels; both are closed when the producer
	// stops, either because ctx is cancelled or the stream terminates.
	Run(ctx context.Context) (<-chan *models.Bar, <-chan error)
	Name() string
}

// BarStore persists OHLCV bars keyed by (symbol, interval, ts).
type BarStore interface {
	Init(ctx context.Context) error
	// UpsertBars inserts bars, overwriting OHLCV on key conflict.
	UpsertBars(ctx context.Context, bars []models.Bar) (int, error)
	// FetchBars returns the most recent limit bars ordered oldest first.
	FetchBars(ctx context.Context, symbol string, interval Interval, limit int) ([]models.Bar, error)
	CountBars(ctx context.Context, symbol string, interval Interval) (int, error)
	DistinctSymbols(ctx context.Context, interval Interval) ([]string, error)
	DistinctIntervals(ctx context.Context) ([]Interval, error)
	Health(ctx context.Context) error
	Close() error
}

// BarPublisher fans finalised bars out to an external sink (optional).
type BarPublisher interface {
	PublishBar(ctx context.Context, b *models.Bar) error
	Close() error
}

// Metrics records operational metrics for ingestion and serving.
type Metrics interface {
	RecordBarIngested(transport, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
