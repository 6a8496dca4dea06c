package middleware

import (
	"context"
	"fmt"

	"CandlePull/internal/domain/models"
	domrepo "CandlePull/internal/domain/repository"
)

// BarSink is the minimal downstream interface the pipeline needs.
type BarSink interface {
	ProcessBar(ctx context.Context, b *models.Bar) error
}

// IngestPipeline sits between a bar producer and the aggregator. It validates
// incoming bars, drops malformed ones, and records ingestion metrics.
// Downstream errors propagate to the caller so producers apply backpressure
// instead of dropping bars.
type IngestPipeline struct {
	sink    BarSink
	metrics domrepo.Metrics
}

func NewIngestPipeline(sink BarSink, metrics domrepo.Metrics) *IngestPipeline {
	return &IngestPipeline{sink: sink, metrics: metrics}
}

// Process validates and forwards one bar. A validation failure is returned to
// the caller for logging; it is never fatal.
func (p *IngestPipeline) Process(ctx context.Context, transport string, b *models.Bar) error {
	if err := b.Validate(); err != nil {
		p.metrics.RecordError("ingest_validate")
		return fmt.Errorf("ingest validate: %w", err)
	}

	if err := p.sink.ProcessBar(ctx, b); err != nil {
		p.metrics.RecordError("ingest_process")
		return fmt.Errorf("ingest process: %w", err)
	}

	p.metrics.RecordBarIngested(transport, b.Symbol)
	p.metrics.RecordLastPrice(b.Symbol, b.Close)
	return nil
}
