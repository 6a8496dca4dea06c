package usecase

import (
	"context"
	"fmt"

	"CandlePull/internal/common"
	"CandlePull/internal/domain/models"
	domrepo "CandlePull/internal/domain/repository"
	applogger "CandlePull/pkg/logger"
)

// bufferCap is the per-symbol rolling window of recent 1m bars (~33 hours).
const bufferCap = 2000

// Aggregator turns a stream of finalised 1m bars into higher-interval bars.
// For every incoming 1m bar it recomputes the containing bucket of each
// enabled target interval from its rolling buffer and batch-upserts the
// results together with the 1m bar itself. Partial buckets are written and
// refined as bars arrive; completeness is the reader's concern.
//
// Not safe for concurrent use: exactly one goroutine feeds it.
type Aggregator struct {
	store     domrepo.BarStore
	publisher domrepo.BarPublisher // optional fan-out, may be nil
	targets   []domrepo.Interval   // aggregate intervals, 1m excluded
	buffers   map[string]*common.RingBuffer[models.Bar]
	l         *applogger.Logger

	// last logged minute per symbol, keyed on bar time so the throttle is
	// deterministic for replayed streams
	lastLoggedMinute map[string]int64
}

func NewAggregator(store domrepo.BarStore, publisher domrepo.BarPublisher, intervals []domrepo.Interval, l *applogger.Logger) *Aggregator {
	targets := make([]domrepo.Interval, 0, len(intervals))
	for _, i := range intervals {
		if i != domrepo.I1m && domrepo.IsValidInterval(i) {
			targets = append(targets, i)
		}
	}
	return &Aggregator{
		store:            store,
		publisher:        publisher,
		targets:          targets,
		buffers:          make(map[string]*common.RingBuffer[models.Bar]),
		l:                l,
		lastLoggedMinute: make(map[string]int64),
	}
}

// ProcessBar stores one incoming bar and refreshes every containing
// higher-interval bucket. Non-1m input is stored as-is without aggregation.
func (a *Aggregator) ProcessBar(ctx context.Context, b *models.Bar) error {
	if b.Interval != string(domrepo.I1m) {
		a.l.Warn("aggregator received non-1m bar",
			applogger.String("symbol", b.Symbol),
			applogger.String("interval", b.Interval),
		)
		_, err := a.store.UpsertBars(ctx, []models.Bar{*b})
		return err
	}

	buf, ok := a.buffers[b.Symbol]
	if !ok {
		buf = common.NewRingBuffer[models.Bar](bufferCap)
		a.buffers[b.Symbol] = buf
	}
	buf.Push(*b)

	upserts := make([]models.Bar, 0, len(a.targets)+1)
	upserts = append(upserts, *b)
	for _, interval := range a.targets {
		if agg := a.aggregateBucket(b.Symbol, interval, b.Ts); agg != nil {
			upserts = append(upserts, *agg)
		}
	}

	if _, err := a.store.UpsertBars(ctx, upserts); err != nil {
		return fmt.Errorf("upsert bars: %w", err)
	}

	if a.publisher != nil {
		if err := a.publisher.PublishBar(ctx, b); err != nil {
			// fan-out is best effort; persistence already succeeded
			a.l.Warn("bar publish failed", applogger.String("symbol", b.Symbol), applogger.Error(err))
		}
	}

	// one line per symbol per minute
	if minute := b.Ts / 60; minute > a.lastLoggedMinute[b.Symbol] {
		a.lastLoggedMinute[b.Symbol] = minute
		a.l.Info("1m bar stored",
			applogger.String("symbol", b.Symbol),
			applogger.Int64("ts", b.Ts),
			applogger.Any("close", b.Close),
			applogger.Any("volume", b.Volume),
			applogger.Int("aggregated", len(upserts)-1),
		)
	}
	return nil
}

// aggregateBucket recomputes the target-interval bar whose bucket contains
// latestTs from the buffered 1m bars, or nil when the buffer has none.
func (a *Aggregator) aggregateBucket(symbol string, interval domrepo.Interval, latestTs int64) *models.Bar {
	buf := a.buffers[symbol]
	if buf == nil || buf.Len() == 0 {
		return nil
	}

	bucketStart := interval.BucketStart(latestTs)
	bucketEnd := bucketStart + interval.Seconds()

	var agg *models.Bar
	var firstTs, lastTs int64
	buf.Each(func(b models.Bar) {
		if b.Ts < bucketStart || b.Ts >= bucketEnd {
			return
		}
		if agg == nil {
			cp := b
			agg = &cp
			agg.Interval = string(interval)
			agg.Ts = bucketStart
			firstTs, lastTs = b.Ts, b.Ts
			return
		}
		if b.High > agg.High {
			agg.High = b.High
		}
		if b.Low < agg.Low {
			agg.Low = b.Low
		}
		agg.Volume += b.Volume
		// open follows the earliest bar, close the latest
		if b.Ts < firstTs {
			agg.Open = b.Open
			firstTs = b.Ts
		}
		if b.Ts > lastTs {
			agg.Close = b.Close
			lastTs = b.Ts
		}
	})
	return agg
}
