package usecase

import (
	"context"
	"testing"

	"CandlePull/internal/domain/models"
	domrepo "CandlePull/internal/domain/repository"
	applogger "CandlePull/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// base is aligned to the 1h boundary, so 5m/15m/1h buckets all start here.
const base = int64(1_800_000_000)

func newTestAggregator(store domrepo.BarStore, intervals ...domrepo.Interval) *Aggregator {
	if len(intervals) == 0 {
		intervals = []domrepo.Interval{domrepo.I1m, domrepo.I5m, domrepo.I15m, domrepo.I1h}
	}
	return NewAggregator(store, nil, intervals, applogger.Nop())
}

func TestAggregatorFiveMinuteBucket(t *testing.T) {
	store := newFakeStore()
	agg := newTestAggregator(store, domrepo.I1m, domrepo.I5m)
	ctx := context.Background()

	closes := []float64{1, 2, 3, 4, 5}
	for i, c := range closes {
		require.NoError(t, agg.ProcessBar(ctx, bar1m("BTCUSDT", base+int64(i)*60, c)))
	}

	got, ok := store.get("BTCUSDT", "5m", base)
	require.True(t, ok, "5m bucket must exist")
	assert.Equal(t, 1.0, got.Open)
	assert.Equal(t, 5.1, got.High)
	assert.Equal(t, 0.9, got.Low)
	assert.Equal(t, 5.0, got.Close)
	assert.Equal(t, 5.0, got.Volume)

	// all five source 1m bars persisted too
	for i := range closes {
		_, ok := store.get("BTCUSDT", "1m", base+int64(i)*60)
		assert.True(t, ok)
	}
}

func TestAggregatorRefeedIsIdempotent(t *testing.T) {
	store := newFakeStore()
	agg := newTestAggregator(store, domrepo.I1m, domrepo.I5m)
	ctx := context.Background()

	feed := func() {
		for i, c := range []float64{1, 2, 3, 4, 5} {
			require.NoError(t, agg.ProcessBar(ctx, bar1m("BTCUSDT", base+int64(i)*60, c)))
		}
	}
	feed()
	first, _ := store.get("BTCUSDT", "5m", base)
	feed()
	second, _ := store.get("BTCUSDT", "5m", base)

	assert.Equal(t, first, second, "upserting the same bars must be byte-identical")
}

func TestAggregatorPartialBucketRefines(t *testing.T) {
	store := newFakeStore()
	agg := newTestAggregator(store, domrepo.I1m, domrepo.I5m)
	ctx := context.Background()

	require.NoError(t, agg.ProcessBar(ctx, bar1m("BTCUSDT", base, 10)))
	partial, ok := store.get("BTCUSDT", "5m", base)
	require.True(t, ok, "partial buckets are written immediately")
	assert.Equal(t, 10.0, partial.Close)
	assert.Equal(t, 1.0, partial.Volume)

	require.NoError(t, agg.ProcessBar(ctx, bar1m("BTCUSDT", base+60, 12)))
	refined, _ := store.get("BTCUSDT", "5m", base)
	assert.Equal(t, 12.0, refined.Close)
	assert.Equal(t, 2.0, refined.Volume)
	assert.Equal(t, 10.0, refined.Open)
}

func TestAggregatorBucketAlignment(t *testing.T) {
	store := newFakeStore()
	agg := newTestAggregator(store, domrepo.I1m, domrepo.I5m, domrepo.I15m, domrepo.I1h)
	ctx := context.Background()

	ts := base + 7*60 // 7 minutes into the hour block
	require.NoError(t, agg.ProcessBar(ctx, bar1m("BTCUSDT", ts, 42)))

	for _, iv := range []domrepo.Interval{domrepo.I5m, domrepo.I15m, domrepo.I1h} {
		want := iv.BucketStart(ts)
		b, ok := store.get("BTCUSDT", string(iv), want)
		require.True(t, ok, "bucket for %s", iv)
		assert.Zero(t, b.Ts%iv.Seconds(), "bucket start must be aligned")
	}
}

func TestAggregatorInvariantHolds(t *testing.T) {
	store := newFakeStore()
	agg := newTestAggregator(store, domrepo.I1m, domrepo.I5m, domrepo.I1h)
	ctx := context.Background()

	for i, c := range []float64{5, 9, 3, 7, 6, 8, 2, 4} {
		require.NoError(t, agg.ProcessBar(ctx, bar1m("ETHUSDT", base+int64(i)*60, c)))
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, b := range store.bars {
		bb := b
		assert.NoError(t, bb.Validate(), "persisted bar %s %s %d", b.Symbol, b.Interval, b.Ts)
		secs := domrepo.Interval(b.Interval).Seconds()
		assert.Zero(t, b.Ts%secs, "ts must align to interval")
	}
}

func TestAggregatorSeparateSymbols(t *testing.T) {
	store := newFakeStore()
	agg := newTestAggregator(store, domrepo.I1m, domrepo.I5m)
	ctx := context.Background()

	require.NoError(t, agg.ProcessBar(ctx, bar1m("BTCUSDT", base, 100)))
	require.NoError(t, agg.ProcessBar(ctx, bar1m("ETHUSDT", base, 200)))

	btc, _ := store.get("BTCUSDT", "5m", base)
	eth, _ := store.get("ETHUSDT", "5m", base)
	assert.Equal(t, 100.0, btc.Close)
	assert.Equal(t, 200.0, eth.Close)
	assert.Equal(t, 1.0, btc.Volume, "volumes must not mix across symbols")
}

func TestAggregatorBucketOrderIndependent(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	feed := func(order []int) models.Bar {
		store := newFakeStore()
		agg := newTestAggregator(store, domrepo.I1m, domrepo.I5m)
		for _, i := range order {
			require.NoError(t, agg.ProcessBar(context.Background(), bar1m("BTCUSDT", base+int64(i)*60, closes[i])))
		}
		b, ok := store.get("BTCUSDT", "5m", base)
		require.True(t, ok)
		return b
	}

	inOrder := feed([]int{0, 1, 2, 3, 4})
	// any order with the max-ts bar determining close yields the same bucket
	shuffled := feed([]int{2, 0, 4, 1, 3})
	assert.Equal(t, inOrder, shuffled, "open/high/low/volume commute; close follows max ts")
}

func TestAggregatorNonOneMinutePassthrough(t *testing.T) {
	store := newFakeStore()
	agg := newTestAggregator(store, domrepo.I1m, domrepo.I5m)
	ctx := context.Background()

	b := &models.Bar{Symbol: "BTCUSDT", Interval: "1h", Ts: base, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 3}
	require.NoError(t, agg.ProcessBar(ctx, b))

	got, ok := store.get("BTCUSDT", "1h", base)
	require.True(t, ok)
	assert.Equal(t, *b, got)
	// no 5m bucket materialised from a non-1m bar
	_, ok = store.get("BTCUSDT", "5m", base)
	assert.False(t, ok)
}
