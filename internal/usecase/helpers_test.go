package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"CandlePull/internal/domain/models"
	domrepo "CandlePull/internal/domain/repository"
)

// fakeStore is an in-memory BarStore keyed like the real table.
type fakeStore struct {
	mu   sync.Mutex
	bars map[string]models.Bar // key symbol|interval|ts
}

func newFakeStore() *fakeStore {
	return &fakeStore{bars: make(map[string]models.Bar)}
}

func barKey(symbol, interval string, ts int64) string {
	return fmt.Sprintf("%s|%s|%d", symbol, interval, ts)
}

func (s *fakeStore) Init(context.Context) error { return nil }

func (s *fakeStore) UpsertBars(_ context.Context, bars []models.Bar) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range bars {
		s.bars[barKey(b.Symbol, b.Interval, b.Ts)] = b
	}
	return len(bars), nil
}

func (s *fakeStore) FetchBars(_ context.Context, symbol string, interval domrepo.Interval, limit int) ([]models.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Bar, 0)
	for _, b := range s.bars {
		if b.Symbol == symbol && b.Interval == string(interval) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ts < out[j].Ts })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *fakeStore) CountBars(_ context.Context, symbol string, interval domrepo.Interval) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bars {
		if b.Symbol == symbol && b.Interval == string(interval) {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) DistinctSymbols(_ context.Context, interval domrepo.Interval) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	for _, b := range s.bars {
		if b.Interval == string(interval) {
			seen[b.Symbol] = true
		}
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out, nil
}

func (s *fakeStore) DistinctIntervals(context.Context) ([]domrepo.Interval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	for _, b := range s.bars {
		seen[b.Interval] = true
	}
	out := make([]domrepo.Interval, 0, len(seen))
	for iv := range seen {
		out = append(out, domrepo.Interval(iv))
	}
	return out, nil
}

func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) Close() error                 { return nil }

func (s *fakeStore) get(symbol, interval string, ts int64) (models.Bar, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bars[barKey(symbol, interval, ts)]
	return b, ok
}

// fakeMetrics implements the domain Metrics interface without Prometheus,
// avoiding duplicate collector registration across tests.
type fakeMetrics struct {
	mu       sync.Mutex
	ingested int
	errors   map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: make(map[string]int)}
}

func (m *fakeMetrics) RecordBarIngested(string, string) {
	m.mu.Lock()
	m.ingested++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLastPrice(string, float64) {}
func (m *fakeMetrics) RecordLatency(string, float64)   {}

// bar1m builds a valid 1m bar for tests.
func bar1m(symbol string, ts int64, close float64) *models.Bar {
	return &models.Bar{
		Symbol:   symbol,
		Interval: "1m",
		Ts:       ts,
		Open:     close,
		High:     close + 0.1,
		Low:      close - 0.1,
		Close:    close,
		Volume:   1.0,
	}
}
