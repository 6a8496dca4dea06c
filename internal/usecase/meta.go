package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"CandlePull/internal/domain/models"
	domrepo "CandlePull/internal/domain/repository"
)

const metaCacheTTL = 10 * time.Second

// instrumentsCache memoises instrument listings per min_bars_1m threshold.
// Enumerating counts touches every (symbol, interval) pair, so responses are
// reused for a few seconds instead of hitting the store on every poll.
type instrumentsCache struct {
	mu      sync.Mutex
	entries map[int]instrumentsEntry
}

type instrumentsEntry struct {
	resp    *models.InstrumentsResponse
	expires time.Time
}

func (c *instrumentsCache) get(minBars int) (*models.InstrumentsResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[minBars]
	if !ok || time.Now().After(e.expires) {
		delete(c.entries, minBars)
		return nil, false
	}
	return e.resp, true
}

func (c *instrumentsCache) put(minBars int, resp *models.InstrumentsResponse) {
	c.mu.Lock()
	c.entries[minBars] = instrumentsEntry{resp: resp, expires: time.Now().Add(metaCacheTTL)}
	c.mu.Unlock()
}

// MetaUseCase enumerates instruments and their data readiness for clients.
type MetaUseCase struct {
	store domrepo.BarStore
	cache instrumentsCache
}

func NewMetaUseCase(store domrepo.BarStore) *MetaUseCase {
	return &MetaUseCase{
		store: store,
		cache: instrumentsCache{entries: make(map[int]instrumentsEntry)},
	}
}

// Instruments lists symbols with at least minBars1m 1-minute bars, the
// intervals present in the store, and per-symbol per-interval bar counts.
func (uc *MetaUseCase) Instruments(ctx context.Context, minBars1m int) (*models.InstrumentsResponse, error) {
	if resp, ok := uc.cache.get(minBars1m); ok {
		return resp, nil
	}

	allSymbols, err := uc.store.DistinctSymbols(ctx, domrepo.I1m)
	if err != nil {
		return nil, fmt.Errorf("distinct symbols: %w", err)
	}

	symbols := make([]string, 0, len(allSymbols))
	for _, s := range allSymbols {
		n, err := uc.store.CountBars(ctx, s, domrepo.I1m)
		if err != nil {
			return nil, fmt.Errorf("count %s 1m: %w", s, err)
		}
		if n >= minBars1m {
			symbols = append(symbols, s)
		}
	}
	sort.Strings(symbols)

	resp := &models.InstrumentsResponse{
		Symbols:   symbols,
		Intervals: []string{},
		Counts:    map[string]map[string]int{},
	}
	if len(symbols) == 0 {
		uc.cache.put(minBars1m, resp)
		return resp, nil
	}

	present, err := uc.store.DistinctIntervals(ctx)
	if err != nil {
		return nil, fmt.Errorf("distinct intervals: %w", err)
	}
	presentSet := make(map[domrepo.Interval]bool, len(present))
	for _, iv := range present {
		presentSet[iv] = true
	}
	// report in canonical short-to-long order
	intervals := make([]domrepo.Interval, 0, len(present))
	for _, iv := range domrepo.AllIntervals {
		if presentSet[iv] {
			intervals = append(intervals, iv)
			resp.Intervals = append(resp.Intervals, string(iv))
		}
	}

	for _, s := range symbols {
		counts := make(map[string]int, len(intervals))
		for _, iv := range intervals {
			n, err := uc.store.CountBars(ctx, s, iv)
			if err != nil {
				return nil, fmt.Errorf("count %s %s: %w", s, iv, err)
			}
			counts[string(iv)] = n
		}
		resp.Counts[s] = counts
	}

	uc.cache.put(minBars1m, resp)
	return resp, nil
}
