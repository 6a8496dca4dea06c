package usecase

import (
	"context"
	"strings"

	"CandlePull/internal/domain/models"
	domrepo "CandlePull/internal/domain/repository"
	xhttp "CandlePull/pkg/http"
)

// BarsUseCase provides read access to persisted candles.
type BarsUseCase struct {
	store domrepo.BarStore
}

func NewBarsUseCase(store domrepo.BarStore) *BarsUseCase {
	return &BarsUseCase{store: store}
}

// GetBars returns the most recent limit bars, oldest first. Unknown intervals
// and missing symbols are client errors.
func (uc *BarsUseCase) GetBars(ctx context.Context, symbol, interval string, limit int) ([]models.Bar, error) {
	if symbol == "" {
		return nil, xhttp.BadRequestError("symbol is required")
	}
	iv := domrepo.Interval(interval)
	if !domrepo.IsValidInterval(iv) {
		return nil, xhttp.BadRequestErrorf("invalid interval: %s", interval)
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 1000 {
		limit = 1000
	}

	bars, err := uc.store.FetchBars(ctx, strings.ToUpper(symbol), iv, limit)
	if err != nil {
		return nil, xhttp.InternalErrorf("fetch bars: %v", err)
	}
	return bars, nil
}
