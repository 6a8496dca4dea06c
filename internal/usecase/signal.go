package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CandlePull/internal/domain/models"
	domrepo "CandlePull/internal/domain/repository"
	"CandlePull/internal/services/signals"
	"CandlePull/pkg/cache"
	applogger "CandlePull/pkg/logger"
)

const signalVersion = "2.0"

// SignalUseCase orchestrates the analytical pipeline: fetch bars per horizon,
// derive per-horizon signals, build the weighted consensus, map the state,
// and produce the trade plan. Everything downstream of the fetch is pure.
type SignalUseCase struct {
	store    domrepo.BarStore
	l        *applogger.Logger
	now      func() int64
	cache    cache.Service // optional short-TTL response cache
	cacheTTL time.Duration
}

func NewSignalUseCase(store domrepo.BarStore, l *applogger.Logger) *SignalUseCase {
	return &SignalUseCase{
		store: store,
		l:     l,
		now:   func() int64 { return time.Now().Unix() },
	}
}

// WithClock overrides the time source; used by tests for determinism.
func (uc *SignalUseCase) WithClock(now func() int64) *SignalUseCase {
	uc.now = now
	return uc
}

// WithCache enables short-lived response caching.
func (uc *SignalUseCase) WithCache(svc cache.Service, ttl time.Duration) *SignalUseCase {
	uc.cache = svc
	uc.cacheTTL = ttl
	return uc
}

// Generate computes a full signal response. Analytical faults never escape:
// on panic the engine degrades to a NEUTRAL response with a diagnostic tag.
func (uc *SignalUseCase) Generate(ctx context.Context, req models.SignalRequest) (resp *models.SignalResponse, err error) {
	symbol := strings.ToUpper(req.Symbol)
	horizons := req.Horizons
	if len(horizons) == 0 {
		horizons = signals.DefaultHorizons
	}
	barLimit := req.BarLimit
	if barLimit < 20 {
		barLimit = 100
	}
	if barLimit > 500 {
		barLimit = 500
	}

	cacheKey := ""
	if uc.cache != nil {
		cacheKey = fmt.Sprintf("signal:%s:%s:%d:%t:%t", symbol, strings.Join(horizons, ","), barLimit, req.Explain, req.Debug)
		var cached models.SignalResponse
		if cerr := uc.cache.Get(ctx, cacheKey, &cached); cerr == nil {
			return &cached, nil
		}
	}

	defer func() {
		if r := recover(); r != nil {
			uc.l.Error("signal engine panic", applogger.Any("cause", r), applogger.String("symbol", symbol))
			resp = uc.neutralResponse(symbol, "engine_error")
			err = nil
		}
	}()

	// Step 1: fetch bars per horizon. Fetch failures degrade that horizon to
	// no data instead of failing the request.
	horizonBars := make(map[string][]models.Bar, len(horizons))
	for _, h := range horizons {
		iv := domrepo.Interval(h)
		if !domrepo.IsValidInterval(iv) {
			continue
		}
		bars, ferr := uc.store.FetchBars(ctx, symbol, iv, barLimit)
		if ferr != nil {
			uc.l.Warn("fetch bars failed",
				applogger.String("symbol", symbol),
				applogger.String("horizon", h),
				applogger.Error(ferr),
			)
			continue
		}
		horizonBars[h] = bars
	}

	// Step 2: per-horizon signals, only where data exists.
	horizonSignals := make([]models.HorizonSignal, 0, len(horizons))
	for _, h := range horizons {
		bars := horizonBars[h]
		if len(bars) == 0 {
			continue
		}
		horizonSignals = append(horizonSignals, signals.ComputeHorizonSignal(h, bars, domrepo.Interval(h).Seconds()))
	}

	// Steps 3-4: consensus and discrete state.
	consensus := signals.ComputeConsensus(horizonSignals)
	state, rationale := signals.MapToState(consensus)

	// Step 5: trade plan from the primary horizon's bars.
	primary := signals.PrimaryHorizon(horizonSignals, func(h string) int64 {
		return domrepo.Interval(h).Seconds()
	})
	plan := signals.GenerateTradePlan(state, consensus.Confidence, consensus, primary, horizonBars[primary], rationale, uc.now())

	resp = &models.SignalResponse{
		Symbol:         symbol,
		State:          state,
		Confidence:     consensus.Confidence,
		TradePlan:      plan,
		Consensus:      consensus,
		HorizonDetails: horizonSignals,
		AsOfTs:         uc.now(),
		Version:        signalVersion,
	}

	if req.Explain || req.Debug {
		exp := signals.BuildExplanation(plan.Rationale)
		resp.Explanation = &exp
		breakdown := signals.BuildConfidenceBreakdown(consensus)
		resp.ConfidenceBreakdown = &breakdown
	}
	if req.Debug {
		trace := signals.BuildDebugTrace(symbol, consensus, horizons)
		resp.DebugTrace = &trace
	}

	if uc.cache != nil {
		if cerr := uc.cache.Set(ctx, cacheKey, resp, uc.cacheTTL); cerr != nil {
			uc.l.Warn("signal cache set failed", applogger.Error(cerr))
		}
	}
	return resp, nil
}

// neutralResponse is the degraded output when the pipeline cannot complete.
func (uc *SignalUseCase) neutralResponse(symbol string, tag string) *models.SignalResponse {
	consensus := models.ConsensusSignal{
		HorizonSignals: []models.HorizonSignal{},
		Rationale:      []string{tag},
	}
	now := uc.now()
	return &models.SignalResponse{
		Symbol:     symbol,
		State:      models.StateNeutral,
		Confidence: 0,
		TradePlan: models.TradePlan{
			State:             models.StateNeutral,
			ValidUntilTs:      now,
			SizeSuggestionPct: signals.SizeSuggestion(0),
			Rationale:         []string{tag, "no_position_neutral"},
			HorizonsAnalyzed:  []string{},
		},
		Consensus:      consensus,
		HorizonDetails: []models.HorizonSignal{},
		AsOfTs:         now,
		Version:        signalVersion,
	}
}
