package signals

import (
	"CandlePull/internal/domain/models"
)

// GenerateTradePlan produces entry, invalidation, validity and size from the
// mapped state and the recent bars of the primary horizon (oldest first).
// now is the current unix time, supplied by the caller for determinism.
func GenerateTradePlan(
	state models.SignalState,
	confidence float64,
	consensus models.ConsensusSignal,
	primaryHorizon string,
	primaryBars []models.Bar,
	rationale []string,
	now int64,
) models.TradePlan {
	var lastClose float64
	if len(primaryBars) > 0 {
		lastClose = primaryBars[len(primaryBars)-1].Close
	}

	tags := append([]string(nil), rationale...)

	var entry *float64
	var invalidation float64
	switch state {
	case models.StateBuy, models.StateStrongBuy:
		e := lastClose
		entry = &e
		invalidation = buyInvalidation(primaryBars, lastClose)
		tags = append(tags, "long_position")
	case models.StateSell, models.StateStrongSell:
		e := lastClose
		entry = &e
		invalidation = sellInvalidation(primaryBars, lastClose)
		tags = append(tags, "short_position")
	default:
		// NEUTRAL: no entry, report the nearer advisory bound.
		lower := buyInvalidation(primaryBars, lastClose)
		upper := sellInvalidation(primaryBars, lastClose)
		if lastClose-lower <= upper-lastClose {
			invalidation = lower
		} else {
			invalidation = upper
		}
		tags = append(tags, "no_position_neutral")
	}

	validity, ok := ValidityWindowSeconds[primaryHorizon]
	if !ok {
		validity = ValidityWindowSeconds["1h"]
	}

	sizePct := SizeSuggestion(confidence)
	if sizePct <= 0.5 {
		tags = append(tags, "conservative_sizing")
	} else if sizePct >= 1.5 {
		tags = append(tags, "aggressive_sizing")
	}

	if consensus.AgreementScore < 0.5 {
		tags = append(tags, "low_agreement_warning")
	}

	horizons := make([]string, 0, len(consensus.HorizonSignals))
	for _, s := range consensus.HorizonSignals {
		horizons = append(horizons, s.Horizon)
	}

	return models.TradePlan{
		State:             state,
		Confidence:        confidence,
		EntryPrice:        entry,
		InvalidationPrice: invalidation,
		ValidUntilTs:      now + validity,
		SizeSuggestionPct: sizePct,
		Rationale:         tags,
		HorizonsAnalyzed:  horizons,
	}
}

// PrimaryHorizon picks the longest analysed horizon with at least
// MinBarsForConfidence bars; falls back to the longest analysed, then "1h".
func PrimaryHorizon(horizonSignals []models.HorizonSignal, seconds func(string) int64) string {
	best := ""
	var bestSecs int64
	fallback := ""
	var fallbackSecs int64
	for _, s := range horizonSignals {
		secs := seconds(s.Horizon)
		if secs > fallbackSecs {
			fallback, fallbackSecs = s.Horizon, secs
		}
		if s.Features.NBars >= MinBarsForConfidence && secs > bestSecs {
			best, bestSecs = s.Horizon, secs
		}
	}
	if best != "" {
		return best
	}
	if fallback != "" {
		return fallback
	}
	return "1h"
}

// buyInvalidation is the recent swing low minus the buffer, forced below the
// entry price.
func buyInvalidation(bars []models.Bar, currentPrice float64) float64 {
	if len(bars) == 0 {
		return currentPrice * (1.0 - InvalidationBufferPct)
	}
	lookback := planLookback
	if len(bars) < lookback {
		lookback = len(bars)
	}
	swingLow := bars[len(bars)-lookback].Low
	for _, b := range bars[len(bars)-lookback:] {
		if b.Low < swingLow {
			swingLow = b.Low
		}
	}
	invalidation := swingLow * (1.0 - InvalidationBufferPct)
	if invalidation >= currentPrice {
		invalidation = currentPrice * (1.0 - InvalidationBufferPct)
	}
	return invalidation
}

// sellInvalidation is the recent swing high plus the buffer, forced above the
// entry price.
func sellInvalidation(bars []models.Bar, currentPrice float64) float64 {
	if len(bars) == 0 {
		return currentPrice * (1.0 + InvalidationBufferPct)
	}
	lookback := planLookback
	if len(bars) < lookback {
		lookback = len(bars)
	}
	swingHigh := bars[len(bars)-lookback].High
	for _, b := range bars[len(bars)-lookback:] {
		if b.High > swingHigh {
			swingHigh = b.High
		}
	}
	invalidation := swingHigh * (1.0 + InvalidationBufferPct)
	if invalidation <= currentPrice {
		invalidation = currentPrice * (1.0 + InvalidationBufferPct)
	}
	return invalidation
}

// SizeSuggestion maps confidence to a position size via the band table.
// Monotonic non-decreasing in confidence.
func SizeSuggestion(confidence float64) float64 {
	c := clamp(confidence, 0, 1)
	for _, band := range sizeByConfidence {
		if c >= band.low && c < band.high {
			return band.pct
		}
	}
	// c == 1.0 falls through the half-open bands.
	return sizeByConfidence[len(sizeByConfidence)-1].pct
}
