package signals

import (
	"fmt"

	"CandlePull/internal/domain/models"
)

// ComputeHorizonSignal derives the full per-horizon signal from bars
// (oldest first). intervalSeconds is the horizon's bucket length.
func ComputeHorizonSignal(horizon string, bars []models.Bar, intervalSeconds int64) models.HorizonSignal {
	features := ExtractFeatures(horizon, bars)
	direction := DirectionScore(features)
	strength := Strength(features)

	continuity := ComputeContinuity(bars, intervalSeconds)
	confidence := ComputeConfidence(horizon, features.NBars, continuity, features.Volatility)

	rationale := make([]string, 0, 3)

	switch {
	case direction >= strongDirectionThreshold:
		rationale = append(rationale, fmt.Sprintf("%s_strong_bullish", horizon))
	case direction >= weakDirectionThreshold:
		rationale = append(rationale, fmt.Sprintf("%s_weak_bullish", horizon))
	case direction <= -strongDirectionThreshold:
		rationale = append(rationale, fmt.Sprintf("%s_strong_bearish", horizon))
	case direction <= -weakDirectionThreshold:
		rationale = append(rationale, fmt.Sprintf("%s_weak_bearish", horizon))
	default:
		rationale = append(rationale, fmt.Sprintf("%s_neutral", horizon))
	}

	if features.Volatility > highVolatilityThreshold {
		rationale = append(rationale, fmt.Sprintf("%s_high_volatility", horizon))
	} else if features.Volatility < lowVolatilityThreshold {
		rationale = append(rationale, fmt.Sprintf("%s_low_volatility", horizon))
	}

	if confidence > highConfidenceThreshold {
		rationale = append(rationale, fmt.Sprintf("%s_high_confidence", horizon))
	} else if confidence < lowConfidenceThreshold {
		rationale = append(rationale, fmt.Sprintf("%s_low_confidence", horizon))
	}

	return models.HorizonSignal{
		Horizon:        horizon,
		DirectionScore: direction,
		Strength:       strength,
		Confidence:     confidence,
		Features:       features,
		Rationale:      rationale,
	}
}

func sign(v float64) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}
