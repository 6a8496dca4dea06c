package signals

import (
	"CandlePull/internal/domain/models"
)

// ComputeConsensus combines horizon signals into a weighted consensus.
// Longer horizons carry more weight; each signal is additionally weighted
// by its own confidence.
func ComputeConsensus(horizonSignals []models.HorizonSignal) models.ConsensusSignal {
	if len(horizonSignals) == 0 {
		return models.ConsensusSignal{
			AgreementScore: 0,
			HorizonSignals: []models.HorizonSignal{},
			Rationale:      []string{"no_data"},
		}
	}

	var weightedDirection, totalWeight float64
	for _, s := range horizonSignals {
		weight, ok := HorizonWeights[s.Horizon]
		if !ok {
			weight = 1.0
		}
		effective := weight * s.Confidence
		weightedDirection += s.DirectionScore * effective
		totalWeight += effective
	}

	direction := 0.0
	if totalWeight > 0 {
		direction = weightedDirection / totalWeight
	}

	agreement := ComputeAgreementScore(horizonSignals)

	var confSum float64
	for _, s := range horizonSignals {
		confSum += s.Confidence
	}
	avgConfidence := confSum / float64(len(horizonSignals))
	confidence := clamp(avgConfidence*agreement, 0, 1)

	rationale := buildConsensusRationale(horizonSignals, agreement, avgConfidence)

	return models.ConsensusSignal{
		Direction:      clamp(direction, -1, 1),
		Confidence:     confidence,
		AgreementScore: agreement,
		HorizonSignals: horizonSignals,
		Rationale:      rationale,
	}
}

// ComputeAgreementScore measures sign alignment across horizons in [0, 1].
// Zero-direction signals are dropped; with none remaining the score is 1.0.
// The score is zero only when positive and negative signs balance exactly.
func ComputeAgreementScore(horizonSignals []models.HorizonSignal) float64 {
	var pos, neg int
	for _, s := range horizonSignals {
		switch sign(s.DirectionScore) {
		case 1:
			pos++
		case -1:
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		return 1.0
	}
	minority := pos
	if neg < minority {
		minority = neg
	}
	return clamp(1.0-2.0*float64(minority)/float64(total), 0, 1)
}

func buildConsensusRationale(horizonSignals []models.HorizonSignal, agreement, avgConfidence float64) []string {
	rationale := make([]string, 0, 6)

	var bullish, bearish int
	for _, s := range horizonSignals {
		if s.DirectionScore > trendEpsilon {
			bullish++
		} else if s.DirectionScore < -trendEpsilon {
			bearish++
		}
	}

	switch {
	case agreement >= 0.8:
		rationale = append(rationale, "strong_agreement")
	case agreement >= 0.5:
		rationale = append(rationale, "moderate_agreement")
	default:
		rationale = append(rationale, "weak_agreement")
		if bullish > 0 && bearish > 0 {
			rationale = append(rationale, "conflicting_signals")
		}
	}

	switch {
	case bullish > bearish*2 && bullish > 0:
		rationale = append(rationale, "majority_bullish")
	case bearish > bullish*2 && bearish > 0:
		rationale = append(rationale, "majority_bearish")
	case bullish > 0 && bearish > 0:
		rationale = append(rationale, "mixed_directions")
	}

	if bullish > 0 && bearish > 0 {
		if tag := shortLongConflict(horizonSignals); tag != "" {
			rationale = append(rationale, tag)
		}
	}

	if avgConfidence > highConfidenceThreshold {
		rationale = append(rationale, "high_data_quality")
	} else if avgConfidence < lowConfidenceThreshold {
		rationale = append(rationale, "low_data_quality")
	}

	return rationale
}

// shortLongConflict detects a net-bullish short-term set against a
// net-bearish long-term set (or the reverse).
func shortLongConflict(horizonSignals []models.HorizonSignal) string {
	var shortSum, longSum float64
	var shortN, longN int
	for _, s := range horizonSignals {
		if ShortHorizons[s.Horizon] {
			shortSum += s.DirectionScore
			shortN++
		} else if LongHorizons[s.Horizon] {
			longSum += s.DirectionScore
			longN++
		}
	}
	if shortN == 0 || longN == 0 {
		return ""
	}
	shortAvg := shortSum / float64(shortN)
	longAvg := longSum / float64(longN)
	if shortAvg > weakDirectionThreshold && longAvg < -weakDirectionThreshold {
		return "short_term_bullish_long_term_bearish"
	}
	if shortAvg < -weakDirectionThreshold && longAvg > weakDirectionThreshold {
		return "short_term_bearish_long_term_bullish"
	}
	return ""
}
