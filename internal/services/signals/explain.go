package signals

import (
	"CandlePull/internal/domain/models"
)

const debugTraceNote = "Debug trace shows intermediate values only. No recalculation performed."

// BuildConfidenceBreakdown reports the components of the consensus confidence.
// All three numbers are already present in the response; nothing is recomputed
// beyond the arithmetic mean of horizon confidences.
func BuildConfidenceBreakdown(consensus models.ConsensusSignal) models.ConfidenceBreakdown {
	var avg float64
	if n := len(consensus.HorizonSignals); n > 0 {
		var sum float64
		for _, s := range consensus.HorizonSignals {
			sum += s.Confidence
		}
		avg = sum / float64(n)
	}
	return models.ConfidenceBreakdown{
		Total:       consensus.Confidence,
		DataQuality: avg,
		Agreement:   consensus.AgreementScore,
		Labels: map[string]string{
			"total":        "Consensus confidence: data_quality x agreement",
			"data_quality": "Average confidence across analyzed timeframes",
			"agreement":    "Alignment between timeframe signals",
		},
	}
}

// BuildDebugTrace exposes the raw per-horizon features and consensus values
// verbatim for transparency.
func BuildDebugTrace(symbol string, consensus models.ConsensusSignal, requested []string) models.DebugTrace {
	analyzed := make([]string, 0, len(consensus.HorizonSignals))
	present := make(map[string]bool, len(consensus.HorizonSignals))
	details := make([]models.DebugHorizon, 0, len(consensus.HorizonSignals))

	for _, s := range consensus.HorizonSignals {
		analyzed = append(analyzed, s.Horizon)
		present[s.Horizon] = true

		weight, ok := HorizonWeights[s.Horizon]
		if !ok {
			weight = 1.0
		}
		effective := weight * s.Confidence
		details = append(details, models.DebugHorizon{
			Horizon:           s.Horizon,
			DirectionScore:    s.DirectionScore,
			Strength:          s.Strength,
			Confidence:        s.Confidence,
			Weight:            weight,
			EffectiveWeight:   effective,
			WeightedDirection: s.DirectionScore * effective,
			Features:          s.Features,
			Rationale:         s.Rationale,
		})
	}

	missing := make([]string, 0)
	for _, h := range requested {
		if !present[h] {
			missing = append(missing, h)
		}
	}

	return models.DebugTrace{
		Symbol:            symbol,
		HorizonsAnalyzed:  analyzed,
		HorizonsRequested: requested,
		HorizonsMissing:   missing,
		HorizonDetails:    details,
		ConsensusCalculation: map[string]float64{
			"direction":       consensus.Direction,
			"confidence":      consensus.Confidence,
			"agreement_score": consensus.AgreementScore,
		},
		RationaleTags: consensus.Rationale,
		Note:          debugTraceNote,
	}
}
