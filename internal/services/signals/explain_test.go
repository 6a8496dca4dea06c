package signals

import (
	"encoding/json"
	"testing"

	"CandlePull/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildExplanationCategorises(t *testing.T) {
	exp := BuildExplanation([]string{
		"strong_agreement",
		"1h_strong_bullish",
		"conflicting_signals",
		"4h_high_volatility",
		"signal_buy",
	})

	assert.Len(t, exp.Drivers, 3)
	assert.Len(t, exp.Risks, 1)
	assert.Len(t, exp.Notes, 1)
	assert.Equal(t, "Strong alignment across multiple timeframes", exp.Drivers[0])
	assert.Equal(t, "4-hour timeframe experiencing high volatility", exp.Notes[0])
}

func TestBuildExplanationUnknownTagBecomesNote(t *testing.T) {
	exp := BuildExplanation([]string{"some_future_tag"})
	require.Len(t, exp.Notes, 1)
	assert.Equal(t, "Unknown rationale: some_future_tag", exp.Notes[0])
}

func TestBuildExplanationOrderFollowsInput(t *testing.T) {
	exp := BuildExplanation([]string{"1m_weak_bullish", "5m_strong_bullish", "majority_bullish"})
	assert.Equal(t, []string{
		"1-minute timeframe shows weak bullish bias",
		"5-minute timeframe shows strong bullish momentum",
		"Majority of timeframes show bullish bias",
	}, exp.Drivers)
}

func TestBuildExplanationDeterministic(t *testing.T) {
	tags := []string{"strong_agreement", "1h_neutral", "no_data", "signal_neutral", "1d_low_confidence"}
	a, _ := json.Marshal(BuildExplanation(tags))
	for i := 0; i < 50; i++ {
		b, _ := json.Marshal(BuildExplanation(tags))
		require.Equal(t, string(a), string(b), "explanation must be byte-identical across runs")
	}
}

func TestEveryHorizonTagIsKnown(t *testing.T) {
	suffixes := []string{
		"_strong_bullish", "_weak_bullish", "_strong_bearish", "_weak_bearish",
		"_neutral", "_high_volatility", "_low_volatility", "_high_confidence", "_low_confidence",
	}
	for h := range horizonNames {
		for _, sfx := range suffixes {
			_, ok := taxonomy[h+sfx]
			assert.True(t, ok, "missing taxonomy entry for %s%s", h, sfx)
		}
	}
}

func TestConfidenceBreakdownReportsExistingNumbers(t *testing.T) {
	consensus := models.ConsensusSignal{
		Confidence:     0.42,
		AgreementScore: 0.7,
		HorizonSignals: []models.HorizonSignal{
			hs("1m", 0.5, 0.6),
			hs("1h", 0.5, 0.8),
		},
	}
	b := BuildConfidenceBreakdown(consensus)
	assert.Equal(t, 0.42, b.Total)
	assert.InDelta(t, 0.7, b.DataQuality, 1e-9)
	assert.Equal(t, 0.7, b.Agreement)
	assert.NotEmpty(t, b.Labels["total"])
}

func TestDebugTraceVerbatim(t *testing.T) {
	consensus := models.ConsensusSignal{
		Direction:      -0.31,
		Confidence:     0.55,
		AgreementScore: 0.66,
		HorizonSignals: []models.HorizonSignal{hs("4h", -0.4, 0.9)},
		Rationale:      []string{"moderate_agreement"},
	}
	trace := BuildDebugTrace("ETHUSDT", consensus, []string{"4h", "1d"})

	assert.Equal(t, "ETHUSDT", trace.Symbol)
	assert.Equal(t, []string{"4h"}, trace.HorizonsAnalyzed)
	assert.Equal(t, []string{"1d"}, trace.HorizonsMissing)
	assert.Equal(t, -0.31, trace.ConsensusCalculation["direction"])
	assert.Equal(t, 0.55, trace.ConsensusCalculation["confidence"])
	assert.Equal(t, 0.66, trace.ConsensusCalculation["agreement_score"])
	require.Len(t, trace.HorizonDetails, 1)
	assert.Equal(t, 2.0, trace.HorizonDetails[0].Weight)
	assert.InDelta(t, 1.8, trace.HorizonDetails[0].EffectiveWeight, 1e-9)
	assert.NotEmpty(t, trace.Note)
}
