package signals

import (
	"testing"

	"CandlePull/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hs(horizon string, direction, confidence float64) models.HorizonSignal {
	return models.HorizonSignal{
		Horizon:        horizon,
		DirectionScore: direction,
		Strength:       direction,
		Confidence:     confidence,
		Features:       models.FeatureSet{Horizon: horizon, NBars: 50},
	}
}

func TestConsensusEmpty(t *testing.T) {
	c := ComputeConsensus(nil)
	assert.Zero(t, c.Direction)
	assert.Zero(t, c.Confidence)
	assert.Contains(t, c.Rationale, "no_data")
}

func TestConsensusWeightedDirection(t *testing.T) {
	// 1d carries five times the weight of 1m
	c := ComputeConsensus([]models.HorizonSignal{
		hs("1m", 1.0, 1.0),
		hs("1d", -1.0, 1.0),
	})
	// (0.5 - 2.5) / 3.0
	assert.InDelta(t, -2.0/3.0, c.Direction, 1e-9)
}

func TestConsensusZeroWeightIsNeutral(t *testing.T) {
	c := ComputeConsensus([]models.HorizonSignal{
		hs("1m", 1.0, 0.0),
		hs("1h", -1.0, 0.0),
	})
	assert.Zero(t, c.Direction)
	assert.Zero(t, c.Confidence)
}

func TestAgreementAllBullish(t *testing.T) {
	score := ComputeAgreementScore([]models.HorizonSignal{
		hs("1m", 0.5, 1), hs("5m", 0.9, 1), hs("1h", 0.1, 1),
	})
	assert.Equal(t, 1.0, score)
}

func TestAgreementBalancedIsZero(t *testing.T) {
	score := ComputeAgreementScore([]models.HorizonSignal{
		hs("1m", 0.5, 1), hs("1h", -0.5, 1),
	})
	assert.Zero(t, score)
}

func TestAgreementAllZeroDirections(t *testing.T) {
	score := ComputeAgreementScore([]models.HorizonSignal{
		hs("1m", 0, 1), hs("1h", 0, 1),
	})
	assert.Equal(t, 1.0, score)
}

func TestAgreementBounds(t *testing.T) {
	cases := [][]models.HorizonSignal{
		{hs("1m", 0.9, 1)},
		{hs("1m", 0.9, 1), hs("5m", -0.9, 1), hs("1h", 0.9, 1)},
		{hs("1m", -0.9, 1), hs("5m", -0.2, 1), hs("1h", -0.6, 1), hs("4h", 0.4, 1)},
	}
	for _, signals := range cases {
		score := ComputeAgreementScore(signals)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestConsensusConfidenceIsMeanTimesAgreement(t *testing.T) {
	c := ComputeConsensus([]models.HorizonSignal{
		hs("1m", 0.8, 0.6),
		hs("1h", 0.7, 0.8),
	})
	require.Equal(t, 1.0, c.AgreementScore)
	assert.InDelta(t, 0.7, c.Confidence, 1e-9)
}

func TestConsensusConflictTags(t *testing.T) {
	c := ComputeConsensus([]models.HorizonSignal{
		hs("1m", 0.8, 1.0),
		hs("5m", 0.7, 1.0),
		hs("1h", -0.8, 1.0),
		hs("4h", -0.7, 1.0),
	})
	assert.Less(t, c.AgreementScore, 0.5)
	assert.Contains(t, c.Rationale, "weak_agreement")
	assert.Contains(t, c.Rationale, "conflicting_signals")
	assert.Contains(t, c.Rationale, "mixed_directions")
	assert.Contains(t, c.Rationale, "short_term_bullish_long_term_bearish")
}

func TestConsensusReverseConflictTag(t *testing.T) {
	c := ComputeConsensus([]models.HorizonSignal{
		hs("1m", -0.8, 1.0),
		hs("1h", 0.8, 1.0),
	})
	assert.Contains(t, c.Rationale, "short_term_bearish_long_term_bullish")
}

func TestConsensusMajorityTags(t *testing.T) {
	c := ComputeConsensus([]models.HorizonSignal{
		hs("1m", 0.6, 1.0),
		hs("5m", 0.5, 1.0),
		hs("1h", 0.7, 1.0),
	})
	assert.Contains(t, c.Rationale, "majority_bullish")
	assert.Contains(t, c.Rationale, "strong_agreement")

	c = ComputeConsensus([]models.HorizonSignal{
		hs("1m", -0.6, 1.0),
		hs("5m", -0.5, 1.0),
		hs("1h", -0.7, 1.0),
	})
	assert.Contains(t, c.Rationale, "majority_bearish")
}
