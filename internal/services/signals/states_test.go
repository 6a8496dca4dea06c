package signals

import (
	"testing"

	"CandlePull/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func consensusWithDirection(d, conf float64) models.ConsensusSignal {
	return models.ConsensusSignal{
		Direction:      d,
		Confidence:     conf,
		AgreementScore: 1.0,
		Rationale:      []string{"strong_agreement"},
	}
}

func TestMapToStateBoundaries(t *testing.T) {
	cases := []struct {
		direction float64
		want      models.SignalState
	}{
		{1.0, models.StateStrongBuy},
		{0.65, models.StateStrongBuy},
		{0.649999, models.StateBuy},
		{0.20, models.StateBuy},
		{0.199999, models.StateNeutral},
		{0.0, models.StateNeutral},
		{-0.199999, models.StateNeutral},
		{-0.20, models.StateSell},
		{-0.649999, models.StateSell},
		{-0.65, models.StateStrongSell},
		{-1.0, models.StateStrongSell},
	}
	for _, tc := range cases {
		state, _ := MapToState(consensusWithDirection(tc.direction, 0.5))
		assert.Equal(t, tc.want, state, "direction %v", tc.direction)
	}
}

func TestMapToStateTotal(t *testing.T) {
	// every direction in [-1, 1] maps to a state
	for d := -1.0; d <= 1.0; d += 0.001 {
		state, _ := MapToState(consensusWithDirection(d, 0.5))
		switch state {
		case models.StateStrongBuy, models.StateBuy, models.StateNeutral, models.StateSell, models.StateStrongSell:
		default:
			t.Fatalf("direction %v mapped to unexpected state %q", d, state)
		}
	}
}

func TestMapToStateAppendsStateTag(t *testing.T) {
	_, rationale := MapToState(consensusWithDirection(0.7, 0.5))
	assert.Contains(t, rationale, "signal_strong_buy")

	_, rationale = MapToState(consensusWithDirection(-0.3, 0.5))
	assert.Contains(t, rationale, "signal_sell")

	_, rationale = MapToState(consensusWithDirection(0.0, 0.5))
	assert.Contains(t, rationale, "signal_neutral")
}

func TestMapToStateConfidenceQualifiers(t *testing.T) {
	_, rationale := MapToState(consensusWithDirection(0.5, 0.8))
	assert.Contains(t, rationale, "high_confidence_signal")

	_, rationale = MapToState(consensusWithDirection(0.5, 0.3))
	assert.Contains(t, rationale, "low_confidence_signal")

	_, rationale = MapToState(consensusWithDirection(0.5, 0.6))
	assert.NotContains(t, rationale, "high_confidence_signal")
	assert.NotContains(t, rationale, "low_confidence_signal")
}

func TestMapToStateDoesNotMutateConsensusRationale(t *testing.T) {
	c := consensusWithDirection(0.9, 0.9)
	before := len(c.Rationale)
	_, _ = MapToState(c)
	assert.Len(t, c.Rationale, before)
}
