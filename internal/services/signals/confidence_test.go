package signals

import (
	"testing"

	"CandlePull/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func spacedBars(intervalSecs int64, n int) []models.Bar {
	bars := make([]models.Bar, n)
	base := intervalSecs * 500000
	for i := range bars {
		bars[i] = models.Bar{Ts: base + int64(i)*intervalSecs, Open: 1, High: 1, Low: 1, Close: 1}
	}
	return bars
}

func TestSufficiencyFloorBelowMinBars(t *testing.T) {
	for n := 1; n < MinBarsForConfidence; n++ {
		c := ComputeConfidence("1h", n, 1.0, 0.0)
		assert.Less(t, c, 0.5, "confidence must stay below 0.5 with %d bars", n)
	}
}

func TestSufficiencySaturates(t *testing.T) {
	c := ComputeConfidence("1h", 100, 1.0, 0.0)
	assert.InDelta(t, 1.0, c, 1e-9)
}

func TestVolatilityPenaltyCapped(t *testing.T) {
	calm := ComputeConfidence("1h", 100, 1.0, 0.0)
	wild := ComputeConfidence("1h", 100, 1.0, 10.0)
	assert.Greater(t, calm, wild)
	assert.InDelta(t, 0.5, wild, 1e-9, "penalty caps at 50%%")
}

func TestContinuityPerfect(t *testing.T) {
	assert.Equal(t, 1.0, ComputeContinuity(spacedBars(60, 30), 60))
}

func TestContinuityTooFewBars(t *testing.T) {
	assert.Equal(t, 1.0, ComputeContinuity(spacedBars(60, 1), 60))
}

func TestContinuityGapsDecreaseLinearly(t *testing.T) {
	bars := spacedBars(60, 10)
	// open a two-step hole: 10 bars span 10 steps
	for i := 5; i < len(bars); i++ {
		bars[i].Ts += 60
	}
	score := ComputeContinuity(bars, 60)
	assert.Less(t, score, 1.0)
	assert.InDelta(t, 0.9, score, 1e-9, "1 missing step out of 10")
}

func TestContinuityNonMonotonic(t *testing.T) {
	bars := spacedBars(60, 10)
	bars[4].Ts = bars[5].Ts + 120
	score := ComputeContinuity(bars, 60)
	assert.Less(t, score, 0.5)
}

func TestContinuityMisaligned(t *testing.T) {
	bars := spacedBars(60, 10)
	for i := range bars {
		bars[i].Ts += int64(i) * 7 // drifting off-grid spacing
	}
	score := ComputeContinuity(bars, 60)
	assert.Less(t, score, 1.0)
}

func TestConfidenceComposite(t *testing.T) {
	// all three components multiply
	c := ComputeConfidence("1h", 10, 0.5, 0.0)
	assert.InDelta(t, 0.25, c, 1e-9) // sufficiency 0.5 * continuity 0.5
}

func TestConfidenceBounds(t *testing.T) {
	for _, n := range []int{0, 1, 10, 50, 1000} {
		for _, cont := range []float64{0, 0.4, 1} {
			for _, vol := range []float64{0, 0.03, 5} {
				c := ComputeConfidence("5m", n, cont, vol)
				assert.GreaterOrEqual(t, c, 0.0)
				assert.LessOrEqual(t, c, 1.0)
			}
		}
	}
}
