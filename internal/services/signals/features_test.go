package signals

import (
	"testing"

	"CandlePull/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBars(interval string, intervalSecs int64, closes []float64) []models.Bar {
	bars := make([]models.Bar, len(closes))
	base := intervalSecs * 1000000
	for i, c := range closes {
		bars[i] = models.Bar{
			Symbol:   "BTCUSDT",
			Interval: interval,
			Ts:       base + int64(i)*intervalSecs,
			Open:     c,
			High:     c + 0.1,
			Low:      c - 0.1,
			Close:    c,
			Volume:   1.0,
		}
	}
	return bars
}

func risingCloses(start float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

func TestExtractFeaturesEmpty(t *testing.T) {
	f := ExtractFeatures("1h", nil)
	assert.Equal(t, 0, f.NBars)
	assert.Zero(t, f.Momentum)
	assert.Zero(t, f.Volatility)
	assert.Zero(t, f.TrendDirection)
}

func TestExtractFeaturesSingleBar(t *testing.T) {
	f := ExtractFeatures("1h", makeBars("1h", 3600, []float64{100}))
	assert.Equal(t, 1, f.NBars)
	assert.Zero(t, f.Momentum, "one bar cannot have momentum")
	assert.Zero(t, f.Volatility)
	assert.Equal(t, 1.0, f.Stability, "no volatility means full stability")
}

func TestExtractFeaturesUptrend(t *testing.T) {
	bars := makeBars("1h", 3600, risingCloses(100, 20))
	f := ExtractFeatures("1h", bars)

	assert.Equal(t, 20, f.NBars)
	assert.Greater(t, f.Momentum, 0.5, "19%% move should map well above weak threshold")
	assert.LessOrEqual(t, f.Momentum, 1.0)
	assert.Equal(t, 1.0, f.TrendDirection)
	assert.Greater(t, f.Stability, 0.9)
	assert.InDelta(t, 0.2, f.AvgRange, 1e-9)
	assert.Equal(t, 119.0, f.LastClose)
	assert.Equal(t, 100.0, f.FirstClose)
}

func TestExtractFeaturesDowntrendMirrors(t *testing.T) {
	up := ExtractFeatures("1h", makeBars("1h", 3600, risingCloses(100, 20)))

	down := make([]float64, 20)
	for i := range down {
		down[i] = 119 - float64(i)
	}
	dn := ExtractFeatures("1h", makeBars("1h", 3600, down))

	assert.Less(t, dn.Momentum, 0.0)
	assert.Equal(t, -1.0, dn.TrendDirection)
	assert.Greater(t, up.Momentum, 0.0)
}

func TestExtractFeaturesFlatIsNeutral(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	f := ExtractFeatures("1m", makeBars("1m", 60, closes))
	assert.Zero(t, f.Momentum)
	assert.Zero(t, f.TrendDirection)
	assert.Zero(t, f.Volatility)
}

func TestExtractFeaturesDeterministic(t *testing.T) {
	bars := makeBars("5m", 300, risingCloses(50, 40))
	a := ExtractFeatures("5m", bars)
	b := ExtractFeatures("5m", bars)
	require.Equal(t, a, b, "same input must produce byte-identical features")
}

func TestDirectionScoreClamped(t *testing.T) {
	f := models.FeatureSet{Momentum: 0.99, Stability: 1.0}
	assert.InDelta(t, 0.99, DirectionScore(f), 1e-12)

	f = models.FeatureSet{Momentum: -0.8, Stability: 0.5}
	assert.InDelta(t, -0.4, DirectionScore(f), 1e-12)
}

func TestStrengthIsDirectionIndependent(t *testing.T) {
	up := models.FeatureSet{Momentum: 0.7, Stability: 0.5}
	dn := models.FeatureSet{Momentum: -0.7, Stability: 0.9}
	assert.Equal(t, Strength(up), Strength(dn))
}
