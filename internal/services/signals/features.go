package signals

import (
	"math"

	"CandlePull/internal/domain/models"
)

// ExtractFeatures computes deterministic features from bars (oldest first)
// for a single horizon. An empty slice yields neutral features.
func ExtractFeatures(horizon string, bars []models.Bar) models.FeatureSet {
	n := len(bars)
	if n == 0 {
		return models.FeatureSet{Horizon: horizon}
	}

	closes := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
	}
	lastClose := closes[n-1]
	firstClose := closes[0]

	momentum := computeMomentum(closes)
	volatility := computeVolatility(closes)

	var trend float64
	switch {
	case momentum > trendEpsilon:
		trend = 1
	case momentum < -trendEpsilon:
		trend = -1
	}

	stability := 1.0
	if volatility > 0 {
		stability = clamp(1.0/(1.0+volatility*stabilityScale), 0, 1)
	}

	var rangeSum float64
	for _, b := range bars {
		rangeSum += b.High - b.Low
	}

	return models.FeatureSet{
		Horizon:        horizon,
		NBars:          n,
		Momentum:       momentum,
		Volatility:     volatility,
		TrendDirection: trend,
		Stability:      stability,
		LastClose:      lastClose,
		FirstClose:     firstClose,
		AvgRange:       rangeSum / float64(n),
	}
}

// computeMomentum returns tanh-normalised return over the lookback window.
// The lookback adapts to the available history; a single bar yields 0.
func computeMomentum(closes []float64) float64 {
	n := len(closes)
	lookback := MomentumLookback
	if n-1 < lookback {
		lookback = n - 1
	}
	if lookback < 1 {
		return 0
	}
	start := closes[n-1-lookback]
	if start <= 0 {
		return 0
	}
	r := (closes[n-1] - start) / start
	return math.Tanh(r * momentumScale)
}

// computeVolatility returns the sample standard deviation of per-bar log
// returns over the lookback window, 0 when fewer than two returns exist.
func computeVolatility(closes []float64) float64 {
	n := len(closes)
	lookback := VolatilityLookback
	if n-1 < lookback {
		lookback = n - 1
	}
	if lookback < 2 {
		return 0
	}
	rets := make([]float64, 0, lookback)
	for i := n - lookback; i < n; i++ {
		prev, cur := closes[i-1], closes[i]
		if prev <= 0 || cur <= 0 {
			rets = append(rets, 0)
			continue
		}
		rets = append(rets, math.Log(cur/prev))
	}
	var sum, sum2 float64
	for _, r := range rets {
		sum += r
		sum2 += r * r
	}
	m := float64(len(rets))
	mean := sum / m
	variance := (sum2 - m*mean*mean) / (m - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// DirectionScore combines momentum and stability into a [-1, +1] bias.
func DirectionScore(f models.FeatureSet) float64 {
	return clamp(f.Momentum*f.Stability, -1, 1)
}

// Strength is the magnitude of momentum independent of direction.
func Strength(f models.FeatureSet) float64 {
	return clamp(math.Abs(f.Momentum), 0, 1)
}
