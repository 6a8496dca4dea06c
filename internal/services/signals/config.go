package signals

// Horizon analysis defaults.
var DefaultHorizons = []string{"1m", "5m", "15m", "1h", "4h", "1d"}

// HorizonWeights gives longer horizons more weight in the consensus.
var HorizonWeights = map[string]float64{
	"1m":  0.5,
	"5m":  0.8,
	"15m": 1.0,
	"1h":  1.5,
	"4h":  2.0,
	"1d":  2.5,
	"1w":  3.0,
}

// ShortHorizons and LongHorizons partition the horizon set for conflict detection.
var (
	ShortHorizons = map[string]bool{"1m": true, "5m": true, "15m": true}
	LongHorizons  = map[string]bool{"1h": true, "4h": true, "1d": true, "1w": true}
)

// ExpectedBars is the bar count at which sufficiency saturates per horizon.
// Aligned to the feature lookback so a full clean window reaches full sufficiency.
var ExpectedBars = map[string]int{
	"1m":  20,
	"5m":  20,
	"15m": 20,
	"1h":  20,
	"4h":  20,
	"1d":  20,
	"1w":  20,
}

const (
	// Feature extraction lookbacks.
	MomentumLookback   = 20
	VolatilityLookback = 20

	// Momentum tanh scale: maps typical intraday moves to |momentum| in [0.2, 0.8].
	momentumScale = 10.0
	// Stability scale for 1 / (1 + c * volatility).
	stabilityScale = 20.0
	// Trend direction epsilon on momentum.
	trendEpsilon = 0.1

	// Confidence scoring.
	MinBarsForConfidence = 10
	volatilityPenalty    = 10.0
	maxVolatilityPenalty = 0.5

	// Per-horizon rationale thresholds.
	strongDirectionThreshold = 0.5
	weakDirectionThreshold   = 0.2
	highVolatilityThreshold  = 0.05
	lowVolatilityThreshold   = 0.01
	highConfidenceThreshold  = 0.7
	lowConfidenceThreshold   = 0.3

	// State mapping thresholds.
	StrongBuyThreshold  = 0.65
	BuyThreshold        = 0.20
	SellThreshold       = -0.20
	StrongSellThreshold = -0.65

	// Signal-level confidence qualifiers.
	signalHighConfidence = 0.75
	signalLowConfidence  = 0.4

	// Trade plan.
	InvalidationBufferPct = 0.02
	planLookback          = 20
)

// ValidityWindowSeconds maps the primary horizon to the plan's lifetime.
var ValidityWindowSeconds = map[string]int64{
	"1m":  300,
	"5m":  3600,
	"15m": 14400,
	"1h":  21600,
	"4h":  86400,
	"1d":  432000,
	"1w":  1209600,
}

type sizeBand struct {
	low, high, pct float64
}

// sizeByConfidence maps confidence bands to size suggestions (% of capital).
// Bands are half-open [low, high) except the last, which includes 1.0.
var sizeByConfidence = []sizeBand{
	{0.0, 0.4, 0.25},
	{0.4, 0.6, 0.5},
	{0.6, 0.75, 1.0},
	{0.75, 0.9, 1.5},
	{0.9, 1.0, 2.0},
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
