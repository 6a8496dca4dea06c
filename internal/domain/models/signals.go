package models

// SignalState is a discrete trading signal state.
type SignalState string

const (
	StateStrongBuy  SignalState = "STRONG_BUY"
	StateBuy        SignalState = "BUY"
	StateNeutral    SignalState = "NEUTRAL"
	StateSell       SignalState = "SELL"
	StateStrongSell SignalState = "STRONG_SELL"
)

// FeatureSet holds deterministic features extracted from bars for one horizon.
type FeatureSet struct {
	Horizon        string  `json:"horizon"`
	NBars          int     `json:"n_bars"`
	Momentum       float64 `json:"momentum"`        // [-1, +1]
	Volatility     float64 `json:"volatility"`      // std of log returns, >= 0
	TrendDirection float64 `json:"trend_direction"` // -1, 0, +1
	Stability      float64 `json:"stability"`       // [0, 1]
	LastClose      float64 `json:"last_close"`
	FirstClose     float64 `json:"first_close"`
	AvgRange       float64 `json:"avg_range"` // mean(high - low), >= 0
}

// HorizonSignal is the signal derived from a single horizon.
type HorizonSignal struct {
	Horizon        string     `json:"horizon"`
	DirectionScore float64    `json:"direction_score"` // [-1, +1]
	Strength       float64    `json:"strength"`        // [0, 1]
	Confidence     float64    `json:"confidence"`      // [0, 1]
	Features       FeatureSet `json:"features"`
	Rationale      []string   `json:"rationale"`
}

// ConsensusSignal is the weighted multi-horizon consensus.
type ConsensusSignal struct {
	Direction      float64         `json:"direction"`       // [-1, +1]
	Confidence     float64         `json:"confidence"`      // [0, 1]
	AgreementScore float64         `json:"agreement_score"` // [0, 1]
	HorizonSignals []HorizonSignal `json:"-"`
	Rationale      []string        `json:"rationale"`
}

// TradePlan is the actionable plan derived from a signal.
type TradePlan struct {
	State             SignalState `json:"state"`
	Confidence        float64     `json:"confidence"`
	EntryPrice        *float64    `json:"entry_price"` // nil when NEUTRAL
	InvalidationPrice float64     `json:"invalidation_price"`
	ValidUntilTs      int64       `json:"valid_until_ts"`
	SizeSuggestionPct float64     `json:"size_suggestion_pct"`
	Rationale         []string    `json:"rationale"`
	HorizonsAnalyzed  []string    `json:"horizons_analyzed"`
}

// Explanation carries human-readable sentences grouped by category.
type Explanation struct {
	Drivers []string `json:"drivers"`
	Risks   []string `json:"risks"`
	Notes   []string `json:"notes"`
}

// ConfidenceBreakdown exposes the components of the consensus confidence.
// It only reports numbers already present in the response.
type ConfidenceBreakdown struct {
	Total       float64           `json:"total"`
	DataQuality float64           `json:"data_quality"`
	Agreement   float64           `json:"agreement"`
	Labels      map[string]string `json:"explanation"`
}

// DebugHorizon is the per-horizon entry of a debug trace.
type DebugHorizon struct {
	Horizon           string     `json:"horizon"`
	DirectionScore    float64    `json:"direction_score"`
	Strength          float64    `json:"strength"`
	Confidence        float64    `json:"confidence"`
	Weight            float64    `json:"weight"`
	EffectiveWeight   float64    `json:"effective_weight"`
	WeightedDirection float64    `json:"weighted_direction"`
	Features          FeatureSet `json:"features"`
	Rationale         []string   `json:"rationale"`
}

// DebugTrace exposes intermediate values verbatim; nothing is recalculated.
type DebugTrace struct {
	Symbol               string             `json:"symbol"`
	HorizonsAnalyzed     []string           `json:"horizons_analyzed"`
	HorizonsRequested    []string           `json:"horizons_requested"`
	HorizonsMissing      []string           `json:"horizons_missing"`
	HorizonDetails       []DebugHorizon     `json:"horizon_details"`
	ConsensusCalculation map[string]float64 `json:"consensus_calculation"`
	RationaleTags        []string           `json:"rationale_tags"`
	Note                 string             `json:"note"`
}

// SignalResponse is the full /v1/signal payload.
type SignalResponse struct {
	Symbol         string          `json:"symbol"`
	State          SignalState     `json:"state"`
	Confidence     float64         `json:"confidence"`
	TradePlan      TradePlan       `json:"trade_plan"`
	Consensus      ConsensusSignal `json:"consensus"`
	HorizonDetails []HorizonSignal `json:"horizon_details"`
	AsOfTs         int64           `json:"as_of_ts"`
	Version        string          `json:"version"`

	Explanation         *Explanation         `json:"explanation,omitempty"`
	ConfidenceBreakdown *ConfidenceBreakdown `json:"confidence_breakdown,omitempty"`
	DebugTrace          *DebugTrace          `json:"debug_trace,omitempty"`
}
