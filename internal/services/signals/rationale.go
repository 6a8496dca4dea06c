package signals

import (
	"fmt"

	"CandlePull/internal/domain/models"
)

// Category classifies a rationale tag for presentation.
type Category string

const (
	CategoryDriver Category = "driver"
	CategoryRisk   Category = "risk"
	CategoryNote   Category = "note"
)

type taxonomyEntry struct {
	category Category
	text     string
}

var horizonNames = map[string]string{
	"1m":  "1-minute",
	"5m":  "5-minute",
	"15m": "15-minute",
	"1h":  "1-hour",
	"4h":  "4-hour",
	"1d":  "Daily",
	"1w":  "Weekly",
}

// taxonomy maps every known rationale tag to its category and sentence.
// Lookup only; emission order always follows the input tag order, so map
// iteration order never leaks into output.
var taxonomy = buildTaxonomy()

func buildTaxonomy() map[string]taxonomyEntry {
	t := map[string]taxonomyEntry{
		"strong_agreement":       {CategoryDriver, "Strong alignment across multiple timeframes"},
		"moderate_agreement":     {CategoryDriver, "Moderate agreement between analyzed timeframes"},
		"majority_bullish":       {CategoryDriver, "Majority of timeframes show bullish bias"},
		"majority_bearish":       {CategoryDriver, "Majority of timeframes show bearish bias"},
		"high_confidence_signal": {CategoryDriver, "High confidence due to quality data and clear trend"},
		"high_data_quality":      {CategoryDriver, "Excellent data quality with minimal gaps"},

		"signal_strong_buy":  {CategoryDriver, "Signal strength exceeds strong buy threshold (>=0.65)"},
		"signal_buy":         {CategoryDriver, "Signal strength exceeds buy threshold (>=0.20)"},
		"signal_strong_sell": {CategoryDriver, "Signal strength exceeds strong sell threshold (<=-0.65)"},
		"signal_sell":        {CategoryDriver, "Signal strength exceeds sell threshold (<=-0.20)"},

		"long_position":       {CategoryDriver, "Buy signal suggests long position"},
		"short_position":      {CategoryDriver, "Sell signal suggests short position"},
		"aggressive_sizing":   {CategoryDriver, "High confidence supports larger position size"},
		"conservative_sizing": {CategoryRisk, "Low confidence suggests smaller position size"},

		"weak_agreement":                       {CategoryRisk, "Weak agreement between timeframes - conflicting signals detected"},
		"conflicting_signals":                  {CategoryRisk, "Timeframes show conflicting directional bias"},
		"mixed_directions":                     {CategoryRisk, "Mixed bullish and bearish signals across horizons"},
		"short_term_bullish_long_term_bearish": {CategoryRisk, "Short-term uptrend conflicts with long-term downtrend"},
		"short_term_bearish_long_term_bullish": {CategoryRisk, "Short-term downtrend conflicts with long-term uptrend"},
		"low_confidence_signal":                {CategoryRisk, "Low confidence due to data quality or uncertainty"},
		"low_data_quality":                     {CategoryRisk, "Limited or gappy data reduces signal reliability"},
		"low_agreement_warning":                {CategoryRisk, "Low agreement between timeframes - proceed with caution"},
		"signal_neutral":                       {CategoryRisk, "Signal strength within neutral range (+/-0.20)"},
		"no_position_neutral":                  {CategoryRisk, "Neutral signal - no clear trade opportunity"},

		"no_data":      {CategoryNote, "Insufficient data available for analysis"},
		"engine_error": {CategoryNote, "Signal engine degraded to neutral after an internal error"},
	}

	for h, name := range horizonNames {
		t[h+"_strong_bullish"] = taxonomyEntry{CategoryDriver, fmt.Sprintf("%s timeframe shows strong bullish momentum", name)}
		t[h+"_weak_bullish"] = taxonomyEntry{CategoryDriver, fmt.Sprintf("%s timeframe shows weak bullish bias", name)}
		t[h+"_strong_bearish"] = taxonomyEntry{CategoryDriver, fmt.Sprintf("%s timeframe shows strong bearish momentum", name)}
		t[h+"_weak_bearish"] = taxonomyEntry{CategoryDriver, fmt.Sprintf("%s timeframe shows weak bearish bias", name)}
		t[h+"_neutral"] = taxonomyEntry{CategoryRisk, fmt.Sprintf("%s timeframe shows no clear direction", name)}
		t[h+"_high_volatility"] = taxonomyEntry{CategoryNote, fmt.Sprintf("%s timeframe experiencing high volatility", name)}
		t[h+"_low_volatility"] = taxonomyEntry{CategoryNote, fmt.Sprintf("%s timeframe experiencing low volatility", name)}
		t[h+"_high_confidence"] = taxonomyEntry{CategoryNote, fmt.Sprintf("%s timeframe has high confidence data", name)}
		t[h+"_low_confidence"] = taxonomyEntry{CategoryNote, fmt.Sprintf("%s timeframe has low confidence data", name)}
	}
	return t
}

// BuildExplanation categorises rationale tags into drivers, risks, and notes.
// Unknown tags become generic notes. Output order follows input tag order.
func BuildExplanation(tags []string) models.Explanation {
	exp := models.Explanation{
		Drivers: []string{},
		Risks:   []string{},
		Notes:   []string{},
	}
	for _, tag := range tags {
		entry, ok := taxonomy[tag]
		if !ok {
			exp.Notes = append(exp.Notes, fmt.Sprintf("Unknown rationale: %s", tag))
			continue
		}
		switch entry.category {
		case CategoryDriver:
			exp.Drivers = append(exp.Drivers, entry.text)
		case CategoryRisk:
			exp.Risks = append(exp.Risks, entry.text)
		default:
			exp.Notes = append(exp.Notes, entry.text)
		}
	}
	return exp
}
