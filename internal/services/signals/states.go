package signals

import (
	"CandlePull/internal/domain/models"
)

// MapToState maps consensus direction to a discrete signal state and appends
// state and confidence qualifier tags to a copy of the consensus rationale.
// Boundaries: exactly 0.20 is BUY, exactly -0.20 is SELL, exactly 0.65 is
// STRONG_BUY, exactly -0.65 is STRONG_SELL.
func MapToState(consensus models.ConsensusSignal) (models.SignalState, []string) {
	direction := consensus.Direction
	rationale := append([]string(nil), consensus.Rationale...)

	var state models.SignalState
	switch {
	case direction >= StrongBuyThreshold:
		state = models.StateStrongBuy
		rationale = append(rationale, "signal_strong_buy")
	case direction >= BuyThreshold:
		state = models.StateBuy
		rationale = append(rationale, "signal_buy")
	case direction <= StrongSellThreshold:
		state = models.StateStrongSell
		rationale = append(rationale, "signal_strong_sell")
	case direction <= SellThreshold:
		state = models.StateSell
		rationale = append(rationale, "signal_sell")
	default:
		state = models.StateNeutral
		rationale = append(rationale, "signal_neutral")
	}

	confidence := consensus.Confidence
	if confidence >= signalHighConfidence {
		rationale = append(rationale, "high_confidence_signal")
	} else if confidence <= signalLowConfidence {
		rationale = append(rationale, "low_confidence_signal")
	}

	return state, rationale
}
