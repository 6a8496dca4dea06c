package models

import "fmt"

// Bar is an immutable OHLCV record for a fixed time bucket.
// Identity is (Symbol, Interval, Ts); Ts is unix seconds at bucket start, UTC.
type Bar struct {
	Symbol   string  `json:"symbol"`
	Interval string  `json:"interval"`
	Ts       int64   `json:"ts"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
}

// Validate checks the OHLCV invariant: low <= min(open, close),
// max(open, close) <= high, volume >= 0, a known interval, and a positive
// timestamp aligned to the interval's bucket boundary.
func (b *Bar) Validate() error {
	if b == nil {
		return fmt.Errorf("bar is nil")
	}
	if b.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	iv := Interval(b.Interval)
	if !IsValidInterval(iv) {
		return fmt.Errorf("unknown interval: %q", b.Interval)
	}
	if b.Ts <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	if b.Ts%iv.Seconds() != 0 {
		return fmt.Errorf("timestamp %d not aligned to %s bucket", b.Ts, b.Interval)
	}
	if b.Volume < 0 {
		return fmt.Errorf("negative volume")
	}
	lo, hi := b.Open, b.Open
	if b.Close < lo {
		lo = b.Close
	}
	if b.Close > hi {
		hi = b.Close
	}
	if b.Low > lo || b.High < hi {
		return fmt.Errorf("ohlc out of range: low=%v open=%v close=%v high=%v", b.Low, b.Open, b.Close, b.High)
	}
	return nil
}
