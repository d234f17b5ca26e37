package domain

import "time"

// Bar is one OHLC bar of a price series. Times are bar-open times in UTC.
type Bar struct {
	Time  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Body returns the signed candle body (close - open).
func (b Bar) Body() float64 {
	return b.Close - b.Open
}

// Range returns the full high-low span of the bar.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// Bullish reports whether the bar closed above its open.
func (b Bar) Bullish() bool {
	return b.Close > b.Open
}

// Bearish reports whether the bar closed below its open.
func (b Bar) Bearish() bool {
	return b.Close < b.Open
}

// Mid returns the midpoint of the bar's range.
func (b Bar) Mid() float64 {
	return (b.High + b.Low) / 2
}

// BarWindow is a short window of consecutive bars, oldest first. Judgment
// functions consume windows of 2-5 bars.
type BarWindow []Bar

// Last returns the most recent bar. ok is false for an empty window.
func (w BarWindow) Last() (Bar, bool) {
	if len(w) == 0 {
		return Bar{}, false
	}
	return w[len(w)-1], true
}
