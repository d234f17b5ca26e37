// Package judge implements the domain judgment functions layered on top of
// the primitive registry: dokyaku (same/reverse), ikikaeri (go/return),
// and momi/overshoot (consolidation vs. breakout). Each consumes a short
// window of OHLC bars, for some judgments alongside the Heikin-Ashi
// smoothed counterpart, and produces a direction with a confidence in
// [0, 1]. All numeric thresholds come from the per-currency tuning; none
// are hard-coded.
package judge

import "fx-signal-lab/internal/domain"

// HeikinAshi computes the smoothed candlestick series for a bar window.
// The recursion follows the standard definition: the first smoothed bar
// seeds from the first raw bar; every later open is the midpoint of the
// previous smoothed bar and every close is the average of the raw OHLC.
func HeikinAshi(bars domain.BarWindow) domain.BarWindow {
	if len(bars) == 0 {
		return nil
	}

	out := make(domain.BarWindow, len(bars))
	for i, b := range bars {
		haClose := (b.Open + b.High + b.Low + b.Close) / 4

		var haOpen float64
		if i == 0 {
			haOpen = (b.Open + b.Close) / 2
		} else {
			haOpen = (out[i-1].Open + out[i-1].Close) / 2
		}

		out[i] = domain.Bar{
			Time:  b.Time,
			Open:  haOpen,
			High:  max3(b.High, haOpen, haClose),
			Low:   min3(b.Low, haOpen, haClose),
			Close: haClose,
		}
	}
	return out
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
