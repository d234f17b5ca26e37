package judge

import "fx-signal-lab/internal/domain"

// MomiOvershoot distinguishes a narrow consolidation range ("momi") from a
// range breakout ("overshoot"). The window excluding the last bar defines
// the range; the last close breaking beyond it by more than a
// volatility-scaled threshold is an overshoot in the breakout direction,
// while a window narrower than the momi range limit is a consolidation
// call (neutral direction, confidence growing as the range tightens).
//
// Requires at least three bars so the range has substance.
func MomiOvershoot(bars domain.BarWindow, t domain.JudgmentTuning) domain.Judgment {
	if len(bars) < 3 {
		return neutral
	}

	window := bars[:len(bars)-1]
	last := bars[len(bars)-1]

	high := window[0].High
	low := window[0].Low
	volSum := 0.0
	for _, b := range window {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
		volSum += b.Range()
	}
	volatility := volSum / float64(len(window))
	breakoutPx := t.OvershootVolFactor * volatility

	switch {
	case last.Close > high+breakoutPx:
		conf := clamp01((last.Close - high) / (2 * breakoutPx))
		if conf < t.OvershootMinConf {
			conf = t.OvershootMinConf
		}
		return domain.Judgment{Direction: domain.DirectionUp, Confidence: conf}
	case last.Close < low-breakoutPx:
		conf := clamp01((low - last.Close) / (2 * breakoutPx))
		if conf < t.OvershootMinConf {
			conf = t.OvershootMinConf
		}
		return domain.Judgment{Direction: domain.DirectionDown, Confidence: conf}
	}

	rangePips := pips(t, high-low)
	if rangePips <= t.MomiRangePips {
		// Consolidation: tighter ranges make a stronger momi call.
		return domain.Judgment{
			Direction:  domain.DirectionNeutral,
			Confidence: clamp01(1 - rangePips/t.MomiRangePips),
		}
	}
	return neutral
}
