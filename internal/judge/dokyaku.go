package judge

import "fx-signal-lab/internal/domain"

// Dokyaku estimates trend continuation versus reversal from the deviation
// between the real close and its Heikin-Ashi counterpart across the last
// two bars. A persistent deviation on the same side reads as the market
// pulling ahead of its smoothed path (continuation); a sign flip reads as
// the pull reversing.
//
// Requires at least two bars in each window; shorter windows are a neutral
// judgment, not an error.
func Dokyaku(bars, ha domain.BarWindow, t domain.JudgmentTuning) domain.Judgment {
	if len(bars) < 2 || len(ha) < 2 {
		return neutral
	}

	prev := pips(t, bars[len(bars)-2].Close-ha[len(ha)-2].Close)
	last := pips(t, bars[len(bars)-1].Close-ha[len(ha)-1].Close)

	if abs(last) < t.DokyakuDeviationPips {
		return neutral
	}

	dir := domain.DirectionUp
	if last < 0 {
		dir = domain.DirectionDown
	}

	// Same side on both bars: continuation, confidence growing with the
	// deviation. Opposite sides: the pull just flipped, call the new side
	// with reduced confidence.
	conf := clamp01(abs(last) / (2 * t.DokyakuDeviationPips))
	if sameSign(prev, last) {
		if conf < t.DokyakuMinConfidence {
			conf = t.DokyakuMinConfidence
		}
		return domain.Judgment{Direction: dir, Confidence: conf}
	}
	return domain.Judgment{Direction: dir, Confidence: clamp01(conf / 2)}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func sameSign(a, b float64) bool {
	return (a >= 0) == (b >= 0)
}
