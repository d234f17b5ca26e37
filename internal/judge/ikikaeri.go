package judge

import "fx-signal-lab/internal/domain"

// Ikikaeri classifies the short-term wave pattern from consecutive bar
// directions and extreme updates: "iki" (going) when the smoothed
// direction persists and the corresponding extreme keeps updating,
// a pause when direction persists but momentum stalls, and "kaeri"
// (returning) when the smoothed direction flips.
//
// Requires at least two bars in each window.
func Ikikaeri(bars, ha domain.BarWindow, t domain.JudgmentTuning) domain.Judgment {
	if len(bars) < 2 || len(ha) < 2 {
		return neutral
	}

	prevHA := ha[len(ha)-2]
	lastHA := ha[len(ha)-1]
	prev := bars[len(bars)-2]
	last := bars[len(bars)-1]

	dir := domain.DirectionNeutral
	switch {
	case lastHA.Bullish():
		dir = domain.DirectionUp
	case lastHA.Bearish():
		dir = domain.DirectionDown
	default:
		return neutral
	}

	flipped := (lastHA.Bullish() && prevHA.Bearish()) || (lastHA.Bearish() && prevHA.Bullish())
	if flipped {
		// Direction just reversed: a "return" call in the new direction.
		return domain.Judgment{Direction: dir, Confidence: 0.6}
	}

	updatePx := t.IkikaeriUpdatePips * t.PipSize
	extremeUpdated := (dir == domain.DirectionUp && last.High > prev.High+updatePx) ||
		(dir == domain.DirectionDown && last.Low < prev.Low-updatePx)

	bodyRatio := 0.0
	if r := last.Range(); r > 0 {
		bodyRatio = abs(last.Body()) / r
	}

	if extremeUpdated && bodyRatio >= t.IkikaeriBodyRatio {
		// Going: direction persists and the extreme keeps updating.
		return domain.Judgment{Direction: dir, Confidence: clamp01(0.5 + bodyRatio/2)}
	}

	// Pause: direction persists but the wave has stalled.
	return domain.Judgment{Direction: dir, Confidence: clamp01(t.IkikaeriPauseFactor * bodyRatio)}
}
