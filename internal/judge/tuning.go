package judge

import (
	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/pkgid"
)

// DefaultTuning returns the packaged thresholds for a currency pair.
// These are starting points for research runs, not calibrated truths;
// persisted per-pair overrides take precedence (see storage.TuningStore).
func DefaultTuning(c pkgid.Currency) domain.JudgmentTuning {
	pip := 0.01
	if c == pkgid.CurrencyEURUSD {
		pip = 0.0001
	}
	return domain.JudgmentTuning{
		Currency:             c.Pair(),
		DokyakuDeviationPips: 2.0,
		DokyakuMinConfidence: 0.35,
		IkikaeriBodyRatio:    0.4,
		IkikaeriUpdatePips:   1.0,
		IkikaeriPauseFactor:  0.5,
		MomiRangePips:        8.0,
		OvershootVolFactor:   1.5,
		OvershootMinConf:     0.5,
		PipSize:              pip,
	}
}

// clamp01 bounds a confidence into [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// pips converts a price distance into pips under the tuning's pip size.
func pips(t domain.JudgmentTuning, distance float64) float64 {
	if t.PipSize <= 0 {
		return distance
	}
	return distance / t.PipSize
}

// neutral is the zero-confidence fallback every judgment degrades to when
// its window is too short or absent.
var neutral = domain.Judgment{Direction: domain.DirectionNeutral, Confidence: 0}
