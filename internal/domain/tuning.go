package domain

// JudgmentTuning holds the per-currency numeric thresholds used by the
// domain judgment functions. The legacy system hard-coded these constants
// in several near-duplicate scripts with different values per pair; here
// they are configuration, persisted per currency and supplied to the
// judgment functions at registration time.
type JudgmentTuning struct {
	Currency string // six-letter pair, e.g. "USDJPY"

	// Dokyaku (same/reverse) judgment
	DokyakuDeviationPips float64 // min price/Heikin-Ashi deviation to count as divergence
	DokyakuMinConfidence float64 // confidence floor for a non-neutral call

	// Ikikaeri (go/return) judgment
	IkikaeriBodyRatio   float64 // min body/range ratio for a directional bar
	IkikaeriUpdatePips  float64 // min high/low update to count as a fresh extreme
	IkikaeriPauseFactor float64 // shrink factor marking a pause bar

	// Momi/overshoot judgment
	MomiRangePips       float64 // max window range still considered consolidation
	OvershootVolFactor  float64 // breakout threshold as a multiple of recent volatility
	OvershootMinConf    float64 // confidence floor for an overshoot call
	PipSize             float64 // price units per pip for this pair (0.01 for JPY quotes)
}
