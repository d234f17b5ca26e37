package domain

import (
	"time"

	"fx-signal-lab/internal/pkgid"
)

// RawUpdate is one raw market-data update destined for a layer-0 node.
// Exactly one of Value or Bar is set: scalar symbols (prices, volumes,
// precomputed external indicators) carry Value; bar feeds carry Bar and the
// session folds them into rolling windows.
type RawUpdate struct {
	Symbol    string
	Timeframe pkgid.Timeframe
	Period    pkgid.Period
	Currency  pkgid.Currency
	Value     *float64
	Bar       *Bar
	Time      time.Time
}

// EvaluationRun summarizes one evaluation pass for observability and
// persistence. Corresponds to the evaluation_runs table in ClickHouse.
type EvaluationRun struct {
	StartedMs     int64 // Unix timestamp in milliseconds
	DurationUs    int64 // pass duration in microseconds
	NodeCount     int
	CacheHits     int
	CacheMisses   int
	Substitutions int // missing inputs replaced by defaults
	TimedOut      bool
}
