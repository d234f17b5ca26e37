package backtest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"fx-signal-lab/internal/domain"
)

// Results aggregates one replay.
type Results struct {
	Updates int // raw updates replayed
	Passes  int // evaluation passes completed

	Signals        int
	ByDirection    map[domain.Direction]int
	MeanConfidence float64

	MeanPassDuration time.Duration
	MaxPassDuration  time.Duration
	TimedOut         int
	Substitutions    int

	confidenceSum float64
	durationSum   time.Duration
}

func newResults() *Results {
	return &Results{ByDirection: make(map[domain.Direction]int)}
}

func (r *Results) addSignal(s domain.Signal) {
	r.Signals++
	r.ByDirection[s.Direction]++
	r.confidenceSum += s.Confidence
}

func (r *Results) addRun(run domain.EvaluationRun) {
	r.Passes++
	d := time.Duration(run.DurationUs) * time.Microsecond
	r.durationSum += d
	if d > r.MaxPassDuration {
		r.MaxPassDuration = d
	}
	if run.TimedOut {
		r.TimedOut++
	}
	r.Substitutions += run.Substitutions
}

func (r *Results) finalize() {
	if r.Signals > 0 {
		r.MeanConfidence = r.confidenceSum / float64(r.Signals)
	}
	if r.Passes > 0 {
		r.MeanPassDuration = r.durationSum / time.Duration(r.Passes)
	}
}

// Summary renders a human-readable report for the CLI.
func (r *Results) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "updates:          %d\n", r.Updates)
	fmt.Fprintf(&b, "passes:           %d (timed out: %d)\n", r.Passes, r.TimedOut)
	fmt.Fprintf(&b, "pass latency:     mean %s, max %s\n", r.MeanPassDuration, r.MaxPassDuration)
	fmt.Fprintf(&b, "substitutions:    %d\n", r.Substitutions)
	fmt.Fprintf(&b, "signals:          %d (mean confidence %.3f)\n", r.Signals, r.MeanConfidence)

	dirs := make([]string, 0, len(r.ByDirection))
	for d := range r.ByDirection {
		dirs = append(dirs, string(d))
	}
	sort.Strings(dirs)
	for _, d := range dirs {
		fmt.Fprintf(&b, "  %-8s %d\n", d, r.ByDirection[domain.Direction(d)])
	}
	return b.String()
}
