// Package backtest replays historical market data through an evaluation
// session and aggregates the signals it produces. It measures behavior,
// not profitability: direction counts, confidence levels, and pass
// latency.
package backtest

import (
	"context"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/feed"
)

// Runner executes a replay over a prepared session. The session carries
// the graph, judgment nodes, and tuning; the runner only supplies data and
// collects output.
type Runner struct {
	session *feed.Session
}

// NewRunner creates a runner over a session.
func NewRunner(session *feed.Session) *Runner {
	return &Runner{session: session}
}

// Run replays the updates in order and returns the aggregated results.
// Signals and runs still reach any sinks the session already had; the
// collector observes them on the way through.
func (r *Runner) Run(ctx context.Context, updates []domain.RawUpdate) (*Results, error) {
	col := &collector{
		nextSignal: r.session.Sink,
		nextRun:    r.session.Runs,
		results:    newResults(),
	}
	r.session.Sink = col
	r.session.Runs = col
	defer func() {
		r.session.Sink = col.nextSignal
		r.session.Runs = col.nextRun
	}()

	src := feed.NewStubSource(updates)
	if err := r.session.Run(ctx, src); err != nil {
		return nil, err
	}

	col.results.Updates = len(updates)
	col.results.finalize()
	return col.results, nil
}

// collector tees signals and run summaries into the results while
// forwarding them to the session's original sinks.
type collector struct {
	nextSignal feed.SignalSink
	nextRun    feed.RunSink
	results    *Results
}

func (c *collector) PublishSignal(ctx context.Context, s domain.Signal) error {
	c.results.addSignal(s)
	if c.nextSignal != nil {
		return c.nextSignal.PublishSignal(ctx, s)
	}
	return nil
}

func (c *collector) RecordRun(ctx context.Context, run domain.EvaluationRun) error {
	c.results.addRun(run)
	if c.nextRun != nil {
		return c.nextRun.RecordRun(ctx, run)
	}
	return nil
}
