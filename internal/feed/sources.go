// Package feed produces raw market-data updates and drives them through
// the evaluation cycle: apply updates to layer-0 nodes, cascade-invalidate
// cached dependents, run an evaluation pass, publish the resulting
// signals. The session loop is the synchronization boundary; everything
// downstream of it sees a frozen graph per pass.
package feed

import (
	"context"

	"fx-signal-lab/internal/domain"
)

// Source provides raw market-data updates from an external feed.
type Source interface {
	// Subscribe returns a channel of updates. The channel is closed when
	// the context is cancelled or the source shuts down.
	Subscribe(ctx context.Context) (<-chan domain.RawUpdate, error)
}

// SignalSink receives signals produced by evaluation passes.
type SignalSink interface {
	PublishSignal(ctx context.Context, s domain.Signal) error
}

// RunSink receives per-pass evaluation summaries.
type RunSink interface {
	RecordRun(ctx context.Context, run domain.EvaluationRun) error
}
