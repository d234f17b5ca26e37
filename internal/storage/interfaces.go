// Package storage defines the persistence interfaces of the system.
// Configuration (judgment tuning, graph definitions) lives in PostgreSQL;
// high-volume output (signals, evaluation runs) lives in ClickHouse.
// In-memory implementations back tests and storage-less deployments.
package storage

import (
	"context"

	"fx-signal-lab/internal/domain"
)

// TuningStore persists per-currency judgment thresholds.
type TuningStore interface {
	// Upsert inserts or replaces the tuning for its currency pair.
	Upsert(ctx context.Context, t domain.JudgmentTuning) error

	// GetByCurrency retrieves the tuning for a six-letter pair.
	// Returns ErrNotFound if the pair has no stored tuning.
	GetByCurrency(ctx context.Context, pair string) (domain.JudgmentTuning, error)

	// List retrieves all stored tunings ordered by currency pair.
	List(ctx context.Context) ([]domain.JudgmentTuning, error)
}

// GraphDefStore persists bulk graph-definition records.
type GraphDefStore interface {
	// InsertBulk adds records atomically. Returns ErrDuplicateKey if any
	// name already exists; the batch is not applied partially.
	InsertBulk(ctx context.Context, defs []domain.GraphDefRecord) error

	// List retrieves all records ordered by group then name, the order
	// the importer consumes them in.
	List(ctx context.Context) ([]domain.GraphDefRecord, error)

	// ListByGroup retrieves the records of one definition group.
	ListByGroup(ctx context.Context, group int) ([]domain.GraphDefRecord, error)
}

// SignalStore persists emitted signals.
type SignalStore interface {
	// InsertBulk appends signal records. Duplicates are not detected;
	// the signal stream is append-only by nature.
	InsertBulk(ctx context.Context, signals []domain.SignalRecord) error

	// GetByNodeID retrieves signals for a node within [from, to]
	// milliseconds inclusive, ordered by time ascending.
	GetByNodeID(ctx context.Context, nodeID string, from, to int64) ([]domain.SignalRecord, error)
}

// EvaluationRunStore persists per-pass evaluation summaries.
type EvaluationRunStore interface {
	// Insert appends one run summary.
	Insert(ctx context.Context, run domain.EvaluationRun) error

	// GetByTimeRange retrieves runs started within [from, to]
	// milliseconds inclusive, ordered by start time ascending.
	GetByTimeRange(ctx context.Context, from, to int64) ([]domain.EvaluationRun, error)
}
