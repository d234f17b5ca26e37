package clickhouse

import (
	"context"
	"fmt"
	"time"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/storage"
)

// EvaluationRunStore implements storage.EvaluationRunStore using ClickHouse.
type EvaluationRunStore struct {
	conn *Conn
}

// NewEvaluationRunStore creates a new EvaluationRunStore.
func NewEvaluationRunStore(conn *Conn) *EvaluationRunStore {
	return &EvaluationRunStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EvaluationRunStore = (*EvaluationRunStore)(nil)

// Insert appends one run summary.
func (s *EvaluationRunStore) Insert(ctx context.Context, run domain.EvaluationRun) (err error) {
	start := time.Now()
	defer func() { observe("run_insert", start, err) }()

	query := `
		INSERT INTO evaluation_runs (
			started_ms, duration_us, node_count, cache_hits, cache_misses, substitutions, timed_out
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	timedOut := uint8(0)
	if run.TimedOut {
		timedOut = 1
	}

	err = s.conn.Exec(ctx, query,
		uint64(run.StartedMs),
		uint64(run.DurationUs),
		uint32(run.NodeCount),
		uint32(run.CacheHits),
		uint32(run.CacheMisses),
		uint32(run.Substitutions),
		timedOut,
	)
	if err != nil {
		return fmt.Errorf("insert evaluation run: %w", err)
	}
	return nil
}

// GetByTimeRange retrieves runs started within [from, to] milliseconds
// inclusive, ordered by start time ascending.
func (s *EvaluationRunStore) GetByTimeRange(ctx context.Context, from, to int64) (result []domain.EvaluationRun, err error) {
	start := time.Now()
	defer func() { observe("run_get_by_range", start, err) }()

	query := `
		SELECT started_ms, duration_us, node_count, cache_hits, cache_misses, substitutions, timed_out
		FROM evaluation_runs
		WHERE started_ms >= ? AND started_ms <= ?
		ORDER BY started_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(from), uint64(to))
	if err != nil {
		return nil, fmt.Errorf("query evaluation runs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			startedMs, durationUs                            uint64
			nodeCount, cacheHits, cacheMisses, substitutions uint32
			timedOut                                         uint8
		)
		if err := rows.Scan(&startedMs, &durationUs, &nodeCount, &cacheHits, &cacheMisses, &substitutions, &timedOut); err != nil {
			return nil, fmt.Errorf("scan evaluation run: %w", err)
		}
		result = append(result, domain.EvaluationRun{
			StartedMs:     int64(startedMs),
			DurationUs:    int64(durationUs),
			NodeCount:     int(nodeCount),
			CacheHits:     int(cacheHits),
			CacheMisses:   int(cacheMisses),
			Substitutions: int(substitutions),
			TimedOut:      timedOut != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluation runs: %w", err)
	}
	return result, nil
}
