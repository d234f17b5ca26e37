package clickhouse

import (
	"context"
	"fmt"
	"time"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/storage"
)

// SignalStore implements storage.SignalStore using ClickHouse.
type SignalStore struct {
	conn *Conn
}

// NewSignalStore creates a new SignalStore.
func NewSignalStore(conn *Conn) *SignalStore {
	return &SignalStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

// InsertBulk appends signal records. The signal stream is append-only;
// duplicates are not detected.
func (s *SignalStore) InsertBulk(ctx context.Context, signals []domain.SignalRecord) (err error) {
	start := time.Now()
	defer func() { observe("signal_insert_bulk", start, err) }()

	if len(signals) == 0 {
		return nil
	}
	for _, sig := range signals {
		if sig.NodeID == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO signals (node_id, currency, direction, confidence, evaluated_ms)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, sig := range signals {
		err = batch.Append(
			sig.NodeID, sig.Currency, sig.Direction,
			sig.Confidence, uint64(sig.EvaluatedMs),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByNodeID retrieves signals for a node within [from, to] milliseconds
// inclusive, ordered by time ascending.
func (s *SignalStore) GetByNodeID(ctx context.Context, nodeID string, from, to int64) (result []domain.SignalRecord, err error) {
	start := time.Now()
	defer func() { observe("signal_get_by_node", start, err) }()

	query := `
		SELECT node_id, currency, direction, confidence, evaluated_ms
		FROM signals
		WHERE node_id = ? AND evaluated_ms >= ? AND evaluated_ms <= ?
		ORDER BY evaluated_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, nodeID, uint64(from), uint64(to))
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec         domain.SignalRecord
			evaluatedMs uint64
		)
		if err := rows.Scan(&rec.NodeID, &rec.Currency, &rec.Direction, &rec.Confidence, &evaluatedMs); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		rec.EvaluatedMs = int64(evaluatedMs)
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}
	return result, nil
}
