package postgres

import (
	"context"
	"fmt"
	"time"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/storage"
)

// GraphDefStore implements storage.GraphDefStore using PostgreSQL.
type GraphDefStore struct {
	pool *Pool
}

// NewGraphDefStore creates a new GraphDefStore.
func NewGraphDefStore(pool *Pool) *GraphDefStore {
	return &GraphDefStore{pool: pool}
}

// Compile-time interface check.
var _ storage.GraphDefStore = (*GraphDefStore)(nil)

// InsertBulk adds records atomically. Returns ErrDuplicateKey if any name
// already exists; the transaction rolls back on failure.
func (s *GraphDefStore) InsertBulk(ctx context.Context, defs []domain.GraphDefRecord) (err error) {
	start := time.Now()
	defer func() { observe("graphdef_insert_bulk", start, err) }()

	if len(defs) == 0 {
		return nil
	}
	for _, d := range defs {
		if d.Name == "" || d.FunctionType == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO graph_definitions (
			name, function_type, input_symbols, timeframe, threshold, group_no
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, d := range defs {
		_, err = tx.Exec(ctx, query,
			d.Name,
			d.FunctionType,
			d.InputSymbols,
			d.Timeframe,
			d.Threshold,
			d.GroupNo,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert graph definition %s: %w", d.Name, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// List retrieves all records ordered by group then name.
func (s *GraphDefStore) List(ctx context.Context) ([]domain.GraphDefRecord, error) {
	return s.list(ctx, `
		SELECT name, function_type, input_symbols, timeframe, threshold, group_no
		FROM graph_definitions
		ORDER BY group_no ASC, name ASC
	`)
}

// ListByGroup retrieves the records of one definition group.
func (s *GraphDefStore) ListByGroup(ctx context.Context, group int) ([]domain.GraphDefRecord, error) {
	return s.list(ctx, `
		SELECT name, function_type, input_symbols, timeframe, threshold, group_no
		FROM graph_definitions
		WHERE group_no = $1
		ORDER BY name ASC
	`, group)
}

func (s *GraphDefStore) list(ctx context.Context, query string, args ...any) (result []domain.GraphDefRecord, err error) {
	start := time.Now()
	defer func() { observe("graphdef_list", start, err) }()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list graph definitions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.GraphDefRecord
		if err := rows.Scan(
			&d.Name,
			&d.FunctionType,
			&d.InputSymbols,
			&d.Timeframe,
			&d.Threshold,
			&d.GroupNo,
		); err != nil {
			return nil, fmt.Errorf("scan graph definition: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graph definitions: %w", err)
	}
	return result, nil
}
