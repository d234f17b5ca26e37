package memory

import (
	"context"
	"sort"
	"sync"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/storage"
)

// EvaluationRunStore is an in-memory implementation of
// storage.EvaluationRunStore.
type EvaluationRunStore struct {
	mu   sync.RWMutex
	data []domain.EvaluationRun
}

// NewEvaluationRunStore creates a new in-memory run store.
func NewEvaluationRunStore() *EvaluationRunStore {
	return &EvaluationRunStore{}
}

// Compile-time interface check.
var _ storage.EvaluationRunStore = (*EvaluationRunStore)(nil)

// Insert appends one run summary.
func (s *EvaluationRunStore) Insert(_ context.Context, run domain.EvaluationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, run)
	return nil
}

// GetByTimeRange retrieves runs started within [from, to] milliseconds
// inclusive, ordered by start time ascending.
func (s *EvaluationRunStore) GetByTimeRange(_ context.Context, from, to int64) ([]domain.EvaluationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.EvaluationRun
	for _, run := range s.data {
		if run.StartedMs >= from && run.StartedMs <= to {
			result = append(result, run)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedMs < result[j].StartedMs
	})
	return result, nil
}
