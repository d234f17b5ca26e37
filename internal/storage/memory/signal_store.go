package memory

import (
	"context"
	"sort"
	"sync"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/storage"
)

// SignalStore is an in-memory implementation of storage.SignalStore.
type SignalStore struct {
	mu   sync.RWMutex
	data []domain.SignalRecord
}

// NewSignalStore creates a new in-memory signal store.
func NewSignalStore() *SignalStore {
	return &SignalStore{}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

// InsertBulk appends signal records.
func (s *SignalStore) InsertBulk(_ context.Context, signals []domain.SignalRecord) error {
	for _, sig := range signals {
		if sig.NodeID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, signals...)
	return nil
}

// GetByNodeID retrieves signals for a node within [from, to] milliseconds
// inclusive, ordered by time ascending.
func (s *SignalStore) GetByNodeID(_ context.Context, nodeID string, from, to int64) ([]domain.SignalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.SignalRecord
	for _, sig := range s.data {
		if sig.NodeID == nodeID && sig.EvaluatedMs >= from && sig.EvaluatedMs <= to {
			result = append(result, sig)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EvaluatedMs < result[j].EvaluatedMs
	})
	return result, nil
}
