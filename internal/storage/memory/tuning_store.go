// Package memory provides in-memory storage implementations for tests and
// storage-less deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/storage"
)

// TuningStore is an in-memory implementation of storage.TuningStore.
type TuningStore struct {
	mu   sync.RWMutex
	data map[string]domain.JudgmentTuning // keyed by currency pair
}

// NewTuningStore creates a new in-memory tuning store.
func NewTuningStore() *TuningStore {
	return &TuningStore{
		data: make(map[string]domain.JudgmentTuning),
	}
}

// Compile-time interface check.
var _ storage.TuningStore = (*TuningStore)(nil)

// Upsert inserts or replaces the tuning for its currency pair.
func (s *TuningStore) Upsert(_ context.Context, t domain.JudgmentTuning) error {
	if t.Currency == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[t.Currency] = t
	return nil
}

// GetByCurrency retrieves the tuning for a pair. Returns ErrNotFound if
// the pair has no stored tuning.
func (s *TuningStore) GetByCurrency(_ context.Context, pair string) (domain.JudgmentTuning, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[pair]
	if !exists {
		return domain.JudgmentTuning{}, storage.ErrNotFound
	}
	return t, nil
}

// List retrieves all stored tunings ordered by currency pair.
func (s *TuningStore) List(_ context.Context) ([]domain.JudgmentTuning, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.JudgmentTuning, 0, len(s.data))
	for _, t := range s.data {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Currency < result[j].Currency
	})
	return result, nil
}
