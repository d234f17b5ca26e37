package memory

import (
	"context"
	"sort"
	"sync"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/storage"
)

// GraphDefStore is an in-memory implementation of storage.GraphDefStore.
type GraphDefStore struct {
	mu   sync.RWMutex
	data map[string]domain.GraphDefRecord // keyed by name
}

// NewGraphDefStore creates a new in-memory graph-definition store.
func NewGraphDefStore() *GraphDefStore {
	return &GraphDefStore{
		data: make(map[string]domain.GraphDefRecord),
	}
}

// Compile-time interface check.
var _ storage.GraphDefStore = (*GraphDefStore)(nil)

// InsertBulk adds records atomically. Returns ErrDuplicateKey if any name
// already exists; nothing is applied on failure.
func (s *GraphDefStore) InsertBulk(_ context.Context, defs []domain.GraphDefRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if d.Name == "" || d.FunctionType == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[d.Name]; dup {
			return storage.ErrDuplicateKey
		}
		if _, exists := s.data[d.Name]; exists {
			return storage.ErrDuplicateKey
		}
		seen[d.Name] = struct{}{}
	}

	for _, d := range defs {
		d.InputSymbols = append([]string(nil), d.InputSymbols...)
		s.data[d.Name] = d
	}
	return nil
}

// List retrieves all records ordered by group then name.
func (s *GraphDefStore) List(_ context.Context) ([]domain.GraphDefRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(domain.GraphDefRecord) bool { return true }), nil
}

// ListByGroup retrieves the records of one definition group.
func (s *GraphDefStore) ListByGroup(_ context.Context, group int) ([]domain.GraphDefRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(d domain.GraphDefRecord) bool { return d.GroupNo == group }), nil
}

func (s *GraphDefStore) collect(keep func(domain.GraphDefRecord) bool) []domain.GraphDefRecord {
	var result []domain.GraphDefRecord
	for _, d := range s.data {
		if keep(d) {
			d.InputSymbols = append([]string(nil), d.InputSymbols...)
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].GroupNo != result[j].GroupNo {
			return result[i].GroupNo < result[j].GroupNo
		}
		return result[i].Name < result[j].Name
	})
	return result
}
