package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/storage"
)

func def(name string, group int) domain.GraphDefRecord {
	return domain.GraphDefRecord{
		Name:         name,
		FunctionType: "sum",
		InputSymbols: []string{"A", "B"},
		Timeframe:    2,
		GroupNo:      group,
	}
}

func TestGraphDefStore_InsertAndList(t *testing.T) {
	s := NewGraphDefStore()
	ctx := context.Background()

	require.NoError(t, s.InsertBulk(ctx, []domain.GraphDefRecord{
		def("B_NODE", 2), def("A_NODE", 1), def("C_NODE", 1),
	}))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	// Ordered by group, then name.
	assert.Equal(t, "A_NODE", list[0].Name)
	assert.Equal(t, "C_NODE", list[1].Name)
	assert.Equal(t, "B_NODE", list[2].Name)
}

func TestGraphDefStore_ListByGroup(t *testing.T) {
	s := NewGraphDefStore()
	ctx := context.Background()

	require.NoError(t, s.InsertBulk(ctx, []domain.GraphDefRecord{
		def("A_NODE", 1), def("B_NODE", 2),
	}))

	list, err := s.ListByGroup(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "B_NODE", list[0].Name)
}

func TestGraphDefStore_DuplicateNameFailsWholeBatch(t *testing.T) {
	s := NewGraphDefStore()
	ctx := context.Background()

	require.NoError(t, s.InsertBulk(ctx, []domain.GraphDefRecord{def("A_NODE", 1)}))

	err := s.InsertBulk(ctx, []domain.GraphDefRecord{def("B_NODE", 1), def("A_NODE", 1)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Nothing from the failed batch was applied.
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGraphDefStore_IntraBatchDuplicate(t *testing.T) {
	s := NewGraphDefStore()
	err := s.InsertBulk(context.Background(), []domain.GraphDefRecord{def("X", 1), def("X", 1)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestGraphDefStore_CopiesInputSymbols(t *testing.T) {
	s := NewGraphDefStore()
	ctx := context.Background()

	d := def("A_NODE", 1)
	require.NoError(t, s.InsertBulk(ctx, []domain.GraphDefRecord{d}))
	d.InputSymbols[0] = "MUTATED"

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", list[0].InputSymbols[0])
}
