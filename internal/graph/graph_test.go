package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx-signal-lab/internal/fn"
	"fx-signal-lab/internal/pkgid"
)

const (
	tf  = pkgid.Timeframe5Min
	per = pkgid.PeriodCommon
	ccy = pkgid.CurrencyUSDJPY
)

// raw registers a raw symbol and fails the test on error.
func raw(t *testing.T, g *Graph, symbol string, value float64) pkgid.ID {
	t.Helper()
	id, err := g.RegisterRawData(symbol, tf, per, ccy, value)
	require.NoError(t, err)
	return id
}

// function registers a function node with auto-assigned layer.
func function(t *testing.T, g *Graph, seq string, typ fn.Type, inputs []pkgid.ID, params fn.Params) pkgid.ID {
	t.Helper()
	id, err := pkgid.New(tf, per, ccy, 0, seq)
	// Layer 0 on a function registration means "assign for me"; New rejects
	// nothing here because 0 is the raw layer and thus always valid.
	require.NoError(t, err)
	got, err := g.RegisterFunction(id, typ, inputs, params)
	require.NoError(t, err)
	return got
}

func TestRegisterRawData(t *testing.T) {
	g := New()

	id := raw(t, g, "AA001", 110.50)
	assert.Equal(t, "391^0-AA001", id.Format())

	n, ok := g.Node(id)
	require.True(t, ok)
	assert.Equal(t, KindRawData, n.Kind)
	assert.True(t, n.Evaluated)
	assert.Equal(t, 110.50, n.Value)

	// Overwriting replaces the value, not the node.
	raw(t, g, "AA001", 110.75)
	assert.Equal(t, 1, g.Len())
	n, _ = g.Node(id)
	assert.Equal(t, 110.75, n.Value)
}

func TestRegisterFunction_LayerAssignment(t *testing.T) {
	g := New()
	a := raw(t, g, "AA001", 1.0)
	b := raw(t, g, "AA002", 2.0)

	sub := function(t, g, "sub", fn.TypeSubtract, []pkgid.ID{a, b}, nil)
	assert.Equal(t, 1, sub.Layer)

	round := function(t, g, "round", fn.TypeRound, []pkgid.ID{sub}, nil)
	assert.Equal(t, 2, round.Layer)
}

func TestRegisterFunction_LayerConflict(t *testing.T) {
	g := New()
	a := raw(t, g, "AA001", 1.0)
	sub := function(t, g, "sub", fn.TypeSubtract, []pkgid.ID{a, a}, nil)
	require.Equal(t, 1, sub.Layer)

	// Declared layer equal to an input's layer is rejected.
	id, err := pkgid.New(tf, per, ccy, 1, "bad")
	require.NoError(t, err)
	_, err = g.RegisterFunction(id, fn.TypeRound, []pkgid.ID{sub}, nil)
	require.ErrorIs(t, err, ErrLayerConflict)

	// A higher declared layer is accepted as-is, even non-contiguous.
	id, err = pkgid.New(tf, per, ccy, 5, "ok")
	require.NoError(t, err)
	got, err := g.RegisterFunction(id, fn.TypeRound, []pkgid.ID{sub}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Layer)
}

func TestRegisterFunction_Errors(t *testing.T) {
	g := New()
	a := raw(t, g, "AA001", 1.0)

	id, err := pkgid.New(tf, per, ccy, 0, "f1")
	require.NoError(t, err)

	_, err = g.RegisterFunction(id, fn.Type("bogus"), []pkgid.ID{a}, nil)
	require.ErrorIs(t, err, fn.ErrUnknownType)

	_, err = g.RegisterFunction(id, fn.TypeSum, nil, nil)
	require.ErrorIs(t, err, ErrNoInputs)

	missing, err := pkgid.New(tf, per, ccy, 0, "ghost")
	require.NoError(t, err)
	_, err = g.RegisterFunction(id, fn.TypeSum, []pkgid.ID{missing}, nil)
	require.ErrorIs(t, err, ErrUnknownInput)

	// Duplicate function registration fails.
	_, err = g.RegisterFunction(id, fn.TypeSum, []pkgid.ID{a}, nil)
	require.NoError(t, err)
	dup, err := pkgid.New(tf, per, ccy, 1, "f1")
	require.NoError(t, err)
	_, err = g.RegisterFunction(dup, fn.TypeSum, []pkgid.ID{a}, nil)
	require.ErrorIs(t, err, ErrDuplicateNode)
}

func TestSetRawValue(t *testing.T) {
	g := New()
	a := raw(t, g, "AA001", 1.0)
	f := function(t, g, "f", fn.TypeSum, []pkgid.ID{a}, nil)

	require.NoError(t, g.SetRawValue(a, 2.0))
	n, _ := g.Node(a)
	assert.Equal(t, 2.0, n.Value)

	require.ErrorIs(t, g.SetRawValue(f, 3.0), ErrNotRawData)

	missing, _ := pkgid.New(tf, per, ccy, 0, "ghost")
	require.ErrorIs(t, g.SetRawValue(missing, 3.0), ErrNotFound)
}

func TestOrder_LayerOrdering(t *testing.T) {
	g := New()
	a := raw(t, g, "AA001", 1.0)
	b := raw(t, g, "AA002", 2.0)
	sub := function(t, g, "sub", fn.TypeSubtract, []pkgid.ID{a, b}, nil)
	sum := function(t, g, "sum", fn.TypeSum, []pkgid.ID{a, sub}, nil)

	order, err := g.Order()
	require.NoError(t, err)
	require.Len(t, order, 4)

	pos := make(map[pkgid.ID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}

	// Every input appears strictly earlier than its consumer.
	for _, n := range g.Nodes() {
		for _, in := range n.Inputs {
			assert.Less(t, pos[in], pos[n.ID], "%s must precede %s", in, n.ID)
		}
	}

	// Repeated calls return the identical order (memoized and deterministic).
	again, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, order, again)

	_ = sum
}

func TestOrder_InvalidatedByRegistration(t *testing.T) {
	g := New()
	a := raw(t, g, "AA001", 1.0)

	order, err := g.Order()
	require.NoError(t, err)
	require.Len(t, order, 1)

	function(t, g, "f", fn.TypeSum, []pkgid.ID{a}, nil)
	order, err = g.Order()
	require.NoError(t, err)
	assert.Len(t, order, 2)
}

func TestOrder_CycleDetected(t *testing.T) {
	// Registration refuses forward references, so a cycle is wired directly
	// into the arena to exercise sort-time detection.
	g := New()
	a := raw(t, g, "AA001", 1.0)
	f := function(t, g, "f", fn.TypeSum, []pkgid.ID{a}, nil)
	h := function(t, g, "h", fn.TypeSum, []pkgid.ID{f}, nil)

	fi, hi := g.index[f], g.index[h]
	g.deps[fi] = append(g.deps[fi], hi)
	g.dependents[hi] = append(g.dependents[hi], fi)
	g.orderValid = false

	_, err := g.Order()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycle))

	var cerr *CycleError
	require.True(t, errors.As(err, &cerr))
	assert.NotEmpty(t, cerr.Residual, "cycle error must name at least one node")
}

func TestLayers_Grouping(t *testing.T) {
	g := New()
	a := raw(t, g, "AA001", 1.0)
	b := raw(t, g, "AA002", 2.0)
	f1 := function(t, g, "f1", fn.TypeSubtract, []pkgid.ID{a, b}, nil)
	f2 := function(t, g, "f2", fn.TypeSum, []pkgid.ID{a, b}, nil)
	function(t, g, "top", fn.TypeSum, []pkgid.ID{f1, f2}, nil)

	layers, err := g.Layers()
	require.NoError(t, err)
	require.Len(t, layers, 3)
	assert.Len(t, layers[0], 2) // raw
	assert.Len(t, layers[1], 2) // f1, f2
	assert.Len(t, layers[2], 1) // top
}

func TestTransitiveDependents(t *testing.T) {
	g := New()
	a := raw(t, g, "AA001", 1.0)
	b := raw(t, g, "AA002", 2.0)
	f1 := function(t, g, "f1", fn.TypeSubtract, []pkgid.ID{a, b}, nil)
	top := function(t, g, "top", fn.TypeSum, []pkgid.ID{f1}, nil)

	deps := g.TransitiveDependents(a)
	assert.ElementsMatch(t, []pkgid.ID{f1, top}, deps)

	assert.Empty(t, g.TransitiveDependents(top))
}
