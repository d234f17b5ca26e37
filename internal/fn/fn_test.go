package fn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eval is a shorthand for running a registry function in tests.
func eval(t *testing.T, typ Type, inputs []Value, params Params) Value {
	t.Helper()
	f, err := New(typ)
	require.NoError(t, err)
	out, err := f.Evaluate(inputs, params)
	require.NoError(t, err)
	return out
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(Type("bogus"))
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, eval(t, TypeRatio, []Value{10.0, 5.0, 3.0, 2.0}, nil))
	assert.Equal(t, 0.0, eval(t, TypeRatio, []Value{10.0, 0.0, 0.0}, nil))
	assert.Equal(t, 0.0, eval(t, TypeRatio, []Value{10.0}, nil))
	assert.Equal(t, 0.0, eval(t, TypeRatio, nil, nil))

	// Nil denominator entries are skipped, not zeroed.
	assert.Equal(t, 2.0, eval(t, TypeRatio, []Value{10.0, nil, 5.0}, nil))
	// Absent numerator yields zero.
	assert.Equal(t, 0.0, eval(t, TypeRatio, []Value{nil, 5.0}, nil))
}

func TestSum(t *testing.T) {
	assert.Equal(t, 9.0, eval(t, TypeSum, []Value{1.0, nil, 3.0, nil, 5.0}, nil))
	assert.Equal(t, 0.0, eval(t, TypeSum, nil, nil))
	assert.Equal(t, -2.5, eval(t, TypeSum, []Value{-3.0, 0.5}, nil))
}

func TestSelect(t *testing.T) {
	params := Params{"default": -1.0}

	// Condition is a 1-based index into the options.
	assert.Equal(t, 20.0, eval(t, TypeSelect, []Value{2.0, 10.0, 20.0, 30.0}, params))
	assert.Equal(t, 10.0, eval(t, TypeSelect, []Value{1.0, 10.0, 20.0}, params))

	// Falsy, absent, or out-of-range conditions fall back to the default.
	assert.Equal(t, -1.0, eval(t, TypeSelect, []Value{0.0, 10.0, 20.0}, params))
	assert.Equal(t, -1.0, eval(t, TypeSelect, []Value{nil, 10.0, 20.0}, params))
	assert.Equal(t, -1.0, eval(t, TypeSelect, []Value{5.0, 10.0, 20.0}, params))
	assert.Equal(t, -1.0, eval(t, TypeSelect, []Value{"bad", 10.0}, params))
	assert.Equal(t, -1.0, eval(t, TypeSelect, []Value{1.0}, params))

	// Selected option that is itself absent falls back too.
	assert.Equal(t, -1.0, eval(t, TypeSelect, []Value{1.0, nil, 20.0}, params))
}

func TestLeaderSelect(t *testing.T) {
	assert.Equal(t, 2.0, eval(t, TypeLeaderSelect, []Value{45.2, 52.8, 48.1, 43.5}, Params{"threshold": 45.0}))
	assert.Equal(t, 0.0, eval(t, TypeLeaderSelect, []Value{30.0, 35.0, 40.0}, Params{"threshold": 100.0}))
	assert.Equal(t, 0.0, eval(t, TypeLeaderSelect, []Value{nil, nil}, Params{"threshold": 0.0}))

	// Ties break toward the lowest index.
	assert.Equal(t, 1.0, eval(t, TypeLeaderSelect, []Value{50.0, 50.0}, Params{"threshold": 10.0}))

	// Nil entries are excluded from the ranking.
	assert.Equal(t, 3.0, eval(t, TypeLeaderSelect, []Value{nil, 10.0, 60.0}, Params{"threshold": 20.0}))
}

func TestDualDirection(t *testing.T) {
	assert.Equal(t, Split{Up: 3.0, Down: 0.0}, eval(t, TypeDualDirection, []Value{3.0}, nil))
	assert.Equal(t, Split{Up: 0.0, Down: 4.5}, eval(t, TypeDualDirection, []Value{-4.5}, nil))
	assert.Equal(t, Split{}, eval(t, TypeDualDirection, []Value{nil}, nil))
	assert.Equal(t, Split{}, eval(t, TypeDualDirection, nil, nil))
}

func TestAbsDistance(t *testing.T) {
	assert.Equal(t, 2.5, eval(t, TypeAbsDistance, []Value{110.5}, Params{"reference": 108.0}))
	assert.Equal(t, 3.0, eval(t, TypeAbsDistance, []Value{-3.0}, nil))

	// Nil value is substituted with 0 before subtracting: |0 - ref|.
	assert.Equal(t, 108.0, eval(t, TypeAbsDistance, []Value{nil}, Params{"reference": 108.0}))
}

func TestSubtract(t *testing.T) {
	assert.Equal(t, 12.0, eval(t, TypeSubtract, []Value{20.0, 8.0}, nil))
	assert.Equal(t, -5.0, eval(t, TypeSubtract, []Value{nil, 5.0}, nil))
	assert.Equal(t, 0.0, eval(t, TypeSubtract, []Value{20.0}, nil))
}

func TestRound(t *testing.T) {
	// Default tick is 1.0, half away from zero.
	assert.Equal(t, 111.0, eval(t, TypeRound, []Value{110.5}, nil))
	assert.Equal(t, -111.0, eval(t, TypeRound, []Value{-110.5}, nil))

	// Pip rounding for a JPY-quoted pair.
	assert.InDelta(t, 110.46, eval(t, TypeRound, []Value{110.456}, Params{"tick": 0.01}), 1e-9)

	// A non-positive tick falls back to 1.0.
	assert.Equal(t, 3.0, eval(t, TypeRound, []Value{3.4}, Params{"tick": -1.0}))
}

func TestMinuteExtract(t *testing.T) {
	ts := time.Date(2024, 6, 3, 9, 45, 12, 0, time.UTC)

	assert.Equal(t, 45.0, eval(t, TypeMinuteExtract, []Value{ts}, nil))
	assert.Equal(t, 45.0, eval(t, TypeMinuteExtract, []Value{float64(ts.Unix())}, nil))
	assert.Equal(t, 45.0, eval(t, TypeMinuteExtract, []Value{float64(ts.UnixMilli())}, nil))
	assert.Equal(t, 0.0, eval(t, TypeMinuteExtract, []Value{nil}, nil))
	assert.Equal(t, 0.0, eval(t, TypeMinuteExtract, []Value{"not a time"}, nil))
	assert.Equal(t, 0.0, eval(t, TypeMinuteExtract, nil, nil))
}

func TestFuncs_Stateless(t *testing.T) {
	// The same instance must produce identical results across calls.
	f, err := New(TypeRatio)
	require.NoError(t, err)

	in := []Value{10.0, 5.0, 5.0}
	first, err := f.Evaluate(in, nil)
	require.NoError(t, err)
	second, err := f.Evaluate(in, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
