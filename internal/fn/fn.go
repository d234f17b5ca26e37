// Package fn provides the closed registry of stateless computation units
// that function nodes dispatch to. Every unit is a pure mapping from an
// ordered input list plus named constant parameters to a result; none may
// read or mutate process-wide state, which is what makes whole-graph
// evaluation deterministic.
package fn

import (
	"errors"
	"fmt"
	"time"
)

// Value is a computed node result. Concrete types flowing through the graph
// are float64 (scalars), Split (dual-direction results), and the judgment
// and bar-window types owned by higher-level packages. A nil Value means
// "absent" and is what missing inputs resolve to.
type Value = any

// Params holds the named constants a function needs, e.g. a comparison
// threshold or a default fallback. Absent keys fall back per function.
type Params map[string]float64

// Get returns the named parameter or fallback when absent.
func (p Params) Get(name string, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	if v, ok := p[name]; ok {
		return v
	}
	return fallback
}

// Func is a stateless computation unit. Evaluate must be safe for
// concurrent use and must not retain inputs.
type Func interface {
	// Type returns the registry tag of this unit.
	Type() Type

	// Evaluate computes the result from ordered inputs and parameters.
	// Nil input entries represent absent values; each function documents
	// how it treats them.
	Evaluate(inputs []Value, params Params) (Value, error)
}

// Type tags a function kind in the registry.
type Type string

// Registered primitive function types.
const (
	TypeRatio         Type = "ratio"
	TypeSum           Type = "sum"
	TypeSelect        Type = "select"
	TypeLeaderSelect  Type = "leader_select"
	TypeDualDirection Type = "dual_direction"
	TypeAbsDistance   Type = "abs_distance"
	TypeSubtract      Type = "subtract"
	TypeRound         Type = "round"
	TypeMinuteExtract Type = "minute_extract"
)

// ErrUnknownType is returned when a registration names a function type
// absent from the registry.
var ErrUnknownType = errors.New("unknown function type")

// New returns the computation unit registered for the given type.
// Units are stateless, so the same instance is shared by all nodes.
func New(t Type) (Func, error) {
	f, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return f, nil
}

// Known reports whether the type exists in the registry.
func Known(t Type) bool {
	_, ok := registry[t]
	return ok
}

var registry = map[Type]Func{
	TypeRatio:         ratioFunc{},
	TypeSum:           sumFunc{},
	TypeSelect:        selectFunc{},
	TypeLeaderSelect:  leaderSelectFunc{},
	TypeDualDirection: dualDirectionFunc{},
	TypeAbsDistance:   absDistanceFunc{},
	TypeSubtract:      subtractFunc{},
	TypeRound:         roundFunc{},
	TypeMinuteExtract: minuteExtractFunc{},
}

// asFloat extracts a numeric value. Nil and non-numeric values report !ok.
func asFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// asTime extracts a timestamp-like value: time.Time, or a unix timestamp in
// seconds or milliseconds (values above 1e11 are read as milliseconds).
func asTime(v Value) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case float64, float32, int, int64:
		f, _ := asFloat(v)
		if f <= 0 {
			return time.Time{}, false
		}
		if f > 1e11 {
			return time.UnixMilli(int64(f)).UTC(), true
		}
		return time.Unix(int64(f), 0).UTC(), true
	default:
		return time.Time{}, false
	}
}
