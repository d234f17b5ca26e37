package judge

import (
	"fmt"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/fn"
)

// Function types for judgment nodes. These live outside the primitive
// registry because each instance is parameterized by per-currency tuning.
const (
	TypeDokyaku       fn.Type = "dokyaku"
	TypeIkikaeri      fn.Type = "ikikaeri"
	TypeMomiOvershoot fn.Type = "momi_overshoot"
)

// NewFunc builds the computation unit for a judgment type with the given
// tuning. Dokyaku and ikikaeri nodes take two inputs (the raw bar window
// and the Heikin-Ashi window); momi/overshoot takes one (the raw window).
// Returns fn.ErrUnknownType for anything else.
func NewFunc(t fn.Type, tuning domain.JudgmentTuning) (fn.Func, error) {
	switch t {
	case TypeDokyaku, TypeIkikaeri, TypeMomiOvershoot:
		return judgmentFunc{typ: t, tuning: tuning}, nil
	default:
		return nil, fmt.Errorf("%w: %q", fn.ErrUnknownType, t)
	}
}

// judgmentFunc adapts a judgment to the fn.Func contract. The tuning is
// fixed at construction, so Evaluate stays a pure function of its inputs.
type judgmentFunc struct {
	typ    fn.Type
	tuning domain.JudgmentTuning
}

func (f judgmentFunc) Type() fn.Type { return f.typ }

func (f judgmentFunc) Evaluate(inputs []fn.Value, _ fn.Params) (fn.Value, error) {
	bars := asWindow(at(inputs, 0))

	switch f.typ {
	case TypeDokyaku:
		ha := haWindow(bars, at(inputs, 1))
		return Dokyaku(bars, ha, f.tuning), nil
	case TypeIkikaeri:
		ha := haWindow(bars, at(inputs, 1))
		return Ikikaeri(bars, ha, f.tuning), nil
	default:
		return MomiOvershoot(bars, f.tuning), nil
	}
}

// at returns inputs[i] or nil when the list is too short.
func at(inputs []fn.Value, i int) fn.Value {
	if i >= len(inputs) {
		return nil
	}
	return inputs[i]
}

// asWindow extracts a bar window from a node value. Anything else is an
// absent input and yields an empty window, which the judgments degrade to
// neutral on.
func asWindow(v fn.Value) domain.BarWindow {
	switch w := v.(type) {
	case domain.BarWindow:
		return w
	case []domain.Bar:
		return domain.BarWindow(w)
	default:
		return nil
	}
}

// haWindow returns the supplied Heikin-Ashi window, or computes one from
// the raw bars when the graph wires only a single bar input.
func haWindow(bars domain.BarWindow, v fn.Value) domain.BarWindow {
	if w := asWindow(v); w != nil {
		return w
	}
	return HeikinAshi(bars)
}
