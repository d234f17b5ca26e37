package fn

import "math"

// Split is the structured result of the dual-direction function.
type Split struct {
	Up   float64
	Down float64
}

// ratioFunc divides the first input by the sum of the remaining inputs.
// Nil entries are skipped, not zeroed. Fewer than two inputs or a zero
// denominator sum both yield 0.0.
type ratioFunc struct{}

func (ratioFunc) Type() Type { return TypeRatio }

func (ratioFunc) Evaluate(inputs []Value, _ Params) (Value, error) {
	if len(inputs) < 2 {
		return 0.0, nil
	}
	num, ok := asFloat(inputs[0])
	if !ok {
		return 0.0, nil
	}
	var denom float64
	for _, in := range inputs[1:] {
		if v, ok := asFloat(in); ok {
			denom += v
		}
	}
	if denom == 0 {
		return 0.0, nil
	}
	return num / denom, nil
}

// sumFunc adds all inputs, ignoring nil entries. An empty list yields 0.0.
type sumFunc struct{}

func (sumFunc) Type() Type { return TypeSum }

func (sumFunc) Evaluate(inputs []Value, _ Params) (Value, error) {
	var total float64
	for _, in := range inputs {
		if v, ok := asFloat(in); ok {
			total += v
		}
	}
	return total, nil
}

// selectFunc picks from the option inputs by the condition input. The first
// input is a 1-based index into the remaining inputs; a falsy, absent, or
// out-of-range condition yields the "default" parameter.
type selectFunc struct{}

func (selectFunc) Type() Type { return TypeSelect }

func (selectFunc) Evaluate(inputs []Value, params Params) (Value, error) {
	def := params.Get("default", 0)
	if len(inputs) < 2 {
		return def, nil
	}
	cond, ok := asFloat(inputs[0])
	if !ok {
		return def, nil
	}
	idx := int(cond)
	options := inputs[1:]
	if idx < 1 || idx > len(options) {
		return def, nil
	}
	v, ok := asFloat(options[idx-1])
	if !ok {
		return def, nil
	}
	return v, nil
}

// leaderSelectFunc ranks the inputs and returns the 1-based index of the
// maximum if it exceeds the "threshold" parameter, else 0. Nil entries are
// excluded from the ranking; ties break toward the lowest index.
type leaderSelectFunc struct{}

func (leaderSelectFunc) Type() Type { return TypeLeaderSelect }

func (leaderSelectFunc) Evaluate(inputs []Value, params Params) (Value, error) {
	threshold := params.Get("threshold", 0)

	best := 0
	bestVal := math.Inf(-1)
	for i, in := range inputs {
		v, ok := asFloat(in)
		if !ok {
			continue
		}
		if v > bestVal {
			bestVal = v
			best = i + 1
		}
	}
	if best == 0 || bestVal <= threshold {
		return 0.0, nil
	}
	return float64(best), nil
}

// dualDirectionFunc splits a signed value into up/down magnitudes.
// A nil input yields {0, 0}.
type dualDirectionFunc struct{}

func (dualDirectionFunc) Type() Type { return TypeDualDirection }

func (dualDirectionFunc) Evaluate(inputs []Value, _ Params) (Value, error) {
	if len(inputs) == 0 {
		return Split{}, nil
	}
	v, ok := asFloat(inputs[0])
	if !ok {
		return Split{}, nil
	}
	return Split{Up: math.Max(v, 0), Down: math.Max(-v, 0)}, nil
}

// absDistanceFunc computes |value - reference| with the "reference"
// parameter defaulting to 0. A nil value is substituted with 0 before the
// subtraction, mirroring the legacy default substitution: the result then
// equals |reference|.
type absDistanceFunc struct{}

func (absDistanceFunc) Type() Type { return TypeAbsDistance }

func (absDistanceFunc) Evaluate(inputs []Value, params Params) (Value, error) {
	ref := params.Get("reference", 0)
	var v float64
	if len(inputs) > 0 {
		v, _ = asFloat(inputs[0])
	}
	return math.Abs(v - ref), nil
}

// subtractFunc computes a - b with nil entries treated as 0. Fewer than two
// inputs yields 0.0.
type subtractFunc struct{}

func (subtractFunc) Type() Type { return TypeSubtract }

func (subtractFunc) Evaluate(inputs []Value, _ Params) (Value, error) {
	if len(inputs) < 2 {
		return 0.0, nil
	}
	a, _ := asFloat(inputs[0])
	b, _ := asFloat(inputs[1])
	return a - b, nil
}

// roundFunc rounds to the nearest tick, half away from zero. The tick size
// is the "tick" parameter (default 1.0); pass 0.01 to round JPY-quoted
// prices to the pip. The rounding rule is fixed here because the legacy
// system never pinned one down.
type roundFunc struct{}

func (roundFunc) Type() Type { return TypeRound }

func (roundFunc) Evaluate(inputs []Value, params Params) (Value, error) {
	tick := params.Get("tick", 1.0)
	if tick <= 0 {
		tick = 1.0
	}
	var v float64
	if len(inputs) > 0 {
		v, _ = asFloat(inputs[0])
	}
	return math.Round(v/tick) * tick, nil
}

// minuteExtractFunc extracts the minute-of-hour from a timestamp-like
// input; used for time-gating periodic judgments. An invalid or missing
// timestamp yields 0.
type minuteExtractFunc struct{}

func (minuteExtractFunc) Type() Type { return TypeMinuteExtract }

func (minuteExtractFunc) Evaluate(inputs []Value, _ Params) (Value, error) {
	if len(inputs) == 0 {
		return 0.0, nil
	}
	ts, ok := asTime(inputs[0])
	if !ok {
		return 0.0, nil
	}
	return float64(ts.Minute()), nil
}
