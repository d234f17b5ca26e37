package judge

import (
	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/fn"
	"fx-signal-lab/internal/graph"
	"fx-signal-lab/internal/pkgid"
)

// BarSymbol is the raw symbol the judgment nodes read their window from.
const BarSymbol = "OHLC"

// Judgments is the standard judgment slice for one currency: the bar
// window raw node plus one node per judgment type.
type Judgments struct {
	Bars     pkgid.ID
	Dokyaku  pkgid.ID
	Ikikaeri pkgid.ID
	Momi     pkgid.ID
}

// All returns the judgment node identifiers in a fixed order.
func (j Judgments) All() []pkgid.ID {
	return []pkgid.ID{j.Dokyaku, j.Ikikaeri, j.Momi}
}

// Register wires the standard judgment slice for a currency into g: a bar
// window raw node (empty until the feed fills it) and the three judgment
// nodes reading it, all under the given timeframe and period.
func Register(g *graph.Graph, tf pkgid.Timeframe, p pkgid.Period, c pkgid.Currency, t domain.JudgmentTuning) (Judgments, error) {
	var out Judgments

	bars, err := g.RegisterRawData(BarSymbol, tf, p, c, domain.BarWindow(nil))
	if err != nil {
		return out, err
	}
	out.Bars = bars

	register := func(typ fn.Type, sequence string) (pkgid.ID, error) {
		f, err := NewFunc(typ, t)
		if err != nil {
			return pkgid.ID{}, err
		}
		return g.RegisterFuncNode(pkgid.ID{
			Timeframe: tf,
			Period:    p,
			Currency:  c,
			Sequence:  sequence,
		}, f, []pkgid.ID{bars}, nil)
	}

	if out.Dokyaku, err = register(TypeDokyaku, "DOKYAKU"); err != nil {
		return out, err
	}
	if out.Ikikaeri, err = register(TypeIkikaeri, "IKIKAERI"); err != nil {
		return out, err
	}
	if out.Momi, err = register(TypeMomiOvershoot, "MOMI"); err != nil {
		return out, err
	}
	return out, nil
}
