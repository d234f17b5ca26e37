// Package importer bulk-registers function nodes from spreadsheet-shaped
// definition records. Parsing the spreadsheet itself happens upstream; the
// importer only maps records onto graph registrations, resolving input
// names against previously imported records and already registered raw
// symbols.
package importer

import (
	"errors"
	"fmt"
	"strings"

	"fx-signal-lab/internal/domain"
	"fx-signal-lab/internal/fn"
	"fx-signal-lab/internal/graph"
	"fx-signal-lab/internal/pkgid"
)

// ErrUnresolvedInput marks a record whose input name matches neither an
// earlier record in the batch nor a registered raw symbol.
var ErrUnresolvedInput = errors.New("importer: unresolved input name")

// ErrDuplicateName marks a batch containing two records with the same name.
var ErrDuplicateName = errors.New("importer: duplicate record name")

// Importer maps definition records onto graph registrations for one
// currency/period slice. Records reference each other by name; the
// importer keeps the name to identifier table across Import calls so
// later batches can build on earlier ones.
type Importer struct {
	g        *graph.Graph
	period   pkgid.Period
	currency pkgid.Currency

	// LayerPrefix optionally maps a name prefix to a declared layer,
	// the convention used by legacy definition sheets where e.g. every
	// "S3_" node sat on layer 3. Overlapping prefixes resolve to the
	// longest match. Unmapped names default to layer 0, letting
	// registration derive the layer from the inputs.
	LayerPrefix map[string]int

	names map[string]pkgid.ID
}

// New creates an importer targeting g. All imported nodes share the given
// period and currency; the timeframe comes from each record.
func New(g *graph.Graph, p pkgid.Period, c pkgid.Currency) *Importer {
	return &Importer{
		g:        g,
		period:   p,
		currency: c,
		names:    make(map[string]pkgid.ID),
	}
}

// Lookup returns the identifier a name resolved to in a previous Import.
func (imp *Importer) Lookup(name string) (pkgid.ID, bool) {
	id, ok := imp.names[name]
	return id, ok
}

// Import registers every record in order. Each record becomes one function
// node; its threshold lands in the node params under "threshold" and its
// group number, when positive, is the declared layer (the longest
// layer-prefix match on the name wins over the group number). Input names resolve first
// against imported names, then against raw symbols under the record's
// timeframe.
//
// Returns the identifiers in record order. A failing record aborts the
// batch; earlier records of the batch stay registered.
func (imp *Importer) Import(records []domain.GraphDefRecord) ([]pkgid.ID, error) {
	ids := make([]pkgid.ID, 0, len(records))
	for i, rec := range records {
		id, err := imp.importOne(rec)
		if err != nil {
			return ids, fmt.Errorf("record %d (%s): %w", i, rec.Name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (imp *Importer) importOne(rec domain.GraphDefRecord) (pkgid.ID, error) {
	if _, dup := imp.names[rec.Name]; dup {
		return pkgid.ID{}, fmt.Errorf("%w: %s", ErrDuplicateName, rec.Name)
	}

	tf := pkgid.Timeframe(rec.Timeframe)
	inputs, err := imp.resolveInputs(rec, tf)
	if err != nil {
		return pkgid.ID{}, err
	}

	id := pkgid.ID{
		Timeframe: tf,
		Period:    imp.period,
		Currency:  imp.currency,
		Layer:     imp.declaredLayer(rec),
		Sequence:  rec.Name,
	}

	params := fn.Params{}
	if rec.Threshold != 0 {
		params["threshold"] = rec.Threshold
	}

	final, err := imp.g.RegisterFunction(id, fn.Type(rec.FunctionType), inputs, params)
	if err != nil {
		return pkgid.ID{}, err
	}
	imp.names[rec.Name] = final
	return final, nil
}

func (imp *Importer) resolveInputs(rec domain.GraphDefRecord, tf pkgid.Timeframe) ([]pkgid.ID, error) {
	inputs := make([]pkgid.ID, 0, len(rec.InputSymbols))
	for _, name := range rec.InputSymbols {
		if id, ok := imp.names[name]; ok {
			inputs = append(inputs, id)
			continue
		}
		raw, err := pkgid.Raw(tf, imp.period, imp.currency, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedInput, name)
		}
		if _, ok := imp.g.Node(raw); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedInput, name)
		}
		inputs = append(inputs, raw)
	}
	return inputs, nil
}

// declaredLayer resolves a record's layer: longest matching name prefix
// first, then a positive group number, then 0 (derive from inputs). The
// longest match keeps overlapping prefixes like "S" and "S3" deterministic;
// two distinct prefixes of equal length can never both match one name.
func (imp *Importer) declaredLayer(rec domain.GraphDefRecord) int {
	best := ""
	for prefix := range imp.LayerPrefix {
		if strings.HasPrefix(rec.Name, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		return imp.LayerPrefix[best]
	}
	if rec.GroupNo > 0 {
		return rec.GroupNo
	}
	return 0
}
