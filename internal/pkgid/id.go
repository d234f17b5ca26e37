// Package pkgid implements the structured node identifier used to key every
// vertex of the evaluation graph. The textual form is
// "{timeframe}{period}{currency}^{layer}-{sequence}", e.g. "391^2-126".
package pkgid

import (
	"fmt"
	"strconv"
	"strings"
)

// Timeframe identifies the bar granularity of a node.
type Timeframe int

// Supported timeframes and their single-digit codes.
const (
	Timeframe1Min  Timeframe = 1
	Timeframe3Min  Timeframe = 2
	Timeframe5Min  Timeframe = 3
	Timeframe15Min Timeframe = 4
	Timeframe30Min Timeframe = 5
	Timeframe1Hour Timeframe = 6
)

// Minutes returns the bar length in minutes.
func (tf Timeframe) Minutes() int {
	switch tf {
	case Timeframe1Min:
		return 1
	case Timeframe3Min:
		return 3
	case Timeframe5Min:
		return 5
	case Timeframe15Min:
		return 15
	case Timeframe30Min:
		return 30
	case Timeframe1Hour:
		return 60
	default:
		return 0
	}
}

// String returns a human-readable label like "5m".
func (tf Timeframe) String() string {
	if m := tf.Minutes(); m > 0 {
		if m == 60 {
			return "1h"
		}
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("Timeframe(%d)", int(tf))
}

// valid reports whether the code maps to a known timeframe.
func (tf Timeframe) valid() bool {
	return tf.Minutes() > 0
}

// Period identifies the cyclic periodicity of a node.
// Most nodes are PeriodCommon (no periodicity); cyclic periods exist for
// time-gated judgments that only fire on certain minute boundaries.
type Period int

// Supported periods and their single-digit codes. Code 9 is the legacy
// "common" marker and is kept for interop with recorded identifiers.
const (
	Period10Min  Period = 1
	Period15Min  Period = 2
	Period30Min  Period = 3
	Period45Min  Period = 4
	PeriodCommon Period = 9
)

// String returns a human-readable label.
func (p Period) String() string {
	switch p {
	case Period10Min:
		return "p10"
	case Period15Min:
		return "p15"
	case Period30Min:
		return "p30"
	case Period45Min:
		return "p45"
	case PeriodCommon:
		return "common"
	default:
		return fmt.Sprintf("Period(%d)", int(p))
	}
}

func (p Period) valid() bool {
	switch p {
	case Period10Min, Period15Min, Period30Min, Period45Min, PeriodCommon:
		return true
	}
	return false
}

// Currency identifies the traded pair of a node.
type Currency int

// Supported currency pairs and their single-digit codes.
const (
	CurrencyUSDJPY Currency = 1
	CurrencyEURUSD Currency = 2
	CurrencyEURJPY Currency = 3
)

// Pair returns the conventional six-letter pair name.
func (c Currency) Pair() string {
	switch c {
	case CurrencyUSDJPY:
		return "USDJPY"
	case CurrencyEURUSD:
		return "EURUSD"
	case CurrencyEURJPY:
		return "EURJPY"
	default:
		return ""
	}
}

// String returns the pair name, or a diagnostic form for unknown codes.
func (c Currency) String() string {
	if p := c.Pair(); p != "" {
		return p
	}
	return fmt.Sprintf("Currency(%d)", int(c))
}

func (c Currency) valid() bool {
	return c.Pair() != ""
}

// RawDataLayer is the layer reserved for externally supplied values.
const RawDataLayer = 0

// ID is the immutable identifier of a graph node. The zero value is not a
// valid identifier. IDs are comparable and usable as map keys; equality is
// defined over the full five-tuple.
type ID struct {
	Timeframe Timeframe
	Period    Period
	Currency  Currency
	Layer     int
	Sequence  string
}

// New constructs a validated ID.
func New(tf Timeframe, p Period, c Currency, layer int, sequence string) (ID, error) {
	id := ID{Timeframe: tf, Period: p, Currency: c, Layer: layer, Sequence: sequence}
	if err := id.Validate(); err != nil {
		return ID{}, err
	}
	return id, nil
}

// Validate checks every field against the enum domains and the sequence
// character restrictions. Sequence must be non-empty and must not contain
// the identifier's own separators '^' and '-'.
func (id ID) Validate() error {
	if !id.Timeframe.valid() {
		return &ParseError{Input: id.unsafeFormat(), Reason: fmt.Sprintf("unknown timeframe code %d", int(id.Timeframe))}
	}
	if !id.Period.valid() {
		return &ParseError{Input: id.unsafeFormat(), Reason: fmt.Sprintf("unknown period code %d", int(id.Period))}
	}
	if !id.Currency.valid() {
		return &ParseError{Input: id.unsafeFormat(), Reason: fmt.Sprintf("unknown currency code %d", int(id.Currency))}
	}
	if id.Layer < 0 {
		return &ParseError{Input: id.unsafeFormat(), Reason: "negative layer"}
	}
	if id.Sequence == "" {
		return &ParseError{Input: id.unsafeFormat(), Reason: "empty sequence"}
	}
	if strings.ContainsAny(id.Sequence, "^-") {
		return &ParseError{Input: id.unsafeFormat(), Reason: "sequence contains reserved separator"}
	}
	return nil
}

// Format returns the canonical string form. The result round-trips through
// Parse without loss for every valid ID.
func (id ID) Format() string {
	return id.unsafeFormat()
}

// String implements fmt.Stringer; identical to Format.
func (id ID) String() string {
	return id.unsafeFormat()
}

// unsafeFormat serializes without validating; used by error paths too.
func (id ID) unsafeFormat() string {
	return fmt.Sprintf("%d%d%d^%d-%s", int(id.Timeframe), int(id.Period), int(id.Currency), id.Layer, id.Sequence)
}

// IsRaw reports whether the node sits on the raw-data layer.
func (id ID) IsRaw() bool {
	return id.Layer == RawDataLayer
}

// Parse is the inverse of Format. It is strict: malformed shapes and unknown
// enum codes both fail with a *ParseError (the lenient legacy fallback to
// default codes is intentionally not preserved).
func Parse(s string) (ID, error) {
	caret := strings.IndexByte(s, '^')
	if caret < 0 {
		return ID{}, &ParseError{Input: s, Reason: "missing '^' separator"}
	}
	head, tail := s[:caret], s[caret+1:]

	if len(head) != 3 {
		return ID{}, &ParseError{Input: s, Reason: "prefix must be exactly three digits"}
	}
	var codes [3]int
	for i := 0; i < 3; i++ {
		if head[i] < '0' || head[i] > '9' {
			return ID{}, &ParseError{Input: s, Reason: "prefix must be exactly three digits"}
		}
		codes[i] = int(head[i] - '0')
	}

	dash := strings.IndexByte(tail, '-')
	if dash < 0 {
		return ID{}, &ParseError{Input: s, Reason: "missing '-' separator"}
	}
	layerStr, sequence := tail[:dash], tail[dash+1:]

	layer, err := strconv.Atoi(layerStr)
	if err != nil || layerStr == "" {
		return ID{}, &ParseError{Input: s, Reason: "layer is not an integer"}
	}

	id := ID{
		Timeframe: Timeframe(codes[0]),
		Period:    Period(codes[1]),
		Currency:  Currency(codes[2]),
		Layer:     layer,
		Sequence:  sequence,
	}
	if err := id.Validate(); err != nil {
		return ID{}, err
	}
	return id, nil
}

// Raw builds a layer-0 identifier for an externally supplied symbol.
func Raw(tf Timeframe, p Period, c Currency, symbol string) (ID, error) {
	return New(tf, p, c, RawDataLayer, symbol)
}
