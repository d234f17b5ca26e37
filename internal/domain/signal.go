package domain

import "time"

// Direction is a trading-signal direction.
type Direction string

// Direction constants.
const (
	DirectionNeutral Direction = "neutral"
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
)

// Judgment is the structured result of a domain judgment function
// (dokyaku, ikikaeri, momi/overshoot): a direction plus a confidence
// in [0, 1].
type Judgment struct {
	Direction  Direction
	Confidence float64
}

// Signal is an evaluated trading signal read out of a top-layer node.
type Signal struct {
	NodeID      string // canonical identifier string form
	Currency    string // six-letter pair, e.g. "USDJPY"
	Direction   Direction
	Confidence  float64
	EvaluatedAt time.Time
}

// SignalRecord is the persisted form of a Signal.
// Corresponds to the signals table in ClickHouse.
type SignalRecord struct {
	NodeID      string
	Currency    string
	Direction   string
	Confidence  float64
	EvaluatedMs int64 // Unix timestamp in milliseconds
}
