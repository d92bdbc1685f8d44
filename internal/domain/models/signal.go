package models

import "time"

type SignalKind string

const (
	SignalBuy  SignalKind = "buy"
	SignalSell SignalKind = "sell"
	SignalHold SignalKind = "hold"
)

// Signal is one rule's verdict with its strength (0-100) and reason.
type Signal struct {
	Kind     SignalKind `json:"signal"`
	Strength float64    `json:"strength"`
	Reason   string     `json:"reason"`
}

// SignalReport consolidates component signals and the weighted overall call.
type SignalReport struct {
	Symbol     string            `json:"symbol"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]Signal `json:"components"`
	Overall    Signal            `json:"overall"`
}
