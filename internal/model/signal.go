package model

import (
	"fmt"
	"time"
)

// Action is the recommendation emitted by the engine.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionNone Action = "NONE"
)

// FactorScore represents a single factor's scoring result.
type FactorScore struct {
	Name       string
	Points     int
	Commentary string
}

// Reason renders the factor as one entry of the signal reason list.
func (f FactorScore) Reason() string {
	return fmt.Sprintf("%s: %s (+%d)", f.Name, f.Commentary, f.Points)
}

// Signal is the final output of one engine invocation. Immutable once produced.
type Signal struct {
	At         time.Time         `json:"at"`
	Verdict    bool              `json:"verdict"`
	Action     Action            `json:"action"`
	Score      int               `json:"score"`
	Price      float64           `json:"price"`
	Indicators IndicatorSnapshot `json:"indicators"`
	Reason     []string          `json:"reason"`
}
