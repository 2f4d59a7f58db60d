package model

import "time"

// TradeState is the single persisted record tracking the last real BUY.
// Mutated only by the cooldown state machine on a non-forced BUY.
type TradeState struct {
	LastAction Action    `json:"last_action"`
	LastAt     time.Time `json:"last_at"`
	LastPrice  float64   `json:"last_price,omitempty"`
}

// DefaultTradeState is the lazily-created initial record, also the target of
// an administrative reset.
func DefaultTradeState() TradeState {
	return TradeState{LastAction: ActionNone, LastAt: time.Unix(0, 0).UTC()}
}

// InCooldown reports whether a real BUY was recorded within the window.
func (s TradeState) InCooldown(now time.Time, window time.Duration) bool {
	return s.LastAction == ActionBuy && now.Sub(s.LastAt) < window
}
