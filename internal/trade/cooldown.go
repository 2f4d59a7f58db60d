// Package trade applies the anti-spam cooldown policy to tentative actions
// and owns the only writes to the persisted TradeState.
package trade

import (
	"time"

	"CoinSentinel/internal/model"
)

// Emergency exit: during cooldown a sharp deterioration forces an immediate
// SELL, bypassing the score gate.
const (
	emergencyDrop1hPct = -1.0
	emergencyEMARatio  = 0.995
)

// Outcome is the result of one cooldown transition.
type Outcome struct {
	Action     model.Action
	Suppressed bool // cooldown swallowed the tentative action
	Emergency  bool // emergency exit fired
	Persist    bool // NewState must be written
	NewState   model.TradeState
}

// isEmergency reports whether price deteriorated sharply enough to exit
// during an active cooldown.
func isEmergency(snap *model.IndicatorSnapshot) bool {
	return snap.Change1h <= emergencyDrop1hPct || snap.Price < snap.EMAShort*emergencyEMARatio
}

// Resolve applies the non-forced state machine:
//
//	IDLE + BUY           → emit BUY, persist {BUY, now, price}
//	IDLE + SELL          → emit SELL, state untouched
//	COOLDOWN (active)    → suppress to NONE, unless emergency → SELL
//	COOLDOWN (elapsed)   → behaves as IDLE
//
// A SELL never writes state: only a real BUY opens a cooldown.
func Resolve(tentative model.Action, st model.TradeState, snap *model.IndicatorSnapshot, now time.Time, window time.Duration) Outcome {
	if st.InCooldown(now, window) {
		if isEmergency(snap) {
			return Outcome{Action: model.ActionSell, Emergency: true}
		}
		if tentative != model.ActionNone {
			return Outcome{Action: model.ActionNone, Suppressed: true}
		}
		return Outcome{Action: model.ActionNone}
	}

	if tentative == model.ActionBuy {
		return Outcome{
			Action:  model.ActionBuy,
			Persist: true,
			NewState: model.TradeState{
				LastAction: model.ActionBuy,
				LastAt:     now,
				LastPrice:  snap.Price,
			},
		}
	}
	return Outcome{Action: tentative}
}
