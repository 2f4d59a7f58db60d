// Package store persists the singleton TradeState record behind a narrow
// get/set contract. Only the cooldown state machine writes it.
package store

import (
	"context"

	"CoinSentinel/internal/model"
)

// StateKey identifies the single tracked instrument's record.
const StateKey = "coinsentinel:lastTrade"

// Store is the TradeState persistence contract.
type Store interface {
	// Get returns the persisted state and whether a record exists.
	Get(ctx context.Context) (model.TradeState, bool, error)
	// Set replaces the persisted state.
	Set(ctx context.Context, state model.TradeState) error
	// Reset unconditionally restores the default state.
	Reset(ctx context.Context) error
	Close() error
}
