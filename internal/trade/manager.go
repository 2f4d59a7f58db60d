package trade

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CoinSentinel/internal/model"
	"CoinSentinel/internal/store"
)

// Resolution is what Apply hands back to the engine.
type Resolution struct {
	Action     model.Action
	Suppressed bool
	Emergency  bool
	Forced     bool
	Persisted  bool
}

// Manager serializes the read-then-write on the shared TradeState record so
// overlapping ticks cannot both open a cooldown.
type Manager struct {
	mu     sync.Mutex
	store  store.Store
	window time.Duration
}

// NewManager creates a Manager with the given cooldown window.
func NewManager(s store.Store, window time.Duration) *Manager {
	return &Manager{store: s, window: window}
}

// Apply resolves the tentative action against the persisted state.
//
// Forced invocations may substitute an explicit override, bypass suppression,
// and never write state; the emergency exit still wins over force. Any store
// failure fails closed: the action is suppressed rather than risking a
// double alert.
func (m *Manager) Apply(ctx context.Context, tentative model.Action, snap *model.IndicatorSnapshot, now time.Time, force bool, override model.Action) (Resolution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok, err := m.store.Get(ctx)
	if err != nil {
		return Resolution{Action: model.ActionNone, Suppressed: true},
			fmt.Errorf("read trade state: %w", err)
	}
	if !ok {
		st = model.DefaultTradeState()
	}

	out := Resolve(tentative, st, snap, now, m.window)
	if out.Emergency {
		return Resolution{Action: out.Action, Emergency: true}, nil
	}

	if force {
		action := tentative
		if override != "" {
			action = override
		}
		return Resolution{Action: action, Forced: true}, nil
	}

	if out.Persist {
		if err := m.store.Set(ctx, out.NewState); err != nil {
			return Resolution{Action: model.ActionNone, Suppressed: true},
				fmt.Errorf("write trade state: %w", err)
		}
		return Resolution{Action: out.Action, Persisted: true}, nil
	}

	return Resolution{Action: out.Action, Suppressed: out.Suppressed}, nil
}

// Reset restores the default state. Administrative use only.
func (m *Manager) Reset(ctx context.Context) error {
	return m.store.Reset(ctx)
}

// Window exposes the configured cooldown window.
func (m *Manager) Window() time.Duration { return m.window }
