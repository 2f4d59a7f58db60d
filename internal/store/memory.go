package store

import (
	"context"
	"sync"

	"CoinSentinel/internal/model"
)

// MemoryStore keeps the state in process memory. Used in tests and as a
// last-resort fallback when no durable store is configured.
type MemoryStore struct {
	mu    sync.Mutex
	state model.TradeState
	set   bool

	// FailGet / FailSet force errors for fail-closed tests.
	FailGet error
	FailSet error
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Get(_ context.Context) (model.TradeState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGet != nil {
		return model.TradeState{}, false, m.FailGet
	}
	return m.state, m.set, nil
}

func (m *MemoryStore) Set(_ context.Context, state model.TradeState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSet != nil {
		return m.FailSet
	}
	m.state = state
	m.set = true
	return nil
}

func (m *MemoryStore) Reset(ctx context.Context) error {
	return m.Set(ctx, model.DefaultTradeState())
}

func (m *MemoryStore) Close() error { return nil }
