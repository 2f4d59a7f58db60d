package engine

import (
	"sync"

	"CoinSentinel/internal/model"
)

// Latest holds the last computed signal for dashboard-style polling. It is
// created by the caller and passed to whoever needs reads; the engine itself
// never caches.
type Latest struct {
	mu  sync.RWMutex
	sig *model.Signal
}

func NewLatest() *Latest { return &Latest{} }

func (l *Latest) Set(sig *model.Signal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sig = sig
}

func (l *Latest) Get() *model.Signal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sig
}
