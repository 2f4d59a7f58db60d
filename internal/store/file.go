package store

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"CoinSentinel/internal/model"
)

// FileStore persists the state as a JSON file. Durable enough for a single
// bot instance on one host.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Get(_ context.Context) (model.TradeState, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.TradeState{}, false, nil
		}
		return model.TradeState{}, false, err
	}
	var state model.TradeState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.TradeState{}, false, err
	}
	return state, true, nil
}

func (f *FileStore) Set(_ context.Context, state model.TradeState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0644)
}

func (f *FileStore) Reset(ctx context.Context) error {
	return f.Set(ctx, model.DefaultTradeState())
}

func (f *FileStore) Close() error { return nil }
