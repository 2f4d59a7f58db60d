package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"CoinSentinel/internal/model"
)

// RedisStore persists the state as a JSON value under StateKey. This is the
// durable implementation for deployments where the bot can be restarted or
// rescheduled across hosts.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore verifies connectivity and returns the store.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client, key: StateKey}, nil
}

func (r *RedisStore) Get(ctx context.Context) (model.TradeState, bool, error) {
	data, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return model.TradeState{}, false, nil
	}
	if err != nil {
		return model.TradeState{}, false, fmt.Errorf("redis get: %w", err)
	}
	var state model.TradeState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return model.TradeState{}, false, fmt.Errorf("decode state: %w", err)
	}
	return state, true, nil
}

func (r *RedisStore) Set(ctx context.Context, state model.TradeState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Reset(ctx context.Context) error {
	return r.Set(ctx, model.DefaultTradeState())
}

func (r *RedisStore) Close() error { return r.client.Close() }
