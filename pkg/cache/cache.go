// Package cache stores serialized storefront reads behind a small key/value
// interface with in-memory and Redis backends.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pink-basket/pkg/config"
)

// Store is implemented by every cache backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// New builds the backend selected by cfg.Cache.Backend.
func New(cfg *config.Config) (Store, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return NewMemory(5 * time.Minute), nil
	case "redis":
		return NewRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	case "none", "":
		return Noop{}, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

// GetJSON decodes the cached value at key into target.
func GetJSON(ctx context.Context, s Store, key string, target any) (bool, error) {
	data, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serializes value and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data, ttl)
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Noop) DeletePrefix(context.Context, string) error { return nil }

func (Noop) Close() error { return nil }
