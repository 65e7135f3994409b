package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryItem struct {
	value      []byte
	expiration int64
}

// Memory is a process-local TTL cache. Expired items are swept periodically
// until Close is called.
type Memory struct {
	mu    sync.RWMutex
	items map[string]memoryItem

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewMemory(sweepInterval time.Duration) *Memory {
	m := &Memory{
		items: make(map[string]memoryItem),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go m.cleanupExpired(sweepInterval)
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, found := m.items[key]
	if !found || time.Now().UnixNano() > item.expiration {
		return nil, false, nil
	}
	return item.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = memoryItem{
		value:      value,
		expiration: time.Now().Add(ttl).UnixNano(),
	}
	return nil
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

// Len returns the number of stored items, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stop) })
	<-m.done
	return nil
}

func (m *Memory) cleanupExpired(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			now := time.Now().UnixNano()
			m.mu.Lock()
			for key, item := range m.items {
				if now > item.expiration {
					delete(m.items, key)
				}
			}
			m.mu.Unlock()
		}
	}
}
