package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory set of expiring keys.
// It implements GenerationGuard for single-process deployments.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]time.Time
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]time.Time),
		stop:  make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired(5 * time.Minute)

	return store
}

// SetNX marks key until expiration, only when it is absent or expired
func (ms *MemoryStore) SetNX(key string, expiration time.Duration) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	if expireTime, ok := ms.items[key]; ok && now.Before(expireTime) {
		return false
	}
	ms.items[key] = now.Add(expiration)
	return true
}

// Delete removes a key
func (ms *MemoryStore) Delete(key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, key)
}

// Acquire implements GenerationGuard
func (ms *MemoryStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return ms.SetNX(key, ttl), nil
}

// Release implements GenerationGuard
func (ms *MemoryStore) Release(_ context.Context, key string) error {
	ms.Delete(key)
	return nil
}

// Close stops the cleanup goroutine
func (ms *MemoryStore) Close() error {
	ms.once.Do(func() { close(ms.stop) })
	return nil
}

// cleanupExpired periodically removes expired items
func (ms *MemoryStore) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			ms.mu.Lock()
			now := time.Now()
			for key, expireTime := range ms.items {
				if now.After(expireTime) {
					delete(ms.items, key)
				}
			}
			ms.mu.Unlock()
		}
	}
}
