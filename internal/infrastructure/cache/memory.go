package cache

import (
	"sync"
	"time"
)

// MemoryStore is a process-local key-value store with expiration. It backs the sweep lock
// when Redis is disabled.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type memoryItem struct {
	value      string
	expireTime time.Time
}

// NewMemoryStore creates a new in-memory store and starts its janitor. Call Close to stop it.
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go store.cleanupExpired(5 * time.Minute)
	return store
}

// Set stores a key-value pair with expiration
func (ms *MemoryStore) Set(key, value string, expiration time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.items[key] = memoryItem{value: value, expireTime: ms.now().Add(expiration)}
}

// SetNX stores the pair only when key is absent or expired. It reports whether it stored.
func (ms *MemoryStore) SetNX(key, value string, expiration time.Duration) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	now := ms.now()
	if item, ok := ms.items[key]; ok && now.Before(item.expireTime) {
		return false
	}
	ms.items[key] = memoryItem{value: value, expireTime: now.Add(expiration)}
	return true
}

// Get retrieves a live value by key
func (ms *MemoryStore) Get(key string) (string, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	item, ok := ms.items[key]
	if !ok || ms.now().After(item.expireTime) {
		return "", false
	}
	return item.value, true
}

// Delete removes a key
func (ms *MemoryStore) Delete(key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.items, key)
}

// DeleteIf removes key only while it still holds value.
func (ms *MemoryStore) DeleteIf(key, value string) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	item, ok := ms.items[key]
	if !ok || item.value != value {
		return false
	}
	delete(ms.items, key)
	return true
}

// Close stops the janitor goroutine.
func (ms *MemoryStore) Close() {
	ms.stopOnce.Do(func() { close(ms.stop) })
}

func (ms *MemoryStore) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			ms.mu.Lock()
			now := ms.now()
			for key, item := range ms.items {
				if now.After(item.expireTime) {
					delete(ms.items, key)
				}
			}
			ms.mu.Unlock()
		}
	}
}
