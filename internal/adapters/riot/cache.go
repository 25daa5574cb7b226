package riot

import (
	"container/list"
	"context"
	"sync"
)

// Cache stores immutable upstream payloads as raw JSON. Implementations must
// be safe for concurrent use and best-effort: a failed lookup is a miss, a
// failed insert is dropped.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// memoryCache is a mutex-guarded LRU bounded by entry count. Only payloads
// that are immutable once produced belong here (static versions, completed
// match records), never live rank data.
type memoryCache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List // front = most recently used
	entries map[string]*list.Element
}

type cacheEntry struct {
	key   string
	value []byte
}

const defaultCacheSize = 512

// NewMemoryCache creates a bounded in-memory LRU cache. Sizes below 1 clamp
// to the default.
func NewMemoryCache(maxSize int) Cache {
	if maxSize < 1 {
		maxSize = defaultCacheSize
	}
	return &memoryCache{
		maxSize: maxSize,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).value, true
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).value = value
		c.order.MoveToFront(el)
		return
	}
	for len(c.entries) >= c.maxSize {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, value: value})
}
