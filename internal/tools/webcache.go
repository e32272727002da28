package tools

import (
	"container/list"
	"sync"
	"time"
)

// webCache is an LRU cache with a per-entry TTL, shared by web_fetch and
// web_search: it keeps memory bounded while avoiding refetching a URL or
// re-running a query within the freshness window.
type webCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	clock   func() time.Time
	entries map[string]*list.Element
	lruList *list.List
}

type webCacheEntry struct {
	key       string
	value     string
	expiresAt time.Time
}

func newWebCache(maxSize int, ttl time.Duration) *webCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &webCache{
		maxSize: maxSize,
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]*list.Element),
		lruList: list.New(),
	}
}

// get returns the cached value for key, or "" and false if absent or
// expired. An expired entry is evicted on lookup.
func (c *webCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false
	}
	entry := elem.Value.(*webCacheEntry)
	if c.clock().After(entry.expiresAt) {
		c.lruList.Remove(elem)
		delete(c.entries, key)
		return "", false
	}
	c.lruList.MoveToFront(elem)
	return entry.value, true
}

func (c *webCache) set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock().Add(c.ttl)
	if elem, ok := c.entries[key]; ok {
		elem.Value.(*webCacheEntry).value = value
		elem.Value.(*webCacheEntry).expiresAt = expiresAt
		c.lruList.MoveToFront(elem)
		return
	}

	if c.lruList.Len() >= c.maxSize {
		oldest := c.lruList.Back()
		if oldest != nil {
			delete(c.entries, oldest.Value.(*webCacheEntry).key)
			c.lruList.Remove(oldest)
		}
	}

	elem := c.lruList.PushFront(&webCacheEntry{key: key, value: value, expiresAt: expiresAt})
	c.entries[key] = elem
}
