package search

import (
	"container/list"
	"strconv"
	"sync"

	"github.com/openhadith/hadith-go/pkg/types"
)

// resultCache is a thread-safe bounded LRU mapping a normalized query plus
// limit to a materialized result list. Values are shared slices, not deep
// copies; callers must not mutate cached records.
type resultCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	lruList  *list.List
	hits     uint64
	misses   uint64
}

type cacheEntry struct {
	key     string
	results []types.SearchResult
}

// newResultCache creates a cache holding at most capacity entries.
func newResultCache(capacity int) *resultCache {
	return &resultCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		lruList:  list.New(),
	}
}

// cacheKey builds the cache key for a normalized query and limit.
func cacheKey(normalized string, limit int) string {
	return normalized + "\x00" + strconv.Itoa(limit)
}

// Get retrieves a cached result list.
func (c *resultCache) Get(key string) ([]types.SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	c.lruList.MoveToFront(elem)
	c.hits++
	return elem.Value.(*cacheEntry).results, true
}

// Put stores a result list, evicting the least recently used entry when
// the cache is full.
func (c *resultCache) Put(key string, results []types.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheEntry).results = results
		c.lruList.MoveToFront(elem)
		return
	}

	elem := c.lruList.PushFront(&cacheEntry{key: key, results: results})
	c.items[key] = elem

	if c.lruList.Len() > c.capacity {
		oldest := c.lruList.Back()
		if oldest != nil {
			c.lruList.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of cached entries.
func (c *resultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}

// Stats returns hit/miss counters.
func (c *resultCache) Stats() types.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return types.CacheStats{
		Size:   c.lruList.Len(),
		Hits:   c.hits,
		Misses: c.misses,
	}
}
