package analytics

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/amankumarsingh77/seo_audit/models"
)

type cacheItem struct {
	key       string
	value     *models.AnalyticsSnapshot
	expiresAt time.Time
}

// LRUCache keeps recent snapshots so repeated audits of a domain inside the
// TTL reuse one analytics call. Expired entries are dropped lazily on Get.
type LRUCache struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time
	cache    map[string]*list.Element
	list     *list.List
	mu       sync.Mutex
}

func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		cache:    make(map[string]*list.Element),
		list:     list.New(),
	}
}

func (c *LRUCache) Get(key string) (*models.AnalyticsSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	item := elem.Value.(*cacheItem)
	if c.ttl > 0 && c.now().After(item.expiresAt) {
		c.removeElement(elem)
		return nil, false
	}
	c.list.MoveToFront(elem)
	return item.value, true
}

func (c *LRUCache) Put(key string, value *models.AnalyticsSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if elem, ok := c.cache[key]; ok {
		c.list.MoveToFront(elem)
		item := elem.Value.(*cacheItem)
		item.value = value
		item.expiresAt = expiresAt
		return
	}
	if c.list.Len() >= c.capacity {
		if elem := c.list.Back(); elem != nil {
			c.removeElement(elem)
		}
	}
	c.cache[key] = c.list.PushFront(&cacheItem{key: key, value: value, expiresAt: expiresAt})
}

func (c *LRUCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Len()
}

func (c *LRUCache) removeElement(elem *list.Element) {
	delete(c.cache, elem.Value.(*cacheItem).key)
	c.list.Remove(elem)
}

// CachedSource serves snapshots from an LRUCache in front of another Source.
type CachedSource struct {
	source Source
	cache  *LRUCache
}

func NewCachedSource(source Source, cache *LRUCache) *CachedSource {
	return &CachedSource{source: source, cache: cache}
}

func (s *CachedSource) Snapshot(ctx context.Context, domain string) (*models.AnalyticsSnapshot, error) {
	if snap, ok := s.cache.Get(domain); ok {
		return snap, nil
	}
	snap, err := s.source.Snapshot(ctx, domain)
	if err != nil {
		return nil, err
	}
	s.cache.Put(domain, snap)
	return snap, nil
}
