package imagecache

import (
	"container/list"
	"sync"
)

type (
	// MemCache — ограниченный LRU-слой перед персистентным хранилищем.
	// Персистентный слой не ограничен, поэтому предел по памяти держится здесь.
	MemCache struct {
		entries  map[string]*list.Element
		lruList  *list.List
		mu       sync.Mutex
		maxItems int
	}

	memEntry struct {
		key     string
		payload string
	}
)

// NewMemCache создает LRU-кэш на maxItems записей.
func NewMemCache(maxItems int) *MemCache {
	if maxItems <= 0 {
		maxItems = 1000
	}
	return &MemCache{
		entries:  make(map[string]*list.Element),
		lruList:  list.New(),
		maxItems: maxItems,
	}
}

// Get возвращает закэшированный payload и помечает запись как недавно использованную.
func (c *MemCache) Get(uri string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.entries[uri]
	if !exists {
		return "", false
	}
	c.lruList.MoveToFront(elem)
	return elem.Value.(*memEntry).payload, true
}

// Save добавляет или обновляет запись, вытесняя самую старую при переполнении.
func (c *MemCache) Save(uri, payload string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.entries[uri]; exists {
		c.lruList.MoveToFront(elem)
		elem.Value.(*memEntry).payload = payload
		return
	}

	if c.lruList.Len() >= c.maxItems {
		c.evictOldest()
	}

	elem := c.lruList.PushFront(&memEntry{key: uri, payload: payload})
	c.entries[uri] = elem
}

func (c *MemCache) evictOldest() {
	elem := c.lruList.Back()
	if elem != nil {
		c.lruList.Remove(elem)
		entry := elem.Value.(*memEntry)
		delete(c.entries, entry.key)
	}
}

// Len возвращает количество записей в кэше.
func (c *MemCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}
