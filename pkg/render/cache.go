package render

import (
	"container/list"
	"sync"

	"github.com/jpfielding/dcmrender.go/pkg/util"
)

// DefaultCacheSize bounds the number of tables a session retains.
const DefaultCacheSize = 64

// lutCache is a mutex-guarded LRU of published lookup tables. Entries are
// immutable once inserted, so readers share instances freely. Concurrent
// first-time construction for the same key is tolerated: builds are pure
// functions of the key, the first writer wins and the duplicate is
// discarded.
type lutCache struct {
	mu    sync.Mutex
	max   int
	ll    *list.List
	items map[string]*list.Element
}

type cacheEntry struct {
	key   string
	table LookupTable
}

func newLutCache(max int) *lutCache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &lutCache{
		max:   max,
		ll:    list.New(),
		items: make(map[string]*list.Element),
	}
}

func (c *lutCache) get(key string) (LookupTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).table, true
}

// put inserts a table, returning the table now published under key. If
// another goroutine won the race the existing instance is returned.
func (c *lutCache) put(key string, table LookupTable) LookupTable {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*cacheEntry).table
	}
	el := c.ll.PushFront(&cacheEntry{key: key, table: table})
	c.items[key] = el
	for c.ll.Len() > c.max {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
	return table
}

func (c *lutCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// paramsKey derives the cache key for a linear ramp from its value tuple.
func paramsKey(p LutParameters) string {
	return "ramp." + util.HashUUID(p)
}

// explicitKey derives a content-digest key for an explicit LUT sequence.
func explicitKey(kind string, l *ExplicitLUT) string {
	return kind + "." + util.HashUUID(struct {
		Descriptor [3]int
		Data       []uint16
		Bytes      []uint8
	}{l.Descriptor, l.Data, l.DataBytes})
}
