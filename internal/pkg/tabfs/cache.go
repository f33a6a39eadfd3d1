package tabfs

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/airlinestats/flightquery/internal/pkg/bigtab"
)

// Cache keeps recently opened table handles so concurrent tasks share a
// mapping instead of re-mapping the backing file per task. Evicted
// handles are closed. The cache must outlive all readers of the handles
// it returns, so size it to the number of distinct tables in a run.
type Cache struct {
	store Store
	mu    sync.Mutex
	lru   *lru.Cache
}

// NewCache creates a handle cache over a Store.
func NewCache(store Store, size int) (*Cache, error) {
	if size < 1 {
		size = 1
	}
	evict := func(key interface{}, value interface{}) {
		value.(*bigtab.Table).Close()
	}
	l, err := lru.NewWithEvict(size, evict)
	if err != nil {
		return nil, err
	}
	return &Cache{store: store, lru: l}, nil
}

// Open returns a cached handle for the named table, opening it through
// the underlying store on a miss.
func (c *Cache) Open(name string) (*bigtab.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.lru.Get(name); ok {
		return cached.(*bigtab.Table), nil
	}

	table, err := c.store.Open(name)
	if err != nil {
		return nil, err
	}
	c.lru.Add(name, table)
	return table, nil
}

// Close evicts and closes every cached handle.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
