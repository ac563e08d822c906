package cache

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 256

// node is an entry in the recency list. Head is most recently used.
type node[K comparable, V any] struct {
	key   K
	value V
	prev  *node[K, V]
	next  *node[K, V]
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
	Capacity  int
}

// LRU is a fixed-capacity least-recently-used cache.
// It is not safe for concurrent use.
type LRU[K comparable, V any] struct {
	entries  map[K]*node[K, V]
	head     *node[K, V]
	tail     *node[K, V]
	capacity int

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates an LRU holding at most capacity entries.
// If capacity <= 0, DefaultCapacity is used.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU[K, V]{
		entries:  make(map[K]*node[K, V], capacity),
		capacity: capacity,
	}
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int { return len(c.entries) }

// Capacity returns the maximum number of entries.
func (c *LRU[K, V]) Capacity() int { return c.capacity }

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	n, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.moveToFront(n)
	return n.value, true
}

// Set stores value under key, evicting the least recently used entry
// when the cache is full.
func (c *LRU[K, V]) Set(key K, value V) {
	if n, ok := c.entries[key]; ok {
		n.value = value
		c.moveToFront(n)
		return
	}
	if len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	n := &node[K, V]{key: key, value: value}
	c.pushFront(n)
	c.entries[key] = n
}

// GetOrCreate returns the cached value for key, calling create and
// caching its result on a miss.
func (c *LRU[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := create()
	c.Set(key, v)
	return v
}

// Delete removes key. It reports whether the key was present.
func (c *LRU[K, V]) Delete(key K) bool {
	n, ok := c.entries[key]
	if !ok {
		return false
	}
	c.unlink(n)
	delete(c.entries, key)
	return true
}

// Clear drops every entry. Statistics are kept.
func (c *LRU[K, V]) Clear() {
	clear(c.entries)
	c.head = nil
	c.tail = nil
}

// Stats returns a snapshot of the cache counters.
func (c *LRU[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Len:       len(c.entries),
		Capacity:  c.capacity,
	}
}

func (c *LRU[K, V]) evictOldest() {
	n := c.tail
	if n == nil {
		return
	}
	c.unlink(n)
	delete(c.entries, n.key)
	c.evictions++
}

func (c *LRU[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *LRU[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

// unlink detaches n from the list and clears its pointers.
func (c *LRU[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev = nil
	n.next = nil
}
