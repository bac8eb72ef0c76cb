package identity

import "github.com/matzehuels/b4wexport/pkg/scene"

type entry[R any] struct {
	record R
	source scene.ID
}

// Cache maps identities to exported records and the blocks they came from.
// Registration order is kept so the owner can iterate deterministically.
//
// The zero value is ready to use.
type Cache[R any] struct {
	entries map[string]entry[R]
	order   []string
}

// Register stores record under uuid with a back-reference to its source
// block. Registering an identity twice replaces the record.
func (c *Cache[R]) Register(uuid string, record R, source scene.ID) {
	if c.entries == nil {
		c.entries = make(map[string]entry[R])
	}
	if _, ok := c.entries[uuid]; !ok {
		c.order = append(c.order, uuid)
	}
	c.entries[uuid] = entry[R]{record: record, source: source}
}

// IsRegistered reports whether uuid has a record.
func (c *Cache[R]) IsRegistered(uuid string) bool {
	_, ok := c.entries[uuid]
	return ok
}

// Record returns the record registered under uuid.
func (c *Cache[R]) Record(uuid string) (R, bool) {
	e, ok := c.entries[uuid]
	return e.record, ok
}

// Source returns the block the record under uuid was produced from.
func (c *Cache[R]) Source(uuid string) (scene.ID, bool) {
	e, ok := c.entries[uuid]
	return e.source, ok
}

// Forget drops the record registered under uuid.
func (c *Cache[R]) Forget(uuid string) {
	if _, ok := c.entries[uuid]; !ok {
		return
	}
	delete(c.entries, uuid)
	for i, u := range c.order {
		if u == uuid {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered records.
func (c *Cache[R]) Len() int { return len(c.entries) }

// Each calls fn for every record in registration order.
func (c *Cache[R]) Each(fn func(uuid string, record R, source scene.ID)) {
	for _, u := range c.order {
		e := c.entries[u]
		fn(u, e.record, e.source)
	}
}

// Reset drops every record.
func (c *Cache[R]) Reset() {
	clear(c.entries)
	c.order = c.order[:0]
}
