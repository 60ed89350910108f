// Package lrucache provides the small fixed-capacity cache every
// consensus store keeps in front of its database reads. Reconstructed
// from the call-site contract the stores use (New/Get/Add/Has/Remove);
// the teacher's own lrucache source wasn't present in the retrieved
// pack, so this is a straightforward container/list-based LRU rather
// than a line-for-line port.
package lrucache

import (
	"container/list"

	"github.com/ghostdag-network/consensus/domain/consensus/model/externalapi"
)

type entry struct {
	key   externalapi.DomainHash
	value interface{}
}

// LRUCache is a fixed-capacity, least-recently-used eviction cache
// keyed by DomainHash.
type LRUCache struct {
	capacity int
	items    map[externalapi.DomainHash]*list.Element
	order    *list.List
}

// New returns an LRUCache that holds at most capacity entries.
func New(capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCache{
		capacity: capacity,
		items:    make(map[externalapi.DomainHash]*list.Element, capacity),
		order:    list.New(),
	}
}

// Add inserts or updates key's value, evicting the least-recently-used
// entry if the cache is at capacity.
func (c *LRUCache) Add(key *externalapi.DomainHash, value interface{}) {
	if element, ok := c.items[*key]; ok {
		c.order.MoveToFront(element)
		element.Value.(*entry).value = value
		return
	}

	element := c.order.PushFront(&entry{key: *key, value: value})
	c.items[*key] = element

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
}

// Get returns key's cached value, promoting it to most-recently-used.
func (c *LRUCache) Get(key *externalapi.DomainHash) (interface{}, bool) {
	element, ok := c.items[*key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(element)
	return element.Value.(*entry).value, true
}

// Has reports whether key is cached, without affecting recency.
func (c *LRUCache) Has(key *externalapi.DomainHash) bool {
	_, ok := c.items[*key]
	return ok
}

// Remove evicts key, if present.
func (c *LRUCache) Remove(key *externalapi.DomainHash) {
	if element, ok := c.items[*key]; ok {
		c.order.Remove(element)
		delete(c.items, *key)
	}
}
