// PlexTraktSync - Real-time Plex to Trakt scrobbling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plextraktsync

package cache

import (
	"sync"
	"time"
)

// lruNode is an entry in the LRU's doubly-linked list.
type lruNode[V comparable] struct {
	key       string
	value     V
	prev      *lruNode[V]
	next      *lruNode[V]
	expiresAt time.Time
}

// LRU is a thread-safe, capacity bounded map from key to the last value seen
// for it, with TTL expiry. It backs notification deduplication: Seen reports
// whether a key already holds the same value inside the TTL window.
//
// Operations are O(1) using a hashmap plus a doubly-linked list with sentinel
// head (most recent) and tail (least recent) nodes.
type LRU[V comparable] struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	now      func() time.Time

	items map[string]*lruNode[V]
	head  *lruNode[V]
	tail  *lruNode[V]

	hits   int64
	misses int64
}

// NewLRU creates an LRU with the specified capacity and TTL.
func NewLRU[V comparable](capacity int, ttl time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 1024
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	c := &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*lruNode[V], capacity),
		head:     &lruNode[V]{},
		tail:     &lruNode[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get returns the value for key if present and not expired, marking it as
// recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	node, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if c.now().After(node.expiresAt) {
		c.removeNode(node)
		return zero, false
	}
	c.moveToFront(node)
	return node.value, true
}

// Add stores value under key, refreshing its TTL. The least recently used
// entry is evicted when over capacity.
func (c *LRU[V]) Add(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, value)
}

// Seen reports whether key already holds value and has not expired.
// Otherwise it records value for key and returns false. A repeat does not
// extend the window; it stays anchored at the first sighting.
func (c *LRU[V]) Seen(key string, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.items[key]; ok {
		if node.value == value && !c.now().After(node.expiresAt) {
			c.moveToFront(node)
			c.hits++
			return true
		}
	}

	c.put(key, value)
	c.misses++
	return false
}

// Remove deletes key. Returns true if it was present.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.items[key]; ok {
		c.removeNode(node)
		return true
	}
	return false
}

// Len returns the current number of entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit/miss counts from Seen and the current size.
func (c *LRU[V]) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Internal methods (must be called with lock held)

func (c *LRU[V]) put(key string, value V) {
	expiresAt := c.now().Add(c.ttl)

	if node, ok := c.items[key]; ok {
		node.value = value
		node.expiresAt = expiresAt
		c.moveToFront(node)
		return
	}

	node := &lruNode[V]{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(node)
	c.items[key] = node

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

func (c *LRU[V]) addToFront(node *lruNode[V]) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

func (c *LRU[V]) moveToFront(node *lruNode[V]) {
	node.prev.next = node.next
	node.next.prev = node.prev
	c.addToFront(node)
}

func (c *LRU[V]) removeNode(node *lruNode[V]) {
	node.prev.next = node.next
	node.next.prev = node.prev
	delete(c.items, node.key)
}

func (c *LRU[V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeNode(oldest)
}
