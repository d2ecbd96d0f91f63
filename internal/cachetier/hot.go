// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package cachetier

import (
	"sync"
	"time"

	"github.com/vibescout/vibescout/internal/metrics"
)

// hotEntry is one node in the hot tier's doubly-linked LRU list.
type hotEntry struct {
	key       string
	payload   []byte
	prev      *hotEntry
	next      *hotEntry
	expiresAt time.Time
}

// hotTier is the in-process tier: a thread-safe LRU with per-entry TTL.
// A hashmap gives O(1) lookup; the linked list gives O(1) recency
// updates and eviction. Expired entries are dropped lazily on read and
// in bulk by the sweeper.
type hotTier struct {
	mu sync.Mutex

	capacity int

	items map[string]*hotEntry

	// head.next is most recently used, tail.prev least recently used.
	head *hotEntry
	tail *hotEntry

	hits      int64
	misses    int64
	evictions int64
}

func newHotTier(capacity int) *hotTier {
	t := &hotTier{
		capacity: capacity,
		items:    make(map[string]*hotEntry, capacity),
		head:     &hotEntry{},
		tail:     &hotEntry{},
	}
	t.head.next = t.tail
	t.tail.prev = t.head
	return t
}

// Get returns the stored payload and moves the entry to the front.
// Expired entries are removed and reported as misses.
func (t *hotTier) Get(key string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, exists := t.items[key]
	if !exists {
		t.misses++
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		t.removeEntry(entry)
		t.misses++
		return nil, false
	}

	t.moveToFront(entry)
	t.hits++
	return entry.payload, true
}

// Set adds or refreshes an entry. The least recently used entry is
// evicted when the tier is over capacity.
func (t *hotTier) Set(key string, payload []byte, ttl time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	expiresAt := time.Now().Add(ttl)

	if entry, exists := t.items[key]; exists {
		entry.payload = payload
		entry.expiresAt = expiresAt
		t.moveToFront(entry)
		return
	}

	entry := &hotEntry{key: key, payload: payload, expiresAt: expiresAt}
	t.addToFront(entry)
	t.items[key] = entry

	for len(t.items) > t.capacity {
		t.evictOldest()
	}
}

// Remove deletes an entry. Returns true if it was present.
func (t *hotTier) Remove(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, exists := t.items[key]; exists {
		t.removeEntry(entry)
		return true
	}
	return false
}

// Clear drops every entry.
func (t *hotTier) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.items = make(map[string]*hotEntry, t.capacity)
	t.head.next = t.tail
	t.tail.prev = t.head
}

// CleanupExpired removes all expired entries, walking from the LRU end.
// Returns the number removed.
func (t *hotTier) CleanupExpired() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	removed := 0
	for entry := t.tail.prev; entry != t.head; {
		prev := entry.prev
		if now.After(entry.expiresAt) {
			t.removeEntry(entry)
			removed++
		}
		entry = prev
	}
	return removed
}

// Snapshot copies the live entries without touching recency order.
// Used by selective invalidation, which has to inspect payloads.
func (t *hotTier) Snapshot() map[string][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	out := make(map[string][]byte, len(t.items))
	for key, entry := range t.items {
		if now.After(entry.expiresAt) {
			continue
		}
		out[key] = entry.payload
	}
	return out
}

func (t *hotTier) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Stats returns hit/miss/eviction counters and the current size.
func (t *hotTier) Stats() (hits, misses, evictions int64, size int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hits, t.misses, t.evictions, len(t.items)
}

// List management. Callers hold t.mu.

func (t *hotTier) addToFront(entry *hotEntry) {
	entry.prev = t.head
	entry.next = t.head.next
	t.head.next.prev = entry
	t.head.next = entry
}

func (t *hotTier) moveToFront(entry *hotEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	t.addToFront(entry)
}

func (t *hotTier) removeEntry(entry *hotEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(t.items, entry.key)
}

func (t *hotTier) evictOldest() {
	oldest := t.tail.prev
	if oldest == t.head {
		return
	}
	t.removeEntry(oldest)
	t.evictions++
	metrics.CacheEvictions.WithLabelValues(TierHot).Inc()
}
