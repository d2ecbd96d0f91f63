// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package cachetier

import (
	"errors"
	"fmt"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/vibescout/vibescout/internal/metrics"
)

// warmKeyPrefix namespaces discovery payloads inside the BadgerDB.
const warmKeyPrefix = "disc:"

// warmNode is one node in the warm tier's in-memory recency index.
type warmNode struct {
	key  string
	prev *warmNode
	next *warmNode
}

// warmTier persists payloads in BadgerDB with native TTL expiry. Badger
// has no recency ordering, so the tier keeps a small in-memory LRU
// index of live keys; when the index grows past capacity the least
// recently used key is deleted from the database too. The index is
// rebuilt from the key space on open.
// errWarmClosed is reported by health checks after the badger database
// has been closed underneath the manager.
var errWarmClosed = errors.New("warm tier database is closed")

type warmTier struct {
	db       *badger.DB
	capacity int

	mu    sync.Mutex
	index map[string]*warmNode
	head  *warmNode
	tail  *warmNode

	hits      int64
	misses    int64
	evictions int64
}

func openWarmTier(path string, capacity int) (*warmTier, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db at %s: %w", path, err)
	}

	t := &warmTier{
		db:       db,
		capacity: capacity,
		index:    make(map[string]*warmNode, capacity),
		head:     &warmNode{},
		tail:     &warmNode{},
	}
	t.head.next = t.tail
	t.tail.prev = t.head

	if err := t.rebuildIndex(); err != nil {
		db.Close()
		return nil, fmt.Errorf("rebuild warm index: %w", err)
	}
	return t, nil
}

// rebuildIndex scans the persisted key space after a restart. Recency
// order is lost across restarts; keys enter the index in scan order.
func (t *warmTier) rebuildIndex() error {
	return t.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(warmKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key()[len(warmKeyPrefix):])
			t.touch(key)
		}
		return nil
	})
}

// Get reads a payload. Badger drops expired entries itself, so a
// missing key covers both absence and expiry.
func (t *warmTier) Get(key string) ([]byte, bool, error) {
	var payload []byte
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(warmKeyPrefix + key))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		t.mu.Lock()
		t.misses++
		t.dropNode(key)
		t.mu.Unlock()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("warm get: %w", err)
	}

	t.mu.Lock()
	t.hits++
	t.touch(key)
	t.mu.Unlock()
	return payload, true, nil
}

// Set writes a payload with the given TTL and updates the recency
// index, evicting the least recently used persisted key if needed.
func (t *warmTier) Set(key string, payload []byte, ttl time.Duration) error {
	err := t.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(warmKeyPrefix+key), payload).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("warm set: %w", err)
	}

	t.mu.Lock()
	t.touch(key)
	var evict []string
	for len(t.index) > t.capacity {
		oldest := t.tail.prev
		if oldest == t.head {
			break
		}
		evict = append(evict, oldest.key)
		t.removeNode(oldest)
		t.evictions++
		metrics.CacheEvictions.WithLabelValues(TierWarm).Inc()
	}
	t.mu.Unlock()

	for _, k := range evict {
		if derr := t.deleteKey(k); derr != nil {
			return fmt.Errorf("warm evict %s: %w", k, derr)
		}
	}
	return nil
}

// Remove deletes a payload and its index node.
func (t *warmTier) Remove(key string) error {
	t.mu.Lock()
	t.dropNode(key)
	t.mu.Unlock()
	return t.deleteKey(key)
}

// Clear drops everything under the warm prefix.
func (t *warmTier) Clear() error {
	err := t.db.DropPrefix([]byte(warmKeyPrefix))
	if err != nil {
		return fmt.Errorf("warm clear: %w", err)
	}

	t.mu.Lock()
	t.index = make(map[string]*warmNode, t.capacity)
	t.head.next = t.tail
	t.tail.prev = t.head
	t.mu.Unlock()
	return nil
}

// CleanupExpired drops index nodes whose keys badger has already
// expired, then lets badger reclaim value-log space. Returns the number
// of index nodes removed.
func (t *warmTier) CleanupExpired() int {
	live := make(map[string]struct{})
	_ = t.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(warmKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			live[string(it.Item().Key()[len(warmKeyPrefix):])] = struct{}{}
		}
		return nil
	})

	t.mu.Lock()
	removed := 0
	for node := t.tail.prev; node != t.head; {
		prev := node.prev
		if _, ok := live[node.key]; !ok {
			t.removeNode(node)
			removed++
		}
		node = prev
	}
	t.mu.Unlock()

	// ErrNoRewrite just means there was nothing worth compacting.
	if err := t.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return removed
	}
	return removed
}

// Entries reads every persisted key/value pair. Used by selective
// invalidation; the warm tier is small, so a full scan is acceptable.
func (t *warmTier) Entries() (map[string][]byte, error) {
	out := make(map[string][]byte)
	err := t.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(warmKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key()[len(warmKeyPrefix):])
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[key] = val
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("warm entries: %w", err)
	}
	return out, nil
}

func (t *warmTier) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.index)
}

func (t *warmTier) Stats() (hits, misses, evictions int64, size int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hits, t.misses, t.evictions, len(t.index)
}

func (t *warmTier) Close() error {
	return t.db.Close()
}

func (t *warmTier) deleteKey(key string) error {
	return t.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(warmKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Index management. Callers hold t.mu.

// touch moves key to the front of the index, inserting it if new.
func (t *warmTier) touch(key string) {
	if node, ok := t.index[key]; ok {
		node.prev.next = node.next
		node.next.prev = node.prev
		t.pushFront(node)
		return
	}
	node := &warmNode{key: key}
	t.index[key] = node
	t.pushFront(node)
}

func (t *warmTier) pushFront(node *warmNode) {
	node.prev = t.head
	node.next = t.head.next
	t.head.next.prev = node
	t.head.next = node
}

func (t *warmTier) dropNode(key string) {
	if node, ok := t.index[key]; ok {
		t.removeNode(node)
	}
}

func (t *warmTier) removeNode(node *warmNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
	delete(t.index, node.key)
}
