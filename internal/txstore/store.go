// Package txstore provides an ordered, identifier-keyed container with
// single-level transactional semantics: Checkpoint snapshots the current
// membership, Commit makes everything since the checkpoint permanent, and
// Undo evicts it.
//
// The engine keeps two instances: one for declared module templates and one
// for elaborated instances. Both are mutated only by the transaction
// manager under the checkpoint discipline, so the store is deliberately not
// safe for concurrent use.
package txstore

import "fmt"

// Entry pairs a key with its stored value. Undo returns evicted entries so
// the caller can dispose of them exactly once.
type Entry[V any] struct {
	Key string
	Val V
}

// Store is an insert-only ordered map. Membership changes only through
// Insert and Undo, which keeps checkpoints cheap: a checkpoint is the
// length of the key sequence at the time it was taken.
type Store[V any] struct {
	keys []string
	vals map[string]V
	cp   int
}

// New creates an empty store with no active checkpoint.
func New[V any]() *Store[V] {
	return &Store[V]{vals: make(map[string]V), cp: -1}
}

// Insert adds a new entry. Inserting a duplicate key fails without mutating
// the store.
func (s *Store[V]) Insert(key string, val V) error {
	if _, ok := s.vals[key]; ok {
		return fmt.Errorf("txstore: duplicate key %q", key)
	}
	s.keys = append(s.keys, key)
	s.vals[key] = val
	return nil
}

// Get returns the value stored under key.
func (s *Store[V]) Get(key string) (V, bool) {
	v, ok := s.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (s *Store[V]) Has(key string) bool {
	_, ok := s.vals[key]
	return ok
}

// Len returns the number of entries.
func (s *Store[V]) Len() int {
	return len(s.keys)
}

// Keys returns the keys in insertion order.
func (s *Store[V]) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// First returns the oldest entry.
func (s *Store[V]) First() (Entry[V], bool) {
	if len(s.keys) == 0 {
		return Entry[V]{}, false
	}
	k := s.keys[0]
	return Entry[V]{Key: k, Val: s.vals[k]}, true
}

// Entries returns all entries in insertion order.
func (s *Store[V]) Entries() []Entry[V] {
	out := make([]Entry[V], 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, Entry[V]{Key: k, Val: s.vals[k]})
	}
	return out
}

// Checkpoint snapshots the current membership. Checkpoints do not nest: a
// second Checkpoint before Commit or Undo is a contract violation and
// panics.
func (s *Store[V]) Checkpoint() {
	if s.cp >= 0 {
		panic("txstore: checkpoint already active")
	}
	s.cp = len(s.keys)
}

// Commit discards the active checkpoint, making the current state
// permanent.
func (s *Store[V]) Commit() {
	if s.cp < 0 {
		panic("txstore: commit without checkpoint")
	}
	s.cp = -1
}

// Undo restores membership to the active checkpoint and returns the evicted
// entries, oldest first. Ownership of the evicted values passes back to the
// caller.
func (s *Store[V]) Undo() []Entry[V] {
	if s.cp < 0 {
		panic("txstore: undo without checkpoint")
	}
	evicted := make([]Entry[V], 0, len(s.keys)-s.cp)
	for _, k := range s.keys[s.cp:] {
		evicted = append(evicted, Entry[V]{Key: k, Val: s.vals[k]})
		delete(s.vals, k)
	}
	s.keys = s.keys[:s.cp]
	s.cp = -1
	return evicted
}
