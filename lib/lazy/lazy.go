// Package lazy provides maps that compute and cache a default value the
// first time a key is read.
//
// Map uses ordinary key equality. WeakMap is keyed by pointer identity and
// never keeps its keys alive: once a key is unreachable its entry is dropped.
package lazy

import (
	"runtime"
	"sync"
	"weak"
)

// Entry seeds a Map with an initial key/value pair.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Map is a key/value store that fills missing entries on first access.
// Iteration follows insertion order.
type Map[K comparable, V any] struct {
	mu     sync.Mutex
	init   func(m *Map[K, V], key K) V
	values map[K]V
	order  []K
}

// New creates a Map whose missing entries are computed by init.
//
// init may itself read from m; no lock is held while it runs.
func New[K comparable, V any](init func(m *Map[K, V], key K) V, entries ...Entry[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		init:   init,
		values: make(map[K]V, len(entries)),
	}
	for _, e := range entries {
		m.store(e.Key, e.Value)
	}
	return m
}

// Get returns the value for key, computing and storing it if absent.
func (m *Map[K, V]) Get(key K) V {
	m.mu.Lock()
	v, ok := m.values[key]
	m.mu.Unlock()
	if ok {
		return v
	}

	v = m.init(m, key)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.values[key]; ok {
		// The initializer populated the key through a nested lookup.
		return existing
	}
	m.store(key, v)
	return v
}

// Has reports whether key already has a value.
func (m *Map[K, V]) Has(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

// Len returns the number of stored entries.
func (m *Map[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// Range calls fn for every entry in insertion order until fn returns false.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for _, e := range m.Entries() {
		if !fn(e.Key, e.Value) {
			return
		}
	}
}

// Entries returns a snapshot of the stored entries in insertion order.
func (m *Map[K, V]) Entries() []Entry[K, V] {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]Entry[K, V], 0, len(m.order))
	for _, k := range m.order {
		entries = append(entries, Entry[K, V]{Key: k, Value: m.values[k]})
	}
	return entries
}

// Clone returns a new Map with the same initializer. Each value is passed
// through copyValue so that the clone does not share mutable state.
func (m *Map[K, V]) Clone(copyValue func(V) V) *Map[K, V] {
	entries := m.Entries()
	for i := range entries {
		entries[i].Value = copyValue(entries[i].Value)
	}
	return New(m.init, entries...)
}

func (m *Map[K, V]) store(key K, v V) {
	if _, ok := m.values[key]; !ok {
		m.order = append(m.order, key)
	}
	m.values[key] = v
}

// WeakMap is keyed by pointer identity. An entry never outlives its key;
// values must not reference the key or the key can never be collected.
type WeakMap[K any, V any] struct {
	mu     sync.Mutex
	init   func(m *WeakMap[K, V], key *K) V
	values map[weak.Pointer[K]]V
}

// NewWeak creates a WeakMap whose missing entries are computed by init.
func NewWeak[K any, V any](init func(m *WeakMap[K, V], key *K) V) *WeakMap[K, V] {
	return &WeakMap[K, V]{
		init:   init,
		values: make(map[weak.Pointer[K]]V),
	}
}

// Get returns the value for key, computing and storing it if absent.
func (m *WeakMap[K, V]) Get(key *K) V {
	if v, ok := m.MaybeGet(key); ok {
		return v
	}

	v := m.init(m, key)

	wp := weak.Make(key)
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.values[wp]; ok {
		return existing
	}
	m.values[wp] = v
	runtime.AddCleanup(key, m.drop, wp)
	return v
}

// MaybeGet returns the value for key without computing a default.
func (m *WeakMap[K, V]) MaybeGet(key *K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[weak.Make(key)]
	return v, ok
}

// Len returns the number of live entries.
func (m *WeakMap[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

func (m *WeakMap[K, V]) drop(wp weak.Pointer[K]) {
	m.mu.Lock()
	delete(m.values, wp)
	m.mu.Unlock()
}

// WeakSet records pointer identities without keeping them alive.
type WeakSet[K any] struct {
	m *WeakMap[K, struct{}]
}

// NewWeakSet creates an empty WeakSet.
func NewWeakSet[K any]() *WeakSet[K] {
	return &WeakSet[K]{m: NewWeak(func(*WeakMap[K, struct{}], *K) struct{} { return struct{}{} })}
}

// Add inserts key and reports whether it was not already present.
func (s *WeakSet[K]) Add(key *K) bool {
	if s.Has(key) {
		return false
	}
	s.m.Get(key)
	return true
}

// Has reports whether key is present.
func (s *WeakSet[K]) Has(key *K) bool {
	_, ok := s.m.MaybeGet(key)
	return ok
}
