package tracked

import (
	"fmt"
	"iter"
	"reflect"
	"sort"
)

// Map wraps a decoded mapping node and records which keys are read through
// it. Nested mappings and sequences are wrapped lazily on first access and
// cached, so repeated descent reaches the same child wrapper and its
// accumulated state. The accessed set only grows; there is no unmark.
type Map struct {
	raw      map[string]any
	path     string
	accessed map[string]struct{}
	// forwarded holds keys marked via MarkAccessed. Those keys are excluded
	// from Unaccessed reporting entirely, even when a wrapped child exists
	// and still has unread descendants.
	forwarded map[string]struct{}
	children  map[string]Node
}

var _ Node = (*Map)(nil)

// NewMap wraps raw for access tracking, rooted at the empty path. The
// wrapper keeps a reference to raw and never mutates it.
func NewMap(raw map[string]any) *Map { return newMapAt(raw, "") }

func newMapAt(raw map[string]any, path string) *Map {
	return &Map{
		raw:      raw,
		path:     path,
		accessed: make(map[string]struct{}),
		children: make(map[string]Node),
	}
}

// Get marks key as accessed and returns its value, wrapped when it is a
// nested mapping or sequence. Missing keys yield a *KeyError; the key is
// marked accessed even then.
func (m *Map) Get(key string) (any, error) {
	m.accessed[key] = struct{}{}
	v, ok := m.raw[key]
	if !ok {
		return nil, &KeyError{Path: m.path, Key: key}
	}
	return m.wrap(key, v), nil
}

// GetOr marks key as accessed and returns its wrapped value, or def when the
// key is absent. The key counts as accessed either way, so probing an
// optional key never surfaces in Unaccessed. The default comes back
// unwrapped, since it is not part of the raw tree.
func (m *Map) GetOr(key string, def any) any {
	m.accessed[key] = struct{}{}
	v, ok := m.raw[key]
	if !ok {
		return def
	}
	return m.wrap(key, v)
}

// Has reports whether key is present in the raw mapping. Presence checks do
// not count as consumption and mark nothing.
func (m *Map) Has(key string) bool {
	_, ok := m.raw[key]
	return ok
}

// Len returns the number of keys in the raw mapping.
func (m *Map) Len() int { return len(m.raw) }

// IsEmpty reports whether the raw mapping has no keys.
func (m *Map) IsEmpty() bool { return len(m.raw) == 0 }

// Keys iterates over the raw keys in map order. Key iteration marks nothing.
func (m *Map) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for k := range m.raw {
			if !yield(k) {
				return
			}
		}
	}
}

// Values iterates over wrapped values in map order. Starting the iteration
// marks every key at this level accessed: consuming values in bulk counts as
// reading them.
func (m *Map) Values() iter.Seq[any] {
	return func(yield func(any) bool) {
		m.MarkAllAccessed()
		for k, v := range m.raw {
			if !yield(m.wrap(k, v)) {
				return
			}
		}
	}
}

// All iterates over key/wrapped-value pairs in map order. Starting the
// iteration marks every key at this level accessed.
func (m *Map) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		m.MarkAllAccessed()
		for k, v := range m.raw {
			if !yield(k, m.wrap(k, v)) {
				return
			}
		}
	}
}

// Raw returns the underlying mapping unchanged, bypassing tracking.
func (m *Map) Raw() map[string]any { return m.raw }

// MarkAccessed marks keys as consumed without reading them, for sections
// forwarded verbatim to another subsystem. A key marked this way is skipped
// by Unaccessed entirely: no report for the key, and no descent into a
// wrapped child even when that child holds unread descendants.
func (m *Map) MarkAccessed(keys ...string) {
	if len(keys) == 0 {
		return
	}
	if m.forwarded == nil {
		m.forwarded = make(map[string]struct{}, len(keys))
	}
	for _, k := range keys {
		m.accessed[k] = struct{}{}
		m.forwarded[k] = struct{}{}
	}
}

// MarkAllAccessed marks every current raw key as accessed. Non-recursive:
// wrapped children keep their own accounting and still report their unread
// descendants.
func (m *Map) MarkAllAccessed() {
	for k := range m.raw {
		m.accessed[k] = struct{}{}
	}
}

// AccessedKeys returns a sorted snapshot of the keys marked accessed so far.
// Keys probed with GetOr but absent from the raw mapping are included.
func (m *Map) AccessedKeys() []string {
	keys := make([]string, 0, len(m.accessed))
	for k := range m.accessed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unaccessed returns the sorted paths of every key that was never read
// through the wrapper, recursively. An unread key is reported once at its
// own path, without expanding its children; a read key with a wrapped child
// defers to the child's report; keys marked via MarkAccessed are skipped
// entirely.
func (m *Map) Unaccessed() []string {
	var paths []string
	for k := range m.raw {
		if _, ok := m.forwarded[k]; ok {
			continue
		}
		if _, ok := m.accessed[k]; !ok {
			paths = append(paths, JoinKey(m.path, k))
			continue
		}
		if child, ok := m.children[k]; ok {
			paths = append(paths, child.Unaccessed()...)
		}
	}
	sort.Strings(paths)
	return paths
}

// Path locates this node relative to the root; empty at the root.
func (m *Map) Path() string { return m.path }

// Kind reports KindMap.
func (m *Map) Kind() Kind { return KindMap }

// Equal reports structural equality of the underlying data against a plain
// mapping or another tracked Map. Accessed state does not participate.
func (m *Map) Equal(other any) bool {
	switch o := other.(type) {
	case *Map:
		return reflect.DeepEqual(m.raw, o.raw)
	case map[string]any:
		return reflect.DeepEqual(m.raw, o)
	}
	return false
}

func (m *Map) String() string {
	return fmt.Sprintf("tracked.Map(%d/%d keys accessed, path=%q)", len(m.accessed), len(m.raw), m.path)
}

func (*Map) trackedNode() {}

// wrap applies the wrapping rule for key's value: containers get a cached
// child wrapper, scalars pass through.
func (m *Map) wrap(key string, v any) any {
	if child, ok := m.children[key]; ok {
		return child
	}
	child, ok := newNode(v, JoinKey(m.path, key))
	if !ok {
		return v
	}
	m.children[key] = child
	return child
}
