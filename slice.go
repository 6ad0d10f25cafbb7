package tracked

import (
	"fmt"
	"iter"
	"reflect"
	"sort"
)

// Slice wraps a decoded sequence node. Elements carry no individual accessed
// flag: reading a scalar element is not a reportable event. Only nested
// mappings and sequences contribute to Unaccessed, through their own
// accounting.
type Slice struct {
	raw      []any
	path     string
	children map[int]Node
}

var _ Node = (*Slice)(nil)

// NewSlice wraps raw for access tracking, rooted at the empty path.
func NewSlice(raw []any) *Slice { return newSliceAt(raw, "") }

func newSliceAt(raw []any, path string) *Slice {
	return &Slice{raw: raw, path: path, children: make(map[int]Node)}
}

// At returns the element at index i, wrapped when it is a nested mapping or
// sequence and cached by index. Indices outside [0, Len) yield an
// *IndexError.
func (s *Slice) At(i int) (any, error) {
	if i < 0 || i >= len(s.raw) {
		return nil, &IndexError{Path: s.path, Index: i, Len: len(s.raw)}
	}
	return s.wrap(i), nil
}

// Len returns the number of elements in the raw sequence.
func (s *Slice) Len() int { return len(s.raw) }

// IsEmpty reports whether the raw sequence has no elements.
func (s *Slice) IsEmpty() bool { return len(s.raw) == 0 }

// Values iterates over the elements in order, wrapped exactly like indexed
// access, populating the child cache as it goes.
func (s *Slice) Values() iter.Seq[any] {
	return func(yield func(any) bool) {
		for i := range s.raw {
			if !yield(s.wrap(i)) {
				return
			}
		}
	}
}

// All iterates over index/wrapped-element pairs in order.
func (s *Slice) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		for i := range s.raw {
			if !yield(i, s.wrap(i)) {
				return
			}
		}
	}
}

// Raw returns the underlying sequence unchanged, bypassing tracking.
func (s *Slice) Raw() []any { return s.raw }

// Unaccessed aggregates the reports of every wrapped child, sorted by path.
// Elements never descended into contribute nothing, whatever they hold.
func (s *Slice) Unaccessed() []string {
	var paths []string
	for _, child := range s.children {
		paths = append(paths, child.Unaccessed()...)
	}
	sort.Strings(paths)
	return paths
}

// Path locates this node relative to the root; empty at the root.
func (s *Slice) Path() string { return s.path }

// Kind reports KindSlice.
func (s *Slice) Kind() Kind { return KindSlice }

// Equal reports structural equality of the underlying data against a plain
// sequence or another tracked Slice. Accessed state does not participate.
func (s *Slice) Equal(other any) bool {
	switch o := other.(type) {
	case *Slice:
		return reflect.DeepEqual(s.raw, o.raw)
	case []any:
		return reflect.DeepEqual(s.raw, o)
	}
	return false
}

func (s *Slice) String() string {
	return fmt.Sprintf("tracked.Slice(%d items, path=%q)", len(s.raw), s.path)
}

func (*Slice) trackedNode() {}

func (s *Slice) wrap(i int) any {
	if child, ok := s.children[i]; ok {
		return child
	}
	child, ok := newNode(s.raw[i], JoinIndex(s.path, i))
	if !ok {
		return s.raw[i]
	}
	s.children[i] = child
	return child
}
