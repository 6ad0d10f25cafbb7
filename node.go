package tracked

import (
	"fmt"
	"strconv"
)

// Kind classifies a decoded tree value. The set is closed: everything that is
// not a string-keyed mapping or a sequence is a scalar, including nil.
type Kind int

const (
	KindScalar Kind = iota // Leaf values: strings, numbers, bools, nil, anything else.
	KindMap                // map[string]any mapping nodes.
	KindSlice              // []any sequence nodes.
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMap:
		return "map"
	case KindSlice:
		return "slice"
	}
	return "<unknown kind>"
}

// KindOf classifies a decoded value. The wrapping rule branches on this tag:
// KindMap and KindSlice values get tracking wrappers, KindScalar values pass
// through unchanged.
func KindOf(v any) Kind {
	switch v.(type) {
	case map[string]any:
		return KindMap
	case []any:
		return KindSlice
	default:
		return KindScalar
	}
}

// Node is the common surface of the two tracking wrappers. Only Map and Slice
// implement it.
type Node interface {
	// Path locates the node relative to the root; empty at the root.
	Path() string
	// Kind reports KindMap or KindSlice.
	Kind() Kind
	// Len returns the size of the underlying container.
	Len() int
	// Unaccessed returns the sorted paths of every key in this subtree whose
	// value was never read through a wrapper.
	Unaccessed() []string

	trackedNode()
}

// Wrap wraps an already-decoded root value of either container kind. Scalars
// cannot be tracked and yield an error.
func Wrap(v any) (Node, error) {
	switch t := v.(type) {
	case map[string]any:
		return NewMap(t), nil
	case []any:
		return NewSlice(t), nil
	}
	return nil, fmt.Errorf("tracked: cannot wrap %s value %T", KindOf(v), v)
}

// JoinKey appends a mapping key to a path: JoinKey("server", "host") is
// "server.host". The root path is empty, so JoinKey("", "host") is "host".
func JoinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// JoinIndex appends a sequence index to a path: JoinIndex("plugins", 0) is
// "plugins[0]".
func JoinIndex(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

// newNode builds the tracking wrapper for a container value, or reports
// ok=false for scalars. Callers cache the result; construction happens at
// most once per key or index.
func newNode(v any, path string) (Node, bool) {
	switch t := v.(type) {
	case map[string]any:
		return newMapAt(t, path), true
	case []any:
		return newSliceAt(t, path), true
	}
	return nil, false
}
