package tracked

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two failure kinds a wrapper can produce. Both
// arrive wrapped in a typed error carrying the failing node's path; match
// with errors.Is or unpack with errors.As.
var (
	ErrMissingKey      = errors.New("tracked: missing key")
	ErrIndexOutOfRange = errors.New("tracked: index out of range")
)

// KeyError reports an indexed lookup on a key absent from the raw mapping.
type KeyError struct {
	Path string // Path of the mapping node; empty at the root.
	Key  string
}

func (e *KeyError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("tracked: missing key %q", e.Key)
	}
	return fmt.Sprintf("tracked: missing key %q at %s", e.Key, e.Path)
}

func (e *KeyError) Unwrap() error { return ErrMissingKey }

// IndexError reports a sequence lookup outside the raw slice's bounds.
type IndexError struct {
	Path  string // Path of the sequence node; empty at the root.
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("tracked: index out of range [%d] with length %d", e.Index, e.Len)
	}
	return fmt.Sprintf("tracked: index out of range [%d] with length %d at %s", e.Index, e.Len, e.Path)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }
