// Package audit compares a configuration tree against a reference tree (a
// sample or template config naming every key the application understands)
// and reports the keys each side does not know about. The configuration is
// consumed through its tracking wrapper along the reference's paths, so its
// unaccessed remainder is the set of keys the reference never mentions.
package audit

import (
	"sort"

	"github.com/evvaletov/tracked"
)

// Result of comparing a configuration against a reference.
type Result struct {
	// Unknown holds paths present in the configuration that the reference
	// does not define, with Unaccessed reporting semantics: an unknown
	// subtree appears once, at its root.
	Unknown []string
	// Missing holds reference mapping keys absent from the configuration,
	// reported at subtree roots as well. Sequence positions are never
	// reported missing.
	Missing []string
}

// Empty reports whether the comparison found nothing to flag.
func (r Result) Empty() bool { return len(r.Unknown) == 0 && len(r.Missing) == 0 }

// Compare reads cfg through its tracking wrapper along every path the
// reference tree defines, then collects the leftovers on both sides. Descent
// happens only where both sides hold the same container kind; sequences are
// walked positionally up to the shorter length. Shape disagreements (a
// mapping on one side, a scalar on the other) end the descent without
// flagging anything.
func Compare(cfg *tracked.Map, ref map[string]any) Result {
	var missing []string
	consumeMap(cfg, ref, &missing)
	sort.Strings(missing)
	return Result{Unknown: cfg.Unaccessed(), Missing: missing}
}

func consumeMap(cfg *tracked.Map, ref map[string]any, missing *[]string) {
	for key, refVal := range ref {
		if !cfg.Has(key) {
			*missing = append(*missing, tracked.JoinKey(cfg.Path(), key))
			continue
		}
		v, err := cfg.Get(key)
		if err != nil {
			continue
		}
		switch refChild := refVal.(type) {
		case map[string]any:
			if child, ok := v.(*tracked.Map); ok {
				consumeMap(child, refChild, missing)
			}
		case []any:
			if child, ok := v.(*tracked.Slice); ok {
				consumeSlice(child, refChild, missing)
			}
		}
	}
}

func consumeSlice(cfg *tracked.Slice, ref []any, missing *[]string) {
	n := min(cfg.Len(), len(ref))
	for i := 0; i < n; i++ {
		v, err := cfg.At(i)
		if err != nil {
			continue
		}
		switch refChild := ref[i].(type) {
		case map[string]any:
			if child, ok := v.(*tracked.Map); ok {
				consumeMap(child, refChild, missing)
			}
		case []any:
			if child, ok := v.(*tracked.Slice); ok {
				consumeSlice(child, refChild, missing)
			}
		}
	}
}

// Paths returns the path of every mapping key in a raw decoded tree, sorted.
// Sequence positions appear only as prefixes of nested keys; scalar elements
// contribute nothing, matching what Unaccessed can ever report.
func Paths(v any) []string {
	var out []string
	collectPaths(v, "", &out)
	sort.Strings(out)
	return out
}

func collectPaths(v any, path string, out *[]string) {
	switch t := v.(type) {
	case map[string]any:
		for k, vv := range t {
			p := tracked.JoinKey(path, k)
			*out = append(*out, p)
			collectPaths(vv, p, out)
		}
	case []any:
		for i, vv := range t {
			collectPaths(vv, tracked.JoinIndex(path, i), out)
		}
	}
}
