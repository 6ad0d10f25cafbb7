package tracked

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// The From* helpers are conveniences for the common case: decode a
// configuration document and wrap its top-level mapping in one step. Decoding
// stays entirely in the drivers below; the wrappers themselves consume
// already-decoded trees, so callers with their own decoder can build the
// tree themselves and use NewMap, NewSlice, or Wrap directly.

// FromJSON decodes a JSON object and wraps it. Numbers are preserved as
// json.Number.
func FromJSON(data []byte) (*Map, error) {
	return FromJSONReader(bytes.NewReader(data))
}

// FromJSONReader decodes a JSON object from r and wraps it.
func FromJSONReader(r io.Reader) (*Map, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("tracked: decode json: %w", err)
	}
	return rootMap(v)
}

// FromYAML decodes a YAML document and wraps its top-level mapping. Values
// are normalized to the JSON-like shape the wrappers understand: mappings
// that decode as map[any]any become map[string]any, with non-string keys
// stringified so every key stays reportable.
func FromYAML(data []byte) (*Map, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("tracked: decode yaml: %w", err)
	}
	return rootMap(normalizeValue(v))
}

// FromTOML decodes a TOML document and wraps it. A TOML document always has
// a table at the root.
func FromTOML(data []byte) (*Map, error) {
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("tracked: decode toml: %w", err)
	}
	return NewMap(normalizeValue(m).(map[string]any)), nil
}

func rootMap(v any) (*Map, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("tracked: document root is a %s, want a mapping", KindOf(v))
	}
	return NewMap(m), nil
}

// normalizeValue rewrites decoder-specific container shapes into the
// map[string]any / []any tree the wrappers track. YAML falls back to
// map[any]any for non-string keys; TOML emits []map[string]any for arrays of
// tables.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeValue(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeValue(t[i])
		}
		return arr
	case []map[string]any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}
