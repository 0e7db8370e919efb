package simconfig

import (
	"fmt"
	"strings"
)

// Document is a parsed configuration mapping. Keys address nested values
// using dotted paths, e.g. "input.sky_catalog.file_name".
type Document map[string]any

// SplitPath validates a dotted key path and returns its segments.
// Segments must be non-empty and separated by single dots.
func SplitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("empty key path")
	}
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("invalid key path %q: empty segment", path)
		}
	}
	return segments, nil
}

// Get returns the value at the given dotted path, or false if any
// segment is missing or traverses a non-mapping value.
func (d Document) Get(path string) (any, bool) {
	segments, err := SplitPath(path)
	if err != nil {
		return nil, false
	}

	var current any = map[string]any(d)
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// GetString returns the string value at path. It returns an error if the
// value is present but not a string.
func (d Document) GetString(path string) (string, error) {
	v, ok := d.Get(path)
	if !ok {
		return "", fmt.Errorf("key %s not found", path)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("key %s: expected string, got %T", path, v)
	}
	return s, nil
}

// GetInt returns the integer value at path. YAML decodes whole numbers as
// int, but values routed through overrides may arrive as float64.
func (d Document) GetInt(path string) (int, error) {
	v, ok := d.Get(path)
	if !ok {
		return 0, fmt.Errorf("key %s not found", path)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("key %s: expected integer, got %v", path, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("key %s: expected integer, got %T", path, v)
	}
}

// GetBool returns the boolean value at path.
func (d Document) GetBool(path string) (bool, error) {
	v, ok := d.Get(path)
	if !ok {
		return false, fmt.Errorf("key %s not found", path)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("key %s: expected boolean, got %T", path, v)
	}
	return b, nil
}

// GetFloat returns the float value at path, accepting integers as well.
func (d Document) GetFloat(path string) (float64, error) {
	v, ok := d.Get(path)
	if !ok {
		return 0, fmt.Errorf("key %s not found", path)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("key %s: expected number, got %T", path, v)
	}
}

// StringOr returns the string at path, or def when the key is absent.
// A present value of the wrong type is still an error.
func (d Document) StringOr(path, def string) (string, error) {
	if !d.Has(path) {
		return def, nil
	}
	return d.GetString(path)
}

// IntOr returns the integer at path, or def when the key is absent.
func (d Document) IntOr(path string, def int) (int, error) {
	if !d.Has(path) {
		return def, nil
	}
	return d.GetInt(path)
}

// BoolOr returns the boolean at path, or def when the key is absent.
func (d Document) BoolOr(path string, def bool) (bool, error) {
	if !d.Has(path) {
		return def, nil
	}
	return d.GetBool(path)
}

// StringsAt returns the list of strings at path, or nil when absent.
func (d Document) StringsAt(path string) ([]string, error) {
	v, ok := d.Get(path)
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("key %s: expected list, got %T", path, v)
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("key %s[%d]: expected string, got %T", path, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

// Set stores a value at the given dotted path, creating intermediate
// mappings as needed. It fails if an intermediate segment holds a
// non-mapping value.
func (d Document) Set(path string, value any) error {
	segments, err := SplitPath(path)
	if err != nil {
		return err
	}

	current := map[string]any(d)
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg]
		if !ok {
			child := map[string]any{}
			current[seg] = child
			current = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("key %s: segment %q holds %T, not a mapping", path, seg, next)
		}
		current = child
	}
	current[segments[len(segments)-1]] = value
	return nil
}

// Delete removes the value at the given dotted path. Missing paths are
// not an error.
func (d Document) Delete(path string) error {
	segments, err := SplitPath(path)
	if err != nil {
		return err
	}

	current := map[string]any(d)
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg]
		if !ok {
			return nil
		}
		child, ok := next.(map[string]any)
		if !ok {
			return nil
		}
		current = child
	}
	delete(current, segments[len(segments)-1])
	return nil
}

// Has reports whether a value exists at the given dotted path.
func (d Document) Has(path string) bool {
	_, ok := d.Get(path)
	return ok
}

// Clone returns a deep copy of the document. Sequences and nested
// mappings are copied; scalar values are shared.
func (d Document) Clone() Document {
	return Document(cloneValue(map[string]any(d)).(map[string]any))
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = cloneValue(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = cloneValue(child)
		}
		return out
	default:
		return v
	}
}
