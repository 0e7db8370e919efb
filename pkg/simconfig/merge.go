package simconfig

import (
	"fmt"
)

// Expand converts a document whose keys may be dotted paths into a fully
// nested document. "output.camera: X" becomes output: {camera: X}. A
// section addressed both as a nested mapping and through dotted keys
// ("output: {dir: out}" plus "output.camera: X") merges; map iteration
// order must not decide which spelling survives.
func Expand(doc Document) (Document, error) {
	out := Document{}
	for key, value := range doc {
		if m, ok := value.(map[string]any); ok {
			nested, err := Expand(Document(m))
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", key, err)
			}
			value = map[string]any(nested)
		}
		entry := Document{}
		if err := entry.Set(key, value); err != nil {
			return nil, err
		}
		mergeInto(map[string]any(out), map[string]any(entry))
	}
	return out, nil
}

// Merge deep-merges overlay onto base and returns the result. Mappings
// merge recursively; any other value in the overlay replaces the base
// value, including sequences. Neither input is modified.
func Merge(base, overlay Document) Document {
	out := base.Clone()
	mergeInto(map[string]any(out), map[string]any(overlay.Clone()))
	return out
}

func mergeInto(dst, src map[string]any) {
	for key, value := range src {
		srcMap, srcIsMap := value.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			mergeInto(dstMap, srcMap)
			continue
		}
		dst[key] = value
	}
}

// ApplyDisables removes every subtree whose value is the empty string.
// An empty string is the conventional way to switch a template feature
// off, e.g. "input.atm_psf: ''" or "output.checkpoint: ''".
func ApplyDisables(doc Document) []string {
	var disabled []string
	disableWalk(map[string]any(doc), "", &disabled)
	return disabled
}

func disableWalk(m map[string]any, prefix string, disabled *[]string) {
	for key, value := range m {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			if v == "" {
				delete(m, key)
				*disabled = append(*disabled, path)
			}
		case map[string]any:
			disableWalk(v, path, disabled)
			if len(v) == 0 {
				delete(m, key)
			}
		}
	}
}
