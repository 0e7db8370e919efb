package simconfig

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// LookupFunc resolves an environment variable name during interpolation.
type LookupFunc func(name string) (string, bool)

// Interpolate expands ${VAR} and $VAR references inside every string
// value of the document, in place. All unresolved variables are reported
// in a single error. A nil lookup uses the process environment.
func Interpolate(doc Document, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	missing := map[string]bool{}
	interpolateMap(map[string]any(doc), lookup, missing)

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("unresolved environment variables: %s", strings.Join(names, ", "))
	}
	return nil
}

func interpolateMap(m map[string]any, lookup LookupFunc, missing map[string]bool) {
	for key, value := range m {
		m[key] = interpolateValue(value, lookup, missing)
	}
}

func interpolateValue(v any, lookup LookupFunc, missing map[string]bool) any {
	switch val := v.(type) {
	case string:
		return expandString(val, lookup, missing)
	case map[string]any:
		interpolateMap(val, lookup, missing)
		return val
	case []any:
		for i, item := range val {
			val[i] = interpolateValue(item, lookup, missing)
		}
		return val
	default:
		return v
	}
}

func expandString(s string, lookup LookupFunc, missing map[string]bool) string {
	if !strings.ContainsRune(s, '$') {
		return s
	}
	return os.Expand(s, func(name string) string {
		// os.Expand hands us "$" for a literal "$$" escape.
		if name == "$" {
			return "$"
		}
		value, ok := lookup(name)
		if !ok {
			missing[name] = true
			return ""
		}
		return value
	})
}
