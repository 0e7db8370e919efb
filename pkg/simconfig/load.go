package simconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is a user-facing configuration document before template
// resolution. The reserved top-level keys "modules" and "template" select
// plugin modules and the base template; every other key is an override
// applied on top of the template.
type Config struct {
	// Modules lists plugin module names to load before interpreting
	// the document.
	Modules []string

	// Template names the base configuration template this document
	// extends. Empty means the document stands alone.
	Template string

	// Overrides holds the remaining keys. Dotted keys such as
	// "output.camera" are kept verbatim here and expanded during merge.
	Overrides Document

	// Path is the file the config was loaded from, empty for in-memory
	// documents. Dir is its directory, used to resolve relative file
	// references.
	Path string
	Dir  string
}

// LoadFile reads and parses a configuration document from disk.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.Path = path
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Parse parses a configuration document from raw YAML.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("config document is empty")
	}

	cfg := &Config{Overrides: Document{}}

	for key, value := range raw {
		switch key {
		case "modules":
			modules, err := stringList(value)
			if err != nil {
				return nil, fmt.Errorf("modules: %w", err)
			}
			cfg.Modules = modules
		case "template":
			name, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("template: expected string, got %T", value)
			}
			cfg.Template = name
		default:
			if _, err := SplitPath(key); err != nil {
				return nil, err
			}
			cfg.Overrides[key] = value
		}
	}

	return cfg, nil
}

// ResolvePath resolves a file reference against the config's directory.
// Absolute paths and URLs are returned unchanged.
func (c *Config) ResolvePath(ref string) string {
	if ref == "" || filepath.IsAbs(ref) || isURL(ref) {
		return ref
	}
	if c.Dir == "" {
		return ref
	}
	return filepath.Join(c.Dir, ref)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func stringList(v any) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", v)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("list must not be empty")
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("entry %d: expected string, got %T", i, item)
		}
		if s == "" {
			return nil, fmt.Errorf("entry %d: must not be empty", i)
		}
		out = append(out, s)
	}
	return out, nil
}
