package templates

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/skysim-labs/skysim/pkg/simconfig"
)

// Parameter defines a user-facing knob a template exposes. Values are
// prompted for at run time and written to the dotted Key in the resolved
// document.
type Parameter struct {
	Name        string      `yaml:"name"`
	Key         string      `yaml:"key"`
	Type        string      `yaml:"type"` // integer, float, string, boolean
	Description string      `yaml:"description"`
	Default     interface{} `yaml:"default"`
	Required    bool        `yaml:"required"`
	Min         interface{} `yaml:"min,omitempty"`
	Max         interface{} `yaml:"max,omitempty"`
	Options     []string    `yaml:"options,omitempty"` // For string enums
}

// Info describes a discovered template: its descriptor plus the
// configuration document it contributes.
type Info struct {
	Name        string
	Description string
	Version     string
	Parameters  []Parameter
	Config      *simconfig.Config

	// Path is the file the template came from; "builtin" entries use
	// the embedded name.
	Path string
}

// templateFile is the on-disk template layout: a descriptor wrapping the
// configuration document under the config key.
type templateFile struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Version     string         `yaml:"version"`
	Parameters  []Parameter    `yaml:"parameters"`
	Config      map[string]any `yaml:"config"`
}

// ParseTemplate parses a template document.
func ParseTemplate(data []byte, path string) (*Info, error) {
	var tf templateFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	if tf.Name == "" {
		return nil, fmt.Errorf("template missing name")
	}
	if len(tf.Config) == 0 {
		return nil, fmt.Errorf("template %s has no config section", tf.Name)
	}

	for i, p := range tf.Parameters {
		if p.Name == "" {
			return nil, fmt.Errorf("template %s: parameter %d missing name", tf.Name, i)
		}
		if p.Key == "" {
			return nil, fmt.Errorf("template %s: parameter %s missing key", tf.Name, p.Name)
		}
		if _, err := simconfig.SplitPath(p.Key); err != nil {
			return nil, fmt.Errorf("template %s: parameter %s: %w", tf.Name, p.Name, err)
		}
		switch p.Type {
		case "integer", "float", "string", "boolean":
		default:
			return nil, fmt.Errorf("template %s: parameter %s has unsupported type %q", tf.Name, p.Name, p.Type)
		}
	}

	// Route the config section through the standard document parser so
	// templates follow the same reserved-key rules as user configs.
	raw, err := yaml.Marshal(tf.Config)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", tf.Name, err)
	}
	cfg, err := simconfig.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", tf.Name, err)
	}

	return &Info{
		Name:        tf.Name,
		Description: tf.Description,
		Version:     tf.Version,
		Parameters:  tf.Parameters,
		Config:      cfg,
		Path:        path,
	}, nil
}
