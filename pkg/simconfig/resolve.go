package simconfig

import (
	"fmt"
)

// TemplateSource resolves a template name to its configuration document.
// Implemented by the template discovery index.
type TemplateSource interface {
	Template(name string) (*Config, error)
}

// Resolved is a configuration document after template resolution:
// templates applied, overrides merged, environment references expanded
// and empty-string disables removed.
type Resolved struct {
	// Modules is the union of the module lists along the template
	// chain, outermost document first, duplicates removed.
	Modules []string

	// Doc is the final merged document.
	Doc Document

	// Disabled lists the dotted paths removed by the empty-string
	// convention.
	Disabled []string

	// Source is the user config the resolution started from.
	Source *Config
}

// ResolveOptions controls template resolution.
type ResolveOptions struct {
	// Lookup resolves environment variables during interpolation.
	// Nil uses the process environment.
	Lookup LookupFunc
}

// Resolve walks the template chain of cfg, merges every level into a
// single document and applies interpolation and disables. The chain is
// ordered base-first, so a document's overrides always win over the
// templates it extends.
func Resolve(cfg *Config, src TemplateSource, opts ResolveOptions) (*Resolved, error) {
	chain := []*Config{cfg}
	seen := map[string]bool{}

	current := cfg
	for current.Template != "" {
		name := current.Template
		if seen[name] {
			return nil, fmt.Errorf("template cycle detected at %q", name)
		}
		seen[name] = true

		if src == nil {
			return nil, fmt.Errorf("template %q requested but no template source available", name)
		}
		tmpl, err := src.Template(name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve template %q: %w", name, err)
		}
		chain = append(chain, tmpl)
		current = tmpl
	}

	merged := Document{}
	for i := len(chain) - 1; i >= 0; i-- {
		expanded, err := Expand(chain[i].Overrides)
		if err != nil {
			source := chain[i].Path
			if source == "" {
				source = chain[i].Template
			}
			return nil, fmt.Errorf("failed to expand %s: %w", source, err)
		}
		merged = Merge(merged, expanded)
	}

	if err := Interpolate(merged, opts.Lookup); err != nil {
		return nil, err
	}

	disabled := ApplyDisables(merged)

	var modules []string
	inModules := map[string]bool{}
	for _, c := range chain {
		for _, name := range c.Modules {
			if inModules[name] {
				continue
			}
			inModules[name] = true
			modules = append(modules, name)
		}
	}

	return &Resolved{
		Modules:  modules,
		Doc:      merged,
		Disabled: disabled,
		Source:   cfg,
	}, nil
}
