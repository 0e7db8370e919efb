package simconfig

import (
	"strings"
	"testing"
)

// mapSource serves templates from memory for tests.
type mapSource map[string]string

func (m mapSource) Template(name string) (*Config, error) {
	data, ok := m[name]
	if !ok {
		return nil, &TemplateNotFoundError{Name: name}
	}
	return Parse([]byte(data))
}

// TemplateNotFoundError is used by template sources when a name does not
// match any known template.
type TemplateNotFoundError struct{ Name string }

func (e *TemplateNotFoundError) Error() string { return "template " + e.Name + " not found" }

func TestParseReservedKeys(t *testing.T) {
	cfg, err := Parse([]byte(`
modules:
  - imsim
  - skycat
template: imsim-config-skycat
output.camera: LsstComCamSim
image.random_seed: 42
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(cfg.Modules) != 2 || cfg.Modules[0] != "imsim" || cfg.Modules[1] != "skycat" {
		t.Errorf("Unexpected modules: %v", cfg.Modules)
	}
	if cfg.Template != "imsim-config-skycat" {
		t.Errorf("Expected template 'imsim-config-skycat', got %q", cfg.Template)
	}
	if _, ok := cfg.Overrides["output.camera"]; !ok {
		t.Error("Expected dotted override key to be preserved")
	}
	if _, ok := cfg.Overrides["template"]; ok {
		t.Error("Reserved key leaked into overrides")
	}
}

func TestParseRejectsMalformedKeys(t *testing.T) {
	if _, err := Parse([]byte("output..camera: X\n")); err == nil {
		t.Error("Expected error for malformed dotted key")
	}
	if _, err := Parse([]byte("modules: not-a-list\n")); err == nil {
		t.Error("Expected error for scalar modules value")
	}
	if _, err := Parse([]byte("modules: []\n")); err == nil {
		t.Error("Expected error for empty modules list")
	}
}

func TestResolveTemplateChain(t *testing.T) {
	src := mapSource{
		"imsim-config": `
modules:
  - imsim
output:
  nfiles: 1
  nproc: 1
image:
  random_seed: 57721
psf.type: Convolve
`,
		"imsim-config-skycat": `
modules:
  - skycat
template: imsim-config
input:
  sky_catalog:
    obj_types: [galaxy, star]
`,
	}

	cfg, err := Parse([]byte(`
modules:
  - imsim
template: imsim-config-skycat
output.camera: LsstComCamSim
output.nproc: 4
image.random_seed: 42
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	resolved, err := Resolve(cfg, src, ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// User document wins over every template level.
	seed, err := resolved.Doc.GetInt("image.random_seed")
	if err != nil || seed != 42 {
		t.Errorf("Expected seed 42, got %d (err %v)", seed, err)
	}
	nproc, err := resolved.Doc.GetInt("output.nproc")
	if err != nil || nproc != 4 {
		t.Errorf("Expected nproc 4, got %d (err %v)", nproc, err)
	}

	// Base template values survive where not overridden.
	nfiles, err := resolved.Doc.GetInt("output.nfiles")
	if err != nil || nfiles != 1 {
		t.Errorf("Expected nfiles 1, got %d (err %v)", nfiles, err)
	}
	psfType, err := resolved.Doc.GetString("psf.type")
	if err != nil || psfType != "Convolve" {
		t.Errorf("Expected psf.type Convolve, got %q (err %v)", psfType, err)
	}

	// Modules accumulate along the chain without duplicates.
	want := []string{"imsim", "skycat"}
	if len(resolved.Modules) != len(want) {
		t.Fatalf("Expected modules %v, got %v", want, resolved.Modules)
	}
	for i, name := range want {
		if resolved.Modules[i] != name {
			t.Errorf("Module %d: expected %s, got %s", i, name, resolved.Modules[i])
		}
	}
}

func TestResolveCycleDetection(t *testing.T) {
	src := mapSource{
		"a": "template: b\n",
		"b": "template: a\n",
	}
	cfg, err := Parse([]byte("template: a\noutput.camera: X\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	_, err = Resolve(cfg, src, ResolveOptions{})
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("Expected cycle error, got %v", err)
	}
}

func TestResolveInterpolation(t *testing.T) {
	cfg, err := Parse([]byte("input.sky_catalog.file_name: ${SKYSIM_DATA_DIR}/sky_cat_9683.yaml\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	lookup := func(name string) (string, bool) {
		if name == "SKYSIM_DATA_DIR" {
			return "/data/sky", true
		}
		return "", false
	}

	resolved, err := Resolve(cfg, nil, ResolveOptions{Lookup: lookup})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	file, err := resolved.Doc.GetString("input.sky_catalog.file_name")
	if err != nil {
		t.Fatalf("GetString failed: %v", err)
	}
	if file != "/data/sky/sky_cat_9683.yaml" {
		t.Errorf("Unexpected interpolated path: %q", file)
	}
}

func TestResolveUnresolvedVariable(t *testing.T) {
	cfg, err := Parse([]byte("output.dir: $SKYSIM_NO_SUCH_VAR/fits\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	lookup := func(string) (string, bool) { return "", false }
	_, err = Resolve(cfg, nil, ResolveOptions{Lookup: lookup})
	if err == nil || !strings.Contains(err.Error(), "SKYSIM_NO_SUCH_VAR") {
		t.Errorf("Expected unresolved variable error, got %v", err)
	}
}

func TestResolveEmptyStringDisables(t *testing.T) {
	src := mapSource{
		"base": `
input:
  atm_psf:
    screen_size: 819.2
output:
  checkpoint:
    file_name: checkpoint.yaml
`,
	}
	cfg, err := Parse([]byte(`
template: base
input.atm_psf: ""
output.checkpoint: ""
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	resolved, err := Resolve(cfg, src, ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if resolved.Doc.Has("input.atm_psf") {
		t.Error("Expected input.atm_psf to be disabled")
	}
	if resolved.Doc.Has("output.checkpoint") {
		t.Error("Expected output.checkpoint to be disabled")
	}
	if len(resolved.Disabled) != 2 {
		t.Errorf("Expected 2 disabled paths, got %v", resolved.Disabled)
	}
}

func TestExpandMergesDottedAndNestedSpellings(t *testing.T) {
	// The same section set as a nested mapping and through a dotted key
	// must keep both values regardless of map iteration order.
	for i := 0; i < 50; i++ {
		doc := Document{
			"output":        map[string]any{"dir": "out"},
			"output.camera": "LsstCam",
		}
		expanded, err := Expand(doc)
		if err != nil {
			t.Fatalf("Expand failed: %v", err)
		}
		if v, _ := expanded.Get("output.camera"); v != "LsstCam" {
			t.Fatalf("Iteration %d: lost output.camera, got %v", i, v)
		}
		if v, _ := expanded.Get("output.dir"); v != "out" {
			t.Fatalf("Iteration %d: lost output.dir, got %v", i, v)
		}
	}
}

func TestMergeSequencesReplace(t *testing.T) {
	base := Document{"input": map[string]any{"obj_types": []any{"galaxy", "star"}}}
	overlay := Document{"input": map[string]any{"obj_types": []any{"galaxy"}}}

	merged := Merge(base, overlay)
	types, _ := merged.Get("input.obj_types")
	if len(types.([]any)) != 1 {
		t.Errorf("Expected overlay sequence to replace base, got %v", types)
	}
}
