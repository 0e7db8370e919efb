package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/skysim-labs/skysim/pkg/simconfig"
)

func TestLoadBuiltins(t *testing.T) {
	ix, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, name := range []string{"imsim-config", "imsim-config-skycat", "imsim-config-instcat"} {
		if _, err := ix.Get(name); err != nil {
			t.Errorf("Expected built-in template %s: %v", name, err)
		}
	}

	info, err := ix.Get("imsim-config-skycat")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if info.Config.Template != "imsim-config" {
		t.Errorf("Expected skycat template to extend imsim-config, got %q", info.Config.Template)
	}
	if len(info.Config.Modules) != 2 {
		t.Errorf("Expected 2 modules, got %v", info.Config.Modules)
	}
}

func TestBuiltinsResolve(t *testing.T) {
	ix, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg, err := simconfig.Parse([]byte("template: imsim-config-skycat\noutput.camera: LsstComCamSim\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	resolved, err := simconfig.Resolve(cfg, ix, simconfig.ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	seed, err := resolved.Doc.GetInt("image.random_seed")
	if err != nil || seed != 57721 {
		t.Errorf("Expected base template seed 57721, got %d (err %v)", seed, err)
	}
	camera, err := resolved.Doc.GetString("output.camera")
	if err != nil || camera != "LsstComCamSim" {
		t.Errorf("Expected camera override, got %q (err %v)", camera, err)
	}
	if !resolved.Doc.Has("input.sky_catalog.obj_types") {
		t.Error("Expected sky catalog defaults from template")
	}
}

func TestAddDirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	custom := `name: imsim-config
description: site override
version: "9.9.9"
config:
  image:
    random_seed: 1
`
	if err := os.WriteFile(filepath.Join(dir, "imsim-config.yaml"), []byte(custom), 0644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}

	ix, err := Load([]string{dir})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	info, err := ix.Get("imsim-config")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if info.Version != "9.9.9" {
		t.Errorf("Expected directory template to override built-in, got version %q", info.Version)
	}
}

func TestParseTemplateErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing name", data: "config:\n  output.dir: x\n"},
		{name: "missing config", data: "name: t\n"},
		{name: "parameter without key", data: "name: t\nparameters:\n  - name: p\nconfig:\n  output.dir: x\n"},
		{name: "parameter with bad key", data: "name: t\nparameters:\n  - name: p\n    key: a..b\nconfig:\n  output.dir: x\n"},
		{name: "parameter with unsupported type", data: "name: t\nparameters:\n  - name: p\n    key: a.b\n    type: duration\nconfig:\n  output.dir: x\n"},
		{name: "parameter without type", data: "name: t\nparameters:\n  - name: p\n    key: a.b\nconfig:\n  output.dir: x\n"},
	}

	for _, tt := range tests {
		if _, err := ParseTemplate([]byte(tt.data), "test.yaml"); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestParameterChain(t *testing.T) {
	ix, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg, err := simconfig.Parse([]byte("template: imsim-config-skycat\noutput.camera: X\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	params, err := ix.Parameters(cfg)
	if err != nil {
		t.Fatalf("Parameters failed: %v", err)
	}

	names := map[string]bool{}
	for _, p := range params {
		names[p.Name] = true
	}
	// Own parameters plus inherited ones from imsim-config.
	for _, want := range []string{"camera", "nobjects", "nproc", "nfiles"} {
		if !names[want] {
			t.Errorf("Expected parameter %s in chain, got %v", want, names)
		}
	}
}
