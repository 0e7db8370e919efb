package pipeline

import (
	"strings"
	"testing"

	"github.com/skysim-labs/skysim/pkg/catalog"
	"github.com/skysim-labs/skysim/pkg/psf"
	"github.com/skysim-labs/skysim/pkg/simconfig"
)

// stubModule fills plan fields through a callback.
type stubModule struct {
	name       string
	configure  func(res *simconfig.Resolved) error
	contribute func(plan *Plan) error
}

func (s *stubModule) Name() string        { return s.name }
func (s *stubModule) Description() string { return "stub" }

func (s *stubModule) Configure(res *simconfig.Resolved) error {
	if s.configure != nil {
		return s.configure(res)
	}
	return nil
}

func (s *stubModule) Contribute(plan *Plan) error {
	if s.contribute != nil {
		return s.contribute(plan)
	}
	return nil
}

func testCatalog(t *testing.T) catalog.Source {
	t.Helper()
	cat, err := catalog.ParseSkyCatalog([]byte(`
catalog_name: plan_test
objects:
  - {id: 1, object_type: star, ra: 1, dec: 1, mag_norm: 20}
  - {id: 2, object_type: star, ra: 2, dec: 2, mag_norm: 21}
`), nil)
	if err != nil {
		t.Fatalf("Failed to build test catalog: %v", err)
	}
	return cat
}

func baseStub(t *testing.T) *stubModule {
	return &stubModule{
		name: "base",
		contribute: func(plan *Plan) error {
			plan.Camera = "LsstComCamSim"
			plan.OutputDir = t.TempDir()
			plan.FileNameFormat = "eimage_%05d.fits"
			plan.NFiles = 2
			plan.FirstFile = 1
			plan.NProc = 1
			plan.Seed = 42
			plan.Catalog = testCatalog(t)
			return nil
		},
	}
}

func resolvedWithModules(t *testing.T, modules ...string) *simconfig.Resolved {
	t.Helper()
	cfg, err := simconfig.Parse([]byte("output.camera: X\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	res, err := simconfig.Resolve(cfg, nil, simconfig.ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	res.Modules = modules
	return res
}

func TestBuildPlan(t *testing.T) {
	reg := NewRegistry()
	stub := baseStub(t)
	if err := reg.Register("base", func() Module { return stub }); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	plan, err := BuildPlan(resolvedWithModules(t, "base"), reg)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	if plan.Camera != "LsstComCamSim" {
		t.Errorf("Expected camera from module, got %q", plan.Camera)
	}
	if plan.ObjectsPerFile() != 2 {
		t.Errorf("Expected catalog-derived object count 2, got %d", plan.ObjectsPerFile())
	}
}

func TestBuildPlanUnknownModule(t *testing.T) {
	_, err := BuildPlan(resolvedWithModules(t, "no_such_module"), NewRegistry())
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected unknown module error, got %v", err)
	}
}

func TestBuildPlanValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(plan *Plan)
		want   string
	}{
		{
			name:   "missing camera",
			mutate: func(p *Plan) { p.Camera = "" },
			want:   "output.camera",
		},
		{
			name:   "zero nproc",
			mutate: func(p *Plan) { p.NProc = 0 },
			want:   "nproc",
		},
		{
			name:   "no objects",
			mutate: func(p *Plan) { p.Catalog = nil; p.NObjects = 0 },
			want:   "no objects",
		},
		{
			name:   "bad checkpoint interval",
			mutate: func(p *Plan) { p.Checkpoint = &CheckpointSpec{FileName: "cp.yaml", Every: 0} },
			want:   "every",
		},
	}

	for _, tt := range tests {
		reg := NewRegistry()
		stub := baseStub(t)
		breaker := &stubModule{
			name:       "breaker",
			contribute: func(p *Plan) error { tt.mutate(p); return nil },
		}
		_ = reg.Register("base", func() Module { return stub })
		_ = reg.Register("breaker", func() Module { return breaker })

		_, err := BuildPlan(resolvedWithModules(t, "base", "breaker"), reg)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected error containing %q, got %v", tt.name, tt.want, err)
		}
	}
}

func TestBuildPlanDropsAtmosphereWithoutInput(t *testing.T) {
	reg := NewRegistry()
	stub := baseStub(t)
	psfStub := &stubModule{
		name: "psf",
		contribute: func(p *Plan) error {
			p.PSF = &psf.Composition{
				Type: psf.TypeConvolve,
				Components: []psf.Component{
					{Type: psf.TypeAtmospheric, FWHM: 0.8},
					{Type: psf.TypeGaussian, Sigma: 0.3},
				},
			}
			return nil
		},
	}
	_ = reg.Register("base", func() Module { return stub })
	_ = reg.Register("psf", func() Module { return psfStub })

	plan, err := BuildPlan(resolvedWithModules(t, "base", "psf"), reg)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	if plan.PSF.HasAtmospheric() {
		t.Error("Expected atmospheric components dropped without atm input")
	}
}

func TestPlanWorkers(t *testing.T) {
	plan := &Plan{NProc: 4}
	if plan.Workers() != 4 {
		t.Errorf("Expected 4 workers, got %d", plan.Workers())
	}
	plan.NProc = -1
	if plan.Workers() < 1 {
		t.Errorf("Expected at least 1 worker for nproc -1, got %d", plan.Workers())
	}
}

func TestRegistryDuplicate(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("m", func() Module { return &stubModule{name: "m"} }); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := reg.Register("m", func() Module { return &stubModule{name: "m"} }); err == nil {
		t.Error("Expected duplicate registration error")
	}
}
