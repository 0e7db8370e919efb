package atmpsf

import (
	"strings"
	"testing"

	"github.com/skysim-labs/skysim/pkg/pipeline"
	"github.com/skysim-labs/skysim/pkg/psf"
	"github.com/skysim-labs/skysim/pkg/simconfig"
)

func resolve(t *testing.T, src string) *simconfig.Resolved {
	t.Helper()
	cfg, err := simconfig.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	res, err := simconfig.Resolve(cfg, nil, simconfig.ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return res
}

func planWithAtmPSF() *pipeline.Plan {
	return &pipeline.Plan{
		PSF: &psf.Composition{
			Type: psf.TypeConvolve,
			Components: []psf.Component{
				{Type: psf.TypeAtmospheric, FWHM: 0.8},
				{Type: psf.TypeGaussian, Sigma: 0.1},
			},
		},
	}
}

func TestConfiguredInputKeepsAtmosphere(t *testing.T) {
	res := resolve(t, `
input:
  atm_psf:
    screen_size: 819.2
    screen_scale: 0.1
`)

	m := New()
	if err := m.Configure(res); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	plan := planWithAtmPSF()
	if err := m.Contribute(plan); err != nil {
		t.Fatalf("Contribute failed: %v", err)
	}
	if !plan.PSF.HasAtmospheric() {
		t.Error("Expected atmospheric components kept")
	}
}

func TestAbsentInputIsNotAnError(t *testing.T) {
	res := resolve(t, "output.camera: LsstCam\n")

	m := New()
	if err := m.Configure(res); err != nil {
		t.Fatalf("Configure failed for absent section: %v", err)
	}

	plan := planWithAtmPSF()
	if err := m.Contribute(plan); err != nil {
		t.Fatalf("Contribute failed: %v", err)
	}
	// The module does not enable the atmosphere; plan building drops the
	// atmospheric components later.
}

func TestScreenValidation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"zero size", "input.atm_psf.screen_size: 0\n", "screen_size"},
		{"negative scale", "input.atm_psf.screen_scale: -0.1\n", "screen_scale"},
	}
	for _, tt := range tests {
		err := New().Configure(resolve(t, tt.src))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected error containing %q, got %v", tt.name, tt.want, err)
		}
	}
}
