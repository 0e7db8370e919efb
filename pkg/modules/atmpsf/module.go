// Package atmpsf validates the atmospheric screen input. When the
// input.atm_psf section has been disabled (set to ""), atmospheric PSF
// components are dropped from the composition at plan time.
package atmpsf

import (
	"fmt"

	"github.com/skysim-labs/skysim/pkg/logger"
	"github.com/skysim-labs/skysim/pkg/pipeline"
	"github.com/skysim-labs/skysim/pkg/simconfig"
)

// Module marks the atmospheric screen input as available.
type Module struct {
	present bool
}

// New creates the module.
func New() pipeline.Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string { return "atm_psf" }

// Description returns a brief description of what the module does.
func (m *Module) Description() string {
	return "Atmospheric PSF screen input (input.atm_psf)"
}

// Configure validates the screen parameters. An absent section is not an
// error: the section is removed when a user disables it with "".
func (m *Module) Configure(res *simconfig.Resolved) error {
	doc := res.Doc
	if !doc.Has("input.atm_psf") {
		m.present = false
		return nil
	}
	m.present = true

	if doc.Has("input.atm_psf.screen_size") {
		size, err := doc.GetFloat("input.atm_psf.screen_size")
		if err != nil {
			return err
		}
		if size <= 0 {
			return fmt.Errorf("input.atm_psf.screen_size must be positive, got %v", size)
		}
	}
	if doc.Has("input.atm_psf.screen_scale") {
		scale, err := doc.GetFloat("input.atm_psf.screen_scale")
		if err != nil {
			return err
		}
		if scale <= 0 {
			return fmt.Errorf("input.atm_psf.screen_scale must be positive, got %v", scale)
		}
	}
	return nil
}

// Contribute enables atmospheric PSF components when the input is
// configured.
func (m *Module) Contribute(plan *pipeline.Plan) error {
	if m.present {
		plan.EnableAtmosphere()
	}
	return nil
}

// init registers the module.
func init() {
	if err := pipeline.DefaultRegistry.Register("atm_psf", New); err != nil {
		logger.Errorf("Failed to register module: %v", err)
	}
}
