package pipeline

import (
	"github.com/skysim-labs/skysim/pkg/simconfig"
)

// Module is a plugin selected by the "modules" list of a configuration
// document. Modules validate their sections of the resolved document and
// contribute to the run plan.
type Module interface {
	// Name returns the module name used in the modules list.
	Name() string

	// Description returns a brief description of what the module does.
	Description() string

	// Configure validates the module's sections of the resolved
	// document and captures what Contribute needs.
	Configure(res *simconfig.Resolved) error

	// Contribute fills the module's portion of the run plan.
	Contribute(plan *Plan) error
}
