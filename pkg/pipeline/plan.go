package pipeline

import (
	"fmt"
	"runtime"

	"github.com/skysim-labs/skysim/pkg/catalog"
	"github.com/skysim-labs/skysim/pkg/psf"
	"github.com/skysim-labs/skysim/pkg/simconfig"
)

// CheckpointSpec configures checkpointed resume for a run. A nil spec
// means checkpointing is disabled.
type CheckpointSpec struct {
	// FileName of the checkpoint document inside the output directory.
	FileName string

	// Every is the number of completed files between checkpoint writes.
	Every int
}

// Plan is everything the run harness needs, assembled from the resolved
// document by the selected modules.
type Plan struct {
	// Camera is the camera model name, e.g. LsstComCamSim.
	Camera string

	// OutputDir receives image manifests, checkpoints and the run
	// report.
	OutputDir string

	// FileNameFormat is the printf pattern for per-file names, fed the
	// file number.
	FileNameFormat string

	// NFiles output files are produced, numbered from FirstFile.
	NFiles    int
	FirstFile int

	// NProc is the worker count. -1 selects one worker per CPU.
	NProc int

	// Seed is the base random seed; per-file seeds derive from it.
	Seed int64

	// NObjects is the object count per file. Zero means use the
	// catalog count.
	NObjects int

	Checkpoint *CheckpointSpec
	PSF        *psf.Composition

	// Catalog supplies the objects to draw; may be nil when no catalog
	// module is selected.
	Catalog     catalog.Source
	CatalogName string

	// atmosphericInput is set by the atm_psf module when the
	// atmospheric screen input is configured.
	atmosphericInput bool

	Resolved *simconfig.Resolved
}

// EnableAtmosphere records that the atmospheric screen input is
// available, keeping AtmosphericPSF components in the composition.
func (p *Plan) EnableAtmosphere() {
	p.atmosphericInput = true
}

// Workers returns the effective worker count.
func (p *Plan) Workers() int {
	if p.NProc == -1 {
		return runtime.NumCPU()
	}
	return p.NProc
}

// ObjectsPerFile returns the effective object count per output file.
func (p *Plan) ObjectsPerFile() int {
	if p.NObjects > 0 {
		return p.NObjects
	}
	if p.Catalog != nil {
		return p.Catalog.NumObjects()
	}
	return 0
}

// BuildPlan instantiates each module named by the resolved document from
// the registry, in order, and lets it configure itself and contribute to
// the plan.
func BuildPlan(res *simconfig.Resolved, registry *Registry) (*Plan, error) {
	if len(res.Modules) == 0 {
		return nil, fmt.Errorf("no modules selected")
	}
	if registry == nil {
		registry = DefaultRegistry
	}

	plan := &Plan{Resolved: res}
	for _, name := range res.Modules {
		mod, err := registry.Get(name)
		if err != nil {
			return nil, err
		}
		if err := mod.Configure(res); err != nil {
			return nil, fmt.Errorf("module %s: %w", name, err)
		}
		if err := mod.Contribute(plan); err != nil {
			return nil, fmt.Errorf("module %s: %w", name, err)
		}
	}

	if err := plan.validate(); err != nil {
		return nil, err
	}

	// Without the atmospheric screen input the PSF cannot include
	// atmospheric components.
	if plan.PSF.HasAtmospheric() && !plan.atmosphericInput {
		plan.PSF = plan.PSF.DropAtmospheric()
	}

	return plan, nil
}

func (p *Plan) validate() error {
	if p.Camera == "" {
		return fmt.Errorf("output.camera is required")
	}
	if p.OutputDir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if p.NFiles < 1 {
		return fmt.Errorf("output.nfiles must be at least 1, got %d", p.NFiles)
	}
	if p.NProc == 0 || p.NProc < -1 {
		return fmt.Errorf("output.nproc must be positive or -1, got %d", p.NProc)
	}
	if p.FirstFile < 0 {
		return fmt.Errorf("output.first_file must not be negative, got %d", p.FirstFile)
	}
	if p.ObjectsPerFile() <= 0 {
		return fmt.Errorf("no objects to draw: set image.nobjects or select a catalog module")
	}
	if p.Checkpoint != nil {
		if p.Checkpoint.FileName == "" {
			return fmt.Errorf("output.checkpoint.file_name is required when checkpointing")
		}
		if p.Checkpoint.Every < 1 {
			return fmt.Errorf("output.checkpoint.every must be at least 1, got %d", p.Checkpoint.Every)
		}
	}
	return nil
}
