// Package imsim is the core pipeline module: it reads the output and
// image sections of a resolved document and plans file production.
package imsim

import (
	"fmt"
	"time"

	"github.com/skysim-labs/skysim/pkg/logger"
	"github.com/skysim-labs/skysim/pkg/pipeline"
	"github.com/skysim-labs/skysim/pkg/psf"
	"github.com/skysim-labs/skysim/pkg/simconfig"
)

// Module plans output file production, seeding and the PSF composition.
type Module struct {
	camera     string
	outputDir  string
	fileFormat string
	nfiles     int
	firstFile  int
	nproc      int
	nobjects   int
	seed       int64
	checkpoint *pipeline.CheckpointSpec
	comp       *psf.Composition
}

// New creates the module.
func New() pipeline.Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string { return "imsim" }

// Description returns a brief description of what the module does.
func (m *Module) Description() string {
	return "Core output, image and PSF planning for imSim-style runs"
}

// Configure reads the output.*, image.* and psf sections.
func (m *Module) Configure(res *simconfig.Resolved) error {
	doc := res.Doc

	camera, err := doc.GetString("output.camera")
	if err != nil {
		return fmt.Errorf("output.camera is required: %w", err)
	}
	m.camera = camera

	if m.outputDir, err = doc.StringOr("output.dir", "output"); err != nil {
		return err
	}
	m.outputDir = res.Source.ResolvePath(m.outputDir)

	if m.fileFormat, err = doc.StringOr("output.file_name.format", "eimage_%05d.fits"); err != nil {
		return err
	}
	if m.nfiles, err = doc.IntOr("output.nfiles", 1); err != nil {
		return err
	}
	if m.firstFile, err = doc.IntOr("output.first_file", 1); err != nil {
		return err
	}
	if m.nproc, err = doc.IntOr("output.nproc", 1); err != nil {
		return err
	}
	if m.nobjects, err = doc.IntOr("image.nobjects", 0); err != nil {
		return err
	}

	seed, err := doc.IntOr("image.random_seed", 0)
	if err != nil {
		return err
	}
	if seed == 0 {
		// Like the external tool, an unseeded run takes its seed from
		// the clock.
		m.seed = time.Now().UnixNano()
	} else {
		m.seed = int64(seed)
	}

	if doc.Has("output.checkpoint") {
		fileName, err := doc.StringOr("output.checkpoint.file_name", "checkpoint.yaml")
		if err != nil {
			return err
		}
		every, err := doc.IntOr("output.checkpoint.every", 1)
		if err != nil {
			return err
		}
		m.checkpoint = &pipeline.CheckpointSpec{FileName: fileName, Every: every}
	}

	if m.comp, err = psf.Parse(doc); err != nil {
		return err
	}
	return nil
}

// Contribute fills the plan's output, seeding and PSF fields.
func (m *Module) Contribute(plan *pipeline.Plan) error {
	plan.Camera = m.camera
	plan.OutputDir = m.outputDir
	plan.FileNameFormat = m.fileFormat
	plan.NFiles = m.nfiles
	plan.FirstFile = m.firstFile
	plan.NProc = m.nproc
	plan.NObjects = m.nobjects
	plan.Seed = m.seed
	plan.Checkpoint = m.checkpoint
	plan.PSF = m.comp
	return nil
}

// init registers the module.
func init() {
	if err := pipeline.DefaultRegistry.Register("imsim", New); err != nil {
		logger.Errorf("Failed to register module: %v", err)
	}
}
