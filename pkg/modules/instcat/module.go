// Package instcat supplies objects from a flat-file instance catalog
// referenced by the input.instance_catalog section.
package instcat

import (
	"fmt"

	"github.com/skysim-labs/skysim/pkg/catalog"
	"github.com/skysim-labs/skysim/pkg/logger"
	"github.com/skysim-labs/skysim/pkg/pipeline"
	"github.com/skysim-labs/skysim/pkg/simconfig"
)

// Module loads an instance catalog and contributes it as the object
// source.
type Module struct {
	cat  *catalog.InstanceCatalog
	name string
}

// New creates the module.
func New() pipeline.Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string { return "instcat" }

// Description returns a brief description of what the module does.
func (m *Module) Description() string {
	return "Instance-catalog object input (input.instance_catalog)"
}

// Configure opens the catalog named by input.instance_catalog.file_name.
func (m *Module) Configure(res *simconfig.Resolved) error {
	doc := res.Doc
	if !doc.Has("input.instance_catalog") {
		return fmt.Errorf("input.instance_catalog section is required")
	}

	fileName, err := doc.GetString("input.instance_catalog.file_name")
	if err != nil {
		return fmt.Errorf("input.instance_catalog.file_name is required: %w", err)
	}
	objTypes, err := doc.StringsAt("input.instance_catalog.obj_types")
	if err != nil {
		return err
	}

	path := res.Source.ResolvePath(fileName)
	m.cat, err = catalog.OpenInstanceCatalog(path, objTypes)
	if err != nil {
		return err
	}
	m.name = path

	if id, ok := m.cat.Header["obshistid"]; ok {
		m.name = "instcat_" + id
	}
	logger.Infof("Loaded instance catalog %s: %d objects", m.name, m.cat.NumObjects())
	return nil
}

// Contribute sets the catalog as the plan's object source.
func (m *Module) Contribute(plan *pipeline.Plan) error {
	plan.Catalog = m.cat
	plan.CatalogName = m.name
	return nil
}

// init registers the module.
func init() {
	if err := pipeline.DefaultRegistry.Register("instcat", New); err != nil {
		logger.Errorf("Failed to register module: %v", err)
	}
}
