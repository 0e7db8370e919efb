// Package skycat supplies objects from a sky catalog referenced by the
// input.sky_catalog section.
package skycat

import (
	"context"
	"fmt"
	"time"

	"github.com/skysim-labs/skysim/pkg/catalog"
	"github.com/skysim-labs/skysim/pkg/dataservice"
	"github.com/skysim-labs/skysim/pkg/logger"
	"github.com/skysim-labs/skysim/pkg/pipeline"
	"github.com/skysim-labs/skysim/pkg/simconfig"
)

const fetchTimeout = 60 * time.Second

// Module loads a sky catalog and contributes it as the object source.
type Module struct {
	cat *catalog.SkyCatalog
}

// New creates the module.
func New() pipeline.Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string { return "skycat" }

// Description returns a brief description of what the module does.
func (m *Module) Description() string {
	return "Sky-catalog object input (input.sky_catalog)"
}

// Configure opens the catalog named by input.sky_catalog.file_name,
// filtered to input.sky_catalog.obj_types. Remote https catalogs are
// fetched through the data service client.
func (m *Module) Configure(res *simconfig.Resolved) error {
	doc := res.Doc
	if !doc.Has("input.sky_catalog") {
		return fmt.Errorf("input.sky_catalog section is required")
	}

	fileName, err := doc.GetString("input.sky_catalog.file_name")
	if err != nil {
		return fmt.Errorf("input.sky_catalog.file_name is required: %w", err)
	}

	objTypes, err := doc.StringsAt("input.sky_catalog.obj_types")
	if err != nil {
		return err
	}
	if _, err := doc.BoolOr("input.sky_catalog.flip_g2", true); err != nil {
		return err
	}
	if doc.Has("input.sky_catalog.edge_pix") {
		edgePix, err := doc.GetFloat("input.sky_catalog.edge_pix")
		if err != nil {
			return fmt.Errorf("input.sky_catalog.edge_pix: %w", err)
		}
		if edgePix < 0 {
			return fmt.Errorf("input.sky_catalog.edge_pix must not be negative, got %v", edgePix)
		}
	}

	if dataservice.IsRemote(fileName) {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		logger.Progressf("Fetching sky catalog %s", fileName)
		data, err := dataservice.FetchURL(ctx, fileName, dataservice.APIKeyFromEnv())
		if err != nil {
			return fmt.Errorf("failed to fetch sky catalog: %w", err)
		}
		m.cat, err = catalog.ParseSkyCatalog(data, objTypes)
		if err != nil {
			return err
		}
	} else {
		path := res.Source.ResolvePath(fileName)
		m.cat, err = catalog.OpenSkyCatalog(path, objTypes)
		if err != nil {
			return err
		}
	}

	logger.Infof("Loaded sky catalog %s: %d renderable objects", m.cat.Name, m.cat.NumObjects())
	return nil
}

// Contribute sets the catalog as the plan's object source.
func (m *Module) Contribute(plan *pipeline.Plan) error {
	plan.Catalog = m.cat
	plan.CatalogName = m.cat.Name
	return nil
}

// init registers the module.
func init() {
	if err := pipeline.DefaultRegistry.Register("skycat", New); err != nil {
		logger.Errorf("Failed to register module: %v", err)
	}
}
