package catalog

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Object is a single entry of a sky catalog. Galaxies may carry
// subcomponents (bulge, disk, knots); each subcomponent is rendered as a
// distinct object.
type Object struct {
	ID            int64    `yaml:"id"`
	Type          string   `yaml:"object_type"`
	RA            float64  `yaml:"ra"`
	Dec           float64  `yaml:"dec"`
	MagNorm       float64  `yaml:"mag_norm"`
	SED           string   `yaml:"sed,omitempty"`
	Subcomponents []string `yaml:"subcomponents,omitempty"`
	Shear1        float64  `yaml:"shear_1,omitempty"`
	Shear2        float64  `yaml:"shear_2,omitempty"`
	Convergence   float64  `yaml:"convergence,omitempty"`
}

// Region bounds the patch of sky a catalog covers, in degrees.
type Region struct {
	RAMin  float64 `yaml:"ra_min"`
	RAMax  float64 `yaml:"ra_max"`
	DecMin float64 `yaml:"dec_min"`
	DecMax float64 `yaml:"dec_max"`
}

// SkyCatalog is a YAML-backed listing of simulated astronomical objects.
type SkyCatalog struct {
	Name    string   `yaml:"catalog_name"`
	Region  Region   `yaml:"region,omitempty"`
	Objects []Object `yaml:"objects"`

	// index maps a renderable-object index to an (object, subcomponent)
	// pair. Objects without subcomponents contribute one entry with an
	// empty component name.
	index []indexEntry
}

type indexEntry struct {
	object    int
	component string
}

// OpenSkyCatalog reads a sky catalog, keeping only objects whose type is
// in objTypes. An empty objTypes keeps everything.
func OpenSkyCatalog(path string, objTypes []string) (*SkyCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sky catalog: %w", err)
	}
	return ParseSkyCatalog(data, objTypes)
}

// ParseSkyCatalog parses sky catalog YAML and builds the renderable
// object index.
func ParseSkyCatalog(data []byte, objTypes []string) (*SkyCatalog, error) {
	var cat SkyCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse sky catalog: %w", err)
	}
	if cat.Name == "" {
		return nil, fmt.Errorf("sky catalog missing catalog_name")
	}
	if len(cat.Objects) == 0 {
		return nil, fmt.Errorf("sky catalog %s lists no objects", cat.Name)
	}

	keep := map[string]bool{}
	for _, t := range objTypes {
		keep[t] = true
	}
	if len(keep) > 0 {
		filtered := cat.Objects[:0]
		for _, obj := range cat.Objects {
			if keep[obj.Type] {
				filtered = append(filtered, obj)
			}
		}
		cat.Objects = filtered
	}

	for i, obj := range cat.Objects {
		components := obj.Subcomponents
		if len(components) == 0 {
			components = []string{""}
		}
		for _, component := range components {
			cat.index = append(cat.index, indexEntry{object: i, component: component})
		}
	}

	return &cat, nil
}

// NumObjects returns the number of renderable objects, counting each
// galaxy subcomponent separately.
func (c *SkyCatalog) NumObjects() int {
	return len(c.index)
}

// At returns the catalog object and subcomponent name for a renderable
// object index.
func (c *SkyCatalog) At(i int) (*Object, string, error) {
	if i < 0 || i >= len(c.index) {
		return nil, "", fmt.Errorf("object index %d out of range [0,%d)", i, len(c.index))
	}
	entry := c.index[i]
	return &c.Objects[entry.object], entry.component, nil
}

// Lens returns the reduced shears and magnification derived from the
// object's shear and convergence values.
func (o *Object) Lens() (g1, g2, mu float64) {
	g1 = o.Shear1 / (1 - o.Convergence)
	g2 = o.Shear2 / (1 - o.Convergence)
	mu = 1 / ((1-o.Convergence)*(1-o.Convergence) - (o.Shear1*o.Shear1 + o.Shear2*o.Shear2))
	return g1, g2, mu
}

// Flux converts the object's normalization magnitude to a relative flux.
// The constant is 0.4*ln(10).
func (o *Object) Flux() float64 {
	return math.Exp(-0.9210340371976184 * o.MagNorm)
}
