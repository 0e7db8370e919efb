package psf

import (
	"fmt"
	"math"

	"github.com/skysim-labs/skysim/pkg/simconfig"
)

// Component types understood by the composition parser.
const (
	TypeConvolve    = "Convolve"
	TypeAtmospheric = "AtmosphericPSF"
	TypeOptical     = "OpticalPSF"
	TypeGaussian    = "Gaussian"
	TypeKolmogorov  = "Kolmogorov"
	TypeMoffat      = "Moffat"
)

// Component is a single PSF profile inside a composition.
type Component struct {
	Type string

	// FWHM in arcseconds for profiles that specify one directly
	// (Kolmogorov, Moffat, AtmosphericPSF).
	FWHM float64

	// Sigma in arcseconds for Gaussian profiles.
	Sigma float64

	// Beta is the Moffat shape parameter.
	Beta float64

	// Params holds remaining component parameters verbatim, e.g.
	// screen_size and screen_scale for the atmospheric model.
	Params map[string]any
}

// Composition is the PSF model applied to every simulated object: either
// a single profile or a convolution of several.
type Composition struct {
	Type       string
	Components []Component
}

// Parse builds a Composition from the "psf" section of a resolved
// document. A missing section yields a nil composition, which the run
// planner treats as no PSF convolution.
func Parse(doc simconfig.Document) (*Composition, error) {
	section, ok := doc.Get("psf")
	if !ok {
		return nil, nil
	}
	m, ok := section.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("psf: expected mapping, got %T", section)
	}

	typ, _ := m["type"].(string)
	if typ == "" {
		return nil, fmt.Errorf("psf.type is required")
	}

	if typ != TypeConvolve {
		component, err := parseComponent(m, "psf")
		if err != nil {
			return nil, err
		}
		return &Composition{Type: typ, Components: []Component{*component}}, nil
	}

	items, ok := m["items"].([]any)
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("psf.items must be a non-empty list for Convolve")
	}

	comp := &Composition{Type: TypeConvolve}
	for i, item := range items {
		cm, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("psf.items[%d]: expected mapping, got %T", i, item)
		}
		component, err := parseComponent(cm, fmt.Sprintf("psf.items[%d]", i))
		if err != nil {
			return nil, err
		}
		comp.Components = append(comp.Components, *component)
	}
	return comp, nil
}

func parseComponent(m map[string]any, where string) (*Component, error) {
	typ, _ := m["type"].(string)
	switch typ {
	case TypeAtmospheric, TypeOptical, TypeGaussian, TypeKolmogorov, TypeMoffat:
	case "":
		return nil, fmt.Errorf("%s: type is required", where)
	default:
		return nil, fmt.Errorf("%s: unknown PSF type %q", where, typ)
	}

	c := &Component{Type: typ, Params: map[string]any{}}
	for key, value := range m {
		switch key {
		case "type":
		case "fwhm":
			f, err := asFloat(value)
			if err != nil {
				return nil, fmt.Errorf("%s.fwhm: %w", where, err)
			}
			c.FWHM = f
		case "sigma":
			f, err := asFloat(value)
			if err != nil {
				return nil, fmt.Errorf("%s.sigma: %w", where, err)
			}
			c.Sigma = f
		case "beta":
			f, err := asFloat(value)
			if err != nil {
				return nil, fmt.Errorf("%s.beta: %w", where, err)
			}
			c.Beta = f
		default:
			c.Params[key] = value
		}
	}

	switch typ {
	case TypeGaussian:
		if c.Sigma <= 0 && c.FWHM <= 0 {
			return nil, fmt.Errorf("%s: Gaussian requires sigma or fwhm", where)
		}
	case TypeKolmogorov, TypeMoffat:
		if c.FWHM <= 0 {
			return nil, fmt.Errorf("%s: %s requires fwhm", where, typ)
		}
	}
	if typ == TypeMoffat && c.Beta <= 0 {
		return nil, fmt.Errorf("%s: Moffat requires beta", where)
	}
	return c, nil
}

// DropAtmospheric returns a copy of the composition without atmospheric
// components, used when the atm_psf input has been disabled. Returns nil
// if nothing remains.
func (c *Composition) DropAtmospheric() *Composition {
	if c == nil {
		return nil
	}
	out := &Composition{Type: c.Type}
	for _, component := range c.Components {
		if component.Type == TypeAtmospheric {
			continue
		}
		out.Components = append(out.Components, component)
	}
	if len(out.Components) == 0 {
		return nil
	}
	if len(out.Components) == 1 {
		out.Type = out.Components[0].Type
	}
	return out
}

// EffectiveFWHM combines the component widths in quadrature to give a
// single seeing estimate for reports. Gaussian sigma converts with the
// usual 2*sqrt(2*ln 2) factor.
func (c *Composition) EffectiveFWHM() float64 {
	if c == nil {
		return 0
	}
	var sum float64
	for _, component := range c.Components {
		fwhm := component.FWHM
		if fwhm == 0 && component.Sigma > 0 {
			fwhm = component.Sigma * 2 * math.Sqrt(2*math.Ln2)
		}
		sum += fwhm * fwhm
	}
	return math.Sqrt(sum)
}

// HasAtmospheric reports whether any component models the atmosphere.
func (c *Composition) HasAtmospheric() bool {
	if c == nil {
		return false
	}
	for _, component := range c.Components {
		if component.Type == TypeAtmospheric {
			return true
		}
	}
	return false
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
