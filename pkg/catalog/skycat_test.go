package catalog

import (
	"math"
	"testing"
)

var skycatData = []byte(`
catalog_name: sky_cat_test
region:
  ra_min: 53.9
  ra_max: 54.2
  dec_min: -27.2
  dec_max: -27.0
objects:
  - id: 1001
    object_type: star
    ra: 54.031
    dec: -27.112
    mag_norm: 21.3
    sed: starSED/phoSimMLT/lte034.spec.gz
  - id: 1002
    object_type: galaxy
    ra: 54.052
    dec: -27.151
    mag_norm: 23.1
    subcomponents: [bulge, disk, knots]
    shear_1: 0.01
    shear_2: -0.004
    convergence: 0.002
  - id: 1003
    object_type: sn
    ra: 54.100
    dec: -27.090
    mag_norm: 22.0
`)

func TestParseSkyCatalog(t *testing.T) {
	cat, err := ParseSkyCatalog(skycatData, nil)
	if err != nil {
		t.Fatalf("ParseSkyCatalog failed: %v", err)
	}

	if cat.Name != "sky_cat_test" {
		t.Errorf("Expected catalog name 'sky_cat_test', got %q", cat.Name)
	}
	// 1 star + 3 galaxy subcomponents + 1 sn.
	if cat.NumObjects() != 5 {
		t.Errorf("Expected 5 renderable objects, got %d", cat.NumObjects())
	}

	obj, component, err := cat.At(2)
	if err != nil {
		t.Fatalf("At failed: %v", err)
	}
	if obj.ID != 1002 || component != "disk" {
		t.Errorf("Expected galaxy 1002 disk, got %d %q", obj.ID, component)
	}

	if _, _, err := cat.At(5); err == nil {
		t.Error("Expected out-of-range error")
	}
}

func TestSkyCatalogTypeFilter(t *testing.T) {
	cat, err := ParseSkyCatalog(skycatData, []string{"galaxy", "star"})
	if err != nil {
		t.Fatalf("ParseSkyCatalog failed: %v", err)
	}
	// The sn entry is filtered out.
	if cat.NumObjects() != 4 {
		t.Errorf("Expected 4 renderable objects, got %d", cat.NumObjects())
	}
	for i := 0; i < cat.NumObjects(); i++ {
		obj, _, err := cat.At(i)
		if err != nil {
			t.Fatalf("At(%d) failed: %v", i, err)
		}
		if obj.Type != "galaxy" && obj.Type != "star" {
			t.Errorf("Object %d has filtered type %q", obj.ID, obj.Type)
		}
	}
}

func TestSkyCatalogErrors(t *testing.T) {
	if _, err := ParseSkyCatalog([]byte("objects: []\n"), nil); err == nil {
		t.Error("Expected error for missing catalog_name")
	}
	if _, err := ParseSkyCatalog([]byte("catalog_name: empty\n"), nil); err == nil {
		t.Error("Expected error for empty object list")
	}
	if _, err := ParseSkyCatalog([]byte(":\tnot yaml"), nil); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestObjectLens(t *testing.T) {
	obj := &Object{Shear1: 0.01, Shear2: -0.004, Convergence: 0.002}

	g1, g2, mu := obj.Lens()
	if math.Abs(g1-0.01/0.998) > 1e-12 {
		t.Errorf("Unexpected g1: %v", g1)
	}
	if math.Abs(g2-(-0.004/0.998)) > 1e-12 {
		t.Errorf("Unexpected g2: %v", g2)
	}
	wantMu := 1 / (0.998*0.998 - (0.01*0.01 + 0.004*0.004))
	if math.Abs(mu-wantMu) > 1e-12 {
		t.Errorf("Unexpected mu: %v", mu)
	}
}

func TestObjectFlux(t *testing.T) {
	obj := &Object{MagNorm: 0}
	if math.Abs(obj.Flux()-1) > 1e-12 {
		t.Errorf("Expected flux 1 at magnorm 0, got %v", obj.Flux())
	}

	obj.MagNorm = 2.5
	if math.Abs(obj.Flux()-0.1) > 1e-9 {
		t.Errorf("Expected flux 0.1 at magnorm 2.5, got %v", obj.Flux())
	}
}
