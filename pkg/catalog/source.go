package catalog

// Source is a catalog the run harness can draw objects from. Both sky
// and instance catalogs implement it.
type Source interface {
	// NumObjects returns the number of renderable objects.
	NumObjects() int

	// At returns the object and subcomponent name at index i.
	At(i int) (*Object, string, error)
}
