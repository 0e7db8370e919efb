package catalog

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// InstanceCatalog is a flat-file listing of simulated objects. The file
// starts with header keyword lines followed by one "object" record per
// source:
//
//	obshistid 9683
//	mjd 59580.14
//	object 9683001 54.031 -27.112 21.30 starSED/... point
//	object 9683002 54.052 -27.151 23.10 galaxySED/... sersic2d
type InstanceCatalog struct {
	Header  map[string]string
	Objects []Object
}

// Source-type tokens mapped to sky catalog object types.
var sourceTypes = map[string]string{
	"point":    "star",
	"sersic2d": "galaxy",
	"knots":    "galaxy",
}

// OpenInstanceCatalog reads and parses an instance catalog, keeping only
// objects whose derived type is in objTypes. Empty objTypes keeps all.
func OpenInstanceCatalog(path string, objTypes []string) (*InstanceCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open instance catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	keep := map[string]bool{}
	for _, t := range objTypes {
		keep[t] = true
	}

	cat := &InstanceCatalog{Header: map[string]string{}}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if fields[0] != "object" {
			if len(fields) >= 2 {
				cat.Header[fields[0]] = strings.Join(fields[1:], " ")
			}
			continue
		}

		obj, err := parseObjectRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if len(keep) > 0 && !keep[obj.Type] {
			continue
		}
		cat.Objects = append(cat.Objects, *obj)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read instance catalog: %w", err)
	}
	if len(cat.Objects) == 0 {
		return nil, fmt.Errorf("instance catalog %s lists no objects", path)
	}

	return cat, nil
}

func parseObjectRecord(fields []string) (*Object, error) {
	// object <id> <ra> <dec> <magnorm> <sed> [<source type> ...]
	if len(fields) < 6 {
		return nil, fmt.Errorf("object record has %d fields, want at least 6", len(fields))
	}

	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid object id %q: %w", fields[1], err)
	}
	ra, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ra %q: %w", fields[2], err)
	}
	dec, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid dec %q: %w", fields[3], err)
	}
	magNorm, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid magnorm %q: %w", fields[4], err)
	}

	obj := &Object{
		ID:      id,
		RA:      ra,
		Dec:     dec,
		MagNorm: magNorm,
		SED:     fields[5],
	}
	for _, token := range fields[6:] {
		if t, ok := sourceTypes[token]; ok {
			obj.Type = t
			break
		}
	}
	if obj.Type == "" {
		obj.Type = "star"
	}
	return obj, nil
}

// NumObjects returns the number of object records kept after filtering.
func (c *InstanceCatalog) NumObjects() int {
	return len(c.Objects)
}

// At returns the object at index i. Instance catalog records have no
// subcomponents, so the component name is always empty.
func (c *InstanceCatalog) At(i int) (*Object, string, error) {
	if i < 0 || i >= len(c.Objects) {
		return nil, "", fmt.Errorf("object index %d out of range [0,%d)", i, len(c.Objects))
	}
	return &c.Objects[i], "", nil
}
