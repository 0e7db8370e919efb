package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/skysim-labs/skysim/pkg/simconfig"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Index holds discovered templates by name. It implements
// simconfig.TemplateSource.
type Index struct {
	mu     sync.RWMutex
	byName map[string]*Info
}

// NewIndex creates an empty template index.
func NewIndex() *Index {
	return &Index{byName: map[string]*Info{}}
}

// Load builds an index from the embedded built-in templates plus any
// additional template directories. Directory templates override
// built-ins of the same name.
func Load(dirs []string) (*Index, error) {
	ix := NewIndex()
	if err := ix.addFS(builtinFS, "builtin"); err != nil {
		return nil, fmt.Errorf("failed to load built-in templates: %w", err)
	}
	for _, dir := range dirs {
		if err := ix.AddDir(dir); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

// Add registers a template, replacing any previous template of the same
// name.
func (ix *Index) Add(info *Info) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.byName[info.Name] = info
}

// AddDir walks dir for *.yaml template documents and registers each one.
func (ix *Index) AddDir(dir string) error {
	err := filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() || !isYAML(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", path, err)
		}
		info, err := ParseTemplate(data, path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		ix.Add(info)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan template directory %s: %w", dir, err)
	}
	return nil
}

func (ix *Index) addFS(fsys fs.FS, root string) error {
	return fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		info, err := ParseTemplate(data, "builtin:"+filepath.Base(path))
		if err != nil {
			return err
		}
		ix.Add(info)
		return nil
	})
}

// Get returns the template descriptor for name.
func (ix *Index) Get(name string) (*Info, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	info, ok := ix.byName[name]
	if !ok {
		return nil, fmt.Errorf("template %s not found", name)
	}
	return info, nil
}

// Template returns the configuration document for a template name,
// satisfying simconfig.TemplateSource.
func (ix *Index) Template(name string) (*simconfig.Config, error) {
	info, err := ix.Get(name)
	if err != nil {
		return nil, err
	}
	return info.Config, nil
}

// List returns all templates sorted by name.
func (ix *Index) List() []*Info {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]*Info, 0, len(ix.byName))
	for _, info := range ix.byName {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Parameters collects the parameters declared along a config's template
// chain, outermost template first. Parameters redeclared deeper in the
// chain are kept once.
func (ix *Index) Parameters(cfg *simconfig.Config) ([]Parameter, error) {
	var params []Parameter
	seen := map[string]bool{}
	visited := map[string]bool{}

	name := cfg.Template
	for name != "" {
		if visited[name] {
			return nil, fmt.Errorf("template cycle detected at %q", name)
		}
		visited[name] = true

		info, err := ix.Get(name)
		if err != nil {
			return nil, err
		}
		for _, p := range info.Parameters {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			params = append(params, p)
		}
		name = info.Config.Template
	}
	return params, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
