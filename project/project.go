// Package project finds the Oberon modules of a source tree and orders
// them by their imports.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/obc/oberon"
)

var log = commonlog.GetLogger("obc.project")

// Project is a directory of Oberon sources.
type Project struct {
	RootDir string
	Config  Config
	// Files are the matched sources, slash-separated, relative to RootDir
	// and sorted.
	Files []string
}

// Module is what the rest of a project needs to know about one parsed
// source file.
type Module struct {
	Name    string
	Path    string
	Imports []string
}

// Load opens the project in the current directory.
func Load() (*Project, error) {
	return LoadFrom(".")
}

// LoadFrom opens the project rooted at rootDir, reading its config file if
// there is one.
func LoadFrom(rootDir string) (*Project, error) {
	cfg := DefaultConfig()
	if path := FindConfig(rootDir); path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
		log.Debugf("using config %s", path)
	}
	return Open(rootDir, cfg)
}

// Open discovers the sources under rootDir selected by cfg.
func Open(rootDir string, cfg Config) (*Project, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Project{RootDir: rootDir, Config: cfg}

	fsys := os.DirFS(rootDir)
	seen := make(map[string]bool)
	for _, pattern := range cfg.Sources {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || p.excluded(m) {
				continue
			}
			seen[m] = true
			p.Files = append(p.Files, m)
		}
	}
	slices.Sort(p.Files)

	log.Infof("found %d source files under %s", len(p.Files), rootDir)
	return p, nil
}

func (p *Project) excluded(path string) bool {
	for _, pattern := range p.Config.Exclude {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// Abs returns the file system path of a project file.
func (p *Project) Abs(file string) string {
	return filepath.Join(p.RootDir, filepath.FromSlash(file))
}

// Frontend returns a front end honouring the project's max_depth.
func (p *Project) Frontend() (*oberon.Frontend, error) {
	if p.Config.MaxDepth == 0 {
		return oberon.Default(), nil
	}
	return oberon.New(oberon.Options{MaxDepth: p.Config.MaxDepth})
}

// NewModule describes the parsed module mod found at path.
func NewModule(path string, mod *oberon.Module) *Module {
	m := &Module{Name: mod.Name(), Path: path}
	if mod.Imports != nil {
		for _, imp := range mod.Imports.Imports {
			m.Imports = append(m.Imports, imp.Module)
		}
	}
	return m
}

// InOrder returns modules sorted in dependency order (imports first).
// Imports of modules outside the list are ignored. If the imports form a
// cycle the original order is returned.
func InOrder(modules []*Module) []*Module {
	byName := make(map[string]*Module)
	for _, m := range modules {
		byName[m.Name] = m
	}

	// Kahn's algorithm
	inDegree := make(map[string]int)
	for _, m := range modules {
		for _, dep := range m.Imports {
			if byName[dep] != nil {
				inDegree[m.Name]++
			}
		}
	}

	var queue []string
	for _, m := range modules {
		if inDegree[m.Name] == 0 {
			queue = append(queue, m.Name)
		}
	}

	var result []*Module
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		result = append(result, byName[name])

		for _, m := range modules {
			for _, dep := range m.Imports {
				if dep == name {
					inDegree[m.Name]--
					if inDegree[m.Name] == 0 {
						queue = append(queue, m.Name)
					}
				}
			}
		}
	}

	if len(result) != len(modules) {
		return modules
	}
	return result
}
