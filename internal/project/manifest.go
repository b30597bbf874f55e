// Package project reads and writes the weaver.yml manifest that records how a
// generated project was made, so items can be added to it later.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/simonhull/firebird-suite/weaver/internal/selection"
	"gopkg.in/yaml.v3"
)

// ManifestName is the manifest file at a project root.
const ManifestName = "weaver.yml"

// ErrNotProject is returned when a directory has no manifest.
var ErrNotProject = errors.New("not a weaver project")

// Installed is one template applied to the project. Item is the item name it
// was generated with, empty for project-level templates.
type Installed struct {
	Template string `yaml:"template"`
	Item     string `yaml:"item,omitempty"`
}

// Manifest is the content of weaver.yml.
type Manifest struct {
	Name          string             `yaml:"name"`
	RootNamespace string             `yaml:"rootNamespace,omitempty"`
	Criteria      selection.Criteria `yaml:"criteria"`
	Templates     []Installed        `yaml:"templates"`
	WeaverVersion string             `yaml:"weaverVersion,omitempty"`

	root string
}

// New returns a manifest for a project rooted at root.
func New(root, name string, criteria selection.Criteria) *Manifest {
	return &Manifest{Name: name, Criteria: criteria, root: root}
}

// Root returns the project directory.
func (m *Manifest) Root() string {
	return m.root
}

// Path returns the manifest file path.
func (m *Manifest) Path() string {
	return filepath.Join(m.root, ManifestName)
}

// IsProject reports whether root holds a manifest.
func IsProject(root string) bool {
	_, err := os.Stat(filepath.Join(root, ManifestName))
	return err == nil
}

// Detect walks up from dir to the nearest directory holding a manifest.
func Detect(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for d := abs; ; d = filepath.Dir(d) {
		if IsProject(d) {
			return Load(d)
		}
		if d == filepath.Dir(d) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNotProject)
		}
	}
}

// Load reads the manifest at root.
func Load(root string) (*Manifest, error) {
	path := filepath.Join(root, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", root, ErrNotProject)
		}
		return nil, fmt.Errorf("failed to read %s: %w", ManifestName, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestName, err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("%s: missing project name", path)
	}
	m.root = root
	return &m, nil
}

// Encode renders the manifest as YAML.
func (m *Manifest) Encode() ([]byte, error) {
	return yaml.Marshal(m)
}

// Save writes the manifest to its root.
func (m *Manifest) Save() error {
	data, err := m.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ManifestName, err)
	}
	if err := os.WriteFile(m.Path(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ManifestName, err)
	}
	return nil
}

// AddTemplates records installed templates, ignoring exact repeats. The list
// stays sorted so the file diffs cleanly.
func (m *Manifest) AddTemplates(items ...Installed) {
	seen := make(map[Installed]bool, len(m.Templates))
	for _, t := range m.Templates {
		seen[t] = true
	}
	for _, t := range items {
		if !seen[t] {
			seen[t] = true
			m.Templates = append(m.Templates, t)
		}
	}
	sort.Slice(m.Templates, func(i, j int) bool {
		if m.Templates[i].Template != m.Templates[j].Template {
			return m.Templates[i].Template < m.Templates[j].Template
		}
		return m.Templates[i].Item < m.Templates[j].Item
	})
}

// InstalledNames returns the distinct template names, sorted.
func (m *Manifest) InstalledNames() []string {
	var out []string
	for i, t := range m.Templates {
		if i == 0 || t.Template != m.Templates[i-1].Template {
			out = append(out, t.Template)
		}
	}
	return out
}

// ItemNames returns every item name already used in the project.
func (m *Manifest) ItemNames() []string {
	var out []string
	for _, t := range m.Templates {
		if t.Item != "" {
			out = append(out, t.Item)
		}
	}
	return out
}
