package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/simonhull/firebird-suite/weaver/pkg/filesystem"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Metadata file names, checked in this order.
var MetadataFiles = []string{"template.yml", "template.yaml", "template.json"}

// metadata mirrors the on-disk template description.
type metadata struct {
	Name              string   `yaml:"name" json:"name"`
	GroupIdentity     string   `yaml:"groupIdentity" json:"groupIdentity"`
	Type              string   `yaml:"type" json:"type"`
	ProjectTypes      []string `yaml:"projectTypes" json:"projectTypes"`
	Frameworks        []string `yaml:"frameworks" json:"frameworks"`
	BackendFrameworks []string `yaml:"backendFrameworks" json:"backendFrameworks"`
	Platform          string   `yaml:"platform" json:"platform"`
	Language          string   `yaml:"language" json:"language"`
	Hidden            bool     `yaml:"hidden" json:"hidden"`
	RightClickEnabled bool     `yaml:"rightClickEnabled" json:"rightClickEnabled"`
	Exclusive         bool     `yaml:"exclusive" json:"exclusive"`
	Group             string   `yaml:"group" json:"group"`
	Dependencies      []string `yaml:"dependencies" json:"dependencies"`
	CompositionFilter []string `yaml:"compositionFilter" json:"compositionFilter"`
	SourceName        string   `yaml:"sourceName" json:"sourceName"`
	DefaultName       string   `yaml:"defaultName" json:"defaultName"`
}

// Load reads every template below root. A template is a directory holding one
// of MetadataFiles; the other files in that directory are its fragments.
// Templates are ordered by a lexical walk of root, which defines catalog
// order.
func Load(root string) (*Memory, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog %s is not a directory", root)
	}

	var records []TemplateRecord
	var invalid ValidationErrors

	err = filesystem.Walk(root, filesystem.WalkOptions{}, func(path string, d fs.DirEntry) error {
		if !d.IsDir() {
			return nil
		}
		metaPath, ok := findMetadata(path)
		if !ok {
			return nil
		}

		rec, err := loadTemplate(path, metaPath)
		if err != nil {
			var verrs ValidationErrors
			if errors.As(err, &verrs) {
				invalid = append(invalid, verrs...)
				return filepath.SkipDir
			}
			return err
		}
		records = append(records, rec)
		return filepath.SkipDir
	})
	if err != nil {
		return nil, err
	}
	if len(invalid) > 0 {
		return nil, invalid
	}

	return NewMemory(records...)
}

func findMetadata(dir string) (string, bool) {
	for _, name := range MetadataFiles {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

func loadTemplate(dir, metaPath string) (TemplateRecord, error) {
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return TemplateRecord{}, fmt.Errorf("reading %s: %w", metaPath, err)
	}

	meta, err := decodeMetadata(metaPath, data)
	if err != nil {
		return TemplateRecord{}, err
	}

	files, err := filesystem.ReadFiles(dir, filesystem.WalkOptions{IgnorePatterns: MetadataFiles})
	if err != nil {
		return TemplateRecord{}, err
	}

	return meta.record(files)
}

// decodeMetadata parses YAML or JSONC metadata and validates it.
func decodeMetadata(path string, data []byte) (*metadata, error) {
	var doc map[string]any
	var meta metadata

	if filepath.Ext(path) == ".json" {
		data = jsonc.ToJSON(data)
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if err := validateMetadata(path, doc); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return &meta, nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if err := validateMetadata(path, doc); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &meta, nil
}

func (m *metadata) record(files []filesystem.File) (TemplateRecord, error) {
	typ, err := ParseTemplateType(m.Type)
	if err != nil {
		return TemplateRecord{}, err
	}

	rec := TemplateRecord{
		Name:                      m.Name,
		GroupIdentity:             m.GroupIdentity,
		Type:                      typ,
		ProjectTypes:              m.ProjectTypes,
		FrontEndFrameworks:        m.Frameworks,
		BackendFrameworks:         m.BackendFrameworks,
		Platform:                  m.Platform,
		Language:                  m.Language,
		IsHidden:                  m.Hidden,
		RightClickEnabled:         m.RightClickEnabled,
		IsGroupExclusiveSelection: m.Exclusive,
		Group:                     m.Group,
		Dependencies:              m.Dependencies,
		CompositionFilter:         m.CompositionFilter,
		SourceName:                m.SourceName,
		DefaultName:               m.DefaultName,
	}
	for _, f := range files {
		rec.Files = append(rec.Files, SourceFile{Path: f.Path, Content: f.Content})
	}
	return rec, nil
}
