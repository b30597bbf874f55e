// Package catalog holds template records and the loaders that build them.
//
// A record describes one template: the axes it applies to, its dependencies,
// its exclusive-selection group and the fragment files it contributes. The
// slice returned by Catalog.GetAll defines the catalog order that every
// downstream stage uses for tie-breaking.
package catalog

import (
	"fmt"
	"strings"
)

// Universal marks an axis list that applies to every value.
const Universal = "all"

// TemplateType classifies a record and drives planner tiers.
type TemplateType int

const (
	TypeProject TemplateType = iota
	TypePage
	TypeFeature
	TypeService
	TypeComposition
	TypeOther
)

var typeNames = map[TemplateType]string{
	TypeProject:     "project",
	TypePage:        "page",
	TypeFeature:     "feature",
	TypeService:     "service",
	TypeComposition: "composition",
	TypeOther:       "other",
}

// String returns the lower-case type name used in template metadata.
func (t TemplateType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TemplateType(%d)", int(t))
}

// ParseTemplateType parses a type name case-insensitively.
func ParseTemplateType(s string) (TemplateType, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == want {
			return t, nil
		}
	}
	return TypeOther, fmt.Errorf("unknown template type %q", s)
}

// SourceFile is one fragment file of a template. Path is slash-separated and
// relative to the generated project root.
type SourceFile struct {
	Path    string
	Content []byte
}

// TemplateRecord is the catalog entry for one template. Records are treated
// as read-only once handed out by a Catalog.
type TemplateRecord struct {
	Name                      string // unique template id
	GroupIdentity             string // stable across language/framework variants
	Type                      TemplateType
	ProjectTypes              []string
	FrontEndFrameworks        []string
	BackendFrameworks         []string
	Platform                  string
	Language                  string
	IsHidden                  bool
	RightClickEnabled         bool
	IsGroupExclusiveSelection bool
	Group                     string
	Dependencies              []string // template ids: a Name or a GroupIdentity
	CompositionFilter         []string // ids that must all be present for a composition to apply
	SourceName                string   // token replaced by the item name in paths and content
	DefaultName               string
	Files                     []SourceFile
}

// Identity returns the group identity, falling back to the name.
func (r TemplateRecord) Identity() string {
	if r.GroupIdentity != "" {
		return r.GroupIdentity
	}
	return r.Name
}

// Answers reports whether id names this record, either directly or through
// its group identity.
func (r TemplateRecord) Answers(id string) bool {
	return id == r.Name || (r.GroupIdentity != "" && id == r.GroupIdentity)
}

// AppliesTo reports whether an axis list covers value. An empty list or one
// containing "all" is universal.
func AppliesTo(list []string, value string) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if strings.EqualFold(v, Universal) || strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}
