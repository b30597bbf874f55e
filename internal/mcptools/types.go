package mcptools

import "github.com/simonhull/firebird-suite/weaver/internal/selection"

// CriteriaInput names the axes a request is made for.
type CriteriaInput struct {
	ProjectType      string `json:"projectType,omitempty" jsonschema:"project type such as Blank or SplitView"`
	Framework        string `json:"framework,omitempty" jsonschema:"front-end framework such as MVVMBasic or Prism"`
	BackendFramework string `json:"backendFramework,omitempty" jsonschema:"back-end framework, if the catalog uses one"`
	Platform         string `json:"platform,omitempty" jsonschema:"target platform such as Uwp or WinUI"`
	Language         string `json:"language,omitempty" jsonschema:"programming language such as C# or VisualBasic"`
}

func (c CriteriaInput) criteria() selection.Criteria {
	return selection.Criteria{
		ProjectType:      c.ProjectType,
		Framework:        c.Framework,
		BackendFramework: c.BackendFramework,
		Platform:         c.Platform,
		Language:         c.Language,
	}
}

// ListTemplatesInput filters list_templates.
type ListTemplatesInput struct {
	Criteria       CriteriaInput `json:"criteria" jsonschema:"axes to filter by; empty fields match everything"`
	Type           string        `json:"type,omitempty" jsonschema:"template type: project, page, feature, service, composition or other"`
	IncludeHidden  bool          `json:"includeHidden,omitempty" jsonschema:"include hidden templates that are only pulled in as dependencies"`
	RightClickOnly bool          `json:"rightClickOnly,omitempty" jsonschema:"only templates that can be added to an existing project"`
}

// TemplateInfo describes one catalog template.
type TemplateInfo struct {
	Name          string   `json:"name"`
	GroupIdentity string   `json:"groupIdentity,omitempty"`
	Type          string   `json:"type"`
	Platform      string   `json:"platform,omitempty"`
	Language      string   `json:"language,omitempty"`
	Hidden        bool     `json:"hidden,omitempty"`
	RightClick    bool     `json:"rightClick,omitempty"`
	Group         string   `json:"group,omitempty"`
	Dependencies  []string `json:"dependencies,omitempty"`
	DefaultName   string   `json:"defaultName,omitempty"`
}

// ListTemplatesOutput is the list_templates result.
type ListTemplatesOutput struct {
	Templates []TemplateInfo `json:"templates"`
	Total     int            `json:"total"`
}

// PlanProjectInput describes a project to plan without writing it.
type PlanProjectInput struct {
	Criteria    CriteriaInput `json:"criteria" jsonschema:"axes the project is generated for"`
	ProjectName string        `json:"projectName,omitempty" jsonschema:"project name used for parameter substitution (default App)"`
	Items       []string      `json:"items,omitempty" jsonschema:"template names to add to the project"`
	Compose     bool          `json:"compose,omitempty" jsonschema:"add compositions whose filters are met"`
}

// FailedFile is a file that could not be assembled.
type FailedFile struct {
	Path     string `json:"path"`
	Template string `json:"template"`
	Error    string `json:"error"`
}

// DroppedTemplate is an exclusive-group member removed from the plan.
type DroppedTemplate struct {
	Group   string `json:"group"`
	Kept    string `json:"kept"`
	Dropped string `json:"dropped"`
}

// PlanProjectOutput is the plan_project result.
type PlanProjectOutput struct {
	Plan        []string          `json:"plan"`
	Files       []string          `json:"files"`
	Failed      []FailedFile      `json:"failed,omitempty"`
	Dropped     []DroppedTemplate `json:"dropped,omitempty"`
	Conflicts   []string          `json:"conflicts,omitempty"`
	Diagnostics []string          `json:"diagnostics,omitempty"`
	Digest      string            `json:"digest"`
	Succeeded   bool              `json:"succeeded"`
}

// ItemInput is a template to add, with an optional item name.
type ItemInput struct {
	Template string `json:"template" jsonschema:"template name"`
	Name     string `json:"name,omitempty" jsonschema:"item name; defaults to the template's default name"`
}

// GenerateProjectInput describes a project to write to disk.
type GenerateProjectInput struct {
	Criteria     CriteriaInput `json:"criteria" jsonschema:"axes the project is generated for"`
	ProjectName  string        `json:"projectName" jsonschema:"project name, also the directory created under destination"`
	Destination  string        `json:"destination" jsonschema:"absolute path of the parent directory"`
	Items        []ItemInput   `json:"items,omitempty" jsonschema:"pages and features to include"`
	Compose      bool          `json:"compose,omitempty" jsonschema:"add compositions whose filters are met"`
	StripAnchors bool          `json:"stripAnchors,omitempty" jsonschema:"remove anchor lines from the output"`
	DryRun       bool          `json:"dryRun,omitempty" jsonschema:"assemble but write nothing"`
}

// GenerateProjectOutput is the generate_project result.
type GenerateProjectOutput struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Files  []string `json:"files"`
	Digest string   `json:"digest"`
}
