package orchestrator

import (
	"bytes"
	"strings"

	"github.com/simonhull/firebird-suite/weaver/internal/assembly"
	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
	"github.com/simonhull/firebird-suite/weaver/pkg/generator"
)

// Parameter tokens replaced in fragment paths and text content.
const (
	ParamProjectName   = "Param_ProjectName"
	ParamRootNamespace = "Param_RootNamespace"
	ParamItemNamespace = "Param_ItemNamespace"
)

// TemplateSuffix marks fragments rendered with text/template before merging.
const TemplateSuffix = ".tmpl"

// TemplateData is the data passed to .tmpl fragments.
type TemplateData struct {
	ProjectName   string
	RootNamespace string
	ItemNamespace string
	ItemName      string
	Template      string
	Criteria      selection.Criteria
}

// renderer applies naming and parameters to fragments. It is built per
// generation and assigns item names lazily, in plan order.
type renderer struct {
	projectName   string
	rootNamespace string
	criteria      selection.Criteria
	names         NameProvider
	explicit      map[string]string
	assigned      map[string]string
	taken         []string
	tmpl          *generator.Renderer
}

func newRenderer(projectName, rootNamespace string, criteria selection.Criteria, names NameProvider, explicit map[string]string, taken []string, tmpl *generator.Renderer) *renderer {
	if names == nil {
		names = DefaultNames{}
	}
	return &renderer{
		projectName:   projectName,
		rootNamespace: rootNamespace,
		criteria:      criteria,
		names:         names,
		explicit:      explicit,
		assigned:      make(map[string]string),
		taken:         append([]string(nil), taken...),
		tmpl:          tmpl,
	}
}

// itemName returns the name a record is generated with. Project records use
// the project name; records without a SourceName have no item name.
func (r *renderer) itemName(rec catalog.TemplateRecord) string {
	if rec.Type == catalog.TypeProject {
		return r.projectName
	}
	if rec.SourceName == "" {
		return ""
	}
	if name, ok := r.assigned[rec.Name]; ok {
		return name
	}
	name, ok := r.explicit[rec.Name]
	if !ok || name == "" {
		name = r.names.ItemName(rec, r.taken)
	}
	r.assigned[rec.Name] = name
	r.taken = append(r.taken, name)
	return name
}

func (r *renderer) replacer(rec catalog.TemplateRecord, item string) *strings.Replacer {
	pairs := []string{
		ParamProjectName, r.projectName,
		ParamRootNamespace, r.rootNamespace,
		ParamItemNamespace, r.rootNamespace,
	}
	if rec.SourceName != "" && item != "" {
		pairs = append(pairs, rec.SourceName, item)
	}
	return strings.NewReplacer(pairs...)
}

// Render implements assembly.RenderFunc.
func (r *renderer) Render(rec catalog.TemplateRecord, file catalog.SourceFile) (string, []byte, error) {
	item := r.itemName(rec)
	rep := r.replacer(rec, item)

	path := rep.Replace(assembly.TargetPath(file.Path))
	content := file.Content

	if strings.HasSuffix(path, TemplateSuffix) {
		path = strings.TrimSuffix(path, TemplateSuffix)
		rendered, err := r.tmpl.Render(rec.Name+"/"+file.Path, string(content), TemplateData{
			ProjectName:   r.projectName,
			RootNamespace: r.rootNamespace,
			ItemNamespace: r.rootNamespace,
			ItemName:      item,
			Template:      rec.Name,
			Criteria:      r.criteria,
		})
		if err != nil {
			return "", nil, err
		}
		content = rendered
	}

	if bytes.IndexByte(content, 0) < 0 {
		content = []byte(rep.Replace(string(content)))
	}
	return path, content, nil
}

// Assigned returns the item names given so far, by template name.
func (r *renderer) Assigned() map[string]string {
	return r.assigned
}
