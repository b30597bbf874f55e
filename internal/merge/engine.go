package merge

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/simonhull/firebird-suite/weaver/internal/diagnostic"
	"github.com/simonhull/firebird-suite/weaver/internal/logger"
)

// Action describes what a fragment did to a file.
type Action int

const (
	ActionCreated Action = iota
	ActionInserted
	ActionUnchanged
	ActionConflict
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionInserted:
		return "inserted"
	case ActionUnchanged:
		return "unchanged"
	case ActionConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Contribution records one fragment's effect on a file.
type Contribution struct {
	Template string   `json:"template"`
	Action   Action   `json:"action"`
	Anchors  []string `json:"anchors,omitempty"`
}

// AssembledFile is a file of the destination tree after merging.
type AssembledFile struct {
	Path          string
	Content       []byte
	Original      []byte // base content, nil for files created by fragments
	Contributions []Contribution
}

// IsNew reports whether the file did not exist in the base tree.
func (f *AssembledFile) IsNew() bool {
	return f.Original == nil
}

// Modified reports whether a base file's content changed.
func (f *AssembledFile) Modified() bool {
	return f.Original != nil && !bytes.Equal(f.Original, f.Content)
}

// Conflict is a marker-free fragment whose full content differs from a file
// that already exists. The existing content is kept.
type Conflict struct {
	Path     string
	Template string
	Existing []byte
	Proposed []byte
}

// FileFailure is a file that could not be assembled.
type FileFailure struct {
	Path     string
	Template string
	Err      error
}

// Source is raw fragment content for one destination path.
type Source struct {
	Template string
	Path     string
	Content  []byte
}

// Outcome is the merged tree. Files and Failed are sorted by path.
type Outcome struct {
	Files       []*AssembledFile
	Failed      []FileFailure
	Conflicts   []Conflict
	Diagnostics diagnostic.Diagnostics
}

// File returns the assembled file at path.
func (o *Outcome) File(path string) (*AssembledFile, bool) {
	i := sort.Search(len(o.Files), func(i int) bool { return o.Files[i].Path >= path })
	if i < len(o.Files) && o.Files[i].Path == path {
		return o.Files[i], true
	}
	return nil, false
}

// Engine merges fragments into a destination tree.
type Engine struct {
	syntax Syntax
	log    logger.Logger
}

// NewEngine returns an engine recognising markers behind syntax's comment
// leaders.
func NewEngine(syntax Syntax, log logger.Logger) *Engine {
	if len(syntax.Leaders) == 0 {
		syntax = DefaultSyntax
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{syntax: syntax, log: log}
}

// Syntax returns the marker syntax the engine uses.
func (e *Engine) Syntax() Syntax {
	return e.syntax
}

// Assemble parses every source, then applies the valid fragments in order to
// a copy of base. A malformed fragment or a dangling anchor fails its file
// only; every other file continues.
func (e *Engine) Assemble(sources []Source, base map[string][]byte) *Outcome {
	out := &Outcome{}
	failed := make(map[string]FileFailure)

	fragments := make([]*Fragment, 0, len(sources))
	for _, src := range sources {
		f, err := Parse(src.Template, src.Path, src.Content, e.syntax)
		if err != nil {
			e.log.Warn("rejected fragment", logger.F("template", src.Template), logger.F("path", src.Path), logger.F("error", err))
			out.Diagnostics.AddError(diagnostic.CodeUnbalancedMarkers, err.Error(), src.Template, src.Path)
			if _, done := failed[src.Path]; !done {
				failed[src.Path] = FileFailure{Path: src.Path, Template: src.Template, Err: err}
			}
			continue
		}
		fragments = append(fragments, f)
	}

	tree := make(map[string]*AssembledFile, len(base))
	for path, content := range base {
		c := make([]byte, len(content))
		copy(c, content)
		tree[path] = &AssembledFile{Path: path, Content: c, Original: content}
	}

	for _, f := range fragments {
		if _, bad := failed[f.Path]; bad {
			out.Diagnostics.AddInfo(diagnostic.CodeSkippedFailedFile, "file already failed", f.Template, f.Path)
			continue
		}
		if err := e.apply(tree, f, out); err != nil {
			e.log.Warn("merge failed", logger.F("template", f.Template), logger.F("path", f.Path), logger.F("error", err))
			code := diagnostic.CodeDanglingAnchor
			if !errors.Is(err, ErrDanglingAnchorReference) {
				code = diagnostic.CodeUnbalancedMarkers
			}
			out.Diagnostics.AddError(code, err.Error(), f.Template, f.Path)
			failed[f.Path] = FileFailure{Path: f.Path, Template: f.Template, Err: err}
		}
	}

	for path, file := range tree {
		if _, bad := failed[path]; bad {
			continue
		}
		out.Files = append(out.Files, file)
	}
	sort.Slice(out.Files, func(i, j int) bool { return out.Files[i].Path < out.Files[j].Path })

	for _, ff := range failed {
		out.Failed = append(out.Failed, ff)
	}
	sort.Slice(out.Failed, func(i, j int) bool { return out.Failed[i].Path < out.Failed[j].Path })

	return out
}

func (e *Engine) apply(tree map[string]*AssembledFile, f *Fragment, out *Outcome) error {
	file, exists := tree[f.Path]
	if !exists {
		tree[f.Path] = &AssembledFile{
			Path:          f.Path,
			Content:       f.Render(),
			Contributions: []Contribution{{Template: f.Template, Action: ActionCreated}},
		}
		e.log.Debug("created file", logger.F("template", f.Template), logger.F("path", f.Path))
		return nil
	}

	inserts := f.Inserts()
	if len(inserts) == 0 {
		if f.HasMarkers() {
			file.Contributions = append(file.Contributions, Contribution{Template: f.Template, Action: ActionUnchanged})
			return nil
		}
		proposed := f.Render()
		if bytes.Equal(proposed, file.Content) {
			file.Contributions = append(file.Contributions, Contribution{Template: f.Template, Action: ActionUnchanged})
			return nil
		}
		out.Conflicts = append(out.Conflicts, Conflict{
			Path:     f.Path,
			Template: f.Template,
			Existing: file.Content,
			Proposed: proposed,
		})
		out.Diagnostics.AddWarning(diagnostic.CodeBaseConflict, "file already exists with different content; kept existing", f.Template, f.Path)
		file.Contributions = append(file.Contributions, Contribution{Template: f.Template, Action: ActionConflict})
		return nil
	}

	merged, anchors, err := e.splice(file.Content, f, inserts, out)
	if err != nil {
		return err
	}
	file.Content = merged
	file.Contributions = append(file.Contributions, Contribution{Template: f.Template, Action: ActionInserted, Anchors: anchors})
	e.log.Debug("merged fragment", logger.F("template", f.Template), logger.F("path", f.Path), logger.F("anchors", anchors))
	return nil
}

// splice inserts every block immediately before its anchor line. All anchors
// are checked before anything is written, so a fragment applies fully or not
// at all.
func (e *Engine) splice(content []byte, f *Fragment, inserts []InsertBlock, out *Outcome) ([]byte, []string, error) {
	lines := splitLines(content)

	anchorAt := make(map[string]int)
	for i, line := range lines {
		kind, name := e.syntax.Classify(line)
		if kind != TokenAnchor {
			continue
		}
		if _, dup := anchorAt[name]; dup {
			out.Diagnostics.AddWarning(diagnostic.CodeDuplicateAnchor,
				fmt.Sprintf("anchor %q appears more than once; using the first", name), f.Template, f.Path)
			continue
		}
		anchorAt[name] = i
	}

	pending := make(map[int][][]byte)
	var anchors []string
	for _, ins := range inserts {
		at, ok := anchorAt[ins.Anchor]
		if ins.Anchor == "" || !ok {
			return nil, nil, &DanglingAnchorError{Template: f.Template, Path: f.Path, Anchor: ins.Anchor, Line: ins.Line}
		}
		pending[at] = append(pending[at], ins.Content)
		anchors = append(anchors, ins.Anchor)
	}

	var buf bytes.Buffer
	buf.Grow(len(content) + len(inserts)*64)
	for i, line := range lines {
		if blocks := pending[i]; len(blocks) > 0 {
			if i == 0 && bytes.HasPrefix(line, utf8BOM) {
				buf.Write(utf8BOM)
				line = line[len(utf8BOM):]
			}
			for _, block := range blocks {
				buf.Write(block)
			}
		}
		buf.Write(line)
	}
	return buf.Bytes(), anchors, nil
}
