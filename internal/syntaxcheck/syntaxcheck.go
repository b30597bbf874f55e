// Package syntaxcheck parses merged files with tree-sitter grammars and
// reports syntax errors. It never changes content.
package syntaxcheck

import (
	"fmt"
	"path"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/simonhull/firebird-suite/weaver/internal/diagnostic"
)

// DefaultMaxFindings caps the errors reported for one file.
const DefaultMaxFindings = 5

// Checker reports parse errors for files whose extension has a grammar.
// A parser is created per call, so one Checker may be shared between
// goroutines.
type Checker struct {
	languages   map[string]*tree_sitter.Language
	maxFindings int
}

// New returns a checker for Go, TypeScript, TSX, Python and Rust.
func New() *Checker {
	ts := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	return &Checker{
		languages: map[string]*tree_sitter.Language{
			".go":  tree_sitter.NewLanguage(tree_sitter_go.Language()),
			".ts":  ts,
			".mts": ts,
			".tsx": tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
			".py":  tree_sitter.NewLanguage(tree_sitter_python.Language()),
			".rs":  tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		},
		maxFindings: DefaultMaxFindings,
	}
}

// Extensions lists the file extensions the checker parses.
func (c *Checker) Extensions() []string {
	out := make([]string, 0, len(c.languages))
	for ext := range c.languages {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Supports reports whether p has a grammar.
func (c *Checker) Supports(p string) bool {
	_, ok := c.languages[strings.ToLower(path.Ext(p))]
	return ok
}

// Check parses content and returns one diagnostic per error or missing node,
// up to the per-file cap. Unsupported files yield nothing.
func (c *Checker) Check(p string, content []byte) []diagnostic.Diagnostic {
	lang, ok := c.languages[strings.ToLower(path.Ext(p))]
	if !ok {
		return nil
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return []diagnostic.Diagnostic{finding(p, fmt.Sprintf("grammar unavailable: %v", err))}
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return []diagnostic.Diagnostic{finding(p, "parser produced no tree")}
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	var out []diagnostic.Diagnostic
	c.collect(root, p, &out)
	if len(out) == 0 {
		out = append(out, finding(p, "file does not parse"))
	}
	return out
}

func (c *Checker) collect(node *tree_sitter.Node, p string, out *[]diagnostic.Diagnostic) {
	if len(*out) >= c.maxFindings {
		return
	}
	pos := node.StartPosition()
	switch {
	case node.IsMissing():
		*out = append(*out, finding(p, fmt.Sprintf("line %d col %d: missing %s", pos.Row+1, pos.Column+1, node.Kind())))
		return
	case node.IsError():
		*out = append(*out, finding(p, fmt.Sprintf("line %d col %d: unexpected syntax", pos.Row+1, pos.Column+1)))
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && (child.HasError() || child.IsMissing()) {
			c.collect(child, p, out)
		}
	}
}

func finding(p, msg string) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Severity: diagnostic.SeverityWarning,
		Code:     diagnostic.CodeSyntaxError,
		Message:  msg,
		Path:     p,
	}
}
