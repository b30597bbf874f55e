package generator

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"unicode"
)

// Renderer executes text templates with naming helpers. Parsed templates are
// cached by name, so one Renderer can serve many generations.
type Renderer struct {
	funcs template.FuncMap
	mu    sync.RWMutex
	cache map[string]*template.Template
}

// NewRenderer returns a renderer with the default helpers.
func NewRenderer() *Renderer {
	return &Renderer{
		funcs: template.FuncMap{
			"pascal":    PascalCase,
			"camel":     CamelCase,
			"snake":     SnakeCase,
			"kebab":     KebabCase,
			"upper":     strings.ToUpper,
			"lower":     strings.ToLower,
			"trim":      strings.TrimSpace,
			"replace":   strings.ReplaceAll,
			"hasPrefix": strings.HasPrefix,
			"namespace": Namespace,
			"default":   defaultString,
		},
		cache: make(map[string]*template.Template),
	}
}

// Render executes text as a template named name. Missing keys are errors.
func (r *Renderer) Render(name, text string, data any) ([]byte, error) {
	key := name + "\x00" + text

	r.mu.RLock()
	tmpl, ok := r.cache[key]
	r.mu.RUnlock()

	if !ok {
		var err error
		tmpl, err = template.New(name).Funcs(r.funcs).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.mu.Lock()
		r.cache[key] = tmpl
		r.mu.Unlock()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// words splits an identifier on separators and case changes:
// "MainPage" → [Main Page], "http_server" → [http server], "HTTPServer" → [HTTP Server].
func words(s string) []string {
	var out []string
	var cur []rune
	runes := []rune(s)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
			continue
		case unicode.IsUpper(r) && len(cur) > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

func capitalize(w string) string {
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// PascalCase joins words with leading capitals: "main page" → "MainPage".
func PascalCase(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// CamelCase is PascalCase with a lower-case first word: "MainPage" → "mainPage".
func CamelCase(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(ws[0]))
	for _, w := range ws[1:] {
		b.WriteString(capitalize(w))
	}
	return b.String()
}

// SnakeCase lower-cases words joined by underscores: "MainPage" → "main_page".
func SnakeCase(s string) string {
	return strings.ToLower(strings.Join(words(s), "_"))
}

// KebabCase lower-cases words joined by hyphens: "MainPage" → "main-page".
func KebabCase(s string) string {
	return strings.ToLower(strings.Join(words(s), "-"))
}

// Namespace joins non-empty parts with dots.
func Namespace(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.Trim(p, ". "); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}

func defaultString(def, v string) string {
	if v == "" {
		return def
	}
	return v
}
