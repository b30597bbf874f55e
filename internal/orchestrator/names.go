package orchestrator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
)

// NameProvider chooses the item name a template is generated with.
type NameProvider interface {
	ItemName(rec catalog.TemplateRecord, taken []string) string
}

// DefaultNames uses the record's DefaultName, else the last segment of its
// Name, with a numeric suffix when the name is taken.
type DefaultNames struct{}

func (DefaultNames) ItemName(rec catalog.TemplateRecord, taken []string) string {
	return Unique(baseName(rec), taken)
}

// RandomNames appends a short random suffix, for batch runs that add the
// same template many times.
type RandomNames struct {
	// New returns the id the suffix is cut from; nil uses uuid.New.
	New func() uuid.UUID
}

func (r RandomNames) ItemName(rec catalog.TemplateRecord, taken []string) string {
	gen := r.New
	if gen == nil {
		gen = uuid.New
	}
	id := strings.ReplaceAll(gen().String(), "-", "")
	return Unique(baseName(rec)+id[:8], taken)
}

func baseName(rec catalog.TemplateRecord) string {
	if rec.DefaultName != "" {
		return rec.DefaultName
	}
	name := rec.Name
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		name = name[i+1:]
	}
	return name
}

// Unique returns base, or base followed by the smallest positive number that
// is not in taken. Comparison ignores case.
func Unique(base string, taken []string) string {
	used := make(map[string]bool, len(taken))
	for _, t := range taken {
		used[strings.ToLower(t)] = true
	}
	if !used[strings.ToLower(base)] {
		return base
	}
	for i := 1; ; i++ {
		candidate := base + strconv.Itoa(i)
		if !used[strings.ToLower(candidate)] {
			return candidate
		}
	}
}

var projectNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

var reservedNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

// maxProjectName bounds names so generated paths stay under Windows limits.
const maxProjectName = 100

// ValidateProjectName rejects names that break generated namespaces or paths.
func ValidateProjectName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is empty", ErrInvalidProjectName)
	case len(name) > maxProjectName:
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidProjectName, name, maxProjectName)
	case !projectNamePattern.MatchString(name):
		return fmt.Errorf("%w: %q must start with a letter or underscore and contain only letters, digits, '_' and '.'", ErrInvalidProjectName, name)
	case strings.HasSuffix(name, ".") || strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q has an empty namespace segment", ErrInvalidProjectName, name)
	case reservedNames[strings.ToLower(name)]:
		return fmt.Errorf("%w: %q is a reserved device name", ErrInvalidProjectName, name)
	}
	return nil
}
