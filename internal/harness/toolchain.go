package harness

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrNoToolchain is returned for a platform with no registered toolchain.
var ErrNoToolchain = errors.New("no toolchain for platform")

// Step is one stage of validating a generated project.
type Step string

const (
	StepBuild Step = "build"
	StepTest  Step = "test"
)

// Toolchain is the command line for each step on one platform. A nil step
// command means the step is not supported and is skipped.
type Toolchain struct {
	Platform string   `mapstructure:"platform" yaml:"platform"`
	Build    []string `mapstructure:"build" yaml:"build"`
	Test     []string `mapstructure:"test" yaml:"test"`
	Env      []string `mapstructure:"env" yaml:"env,omitempty"`
}

// Command returns the argv for step.
func (t Toolchain) Command(step Step) []string {
	switch step {
	case StepBuild:
		return t.Build
	case StepTest:
		return t.Test
	}
	return nil
}

// Registry maps platforms to toolchains. Platform lookup ignores case.
type Registry struct {
	mu         sync.RWMutex
	toolchains map[string]Toolchain
}

// NewRegistry returns a registry holding toolchains.
func NewRegistry(toolchains ...Toolchain) *Registry {
	r := &Registry{toolchains: make(map[string]Toolchain)}
	for _, t := range toolchains {
		r.Register(t)
	}
	return r
}

// DefaultToolchains cover the platforms weaver ships templates for.
func DefaultToolchains() []Toolchain {
	return []Toolchain{
		{Platform: "Uwp", Build: []string{"msbuild", "/restore", "/p:Configuration=Debug", "/p:Platform=x86"}},
		{Platform: "WinUI", Build: []string{"dotnet", "build", "-c", "Debug"}, Test: []string{"dotnet", "test", "--no-build"}},
		{Platform: "Wpf", Build: []string{"dotnet", "build", "-c", "Debug"}, Test: []string{"dotnet", "test", "--no-build"}},
		{Platform: "Go", Build: []string{"go", "build", "./..."}, Test: []string{"go", "test", "./..."}},
	}
}

// Register adds or replaces the toolchain for t.Platform.
func (r *Registry) Register(t Toolchain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toolchains[strings.ToLower(t.Platform)] = t
}

// Lookup returns the toolchain for platform.
func (r *Registry) Lookup(platform string) (Toolchain, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.toolchains[strings.ToLower(platform)]
	if !ok {
		return Toolchain{}, fmt.Errorf("%w: %s", ErrNoToolchain, platform)
	}
	return t, nil
}

// Platforms lists registered platforms, sorted.
func (r *Registry) Platforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.toolchains))
	for _, t := range r.toolchains {
		out = append(out, t.Platform)
	}
	sort.Strings(out)
	return out
}
