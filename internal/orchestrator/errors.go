package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/simonhull/firebird-suite/weaver/internal/merge"
)

var (
	ErrInvalidProjectName = errors.New("invalid project name")
	ErrDestinationExists  = errors.New("destination already exists")
	ErrUnknownTemplate    = errors.New("unknown template")
	ErrNotRightClickable  = errors.New("template cannot be added to an existing project")
	ErrAssemblyFailed     = errors.New("assembly failed")
)

// AssemblyFailedError lists the files that could not be merged. Nothing is
// written when it is returned.
type AssemblyFailedError struct {
	Failures []merge.FileFailure
}

func (e *AssemblyFailedError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Path + ": " + f.Err.Error()
	}
	return fmt.Sprintf("%d file(s) failed to assemble: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *AssemblyFailedError) Is(target error) bool { return target == ErrAssemblyFailed }

// Unwrap exposes each file's error so errors.Is reaches the merge sentinels.
func (e *AssemblyFailedError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Err
	}
	return out
}
