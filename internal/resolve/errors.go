package resolve

import (
	"errors"
	"fmt"
)

// ErrUnresolvableDependency is returned when a dependency id names no
// template in the catalog.
var ErrUnresolvableDependency = errors.New("unresolvable dependency")

// UnresolvableDependencyError names the template and the id it could not
// resolve.
type UnresolvableDependencyError struct {
	Template   string
	Dependency string
}

func (e *UnresolvableDependencyError) Error() string {
	return fmt.Sprintf("template %s depends on %q: %v", e.Template, e.Dependency, ErrUnresolvableDependency)
}

func (e *UnresolvableDependencyError) Unwrap() error {
	return ErrUnresolvableDependency
}
