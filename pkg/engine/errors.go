package engine

import "fmt"

// UnknownDependencyError reports a selected dependency path that the
// manifest does not declare.
type UnknownDependencyError struct {
	Path string
}

// Error implements the error interface.
func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("unknown dependency path %q", e.Path)
}
