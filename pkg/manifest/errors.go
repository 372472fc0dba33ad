package manifest

import "fmt"

// ParseError reports a manifest file that could not be read or evaluated.
type ParseError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse manifest %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ShapeError reports a manifest that evaluated cleanly but does not have
// the expected top-level structure.
type ShapeError struct {
	Path    string
	Binding string
	Reason  string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("manifest %s: binding %q: %s", e.Path, e.Binding, e.Reason)
}

// MalformedRefError reports a source dependency whose url carries no
// "@ref" suffix.
type MalformedRefError struct {
	DepPath string
	URL     string
}

// Error implements the error interface.
func (e *MalformedRefError) Error() string {
	return fmt.Sprintf("dependency %q: url %q has no @ref", e.DepPath, e.URL)
}
