package manifest

import "github.com/depsync/depsync/pkg/vars"

// DepKind discriminates the two dependency spec variants.
type DepKind int

const (
	// DepSource is a version-controlled checkout (url + ref).
	DepSource DepKind = iota

	// DepPackage is a binary package retrieval (ordered package list).
	DepPackage
)

// Package is one entry of a package dependency. Name may contain the
// placeholders ${os}, ${arch} and ${platform}, plus {{ and }} escapes
// for literal braces.
type Package struct {
	Name    string
	Version string
}

// Dep is a single dependency spec keyed by its checkout path.
type Dep struct {
	Kind DepKind

	// URL and Ref are set for DepSource.
	URL string
	Ref string

	// Packages is set for DepPackage, in manifest order. Order matters
	// when several packages layer into the same destination.
	Packages []Package

	// Condition is an optional boolean expression gating the dependency.
	// Empty means unconditionally active.
	Condition string
}

// Hook is a named post-checkout action.
type Hook struct {
	Name      string
	Condition string
	Action    []string
}

// Manifest is the loaded, normalized dependency manifest.
type Manifest struct {
	// Vars holds the manifest's default variable values.
	Vars vars.Env

	// Deps maps a relative checkout path to its spec.
	Deps map[string]*Dep

	// Paths lists the dependency paths in manifest declaration order.
	Paths []string

	// Hooks lists hooks in manifest declaration order.
	Hooks []Hook
}

// Dep returns the dependency declared for a checkout path.
func (m *Manifest) Dep(path string) (*Dep, bool) {
	d, ok := m.Deps[path]
	return d, ok
}
