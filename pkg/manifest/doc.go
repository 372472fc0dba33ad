// Package manifest loads declarative dependency manifests (DEPS files)
// into a structured form.
//
// A manifest is a Python-syntax declaration file evaluated as Starlark.
// Exactly two callables are predeclared for manifest authors:
//
//	Var(name)  - substitutes the value bound under the top-level vars dict
//	Str(value) - identity wrapper kept for manifest compatibility
//
// The file must bind deps (a dict mapping a relative checkout path to a
// dependency spec); it may bind vars (default variable values) and hooks
// (an ordered list of post-checkout actions).
//
// Dependency specs come in three forms:
//
//	"https://host/repo.git@ref"            shorthand source dependency
//	{"url": "https://host/repo.git@ref",   dict source dependency
//	 "condition": "checkout_linux"}
//	{"dep_type": "cipd",                   binary package dependency
//	 "packages": [{"package": "tools/clang/${platform}",
//	               "version": "git_revision:abc"}],
//	 "condition": "checkout_linux"}
//
// Shorthand and dict url fields are normalized at load time by splitting
// on the last "@" into url and ref. Loading is the only time the file is
// read; the returned Manifest is read-only afterwards.
package manifest
