// Package engine orchestrates a checkout run: it loads the manifest,
// assembles the variable environment from manifest defaults, the target
// platform and the requested checkout flags, fetches the selected
// dependency paths in caller order, and finally runs the selected hooks.
//
// The manifest is a flat table, not a dependency graph: any ordering
// requirement between two dependencies is the caller's to express
// through argument order. Execution is sequential; concurrent runs
// against the same root are undefined and must be serialized by the
// caller.
package engine
