// Package fetch performs the idempotent retrieval operations of the
// checkout engine: shallow git checkouts for source dependencies and
// binary-package retrieval for package dependencies.
//
// Every destination directory carries a marker file recording the
// currently installed ref or version. Markers are read before any work
// is attempted and written only after a fetch fully succeeds, so a
// marker never claims content that is not on disk. Re-running a fetch
// with an unchanged ref or version is a no-op that touches neither the
// network nor any external tool.
//
// Package retrieval is a strategy: the built-in ZipFetcher downloads and
// extracts archives itself, while CIPDFetcher delegates to an external
// cipd binary. The orchestrator selects one implementation of
// PackageFetcher at startup.
package fetch
