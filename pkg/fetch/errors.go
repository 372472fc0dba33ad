package fetch

import "fmt"

// FetchError reports a failed external tool invocation during a fetch.
type FetchError struct {
	// Dest is the destination directory being fetched into.
	Dest string

	// Cmd is the command line that failed, empty for filesystem failures.
	Cmd string

	// ExitCode is the tool's exit status, -1 when it never ran.
	ExitCode int

	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Cmd != "" {
		return fmt.Sprintf("fetch %s: %q exited with status %d: %v", e.Dest, e.Cmd, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Dest, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// DownloadError reports a failed package download.
type DownloadError struct {
	URL string

	// Status is the HTTP status code, 0 for transport-level failures.
	Status int

	Err error
}

// Error implements the error interface.
func (e *DownloadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("download %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *DownloadError) Unwrap() error {
	return e.Err
}

// ArchiveError reports a corrupt or unextractable package archive.
type ArchiveError struct {
	// Package is the resolved package name the archive belongs to.
	Package string

	Err error
}

// Error implements the error interface.
func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive for package %s: %v", e.Package, e.Err)
}

// Unwrap returns the underlying error.
func (e *ArchiveError) Unwrap() error {
	return e.Err
}
