package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/depsync/depsync/pkg/command"
	"github.com/depsync/depsync/pkg/manifest"
	"github.com/depsync/depsync/pkg/telemetry"
)

// ensureFileName is the per-destination ensure file handed to cipd.
const ensureFileName = ".cipd_ensure"

// CIPDFetcher is the external-tool package strategy: it writes an ensure
// file listing the requested packages and delegates retrieval to a cipd
// binary. cipd keeps its own idempotency state under the root, so no
// version marker is involved.
type CIPDFetcher struct {
	bin     string
	runner  command.Runner
	log     zerolog.Logger
	metrics *telemetry.Metrics
}

// NewCIPDFetcher creates a fetcher driving the cipd binary at bin.
func NewCIPDFetcher(bin string, runner command.Runner, log zerolog.Logger, metrics *telemetry.Metrics) *CIPDFetcher {
	return &CIPDFetcher{
		bin:     bin,
		runner:  runner,
		log:     log,
		metrics: metrics,
	}
}

// Fetch implements PackageFetcher.
func (f *CIPDFetcher) Fetch(ctx context.Context, dep *manifest.Dep, dest string) error {
	if err := os.MkdirAll(dest, 0755); err != nil {
		f.metrics.RecordFetch("package", telemetry.ResultError)
		return &FetchError{Dest: dest, ExitCode: -1, Err: err}
	}

	var b strings.Builder
	for _, pkg := range dep.Packages {
		fmt.Fprintf(&b, "%s %s\n", pkg.Name, pkg.Version)
	}
	// cipd resolves ${platform} itself; only the brace escapes are ours.
	ensure := braceUnescaper.Replace(b.String())

	ensurePath := filepath.Join(dest, ensureFileName)
	if err := os.WriteFile(ensurePath, []byte(ensure), 0644); err != nil {
		f.metrics.RecordFetch("package", telemetry.ResultError)
		return &FetchError{Dest: dest, ExitCode: -1, Err: err}
	}

	f.log.Info().
		Str("dest", dest).
		Str("ensure_file", ensurePath).
		Msg("Running cipd ensure")

	args := []string{"ensure", "-root", dest, "-ensure-file", ensurePath}
	if err := f.runner.Run(ctx, "", f.bin, args...); err != nil {
		f.metrics.RecordFetch("package", telemetry.ResultError)
		return &FetchError{
			Dest:     dest,
			Cmd:      f.bin + " " + strings.Join(args, " "),
			ExitCode: command.ExitCode(err),
			Err:      err,
		}
	}

	f.metrics.RecordFetch("package", telemetry.ResultDone)
	return nil
}
