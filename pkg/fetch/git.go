package fetch

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/depsync/depsync/pkg/command"
	"github.com/depsync/depsync/pkg/manifest"
	"github.com/depsync/depsync/pkg/telemetry"
)

// SourceFetcher checks out source dependencies with shallow git fetches.
type SourceFetcher struct {
	git     string
	runner  command.Runner
	log     zerolog.Logger
	metrics *telemetry.Metrics
}

// NewSourceFetcher creates a source fetcher driving the given git binary
// through runner.
func NewSourceFetcher(git string, runner command.Runner, log zerolog.Logger, metrics *telemetry.Metrics) *SourceFetcher {
	if git == "" {
		git = "git"
	}
	return &SourceFetcher{
		git:     git,
		runner:  runner,
		log:     log,
		metrics: metrics,
	}
}

// Fetch brings dest to dep.Ref. When the destination marker already
// records the ref, Fetch returns immediately without running git.
// Otherwise it initializes the repository if needed, points origin at
// dep.URL, fetches exactly the ref at depth 1 and checks it out. The
// marker is written only after every step succeeded.
func (f *SourceFetcher) Fetch(ctx context.Context, dep *manifest.Dep, dest string) error {
	if readMarker(dest, SourceMarker) == dep.Ref {
		f.log.Info().
			Str("dest", dest).
			Str("ref", dep.Ref).
			Msg("Already at requested ref")
		f.metrics.RecordFetch("source", telemetry.ResultCached)
		return nil
	}

	f.log.Info().
		Str("dest", dest).
		Str("url", dep.URL).
		Str("ref", dep.Ref).
		Msg("Checking out source dependency")

	if err := os.MkdirAll(dest, 0755); err != nil {
		f.metrics.RecordFetch("source", telemetry.ResultError)
		return &FetchError{Dest: dest, ExitCode: -1, Err: err}
	}

	if _, err := os.Stat(filepath.Join(dest, ".git")); err != nil {
		if err := f.run(ctx, dest, "init", "-b", "main"); err != nil {
			f.metrics.RecordFetch("source", telemetry.ResultError)
			return err
		}
	}

	// Detached HEAD is the normal state for a pinned checkout.
	if err := f.run(ctx, dest, "config", "advice.detachedHead", "false"); err != nil {
		f.metrics.RecordFetch("source", telemetry.ResultError)
		return err
	}

	// The remote survives earlier partial runs; add failing means it
	// already exists, so update its URL instead.
	if err := f.run(ctx, dest, "remote", "add", "origin", dep.URL); err != nil {
		if err := f.run(ctx, dest, "remote", "set-url", "origin", dep.URL); err != nil {
			f.metrics.RecordFetch("source", telemetry.ResultError)
			return err
		}
	}

	if err := f.run(ctx, dest, "fetch", "--depth=1", "origin", dep.Ref); err != nil {
		f.metrics.RecordFetch("source", telemetry.ResultError)
		return err
	}
	if err := f.run(ctx, dest, "checkout", dep.Ref); err != nil {
		f.metrics.RecordFetch("source", telemetry.ResultError)
		return err
	}

	if err := writeMarker(dest, SourceMarker, dep.Ref); err != nil {
		f.metrics.RecordFetch("source", telemetry.ResultError)
		return &FetchError{Dest: dest, ExitCode: -1, Err: err}
	}

	f.metrics.RecordFetch("source", telemetry.ResultDone)
	return nil
}

// run invokes git with dest as the working directory.
func (f *SourceFetcher) run(ctx context.Context, dest string, args ...string) error {
	if err := f.runner.Run(ctx, dest, f.git, args...); err != nil {
		return &FetchError{
			Dest:     dest,
			Cmd:      f.git + " " + strings.Join(args, " "),
			ExitCode: command.ExitCode(err),
			Err:      err,
		}
	}
	return nil
}
