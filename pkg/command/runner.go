// Package command runs external tools (git, cipd, hook actions) with a
// working directory and structured logging. The Runner interface exists
// so fetch and hook logic can be exercised in tests without spawning
// processes.
package command

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
)

// Runner executes an external command in a working directory and blocks
// until it exits. A nil error means exit status zero.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) error
}

// ExecRunner runs commands on the host, inheriting the parent's stdout
// and stderr so tool output stays visible.
type ExecRunner struct {
	Log zerolog.Logger
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	r.Log.Debug().
		Str("command", name).
		Strs("args", args).
		Str("dir", dir).
		Msg("Executing command")

	return cmd.Run()
}

// ExitCode extracts the process exit status from a Run error. It returns
// -1 when the error does not carry one (start failure, signal, nil).
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
