// Package hooks executes the named post-checkout actions a manifest
// declares, in manifest order, gated by the same condition evaluation
// that gates dependencies.
package hooks

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/depsync/depsync/pkg/command"
	"github.com/depsync/depsync/pkg/condition"
	"github.com/depsync/depsync/pkg/manifest"
	"github.com/depsync/depsync/pkg/telemetry"
	"github.com/depsync/depsync/pkg/vars"
)

// HookError reports a hook whose command exited non-zero. The run stops
// at the first failing hook.
type HookError struct {
	Name     string
	Cmd      string
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *HookError) Error() string {
	return fmt.Sprintf("hook %q: %q exited with status %d: %v", e.Name, e.Cmd, e.ExitCode, e.Err)
}

// Unwrap returns the underlying error.
func (e *HookError) Unwrap() error {
	return e.Err
}

// Runner executes hooks as external commands.
type Runner struct {
	// Commands runs the hook actions.
	Commands command.Runner

	// Interpreter replaces any first action token naming a python3-family
	// interpreter, so hooks run under the interpreter driving this
	// checkout rather than whatever is first on PATH. Empty disables the
	// substitution.
	Interpreter string

	Log     zerolog.Logger
	Metrics *telemetry.Metrics
}

// Run executes the hooks whose names appear in selected, in manifest
// order, with workDir as each command's working directory. Hooks whose
// condition evaluates false are skipped; a condition diagnostic only
// deactivates its hook. A non-zero exit aborts the run with a HookError.
func (r *Runner) Run(ctx context.Context, hooks []manifest.Hook, selected []string, workDir string, env vars.Env) error {
	names := make(map[string]bool, len(selected))
	for _, name := range selected {
		names[name] = true
	}

	for _, hook := range hooks {
		if !names[hook.Name] {
			continue
		}

		active, err := condition.Evaluate(hook.Condition, env)
		if err != nil {
			r.Log.Warn().
				Err(err).
				Str("hook", hook.Name).
				Msg("Condition failed to evaluate, skipping hook")
			continue
		}
		if !active {
			r.Log.Info().
				Str("hook", hook.Name).
				Str("condition", hook.Condition).
				Msg("Condition didn't match, skipping hook")
			continue
		}
		if len(hook.Action) == 0 {
			continue
		}

		action := append([]string(nil), hook.Action...)
		if r.Interpreter != "" && strings.Contains(action[0], "python3") {
			action[0] = r.Interpreter
		}

		r.Log.Info().
			Str("hook", hook.Name).
			Strs("action", action).
			Msg("Running hook")

		if err := r.Commands.Run(ctx, workDir, action[0], action[1:]...); err != nil {
			r.Metrics.RecordHook(telemetry.ResultError)
			return &HookError{
				Name:     hook.Name,
				Cmd:      strings.Join(action, " "),
				ExitCode: command.ExitCode(err),
				Err:      err,
			}
		}
		r.Metrics.RecordHook(telemetry.ResultDone)
	}

	return nil
}
