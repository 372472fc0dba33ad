package hooks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/depsync/depsync/pkg/manifest"
	"github.com/depsync/depsync/pkg/vars"
)

// spyRunner records hook command invocations.
type spyRunner struct {
	calls  [][]string
	dirs   []string
	failOn string
}

func (r *spyRunner) Run(_ context.Context, dir, name string, args ...string) error {
	argv := append([]string{name}, args...)
	r.calls = append(r.calls, argv)
	r.dirs = append(r.dirs, dir)
	if r.failOn != "" && strings.Contains(strings.Join(argv, " "), r.failOn) {
		return errors.New("hook failed")
	}
	return nil
}

func testHooks() []manifest.Hook {
	return []manifest.Hook{
		{Name: "always", Action: []string{"tool", "a"}},
		{Name: "linux_only", Condition: "checkout_linux", Action: []string{"tool", "b"}},
		{Name: "win_only", Condition: "checkout_win", Action: []string{"tool", "c"}},
		{Name: "unselected", Action: []string{"tool", "d"}},
	}
}

func TestRunner_SelectionAndConditions(t *testing.T) {
	spy := &spyRunner{}
	r := &Runner{Commands: spy, Log: zerolog.Nop()}
	env := vars.Env{"checkout_linux": vars.BoolValue(true)}

	selected := []string{"always", "linux_only", "win_only"}
	if err := r.Run(context.Background(), testHooks(), selected, "/work", env); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// win_only: checkout_win is unset, absent is falsy. unselected: not
	// in the selection. Both must be skipped.
	if len(spy.calls) != 2 {
		t.Fatalf("executed %d hooks, want 2: %v", len(spy.calls), spy.calls)
	}
	if spy.calls[0][1] != "a" || spy.calls[1][1] != "b" {
		t.Errorf("hook order = %v, want manifest order", spy.calls)
	}
	for _, dir := range spy.dirs {
		if dir != "/work" {
			t.Errorf("hook ran in %q, want /work", dir)
		}
	}
}

func TestRunner_ConditionFalseSkips(t *testing.T) {
	spy := &spyRunner{}
	r := &Runner{Commands: spy, Log: zerolog.Nop()}
	env := vars.Env{"checkout_linux": vars.BoolValue(false)}

	if err := r.Run(context.Background(), testHooks(), []string{"linux_only"}, ".", env); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(spy.calls) != 0 {
		t.Errorf("hook ran despite false condition: %v", spy.calls)
	}
}

func TestRunner_ManifestOrderWinsOverSelectionOrder(t *testing.T) {
	spy := &spyRunner{}
	r := &Runner{Commands: spy, Log: zerolog.Nop()}

	// Selection order is reversed; execution order must stay declared.
	selected := []string{"unselected", "always"}
	if err := r.Run(context.Background(), testHooks(), selected, ".", vars.Env{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(spy.calls) != 2 || spy.calls[0][1] != "a" || spy.calls[1][1] != "d" {
		t.Errorf("hook order = %v, want manifest order", spy.calls)
	}
}

func TestRunner_InterpreterSubstitution(t *testing.T) {
	tests := []struct {
		name   string
		action []string
		want   string
	}{
		{name: "plain python3", action: []string{"python3", "x.py"}, want: "/opt/python3"},
		{name: "vpython3 variant", action: []string{"vpython3", "x.py"}, want: "/opt/python3"},
		{name: "non-interpreter untouched", action: []string{"gn", "gen"}, want: "gn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyRunner{}
			r := &Runner{Commands: spy, Interpreter: "/opt/python3", Log: zerolog.Nop()}
			hooks := []manifest.Hook{{Name: "h", Action: tt.action}}

			if err := r.Run(context.Background(), hooks, []string{"h"}, ".", vars.Env{}); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if spy.calls[0][0] != tt.want {
				t.Errorf("argv[0] = %q, want %q", spy.calls[0][0], tt.want)
			}
		})
	}
}

func TestRunner_FailureStopsRun(t *testing.T) {
	hooks := []manifest.Hook{
		{Name: "first", Action: []string{"tool", "ok"}},
		{Name: "second", Action: []string{"tool", "boom"}},
		{Name: "third", Action: []string{"tool", "never"}},
	}
	spy := &spyRunner{failOn: "boom"}
	r := &Runner{Commands: spy, Log: zerolog.Nop()}

	err := r.Run(context.Background(), hooks, []string{"first", "second", "third"}, ".", vars.Env{})
	var hookErr *HookError
	if !errors.As(err, &hookErr) {
		t.Fatalf("Run() error = %v, want HookError", err)
	}
	if hookErr.Name != "second" {
		t.Errorf("HookError.Name = %q, want second", hookErr.Name)
	}
	if len(spy.calls) != 2 {
		t.Errorf("executed %d hooks, want run to stop at the failure", len(spy.calls))
	}
}

func TestRunner_MalformedConditionOnlySkipsItsHook(t *testing.T) {
	hooks := []manifest.Hook{
		{Name: "broken", Condition: "== nope", Action: []string{"tool", "a"}},
		{Name: "fine", Action: []string{"tool", "b"}},
	}
	spy := &spyRunner{}
	r := &Runner{Commands: spy, Log: zerolog.Nop()}

	if err := r.Run(context.Background(), hooks, []string{"broken", "fine"}, ".", vars.Env{}); err != nil {
		t.Fatalf("Run() error = %v, a condition diagnostic must not abort the run", err)
	}
	if len(spy.calls) != 1 || spy.calls[0][1] != "b" {
		t.Errorf("calls = %v, want only the well-formed hook", spy.calls)
	}
}
