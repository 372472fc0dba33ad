package condition

import (
	"testing"

	"github.com/depsync/depsync/pkg/vars"
)

func TestEvaluate(t *testing.T) {
	env := vars.Env{
		"checkout_linux": vars.BoolValue(true),
		"checkout_mac":   vars.BoolValue(false),
		"host_os":        vars.StringValue("linux"),
		"target_os":      vars.StringValue("linux,android"),
	}

	tests := []struct {
		name    string
		expr    string
		want    bool
		wantErr bool
	}{
		{name: "empty condition is always true", expr: "", want: true},
		{name: "whitespace condition is always true", expr: "   ", want: true},
		{name: "true variable", expr: "checkout_linux", want: true},
		{name: "false variable", expr: "checkout_mac", want: false},
		{name: "absent variable is falsy", expr: "checkout_win", want: false},
		{name: "negated absent variable", expr: "not checkout_win", want: true},
		{name: "equality", expr: `host_os == "linux"`, want: true},
		{name: "inequality", expr: `host_os != "win"`, want: true},
		{name: "conjunction", expr: `checkout_linux and host_os == "linux"`, want: true},
		{name: "conjunction with absent variable", expr: "checkout_linux and checkout_win", want: false},
		{name: "disjunction", expr: "checkout_mac or checkout_linux", want: true},
		{name: "membership", expr: `"android" in target_os`, want: true},
		{name: "negated membership", expr: `"fuchsia" not in target_os`, want: true},
		{name: "parentheses", expr: `(checkout_mac or checkout_linux) and host_os == "linux"`, want: true},
		{name: "literal True", expr: "True", want: true},
		{name: "literal False", expr: "False", want: false},
		{name: "malformed expression", expr: "== host_os", want: false, wantErr: true},
		{name: "call is rejected", expr: `open("x")`, want: false, wantErr: true},
		{name: "arithmetic is rejected", expr: "1 + 1", want: false, wantErr: true},
		{name: "comprehension is rejected", expr: "[x for x in target_os]", want: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr, env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Evaluate(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluate_UndefinedVariableNeverRaises(t *testing.T) {
	// Conditions referencing only undefined variables still evaluate,
	// with every missing name treated as falsy.
	exprs := []string{
		"totally_undefined",
		"a and b",
		"a or b",
		"not a",
		`a == "x"`,
	}
	for _, expr := range exprs {
		if _, err := Evaluate(expr, vars.Env{}); err != nil {
			t.Errorf("Evaluate(%q) on empty env returned error: %v", expr, err)
		}
	}
}

func TestEvaluate_StringTruthiness(t *testing.T) {
	env := vars.Env{
		"empty":    vars.StringValue(""),
		"nonempty": vars.StringValue("x"),
	}
	if got, _ := Evaluate("empty", env); got {
		t.Error("empty string should be falsy")
	}
	if got, _ := Evaluate("nonempty", env); !got {
		t.Error("non-empty string should be truthy")
	}
}
