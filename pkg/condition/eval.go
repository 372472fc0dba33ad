// Package condition evaluates the boolean expressions gating
// dependencies and hooks. The grammar is deliberately restricted to
// variable names, string literals, boolean operators, equality and
// membership; a manifest cannot smuggle arbitrary code through a
// condition. Variables absent from the environment evaluate as False.
package condition

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/depsync/depsync/pkg/vars"
)

// Evaluate decides whether a condition holds under the environment. An
// empty condition is unconditionally true. A non-nil error is a
// diagnostic only: callers log it and treat the entry as inactive; it
// must never abort a run.
func Evaluate(expr string, env vars.Env) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}

	parsed, err := syntax.ParseExpr("condition", expr, 0)
	if err != nil {
		return false, fmt.Errorf("condition %q: %w", expr, err)
	}
	if err := validateExpr(parsed); err != nil {
		return false, fmt.Errorf("condition %q: %w", expr, err)
	}

	predeclared := make(starlark.StringDict)
	for name := range freeNames(parsed) {
		if v, ok := env.Lookup(name); ok {
			predeclared[name] = toStarlark(v)
		} else {
			predeclared[name] = starlark.False
		}
	}

	thread := &starlark.Thread{Name: "condition"}
	val, err := starlark.Eval(thread, "condition", expr, predeclared)
	if err != nil {
		return false, fmt.Errorf("condition %q: %w", expr, err)
	}
	return bool(val.Truth()), nil
}

// validateExpr enforces the condition grammar allowlist.
func validateExpr(expr syntax.Expr) error {
	var walkErr error
	syntax.Walk(expr, func(n syntax.Node) bool {
		if n == nil || walkErr != nil {
			return false
		}
		switch node := n.(type) {
		case *syntax.Ident, *syntax.ParenExpr:
			return true
		case *syntax.Literal:
			if node.Token != syntax.STRING && node.Token != syntax.INT {
				walkErr = fmt.Errorf("literal %s not allowed", node.Token)
				return false
			}
			return true
		case *syntax.UnaryExpr:
			if node.Op != syntax.NOT {
				walkErr = fmt.Errorf("operator %s not allowed", node.Op)
				return false
			}
			return true
		case *syntax.BinaryExpr:
			switch node.Op {
			case syntax.AND, syntax.OR, syntax.EQL, syntax.NEQ, syntax.IN, syntax.NOT_IN:
				return true
			}
			walkErr = fmt.Errorf("operator %s not allowed", node.Op)
			return false
		default:
			walkErr = fmt.Errorf("%T not allowed in a condition", n)
			return false
		}
	})
	return walkErr
}

// freeNames collects every identifier referenced by the expression.
// True, False and None stay bound to the Starlark universe.
func freeNames(expr syntax.Expr) map[string]bool {
	names := make(map[string]bool)
	syntax.Walk(expr, func(n syntax.Node) bool {
		if ident, ok := n.(*syntax.Ident); ok {
			switch ident.Name {
			case "True", "False", "None":
			default:
				names[ident.Name] = true
			}
		}
		return true
	})
	return names
}

// toStarlark converts an environment value for evaluation.
func toStarlark(v vars.Value) starlark.Value {
	if v.Kind == vars.KindBool {
		return starlark.Bool(v.Bool)
	}
	return starlark.String(v.Str)
}
