package manifest

import (
	"fmt"
	"os"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/depsync/depsync/pkg/vars"
)

// Load evaluates the manifest file at path and returns its normalized
// form. The file is executed twice: the first pass discovers the vars
// binding, the second re-executes with Var() resolving against it. Both
// passes expose only the Var and Str callables; the manifest dialect has
// no other builtins.
func Load(path string) (*Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	first, err := execManifest(path, src, nil)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	varValues, err := varsBinding(path, first)
	if err != nil {
		return nil, err
	}

	globals, err := execManifest(path, src, varValues)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return buildManifest(path, globals)
}

// execManifest runs one evaluation pass. When varValues is nil, Var()
// returns an empty string; the pass exists only to discover vars.
func execManifest(path string, src []byte, varValues map[string]starlark.Value) (starlark.StringDict, error) {
	thread := &starlark.Thread{
		Name:  "manifest",
		Print: func(_ *starlark.Thread, _ string) {},
	}

	varFn := func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var name string
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name); err != nil {
			return nil, err
		}
		if varValues == nil {
			return starlark.String(""), nil
		}
		v, ok := varValues[name]
		if !ok {
			return nil, fmt.Errorf("Var: undefined variable %q", name)
		}
		return v, nil
	}

	strFn := func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var v starlark.Value
		if err := starlark.UnpackArgs(b.Name(), args, kwargs, "value", &v); err != nil {
			return nil, err
		}
		return v, nil
	}

	predeclared := starlark.StringDict{
		"Var": starlark.NewBuiltin("Var", varFn),
		"Str": starlark.NewBuiltin("Str", strFn),
	}

	file, err := syntax.Parse(path, src, 0)
	if err != nil {
		return nil, err
	}
	dedupeDictLiterals(file)

	prog, err := starlark.FileProgram(file, predeclared.Has)
	if err != nil {
		return nil, err
	}
	return prog.Init(thread, predeclared)
}

// dedupeDictLiterals rewrites every dict literal so a repeated string
// key keeps its first position with the value of its last occurrence.
// That is how the manifest dialect's source notation reads; Starlark
// would reject the duplicate key outright. Computed keys are left for
// evaluation to judge.
func dedupeDictLiterals(file *syntax.File) {
	syntax.Walk(file, func(n syntax.Node) bool {
		if n == nil {
			return false
		}
		dict, ok := n.(*syntax.DictExpr)
		if !ok {
			return true
		}
		seen := make(map[string]*syntax.DictEntry)
		kept := dict.List[:0]
		for _, item := range dict.List {
			entry := item.(*syntax.DictEntry)
			lit, ok := entry.Key.(*syntax.Literal)
			if !ok || lit.Token != syntax.STRING {
				kept = append(kept, item)
				continue
			}
			key := lit.Value.(string)
			if prev, dup := seen[key]; dup {
				prev.Value = entry.Value
				continue
			}
			seen[key] = entry
			kept = append(kept, item)
		}
		dict.List = kept
		return true
	})
}

// varsBinding extracts the optional top-level vars dict as raw Starlark
// values for Var() resolution.
func varsBinding(path string, globals starlark.StringDict) (map[string]starlark.Value, error) {
	out := make(map[string]starlark.Value)
	v, ok := globals["vars"]
	if !ok {
		return out, nil
	}
	dict, ok := v.(*starlark.Dict)
	if !ok {
		return nil, &ShapeError{Path: path, Binding: "vars", Reason: "must be a dict"}
	}
	for _, item := range dict.Items() {
		key, ok := item[0].(starlark.String)
		if !ok {
			return nil, &ShapeError{Path: path, Binding: "vars", Reason: "keys must be strings"}
		}
		out[string(key)] = item[1]
	}
	return out, nil
}

// buildManifest normalizes the evaluated globals into a Manifest.
func buildManifest(path string, globals starlark.StringDict) (*Manifest, error) {
	m := &Manifest{
		Vars: vars.Env{},
		Deps: make(map[string]*Dep),
	}

	if v, ok := globals["vars"]; ok {
		dict := v.(*starlark.Dict) // shape checked by varsBinding
		for _, item := range dict.Items() {
			key := item[0].(starlark.String)
			val, err := toVarValue(item[1])
			if err != nil {
				return nil, &ShapeError{Path: path, Binding: "vars", Reason: fmt.Sprintf("variable %q: %v", string(key), err)}
			}
			m.Vars[string(key)] = val
		}
	}

	depsVal, ok := globals["deps"]
	if !ok {
		return nil, &ShapeError{Path: path, Binding: "deps", Reason: "required binding is absent"}
	}
	depsDict, ok := depsVal.(*starlark.Dict)
	if !ok {
		return nil, &ShapeError{Path: path, Binding: "deps", Reason: "must be a dict"}
	}
	for _, item := range depsDict.Items() {
		key, ok := item[0].(starlark.String)
		if !ok {
			return nil, &ShapeError{Path: path, Binding: "deps", Reason: "keys must be strings"}
		}
		dep, err := normalizeDep(path, string(key), item[1])
		if err != nil {
			return nil, err
		}
		m.Deps[string(key)] = dep
		m.Paths = append(m.Paths, string(key))
	}

	if v, ok := globals["hooks"]; ok {
		list, ok := v.(*starlark.List)
		if !ok {
			return nil, &ShapeError{Path: path, Binding: "hooks", Reason: "must be a list"}
		}
		for i := 0; i < list.Len(); i++ {
			hook, err := normalizeHook(path, list.Index(i))
			if err != nil {
				return nil, err
			}
			m.Hooks = append(m.Hooks, hook)
		}
	}

	return m, nil
}

// normalizeDep converts one deps entry into a Dep. String entries are
// shorthand source dependencies; dict entries are either package specs
// (dep_type "cipd") or source specs with a url field.
func normalizeDep(manifestPath, depPath string, v starlark.Value) (*Dep, error) {
	switch spec := v.(type) {
	case starlark.String:
		url, ref, err := splitRef(depPath, string(spec))
		if err != nil {
			return nil, err
		}
		return &Dep{Kind: DepSource, URL: url, Ref: ref}, nil

	case *starlark.Dict:
		dep := &Dep{}
		if cond, ok, err := stringField(spec, "condition"); err != nil {
			return nil, &ShapeError{Path: manifestPath, Binding: "deps", Reason: fmt.Sprintf("dependency %q: %v", depPath, err)}
		} else if ok {
			dep.Condition = cond
		}

		depType, ok, err := stringField(spec, "dep_type")
		if err != nil {
			return nil, &ShapeError{Path: manifestPath, Binding: "deps", Reason: fmt.Sprintf("dependency %q: %v", depPath, err)}
		}
		if ok && depType == "cipd" {
			dep.Kind = DepPackage
			pkgs, err := packagesField(manifestPath, depPath, spec)
			if err != nil {
				return nil, err
			}
			dep.Packages = pkgs
			return dep, nil
		}

		url, ok, err := stringField(spec, "url")
		if err != nil {
			return nil, &ShapeError{Path: manifestPath, Binding: "deps", Reason: fmt.Sprintf("dependency %q: %v", depPath, err)}
		}
		if !ok {
			return nil, &ShapeError{Path: manifestPath, Binding: "deps", Reason: fmt.Sprintf("dependency %q has neither url nor packages", depPath)}
		}
		dep.Kind = DepSource
		dep.URL, dep.Ref, err = splitRef(depPath, url)
		if err != nil {
			return nil, err
		}
		return dep, nil

	default:
		return nil, &ShapeError{Path: manifestPath, Binding: "deps", Reason: fmt.Sprintf("dependency %q must be a string or dict, got %s", depPath, v.Type())}
	}
}

// packagesField reads the ordered packages list of a package dependency.
func packagesField(manifestPath, depPath string, spec *starlark.Dict) ([]Package, error) {
	shape := func(reason string) error {
		return &ShapeError{Path: manifestPath, Binding: "deps", Reason: fmt.Sprintf("dependency %q: %s", depPath, reason)}
	}

	v, found, err := spec.Get(starlark.String("packages"))
	if err != nil || !found {
		return nil, shape("package dependency has no packages list")
	}
	list, ok := v.(*starlark.List)
	if !ok {
		return nil, shape("packages must be a list")
	}

	pkgs := make([]Package, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		entry, ok := list.Index(i).(*starlark.Dict)
		if !ok {
			return nil, shape("packages entries must be dicts")
		}
		name, ok, err := stringField(entry, "package")
		if err != nil || !ok {
			return nil, shape("package entry needs a package name")
		}
		version, ok, err := stringField(entry, "version")
		if err != nil || !ok {
			return nil, shape("package entry needs a version")
		}
		pkgs = append(pkgs, Package{Name: name, Version: version})
	}
	return pkgs, nil
}

// normalizeHook converts one hooks entry.
func normalizeHook(manifestPath string, v starlark.Value) (Hook, error) {
	shape := func(reason string) error {
		return &ShapeError{Path: manifestPath, Binding: "hooks", Reason: reason}
	}

	dict, ok := v.(*starlark.Dict)
	if !ok {
		return Hook{}, shape("entries must be dicts")
	}

	var hook Hook
	name, ok, err := stringField(dict, "name")
	if err != nil || !ok {
		return Hook{}, shape("hook needs a name")
	}
	hook.Name = name

	if cond, ok, err := stringField(dict, "condition"); err != nil {
		return Hook{}, shape(fmt.Sprintf("hook %q: %v", name, err))
	} else if ok {
		hook.Condition = cond
	}

	actionVal, found, err := dict.Get(starlark.String("action"))
	if err != nil || !found {
		return Hook{}, shape(fmt.Sprintf("hook %q needs an action", name))
	}
	actionList, ok := actionVal.(*starlark.List)
	if !ok {
		return Hook{}, shape(fmt.Sprintf("hook %q: action must be a list", name))
	}
	for i := 0; i < actionList.Len(); i++ {
		token, ok := actionList.Index(i).(starlark.String)
		if !ok {
			return Hook{}, shape(fmt.Sprintf("hook %q: action tokens must be strings", name))
		}
		hook.Action = append(hook.Action, string(token))
	}

	return hook, nil
}

// stringField reads an optional string-valued dict field. The error is
// non-nil when the field exists but is not a string.
func stringField(dict *starlark.Dict, key string) (string, bool, error) {
	v, found, err := dict.Get(starlark.String(key))
	if err != nil || !found {
		return "", false, err
	}
	s, ok := v.(starlark.String)
	if !ok {
		return "", false, fmt.Errorf("field %q must be a string, got %s", key, v.Type())
	}
	return string(s), true, nil
}

// splitRef normalizes a "url@ref" string by splitting on the last "@".
func splitRef(depPath, s string) (string, string, error) {
	i := strings.LastIndex(s, "@")
	if i <= 0 || i == len(s)-1 {
		return "", "", &MalformedRefError{DepPath: depPath, URL: s}
	}
	return s[:i], s[i+1:], nil
}

// toVarValue converts a Starlark vars value into an environment value.
// Integers are carried as their decimal string form.
func toVarValue(v starlark.Value) (vars.Value, error) {
	switch val := v.(type) {
	case starlark.Bool:
		return vars.BoolValue(bool(val)), nil
	case starlark.String:
		return vars.StringValue(string(val)), nil
	case starlark.Int:
		return vars.StringValue(val.String()), nil
	default:
		return vars.Value{}, fmt.Errorf("unsupported type %s", v.Type())
	}
}
