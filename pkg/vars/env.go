// Package vars implements the variable environment that dependency and
// hook conditions are evaluated against. A lookup that misses never
// fails; callers receive an explicit absent result and treat the
// variable as falsy.
package vars

// Kind discriminates the value shapes a variable can hold.
type Kind int

const (
	// KindBool is a boolean setting such as checkout_linux.
	KindBool Kind = iota

	// KindString is a string setting such as host_os.
	KindString
)

// Value is a single variable binding. There is no null kind: a variable
// that is not set simply has no Value in the environment.
type Value struct {
	Kind Kind
	Bool bool
	Str  string
}

// BoolValue returns a boolean Value.
func BoolValue(v bool) Value {
	return Value{Kind: KindBool, Bool: v}
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Env maps variable names to their values. The zero value is usable for
// lookups.
type Env map[string]Value

// Lookup returns the value bound to name. The second result reports
// whether the variable is present; absent variables are not an error.
func (e Env) Lookup(name string) (Value, bool) {
	v, ok := e[name]
	return v, ok
}

// Set binds name to value, creating the map entry or overwriting an
// existing one.
func (e Env) Set(name string, value Value) {
	e[name] = value
}

// Clone returns an independent copy of the environment.
func (e Env) Clone() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
