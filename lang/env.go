package lang

import "strings"

// Scope is one level of the variable lookup stack.
type Scope struct {
	// Injected holds bindings made while rendering, such as loop items.
	Injected map[string]Value
	// Overlay is an optional host value whose fields are visible in the
	// scope. A null Overlay contributes nothing.
	Overlay Value
}

// binds returns the value bound to name in s.
func (s Scope) binds(name string) (Value, bool) {
	if v, ok := s.Injected[name]; ok {
		return v, true
	}

	if !s.Overlay.IsNull() {
		return s.Overlay.Field(name)
	}

	return Value{}, false
}

// Environment resolves variable paths for one render pass.
//
// Lookups search scopes from innermost to outermost and then the root
// context. The first scope that binds the first segment of a path wins,
// even if the rest of the path does not resolve within it.
type Environment struct {
	context Value
	scopes  []Scope
}

// NewEnvironment returns an environment with no scopes whose root context is
// context.
func NewEnvironment(context Value) *Environment {
	return &Environment{context: context}
}

// Context returns the root context.
func (e *Environment) Context() Value { return e.context }

// Depth returns the number of scopes pushed.
func (e *Environment) Depth() int { return len(e.scopes) }

// Push enters a new innermost scope.
func (e *Environment) Push(s Scope) {
	e.scopes = append(e.scopes, s)
}

// Pop leaves the innermost scope and returns it.
func (e *Environment) Pop() (Scope, bool) {
	n := len(e.scopes)
	if n == 0 {
		return Scope{}, false
	}

	s := e.scopes[n-1]
	e.scopes[n-1] = Scope{}
	e.scopes = e.scopes[:n-1]

	return s, true
}

// Set binds name in the innermost scope, pushing a scope if there is none.
func (e *Environment) Set(name string, v Value) {
	if len(e.scopes) == 0 {
		e.Push(Scope{})
	}

	top := &e.scopes[len(e.scopes)-1]
	if top.Injected == nil {
		top.Injected = make(map[string]Value)
	}

	top.Injected[name] = v
}

// GetValue resolves a dotted path to a value of any kind.
func (e *Environment) GetValue(path string) (Value, bool) {
	if path == "" {
		return Value{}, false
	}

	head, rest, _ := strings.Cut(path, ".")

	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i].binds(head); ok {
			return v.Lookup(rest)
		}
	}

	v, ok := e.context.Field(head)
	if !ok {
		return Value{}, false
	}

	return v.Lookup(rest)
}

// Get resolves a dotted path to text. Only scalars have text.
func (e *Environment) Get(path string) (string, bool) {
	v, ok := e.GetValue(path)
	if !ok {
		return "", false
	}

	return v.Text()
}
