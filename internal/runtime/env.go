package runtime

// Environment represents a variable scope with a parent chain. A function
// value keeps its defining environment alive through its Closure reference;
// Go's garbage collector gives it the shared-ownership lifetime the language
// requires.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment with an optional parent scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Define binds a name in this scope, shadowing any outer binding.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get looks up a name by walking the scope chain innermost to global.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if val, exists := env.values[name]; exists {
			return val, true
		}
	}
	return nil, false
}

// Assign updates the name in the nearest enclosing scope that already owns
// it; if no scope owns it, the name is defined in this scope
// (define-on-first-assign).
func (e *Environment) Assign(name string, value Value) {
	for env := e; env != nil; env = env.parent {
		if _, exists := env.values[name]; exists {
			env.values[name] = value
			return
		}
	}
	e.values[name] = value
}
