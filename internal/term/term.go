package term

import (
	"fmt"
	"sort"
)

// Term is a sealed interface over the four term constructors.
// Only Var, Lam, App and Ref implement it.
type Term interface {
	term()
}

// Var is a bound variable occurrence. Index is the de Bruijn index
// (0 = innermost enclosing Lam). Name is display-only.
type Var struct {
	Index int
	Name  string
}

// Lam is an abstraction. Name is the binder's display name.
type Lam struct {
	Name string
	Body Term
}

// App is an application of Func to Argm.
type App struct {
	Func Term
	Argm Term
}

// Ref is a reference to a global definition by qualified name.
type Ref struct {
	Name string
}

func (Var) term() {}
func (Lam) term() {}
func (App) term() {}
func (Ref) term() {}

// Defs maps qualified names to closed, type-erased terms.
type Defs map[string]Term

// Names returns the definition names in sorted order.
func (d Defs) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the definition bound to name, or an *UnboundError.
func (d Defs) Lookup(name string) (Term, error) {
	t, ok := d[name]
	if !ok {
		return nil, &UnboundError{Name: name}
	}
	return t, nil
}

// Apps builds a left-nested application f a1 a2 ... an.
func Apps(f Term, args ...Term) Term {
	for _, a := range args {
		f = App{Func: f, Argm: a}
	}
	return f
}

// Lams wraps body in abstractions binding names left to right.
func Lams(names []string, body Term) Term {
	for i := len(names) - 1; i >= 0; i-- {
		body = Lam{Name: names[i], Body: body}
	}
	return body
}

// Size counts constructors. Used for peak-size statistics of the
// reference reducer.
func Size(t Term) int {
	n := 0
	stack := []Term{t}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n++
		switch t := top.(type) {
		case Lam:
			stack = append(stack, t.Body)
		case App:
			stack = append(stack, t.Func, t.Argm)
		}
	}
	return n
}

// Equal reports α-equivalence. Display names are ignored.
func Equal(a, b Term) bool {
	type pair struct{ a, b Term }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch x := p.a.(type) {
		case Var:
			y, ok := p.b.(Var)
			if !ok || x.Index != y.Index {
				return false
			}
		case Lam:
			y, ok := p.b.(Lam)
			if !ok {
				return false
			}
			stack = append(stack, pair{x.Body, y.Body})
		case App:
			y, ok := p.b.(App)
			if !ok {
				return false
			}
			stack = append(stack, pair{x.Func, y.Func}, pair{x.Argm, y.Argm})
		case Ref:
			y, ok := p.b.(Ref)
			if !ok || x.Name != y.Name {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Refs returns the distinct global names referenced by t, sorted.
func Refs(t Term) []string {
	seen := make(map[string]bool)
	stack := []Term{t}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch t := top.(type) {
		case Lam:
			stack = append(stack, t.Body)
		case App:
			stack = append(stack, t.Func, t.Argm)
		case Ref:
			seen[t.Name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckClosed verifies that every variable of t is bound inside t and that
// every Ref names a definition. It returns the first *UnboundError found.
func CheckClosed(t Term, defs Defs) error {
	type frame struct {
		t     Term
		depth int
	}
	stack := []frame{{t, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch t := f.t.(type) {
		case Var:
			if t.Index < 0 || t.Index >= f.depth {
				return &UnboundError{Name: t.Name, Free: true}
			}
		case Lam:
			stack = append(stack, frame{t.Body, f.depth + 1})
		case App:
			stack = append(stack, frame{t.Argm, f.depth}, frame{t.Func, f.depth})
		case Ref:
			if _, ok := defs[t.Name]; !ok {
				return &UnboundError{Name: t.Name}
			}
		default:
			return fmt.Errorf("unknown term %T", f.t)
		}
	}
	return nil
}
