package term

import "strings"

// Show renders t in the surface syntax accepted by Parse.
//
// Binder names are made unique against the enclosing binders by appending
// primes, so the output re-parses to an α-equivalent term.
func Show(t Term) string {
	var b strings.Builder
	p := printer{b: &b}
	p.term(t, 0)
	return b.String()
}

// String forms used by fmt.
func (v Var) String() string { return Show(v) }
func (l Lam) String() string { return Show(l) }
func (a App) String() string { return Show(a) }
func (r Ref) String() string { return r.Name }

type printer struct {
	b     *strings.Builder
	scope []string
}

// precedence contexts
const (
	ctxTop  = iota // anything goes
	ctxFunc        // function position: λ needs parentheses
	ctxArg         // argument position: λ and application need parentheses
)

func (p *printer) term(t Term, ctx int) {
	switch t := t.(type) {
	case Var:
		p.b.WriteString(p.lookup(t))
	case Ref:
		p.b.WriteString(t.Name)
	case Lam:
		if ctx != ctxTop {
			p.b.WriteByte('(')
		}
		p.b.WriteString("λ")
		depth := len(p.scope)
		var body Term = t
		first := true
		for {
			lam, ok := body.(Lam)
			if !ok {
				break
			}
			if !first {
				p.b.WriteByte(' ')
			}
			first = false
			name := p.fresh(lam.Name)
			p.scope = append(p.scope, name)
			p.b.WriteString(name)
			body = lam.Body
		}
		p.b.WriteString(". ")
		p.term(body, ctxTop)
		p.scope = p.scope[:depth]
		if ctx != ctxTop {
			p.b.WriteByte(')')
		}
	case App:
		if ctx == ctxArg {
			p.b.WriteByte('(')
		}
		p.term(t.Func, ctxFunc)
		p.b.WriteByte(' ')
		p.term(t.Argm, ctxArg)
		if ctx == ctxArg {
			p.b.WriteByte(')')
		}
	default:
		p.b.WriteString("<?>")
	}
}

func (p *printer) lookup(v Var) string {
	i := len(p.scope) - 1 - v.Index
	if v.Index < 0 || i < 0 {
		if v.Name != "" {
			return v.Name
		}
		return "?"
	}
	return p.scope[i]
}

func (p *printer) fresh(name string) string {
	if name == "" {
		name = "x"
	}
	for p.inScope(name) {
		name += "'"
	}
	return name
}

func (p *printer) inScope(name string) bool {
	for _, s := range p.scope {
		if s == name {
			return true
		}
	}
	return false
}
