package term

import "github.com/roach88/optimal/internal/ir"

// ToValue converts t to its hashable shape. Display names are dropped, so
// α-equivalent terms convert to equal values.
//
//	Var -> {"var": index}
//	Lam -> {"lam": body}
//	App -> {"app": [func, argm]}
//	Ref -> {"ref": name}
func ToValue(t Term) ir.Value {
	switch t := t.(type) {
	case Var:
		return ir.Object{"var": ir.Int(t.Index)}
	case Lam:
		return ir.Object{"lam": ToValue(t.Body)}
	case App:
		return ir.Object{"app": ir.Array{ToValue(t.Func), ToValue(t.Argm)}}
	case Ref:
		return ir.Object{"ref": ir.String(t.Name)}
	default:
		return ir.Object{}
	}
}

// Hash returns the content address of t up to α-equivalence.
func Hash(t Term) (string, error) {
	return ir.TermHash(ToValue(t))
}
