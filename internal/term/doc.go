// Package term provides the type-erased λ-term model shared by every stage
// of the toolchain.
//
// Terms use de Bruijn indices for variables, so structural equality is
// α-equivalence. Binder names are kept only for display. A Defs map binds
// qualified global names ("module/name") to closed terms; a Ref is a lazy
// pointer into it.
//
// This package also holds the surface syntax (scanner, parser, printer) and
// a substitution-based reference reducer. The reference reducer copies
// arguments on every β-step and serves as the "debug" evaluation mode and as
// the oracle the interaction-net runtime is tested against.
package term
