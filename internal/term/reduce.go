package term

// ReduceStats reports the work done by the reference reducer.
type ReduceStats struct {
	// Steps counts β-contractions and definition unfoldings.
	Steps int `json:"steps"`
	// Peak is the largest size reached by a term under head reduction.
	Peak int `json:"peak"`
}

// ReduceOptions configures the reference reducer.
type ReduceOptions struct {
	// MaxSteps bounds Steps; 0 means unbounded.
	MaxSteps int
	// Weak stops at weak head normal form.
	Weak bool
}

// Normalize reduces t in normal order (leftmost-outermost) by substitution,
// unfolding definitions when they reach head position. Every β-step copies
// its argument, which is what makes this the non-sharing baseline.
func Normalize(t Term, defs Defs, opts ReduceOptions) (Term, ReduceStats, error) {
	r := &reducer{defs: defs, opts: opts}
	r.observe(t)
	var out Term
	var err error
	if opts.Weak {
		out, err = r.whnf(t)
	} else {
		out, err = r.normal(t)
	}
	return out, r.stats, err
}

type reducer struct {
	defs  Defs
	opts  ReduceOptions
	stats ReduceStats
}

// tick accounts for one step before it is taken.
func (r *reducer) tick() error {
	if r.opts.MaxSteps > 0 && r.stats.Steps >= r.opts.MaxSteps {
		return &LimitError{Limit: r.opts.MaxSteps, Steps: r.stats.Steps}
	}
	r.stats.Steps++
	return nil
}

func (r *reducer) observe(t Term) {
	if n := Size(t); n > r.stats.Peak {
		r.stats.Peak = n
	}
}

// whnf reduces the head of t until it is an abstraction or a stuck
// application.
func (r *reducer) whnf(t Term) (Term, error) {
	for {
		head, args := spine(t)
		switch h := head.(type) {
		case Ref:
			def, err := r.defs.Lookup(h.Name)
			if err != nil {
				return nil, err
			}
			if err := r.tick(); err != nil {
				return nil, err
			}
			t = Apps(def, args...)
			r.observe(t)
		case Lam:
			if len(args) == 0 {
				return t, nil
			}
			if err := r.tick(); err != nil {
				return nil, err
			}
			t = Apps(instantiate(h.Body, args[0]), args[1:]...)
			r.observe(t)
		default:
			return t, nil
		}
	}
}

func (r *reducer) normal(t Term) (Term, error) {
	w, err := r.whnf(t)
	if err != nil {
		return nil, err
	}
	if lam, ok := w.(Lam); ok {
		body, err := r.normal(lam.Body)
		if err != nil {
			return nil, err
		}
		return Lam{Name: lam.Name, Body: body}, nil
	}
	head, args := spine(w)
	for i, a := range args {
		n, err := r.normal(a)
		if err != nil {
			return nil, err
		}
		args[i] = n
	}
	return Apps(head, args...), nil
}

// spine splits f a1 ... an into f and [a1 ... an].
func spine(t Term) (Term, []Term) {
	var rev []Term
	for {
		app, ok := t.(App)
		if !ok {
			break
		}
		rev = append(rev, app.Argm)
		t = app.Func
	}
	args := make([]Term, len(rev))
	for i := range rev {
		args[i] = rev[len(rev)-1-i]
	}
	return t, args
}

// instantiate substitutes arg for the outermost bound variable of body.
func instantiate(body, arg Term) Term {
	return subst(body, 0, arg)
}

func subst(t Term, depth int, arg Term) Term {
	switch t := t.(type) {
	case Var:
		switch {
		case t.Index == depth:
			return shift(arg, depth, 0)
		case t.Index > depth:
			return Var{Index: t.Index - 1, Name: t.Name}
		default:
			return t
		}
	case Lam:
		return Lam{Name: t.Name, Body: subst(t.Body, depth+1, arg)}
	case App:
		return App{Func: subst(t.Func, depth, arg), Argm: subst(t.Argm, depth, arg)}
	default:
		return t
	}
}

// shift adds d to every variable of t that is free above cutoff.
func shift(t Term, d, cutoff int) Term {
	if d == 0 {
		return t
	}
	switch t := t.(type) {
	case Var:
		if t.Index >= cutoff {
			return Var{Index: t.Index + d, Name: t.Name}
		}
		return t
	case Lam:
		return Lam{Name: t.Name, Body: shift(t.Body, d, cutoff+1)}
	case App:
		return App{Func: shift(t.Func, d, cutoff), Argm: shift(t.Argm, d, cutoff)}
	default:
		return t
	}
}
