package logic

import "strings"

// LabelSide is one side of a Label: either a bare symbolic constant
// (Functor set, Args empty) or a ground function symbol applied to
// terms (spec section 3). Sides may carry unbound Variables before a
// clause's sentence is grounded by resolution; Key is only meaningful
// once every Term in Args is a Constant.
type LabelSide struct {
	Functor string
	Args    []Term
}

// Key renders the side for use as part of a Label's interning key and
// equality test. It is only stable once the side is ground.
func (s LabelSide) Key() string {
	if len(s.Args) == 0 {
		return s.Functor
	}
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, s.Functor)
	for _, a := range s.Args {
		parts = append(parts, a.ID())
	}
	return lpConcat(parts)
}

func (s LabelSide) String() string {
	if len(s.Args) == 0 {
		return s.Functor
	}
	var b strings.Builder
	b.WriteString(s.Functor)
	b.WriteByte('(')
	for i, a := range s.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Ground reports whether every argument of s is a Constant.
func (s LabelSide) Ground() bool {
	for _, a := range s.Args {
		if !a.IsConst() {
			return false
		}
	}
	return true
}

// Subst substitutes every Term in s's arguments under env.
func (s LabelSide) Subst(env Env) LabelSide {
	if len(s.Args) == 0 {
		return s
	}
	out := make([]Term, len(s.Args))
	for i, a := range s.Args {
		out[i] = Subst(a, env)
	}
	return LabelSide{Functor: s.Functor, Args: out}
}

func (s LabelSide) freeVars(set map[*Variable]bool) {
	for _, a := range s.Args {
		if v, ok := a.(*Variable); ok {
			set[v] = true
		}
	}
}

// Label is an atomic proposition "Partitioning = Part" (spec section
// 3). Two labels (p, x1) and (p, x2) with the same Partitioning.Key()
// and differing Part.Key() are mutually exclusive.
type Label struct {
	Partitioning LabelSide
	Part         LabelSide
}

// ID is the interning/equality key for a Label.
func (l *Label) ID() string { return lpConcat([]string{l.Partitioning.Key(), l.Part.Key()}) }

func (l *Label) String() string { return l.Partitioning.String() + "=" + l.Part.String() }

// Ground reports whether both sides of l are fully ground.
func (l *Label) Ground() bool { return l.Partitioning.Ground() && l.Part.Ground() }

// Subst substitutes every Term on both sides of l under env.
func (l *Label) Subst(env Env) *Label {
	return &Label{Partitioning: l.Partitioning.Subst(env), Part: l.Part.Subst(env)}
}

// Label interns a Label by its two sides.
func (ns *Namespace) Label(partitioning, part LabelSide) *Label {
	key := lpConcat([]string{partitioning.Key(), part.Key()})
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if l, ok := ns.labels[key]; ok {
		return l
	}
	l := &Label{Partitioning: partitioning, Part: part}
	ns.labels[key] = l
	return l
}
