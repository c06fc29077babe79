package logic

import "strings"

// Literal is a predicate applied to an ordered list of terms, with a
// polarity (spec section 3). Literals are value types: clauses own
// their literals by value, which is cheap because every Term and
// Predicate they reference is already an interned handle.
type Literal struct {
	Pred *Predicate
	Args []Term
	Pos  bool // true = positive, false = negated

	id  string
	tag string
}

// NewLiteral builds a positive literal. Use Invert for negation.
func NewLiteral(pred *Predicate, args ...Term) Literal {
	return Literal{Pred: pred, Args: args, Pos: true}
}

func (l Literal) String() string {
	var b strings.Builder
	if !l.Pos {
		b.WriteString("~")
	}
	b.WriteString(l.Pred.Name)
	if len(l.Args) > 0 {
		b.WriteByte('(')
		for i, a := range l.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}

// ID is the literal's identity key: polarity, predicate id, and the
// length-prefixed concatenation of its argument ids (spec section 4.B).
func (l *Literal) ID() string {
	if l.id != "" {
		return l.id
	}
	parts := make([]string, 0, len(l.Args)+2)
	parts = append(parts, polarityTag(l.Pos), l.Pred.ID())
	for _, a := range l.Args {
		parts = append(parts, a.ID())
	}
	l.id = lpConcat(parts)
	return l.id
}

// Tag is the alpha-equivalence canonical key used to drive subgoal
// memoisation: identical to ID except each Variable is rewritten to a
// positional placeholder (spec section 4.B).
func (l *Literal) Tag() string {
	if l.tag != "" {
		return l.tag
	}
	seen := make(map[*Variable]string)
	counter := 0
	parts := make([]string, 0, len(l.Args)+2)
	parts = append(parts, polarityTag(l.Pos), l.Pred.ID())
	for _, a := range l.Args {
		parts = append(parts, Tag(a, seen, &counter))
	}
	l.tag = lpConcat(parts)
	return l.tag
}

func polarityTag(pos bool) string {
	if pos {
		return "+"
	}
	return "-"
}

// Subst substitutes every argument of l under env, returning a fresh
// Literal (never mutating l).
func (l Literal) Subst(env Env) Literal {
	args := make([]Term, len(l.Args))
	for i, a := range l.Args {
		args[i] = Subst(a, env)
	}
	return Literal{Pred: l.Pred, Args: args, Pos: l.Pos}
}

// Rename shuffles l's variables apart (fresh, never-seen-before
// variables) and then substitutes, using renaming as shared scratch
// space so repeated occurrences of the same variable in l map to the
// same fresh variable.
func (l Literal) Rename(renaming map[*Variable]*Variable, ns *Namespace) Literal {
	args := make([]Term, len(l.Args))
	for i, a := range l.Args {
		args[i] = Shuffle(a, renaming, ns)
	}
	return Literal{Pred: l.Pred, Args: args, Pos: l.Pos}
}

// Invert returns l with its polarity flipped.
func (l Literal) Invert() Literal {
	return Literal{Pred: l.Pred, Args: l.Args, Pos: !l.Pos}
}

// IsGrounded reports whether every argument of l is a Constant.
func (l Literal) IsGrounded() bool {
	for _, a := range l.Args {
		if !a.IsConst() {
			return false
		}
	}
	return true
}

func (l Literal) freeVars(set map[*Variable]bool) {
	for _, a := range l.Args {
		if v, ok := a.(*Variable); ok {
			set[v] = true
		}
	}
}

// Unify unifies l and other under env: predicates must match exactly,
// then arguments unify position-wise after chasing (spec section 4.B).
// Polarity is not compared here — callers select literals of matching
// polarity before calling Unify (the prover's positive/negative
// resolution paths each enforce this themselves).
func (l Literal) Unify(other Literal, env Env) (Env, bool) {
	if l.Pred != other.Pred || len(l.Args) != len(other.Args) {
		return nil, false
	}
	cur := env
	for i := range l.Args {
		var ok bool
		cur, ok = Unify(l.Args[i], other.Args[i], cur)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
