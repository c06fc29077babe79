// Package logic implements judged's core data model (spec section 3 and
// section 4.B): interned terms, predicates, labels, literals and
// clauses. It has no dependency on the prover, the sentence/BDD algebra
// or the knowledge base — those are all built on top of it.
package logic

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// ConstantKind distinguishes the three kinds of constant payload named
// in spec section 3.
type ConstantKind int

const (
	KindSymbol ConstantKind = iota
	KindString
	KindNumber
)

func (k ConstantKind) String() string {
	switch k {
	case KindSymbol:
		return "symbol"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Term is either a Constant or a Variable (spec section 3). Compound
// (functor-nested) terms are out of scope per spec section 1's
// non-goals; Label sides carry their own flat functor/arguments shape
// instead (see label.go).
type Term interface {
	fmt.Stringer
	// IsConst reports whether this term is a Constant (vs. a Variable).
	IsConst() bool
	// ID returns the stable hash/identity key for this term.
	ID() string
	isTerm()
}

// Constant is an interned, immutable leaf term.
type Constant struct {
	Kind ConstantKind
	Text string // canonical textual payload
}

func (*Constant) isTerm()        {}
func (c *Constant) IsConst() bool { return true }
func (c *Constant) ID() string    { return "c" + string(rune('0'+int(c.Kind))) + ":" + c.Text }
func (c *Constant) String() string {
	if c.Kind == KindString {
		return strconv.Quote(c.Text)
	}
	return c.Text
}

// Variable is a logic variable, interned by name within its owning
// Namespace. Two Variable values are the same variable iff they are the
// same pointer.
type Variable struct {
	Name string
}

func (*Variable) isTerm()         {}
func (v *Variable) IsConst() bool { return false }
func (v *Variable) ID() string    { return "$" + v.Name }
func (v *Variable) String() string {
	return v.Name
}

// Namespace owns the interners that give terms, predicates and labels
// their identity equality (spec section 4.A). A Namespace's lifetime is
// normally tied to one worlds.Context; see SPEC_FULL.md 4.A for why strong
// (rather than weak) interning is the accepted implementation here.
type Namespace struct {
	consts  map[string]*Constant
	vars    map[string]*Variable
	preds   map[string]*Predicate
	labels  map[string]*Label
	mu      sync.Mutex
	freshCt int
}

// NewNamespace creates an empty, ready-to-use Namespace.
func NewNamespace() *Namespace {
	return &Namespace{
		consts: make(map[string]*Constant),
		vars:   make(map[string]*Variable),
		preds:  make(map[string]*Predicate),
		labels: make(map[string]*Label),
	}
}

// Const interns a constant by (kind, text).
func (ns *Namespace) Const(kind ConstantKind, text string) *Constant {
	key := kind.String() + ":" + text
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if c, ok := ns.consts[key]; ok {
		return c
	}
	c := &Constant{Kind: kind, Text: text}
	ns.consts[key] = c
	return c
}

// Symbol is shorthand for Const(KindSymbol, text).
func (ns *Namespace) Symbol(text string) *Constant { return ns.Const(KindSymbol, text) }

// Str is shorthand for Const(KindString, text).
func (ns *Namespace) Str(text string) *Constant { return ns.Const(KindString, text) }

// Number is shorthand for Const(KindNumber, canonical) where canonical
// is the shortest round-tripping decimal form of v.
func (ns *Namespace) Number(v float64) *Constant {
	return ns.Const(KindNumber, strconv.FormatFloat(v, 'g', -1, 64))
}

// Var interns a variable by name.
func (ns *Namespace) Var(name string) *Variable {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if v, ok := ns.vars[name]; ok {
		return v
	}
	v := &Variable{Name: name}
	ns.vars[name] = v
	return v
}

// FreshVar returns a brand-new variable never before returned by this
// Namespace, used by Shuffle/Rename to rename clauses apart.
func (ns *Namespace) FreshVar(hint string) *Variable {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	for {
		ns.freshCt++
		name := fmt.Sprintf("_%s%d", hint, ns.freshCt)
		if _, ok := ns.vars[name]; ok {
			continue
		}
		v := &Variable{Name: name}
		ns.vars[name] = v
		return v
	}
}

// Env is a (possibly partial) substitution from variables to terms,
// built incrementally by Unify. Env values are immutable snapshots:
// Bind returns a new Env rather than mutating the receiver, so a failed
// branch of resolution never corrupts a sibling branch's bindings.
type Env map[*Variable]Term

// Bind returns a copy of env extended with v -> t.
func (env Env) Bind(v *Variable, t Term) Env {
	out := make(Env, len(env)+1)
	for k, val := range env {
		out[k] = val
	}
	out[v] = t
	return out
}

// Subst performs one substitution step: a Variable bound in env resolves
// to its binding, an unbound Variable or a Constant returns itself.
func Subst(t Term, env Env) Term {
	if v, ok := t.(*Variable); ok {
		if bound, ok := env[v]; ok {
			return bound
		}
	}
	return t
}

// Chase follows a chain of variable bindings to its endpoint: if env
// binds v to w and w to x, Chase(v) is x.
func Chase(t Term, env Env) Term {
	for {
		v, ok := t.(*Variable)
		if !ok {
			return t
		}
		bound, ok := env[v]
		if !ok {
			return t
		}
		t = bound
	}
}

// Shuffle renames t apart: a Constant is returned unchanged; a Variable
// not yet present in renaming is assigned a fresh variable (recorded in
// renaming so repeated occurrences share it).
func Shuffle(t Term, renaming map[*Variable]*Variable, ns *Namespace) Term {
	v, ok := t.(*Variable)
	if !ok {
		return t
	}
	if fv, ok := renaming[v]; ok {
		return fv
	}
	fv := ns.FreshVar(v.Name)
	renaming[v] = fv
	return fv
}

// Tag renders t for alpha-equivalence comparison: constants contribute
// their identity; variables contribute a positional placeholder shared
// by repeated occurrences (spec section 4.B).
func Tag(t Term, seen map[*Variable]string, counter *int) string {
	if c, ok := t.(*Constant); ok {
		return c.ID()
	}
	v := t.(*Variable)
	if s, ok := seen[v]; ok {
		return s
	}
	s := fmt.Sprintf("v%d", *counter)
	*counter++
	seen[v] = s
	return s
}

// Unify attempts to unify a and b under env, returning the extended
// environment, or ok=false if a and b cannot be made equal. Two distinct
// constants never unify (spec section 4.B); a variable unifies with
// anything by binding.
func Unify(a, b Term, env Env) (Env, bool) {
	a = Chase(a, env)
	b = Chase(b, env)

	if av, ok := a.(*Variable); ok {
		if bv, ok := b.(*Variable); ok && av == bv {
			return env, true
		}
		return env.Bind(av, b), true
	}
	if bv, ok := b.(*Variable); ok {
		return env.Bind(bv, a), true
	}
	// Both constants: interning makes identity equality exact equality.
	if a.(*Constant) == b.(*Constant) {
		return env, true
	}
	return nil, false
}

// lpConcat builds the length-prefixed concatenation spec section 4.B
// calls for in Literal.id/Literal.tag: each part is written as
// "<byte-length>:<part>" so no ambiguity arises from parts containing
// arbitrary characters (including ':' itself).
func lpConcat(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}
