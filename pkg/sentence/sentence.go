// Package sentence implements the descriptive-sentence algebra of spec
// section 4.D: compiling logic.Sentence values to BDDs, testing
// equivalence and contradiction given a knowledge base's mutual-
// exclusion constraints, and the normalizing conjunct/disjunct
// constructors the prover uses exclusively so sentences stay in a
// canonical shape.
package sentence

import (
	"fmt"

	"github.com/gitrdm/judged/pkg/bdd"
	"github.com/gitrdm/judged/pkg/logic"
)

// PartsLookup is satisfied by the knowledge base: for a given
// partitioning, it reports every part observed across stored clauses
// (spec section 4.E "parts(partitioning)"). Defined here, on the
// consumer side, so package sentence never imports package kb.
type PartsLookup interface {
	Parts(partitioning logic.LabelSide) []logic.LabelSide
}

// Checker decides whether a given label currently holds, used by
// Evaluate (spec section 4.D). Deterministic and Monte Carlo contexts
// each supply their own.
type Checker func(partitioning, part logic.LabelSide) bool

// CreateBDD compiles s into e, memoized implicitly by e's own node
// interning (spec section 4.D "create_bdd(s)").
func CreateBDD(e *bdd.Engine, s logic.Sentence) *bdd.Node {
	switch x := s.(type) {
	case logic.Top:
		return e.One()
	case logic.Bottom:
		return e.Zero()
	case logic.LabelSentence:
		return e.Var(e.VarIndex(x.Label.ID()))
	case logic.Not:
		return e.Neg(CreateBDD(e, x.Operand))
	case logic.And:
		acc := e.One()
		for _, op := range x.Operands {
			acc = e.And(acc, CreateBDD(e, op))
		}
		return acc
	case logic.Or:
		acc := e.Zero()
		for _, op := range x.Operands {
			acc = e.Or(acc, CreateBDD(e, op))
		}
		return acc
	default:
		return e.Zero()
	}
}

// Labels returns the set of distinct labels appearing anywhere in s
// (spec section 4.D "labels(s)").
func Labels(s logic.Sentence) map[*logic.Label]bool {
	out := make(map[*logic.Label]bool)
	logic.SentenceLabels(s, out)
	return out
}

// Evaluate performs short-circuiting Boolean evaluation of s, calling
// checker(partitioning, part) at each label (spec section 4.D).
func Evaluate(s logic.Sentence, checker Checker) bool {
	switch x := s.(type) {
	case logic.Top:
		return true
	case logic.Bottom:
		return false
	case logic.LabelSentence:
		return checker(x.Label.Partitioning, x.Label.Part)
	case logic.Not:
		return !Evaluate(x.Operand, checker)
	case logic.And:
		for _, op := range x.Operands {
			if !Evaluate(op, checker) {
				return false
			}
		}
		return true
	case logic.Or:
		for _, op := range x.Operands {
			if Evaluate(op, checker) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// partitionings returns the distinct partitionings (by key) appearing
// across every sentence passed in, each represented by its first-seen
// LabelSide.
func partitionings(ss ...logic.Sentence) []logic.LabelSide {
	seen := make(map[string]logic.LabelSide)
	order := make([]string, 0)
	for _, s := range ss {
		labels := Labels(s)
		for lbl := range labels {
			key := lbl.Partitioning.Key()
			if _, ok := seen[key]; !ok {
				seen[key] = lbl.Partitioning
				order = append(order, key)
			}
		}
	}
	out := make([]logic.LabelSide, 0, len(order))
	for _, key := range order {
		out = append(out, seen[key])
	}
	return out
}

// ExclusionMatrix compiles the "at most one part true per partitioning"
// constraint over the given partitionings (spec section 4.D
// "exclusion_matrix(partitions, kb)"): for each partition with known
// parts x1..xn (n>1), OR_i(xi AND AND_{j!=i} not xj), conjoined across
// partitions. A partitioning with zero or one known part contributes no
// constraint (vacuously true).
func ExclusionMatrix(e *bdd.Engine, ps []logic.LabelSide, kb PartsLookup) *bdd.Node {
	acc := e.One()
	for _, p := range ps {
		parts := kb.Parts(p)
		if len(parts) <= 1 {
			continue
		}
		disj := e.Zero()
		for i, xi := range parts {
			term := e.Var(e.VarIndex((&logic.Label{Partitioning: p, Part: xi}).ID()))
			conj := term
			for j, xj := range parts {
				if i == j {
					continue
				}
				notXj := e.Neg(e.Var(e.VarIndex((&logic.Label{Partitioning: p, Part: xj}).ID())))
				conj = e.And(conj, notXj)
			}
			disj = e.Or(disj, conj)
		}
		acc = e.And(acc, disj)
	}
	return acc
}

// Equivalent tests whether l and r are equivalent given kb's mutual
// exclusion constraints (spec section 4.D). Both operands must be
// fully ground; non-ground input returns an error.
func Equivalent(l, r logic.Sentence, kb PartsLookup) (bool, error) {
	if !logic.SentenceGround(l) || !logic.SentenceGround(r) {
		return false, fmt.Errorf("sentence.Equivalent: both operands must be ground")
	}
	e := bdd.New()
	excl := ExclusionMatrix(e, partitionings(l, r), kb)
	lb := e.And(CreateBDD(e, l), excl)
	rb := e.And(CreateBDD(e, r), excl)
	return lb == rb, nil
}

// Falsehood reports whether s is unsatisfiable given kb's mutual
// exclusion constraints: s AND exclusion_matrix(s) == ZERO (spec
// section 4.D). Unlike Equivalent, Falsehood does not require s to be
// fully ground, since the prover calls it mid-resolution on partially
// grounded resolvent sentences.
func Falsehood(s logic.Sentence, kb PartsLookup) bool {
	e := bdd.New()
	excl := ExclusionMatrix(e, partitionings(s), kb)
	compiled := e.And(CreateBDD(e, s), excl)
	return compiled == e.Zero()
}

// Conjunct is the only constructor the prover uses to build
// conjunctions: it drops Top operands and collapses to a single
// operand (or to Top on an empty/all-Top input), per spec section 4.D.
func Conjunct(parts ...logic.Sentence) logic.Sentence {
	flat := make([]logic.Sentence, 0, len(parts))
	for _, p := range parts {
		if _, ok := p.(logic.Top); ok {
			continue
		}
		flat = append(flat, p)
	}
	switch len(flat) {
	case 0:
		return logic.Top{}
	case 1:
		return flat[0]
	default:
		return logic.And{Operands: flat}
	}
}

// Disjunct is the dual of Conjunct: drops Bottom operands, collapses to
// a single operand, returns Bottom on an empty/all-Bottom input.
func Disjunct(parts ...logic.Sentence) logic.Sentence {
	flat := make([]logic.Sentence, 0, len(parts))
	for _, p := range parts {
		if _, ok := p.(logic.Bottom); ok {
			continue
		}
		flat = append(flat, p)
	}
	switch len(flat) {
	case 0:
		return logic.Bottom{}
	case 1:
		return flat[0]
	default:
		return logic.Or{Operands: flat}
	}
}
