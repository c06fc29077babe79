package primitive

import (
	"github.com/gitrdm/judged/pkg/kb"
	"github.com/gitrdm/judged/pkg/logic"
)

// Equality returns the generator for the always-registered =/2
// primitive (spec sections 3 and 6): given a literal "A = B", it
// unifies A and B and, on success, yields a single fact whose head is
// the literal with that unification applied. It is only ever invoked
// with a positive literal: the prover selects the positive form of a
// literal as the subgoal key even when resolving a negated occurrence
// of "=" (spec section 4.F's literal selection rule).
//
// The equality primitive uses conservative loading (spec section 6):
// its cost is already O(1) per distinct literal, so caching by the
// fully-variabilised predicate would only throw away the argument
// bindings that make each call meaningful.
func Equality() kb.Generator {
	inner := func(lit logic.Literal, _ kb.ProverHandle) iterSeq {
		return func(yield func(*logic.Clause) bool) {
			if len(lit.Args) != 2 {
				return
			}
			env, ok := logic.Unify(lit.Args[0], lit.Args[1], logic.Env{})
			if !ok {
				return
			}
			head := lit.Subst(env)
			yield(logic.NewFact(head))
		}
	}
	return Cached(inner, ConservativeKey)
}

// Register installs the equality primitive on ns's =/2 predicate.
func Register(store *kb.KnowledgeBase, ns *logic.Namespace) {
	store.RegisterPrimitive(ns.EqualityPredicate(), Equality(), "built-in term equality")
}
