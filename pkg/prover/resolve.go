package prover

import (
	"github.com/gitrdm/judged/pkg/logic"
	"github.com/gitrdm/judged/pkg/sentence"
)

// Resolver supplies the three points at which the exact prover (spec
// section 4.G) generalizes the base prover's SLG machinery (spec section
// 4.F): resolve, factor, and answer subsumption, plus a switch for
// whether negative literal selection is even allowed. Base and Exact
// each provide their own implementation and share every other moving
// part of the engine below.
type Resolver interface {
	// Resolve splices c's (renamed) body into g at position idx, after
	// unifying g.Body[idx] with c's head, reporting ok=false if
	// unification fails or (for the exact resolver) the combined
	// sentence is unsatisfiable.
	Resolve(ns *logic.Namespace, g *logic.Clause, idx int, c *logic.Clause) (*logic.Clause, bool)
	// Factor moves g.Body[idx] into g's delayed list after unifying it
	// with c's head, rather than splicing c's body in (spec section
	// 4.F's slg_factor). c is expected to be an answer (empty body).
	Factor(ns *logic.Namespace, g *logic.Clause, idx int, c *logic.Clause) (*logic.Clause, bool)
	// Subsumed reports whether candidate adds nothing beyond existing
	// among a subgoal's accumulated answers.
	Subsumed(existing, candidate *logic.Clause) bool
	// AllowNegative reports whether a negative literal may ever be
	// selected. The exact prover hard-errors instead (spec section 4.G).
	AllowNegative() bool
}

// splice does the unify-and-splice work shared by resolve and factor:
// unify g.Body[idx] against cRenamed's head, then build the new body
// (either spliced with cRenamed's body, for resolve, or with
// g.Body[idx] simply removed, for factor).
func splice(g *logic.Clause, idx int, cRenamed *logic.Clause, spliceBody bool) (*logic.Clause, logic.Env, bool) {
	env, ok := g.Body[idx].Unify(cRenamed.Head, logic.Env{})
	if !ok {
		return nil, nil, false
	}
	var newBody []logic.Literal
	var newDelayed []logic.Literal
	if spliceBody {
		newBody = make([]logic.Literal, 0, len(g.Body)-1+len(cRenamed.Body))
		newBody = append(newBody, g.Body[:idx]...)
		newBody = append(newBody, cRenamed.Body...)
		newBody = append(newBody, g.Body[idx+1:]...)
		newDelayed = make([]logic.Literal, 0, len(g.Delayed)+len(cRenamed.Delayed))
		newDelayed = append(newDelayed, g.Delayed...)
		newDelayed = append(newDelayed, cRenamed.Delayed...)
	} else {
		newBody = make([]logic.Literal, 0, len(g.Body)-1)
		newBody = append(newBody, g.Body[:idx]...)
		newBody = append(newBody, g.Body[idx+1:]...)
		newDelayed = make([]logic.Literal, 0, len(g.Delayed)+1+len(cRenamed.Delayed))
		newDelayed = append(newDelayed, g.Delayed...)
		newDelayed = append(newDelayed, g.Body[idx])
		newDelayed = append(newDelayed, cRenamed.Delayed...)
	}
	resolvent := &logic.Clause{Head: g.Head, Body: newBody, Delayed: newDelayed, Sentence: logic.Top{}}
	resolvent = resolvent.Subst(env)
	return resolvent, env, true
}

// baseResolver implements Resolver for the base prover (spec section
// 4.F): no sentence tracking, plain head-equality subsumption, negative
// literals allowed.
type baseResolver struct{}

func (baseResolver) Resolve(ns *logic.Namespace, g *logic.Clause, idx int, c *logic.Clause) (*logic.Clause, bool) {
	cRenamed := c.Rename(ns)
	return firstOf(splice(g, idx, cRenamed, true))
}

func (baseResolver) Factor(ns *logic.Namespace, g *logic.Clause, idx int, c *logic.Clause) (*logic.Clause, bool) {
	cRenamed := c.Rename(ns)
	return firstOf(splice(g, idx, cRenamed, false))
}

func (baseResolver) Subsumed(existing, candidate *logic.Clause) bool {
	return existing.Head.ID() == candidate.Head.ID()
}

func (baseResolver) AllowNegative() bool { return true }

func firstOf(c *logic.Clause, _ logic.Env, ok bool) (*logic.Clause, bool) { return c, ok }

// exactResolver implements Resolver for the exact prover (spec section
// 4.G): resolve and factor additionally conjoin the sentences of the two
// parents and reject the result if it is unsatisfiable; subsumption
// additionally requires the sentences to be BDD-equivalent; negative
// literals are never allowed.
type exactResolver struct {
	parts sentence.PartsLookup
}

func (r exactResolver) Resolve(ns *logic.Namespace, g *logic.Clause, idx int, c *logic.Clause) (*logic.Clause, bool) {
	cRenamed := c.Rename(ns)
	resolvent, env, ok := splice(g, idx, cRenamed, true)
	if !ok {
		return nil, false
	}
	return r.conjoinAndCheck(resolvent, g, cRenamed, env)
}

func (r exactResolver) Factor(ns *logic.Namespace, g *logic.Clause, idx int, c *logic.Clause) (*logic.Clause, bool) {
	cRenamed := c.Rename(ns)
	resolvent, env, ok := splice(g, idx, cRenamed, false)
	if !ok {
		return nil, false
	}
	return r.conjoinAndCheck(resolvent, g, cRenamed, env)
}

func (r exactResolver) conjoinAndCheck(resolvent, g, cRenamed *logic.Clause, env logic.Env) (*logic.Clause, bool) {
	combined := sentence.Conjunct(g.SentenceOrTop(), cRenamed.SentenceOrTop())
	combined = logic.SentenceSubst(combined, env)
	if sentence.Falsehood(combined, r.parts) {
		return nil, false
	}
	resolvent.Sentence = combined
	return resolvent, true
}

func (r exactResolver) Subsumed(existing, candidate *logic.Clause) bool {
	if existing.Head.ID() != candidate.Head.ID() {
		return false
	}
	eq, err := sentence.Equivalent(existing.SentenceOrTop(), candidate.SentenceOrTop(), r.parts)
	return err == nil && eq
}

func (exactResolver) AllowNegative() bool { return false }
