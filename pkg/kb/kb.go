// Package kb implements judged's knowledge base (spec section 4.E):
// indexed storage of facts, rules and primitives, safety enforcement on
// assert, and the lazy clause-production sequence the prover consumes.
package kb

import (
	"iter"

	"github.com/gitrdm/judged/pkg/jerr"
	"github.com/gitrdm/judged/pkg/logic"
)

// Cache is the per-query cache interface exposed to primitives (spec
// section 6): a primitive keys its lookups by a literal's tag (eager
// loading, keyed by a fully-variabilised literal) or by the literal as-
// is (conservative loading). It is reset once per top-level Ask.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, v any)
	Clear()
}

// ProverHandle is what a primitive generator receives alongside the
// literal it was asked to solve: access to the knowledge base it was
// invoked from, and the cache for this query (spec section 6). Defined
// on the consumer side (here) rather than in package prover, so this
// package never imports package prover.
//
// Cache returns a CacheError (spec section 7) if the handle was built
// without a configured cache; a primitive that does not need caching is
// free to ignore the error and compute its answers directly.
type ProverHandle interface {
	KB() *KnowledgeBase
	Cache() (Cache, error)
}

// Generator is a primitive predicate: a function from a literal and a
// prover handle to a lazy sequence of clauses whose heads share the
// literal's predicate (spec section 6). This is the
// "generator-based primitive predicate" pattern spec section 9 calls
// for, expressed with Go's standard iter.Seq rather than a bespoke
// iterator type.
type Generator func(lit logic.Literal, prover ProverHandle) iter.Seq[*logic.Clause]

type primitiveEntry struct {
	Generator   Generator
	Description string
}

// KnowledgeBase holds the three predicate-indexed mappings of spec
// section 3: facts, rules and primitives.
type KnowledgeBase struct {
	facts      map[string]*clauseSet
	rules      map[string]*clauseSet
	primitives map[string][]primitiveEntry
	predOrder  []string
	predSeen   map[string]bool
}

// New creates an empty KnowledgeBase.
func New() *KnowledgeBase {
	return &KnowledgeBase{
		facts:      make(map[string]*clauseSet),
		rules:      make(map[string]*clauseSet),
		primitives: make(map[string][]primitiveEntry),
		predSeen:   make(map[string]bool),
	}
}

func (kb *KnowledgeBase) trackPred(predID string) {
	if !kb.predSeen[predID] {
		kb.predSeen[predID] = true
		kb.predOrder = append(kb.predOrder, predID)
	}
}

// Assert stores c, rejecting it with a SafetyError if it violates any
// of spec section 3's three safety conditions. A head-ground clause
// with no body and no delayed literals is stored as a fact; everything
// else is stored as a rule (spec section 4.E).
func (kb *KnowledgeBase) Assert(c *logic.Clause) error {
	if err := c.IsSafe(); err != nil {
		return jerr.SafetyError("%s: %v", c, err)
	}
	predID := c.Head.Pred.ID()
	kb.trackPred(predID)
	if c.IsFact() && c.Head.IsGrounded() {
		if kb.facts[predID] == nil {
			kb.facts[predID] = newClauseSet()
		}
		kb.facts[predID].put(c)
		return nil
	}
	if kb.rules[predID] == nil {
		kb.rules[predID] = newClauseSet()
	}
	kb.rules[predID].put(c)
	return nil
}

// Retract removes c (matched by ID) from whichever of facts/rules it
// was stored in. Retracting a clause that is not present is a no-op.
func (kb *KnowledgeBase) Retract(c *logic.Clause) {
	predID := c.Head.Pred.ID()
	if cs, ok := kb.facts[predID]; ok {
		if cs.delete(c.ID()) {
			return
		}
	}
	if cs, ok := kb.rules[predID]; ok {
		cs.delete(c.ID())
	}
}

// RegisterPrimitive appends generator under predicate p. Multiple
// primitives registered on the same predicate are fused: Clauses
// concatenates their outputs in registration order (spec section 4.E).
func (kb *KnowledgeBase) RegisterPrimitive(p *logic.Predicate, generator Generator, description string) {
	predID := p.ID()
	kb.trackPred(predID)
	kb.primitives[predID] = append(kb.primitives[predID], primitiveEntry{Generator: generator, Description: description})
}

// HasPrimitive reports whether any primitive is registered for p.
func (kb *KnowledgeBase) HasPrimitive(p *logic.Predicate) bool {
	return len(kb.primitives[p.ID()]) > 0
}

// Clauses lazily yields, in order: every clause produced by lit's
// predicate's registered primitives (invoked with lit and prover), then
// asserted rules, then asserted facts (spec section 4.E).
func (kb *KnowledgeBase) Clauses(lit logic.Literal, prover ProverHandle) iter.Seq[*logic.Clause] {
	predID := lit.Pred.ID()
	return func(yield func(*logic.Clause) bool) {
		for _, pe := range kb.primitives[predID] {
			for c := range pe.Generator(lit, prover) {
				if !yield(c) {
					return
				}
			}
		}
		if cs, ok := kb.rules[predID]; ok {
			for c := range cs.all() {
				if !yield(c) {
					return
				}
			}
		}
		if cs, ok := kb.facts[predID]; ok {
			for c := range cs.all() {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Parts scans the sentences of every stored fact and rule (primitives
// are not scanned: they do not carry asserted sentences) and returns
// every distinct part observed under the given partitioning (spec
// section 4.E). Predicates are scanned in first-observed order, and for
// each one its facts before its rules, each in assert order; a part is
// listed where it is first seen in that scan. Used for exclusion-matrix
// construction and for @uniform distribution annotation.
func (kb *KnowledgeBase) Parts(partitioning logic.LabelSide) []logic.LabelSide {
	seen := make(map[string]logic.LabelSide)
	order := make([]string, 0)
	record := func(c *logic.Clause) {
		labels := make(map[*logic.Label]bool)
		logic.SentenceLabels(clauseSentence(c), labels)
		for l := range labels {
			if l.Partitioning.Key() != partitioning.Key() {
				continue
			}
			k := l.Part.Key()
			if _, ok := seen[k]; !ok {
				seen[k] = l.Part
				order = append(order, k)
			}
		}
	}
	for _, predID := range kb.predOrder {
		if cs, ok := kb.facts[predID]; ok {
			for c := range cs.all() {
				record(c)
			}
		}
		if cs, ok := kb.rules[predID]; ok {
			for c := range cs.all() {
				record(c)
			}
		}
	}
	out := make([]logic.LabelSide, 0, len(order))
	for _, k := range order {
		out = append(out, seen[k])
	}
	return out
}

func clauseSentence(c *logic.Clause) logic.Sentence {
	if c.Sentence == nil {
		return logic.Top{}
	}
	return c.Sentence
}

// Predicates returns every predicate id that has had a fact, rule or
// primitive stored, in first-observed order (used by cmd/judged's :kb
// meta-command). Retracting a predicate's last clause does not remove
// it from this list.
func (kb *KnowledgeBase) Predicates() []string {
	out := make([]string, len(kb.predOrder))
	copy(out, kb.predOrder)
	return out
}

// FactsFor and RulesFor return the clauses stored for predID.
func (kb *KnowledgeBase) FactsFor(predID string) []*logic.Clause { return collect(kb.facts, predID) }
func (kb *KnowledgeBase) RulesFor(predID string) []*logic.Clause { return collect(kb.rules, predID) }

func collect(m map[string]*clauseSet, predID string) []*logic.Clause {
	cs, ok := m[predID]
	if !ok {
		return nil
	}
	out := make([]*logic.Clause, 0, cs.len())
	for c := range cs.all() {
		out = append(out, c)
	}
	return out
}

// HasPrimitiveID is HasPrimitive by predicate id, for callers (such as
// cmd/judged's :kb meta-command) that only have the id on hand.
func (kb *KnowledgeBase) HasPrimitiveID(predID string) bool {
	return len(kb.primitives[predID]) > 0
}

// FactCount and RuleCount report the number of stored facts and rules.
func (kb *KnowledgeBase) FactCount() int {
	n := 0
	for _, cs := range kb.facts {
		n += cs.len()
	}
	return n
}

func (kb *KnowledgeBase) RuleCount() int {
	n := 0
	for _, cs := range kb.rules {
		n += cs.len()
	}
	return n
}
