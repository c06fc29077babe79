// Package worlds implements spec section 4.H's Context façade: the
// three evaluation strategies (Deterministic, Exact, Monte Carlo) that
// each own a knowledge base and a prover and present the same
// assert/retract/ask/add_probability/use_extension surface over it.
package worlds

import (
	"context"

	"github.com/gitrdm/judged/pkg/extension"
	"github.com/gitrdm/judged/pkg/kb"
	"github.com/gitrdm/judged/pkg/logic"
	"github.com/gitrdm/judged/pkg/primitive"
)

// Answer is one reported result of a query: a clause and, where the
// evaluation strategy produces one, a probability (spec section 4.H).
type Answer struct {
	Clause      *logic.Clause
	Probability *float64
}

// Result is the outcome of a Context.Ask call: an ordered list of
// Answer plus free-form notes (Monte Carlo reports "iterations" and
// "error" here).
type Result struct {
	Answers []Answer
	Notes   map[string]any
}

// probEntry pairs a part with its assigned probability, kept in
// first-assigned order so Monte Carlo's weighted sampling walk is
// deterministic given a fixed random source (spec section 4.H "pick").
type probEntry struct {
	part logic.LabelSide
	p    float64
}

// core is the shared façade state every Context variant embeds: a
// knowledge base, a namespace for fresh variables, the partitioning
// probability table, and the extension registry (spec section 4.H).
type core struct {
	store *kb.KnowledgeBase
	ns    *logic.Namespace
	prob  map[string][]probEntry
	exts  *extension.Registry
}

func newCore() *core {
	c := &core{
		store: kb.New(),
		ns:    logic.NewNamespace(),
		prob:  make(map[string][]probEntry),
		exts:  extension.NewRegistry(),
	}
	primitive.Register(c.store, c.ns)
	return c
}

// KB and NS implement extension.Handle.
func (c *core) KB() *kb.KnowledgeBase { return c.store }
func (c *core) NS() *logic.Namespace  { return c.ns }

// AssertClause and RetractClause are straight pass-throughs to the
// knowledge base (spec section 4.H).
func (c *core) AssertClause(cl *logic.Clause) error { return c.store.Assert(cl) }
func (c *core) RetractClause(cl *logic.Clause)      { c.store.Retract(cl) }

// AddProbability stores p for part under partitioning, overwriting any
// prior probability recorded for the same pair.
func (c *core) AddProbability(partitioning, part logic.LabelSide, p float64) {
	key := partitioning.Key()
	entries := c.prob[key]
	for i, e := range entries {
		if e.part.Key() == part.Key() {
			entries[i].p = p
			return
		}
	}
	c.prob[key] = append(entries, probEntry{part: part, p: p})
}

// UseExtension runs ext's setup hook against h and, on success,
// registers it so future Ask calls fire its before/after hooks.
func (c *core) UseExtension(h extension.Handle, ext *extension.Extension, config map[string]any) error {
	return c.exts.Use(h, ext, config)
}

// Parts exposes the knowledge base's parts lookup for
// AnnotateDistributionAction's `uniform` distribution (spec section
// 4.I) and for sentence.PartsLookup (spec section 4.D).
func (c *core) Parts(partitioning logic.LabelSide) []logic.LabelSide {
	return c.store.Parts(partitioning)
}

// askCtx defaults a nil context.Context to context.Background, matching
// the teacher's permissive entry points while still honoring
// cancellation when a caller supplies one (spec section 5).
func askCtx(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
