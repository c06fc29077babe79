// Package prover implements spec section 4.F's SLG resolution engine —
// tabled subgoals, waiters, and well-founded completion — and its
// sentence-aware extension from spec section 4.G. Base answers a query
// against a single chosen world; Exact answers it symbolically, one
// clause per distinct head with the disjunction of every sentence under
// which that head was derived.
package prover

import (
	"context"

	"github.com/gitrdm/judged/pkg/kb"
	"github.com/gitrdm/judged/pkg/logic"
	"github.com/gitrdm/judged/pkg/sentence"
)

// Base is the plain SLG prover of spec section 4.F: it resolves against
// a knowledge base filtered by a Checker (typically a chosen world's
// label assignment) and returns one fact per distinct answer head.
//
// A Base is not safe for concurrent use; each call to Ask owns its own
// tabling state from scratch, so a single Base value may be reused
// sequentially across many queries.
type Base struct {
	store *kb.KnowledgeBase
	ns    *logic.Namespace
}

// NewBase builds a Base prover over store, interning fresh variables
// through ns during resolution.
func NewBase(store *kb.KnowledgeBase, ns *logic.Namespace) *Base {
	return &Base{store: store, ns: ns}
}

// Ask resolves query to completion under checker and returns one fact
// clause per distinct answer head, in first-derived order. ctx is
// checked at slg_subgoal and slg_newclause entry (spec section 5); a
// canceled context aborts the query and returns its error.
func (p *Base) Ask(ctx context.Context, query logic.Literal, checker sentence.Checker) ([]*logic.Clause, error) {
	engine := newCoreEngine(ctx, p.store, p.ns, baseResolver{}, checker)
	root, err := engine.solve(query)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := make([]*logic.Clause, 0, len(root.answers))
	for _, ans := range root.answers {
		id := ans.Head.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, logic.NewFact(ans.Head))
	}
	return out, nil
}
