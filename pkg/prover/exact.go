package prover

import (
	"context"

	"github.com/gitrdm/judged/pkg/kb"
	"github.com/gitrdm/judged/pkg/logic"
	"github.com/gitrdm/judged/pkg/sentence"
)

// Exact is the sentence-aware prover of spec section 4.G: it carries a
// descriptive sentence through every resolution step instead of
// committing to one world up front, drops resolvents whose combined
// sentence is unconditionally false, fuses answers with equivalent
// sentences, and reports one clause per distinct head whose sentence is
// the disjunction of every sentence under which that head was derived.
// Negative literals are unsupported: selecting one is a hard error,
// since the sentence algebra has no well-founded treatment of negation
// under partial, still-being-discovered world information.
type Exact struct {
	store *kb.KnowledgeBase
	ns    *logic.Namespace
	parts sentence.PartsLookup
}

// NewExact builds an Exact prover over store, consulting parts (the
// knowledge base itself, in the ordinary case) for the mutual-exclusion
// constraints used to test sentence falsehood and equivalence.
func NewExact(store *kb.KnowledgeBase, ns *logic.Namespace, parts sentence.PartsLookup) *Exact {
	return &Exact{store: store, ns: ns, parts: parts}
}

// alwaysTrue admits every clause regardless of sentence: the exact
// prover's admission decision happens via sentence conjunction and
// falsehood-checking during resolve/factor, not via a chosen world.
func alwaysTrue(logic.LabelSide, logic.LabelSide) bool { return true }

// Ask resolves query to completion, returning one clause per distinct
// answer head with the disjunction of every sentence it was derived
// under, in first-derived order.
func (p *Exact) Ask(ctx context.Context, query logic.Literal) ([]*logic.Clause, error) {
	engine := newCoreEngine(ctx, p.store, p.ns, exactResolver{parts: p.parts}, alwaysTrue)
	root, err := engine.solve(query)
	if err != nil {
		return nil, err
	}
	order := make([]string, 0)
	byHead := make(map[string]*logic.Clause)
	for _, ans := range root.answers {
		key := ans.Head.ID()
		if existing, ok := byHead[key]; ok {
			byHead[key] = &logic.Clause{
				Head:     ans.Head,
				Sentence: sentence.Disjunct(existing.SentenceOrTop(), ans.SentenceOrTop()),
			}
			continue
		}
		byHead[key] = &logic.Clause{Head: ans.Head, Sentence: ans.SentenceOrTop()}
		order = append(order, key)
	}
	out := make([]*logic.Clause, 0, len(order))
	for _, k := range order {
		out = append(out, byHead[k])
	}
	return out, nil
}
