package prover

import (
	"context"
	"fmt"

	"github.com/gitrdm/judged/pkg/jerr"
	"github.com/gitrdm/judged/pkg/kb"
	"github.com/gitrdm/judged/pkg/logic"
	"github.com/gitrdm/judged/pkg/sentence"
)

// defaultStepLimit bounds the number of slg_newclause calls a single Ask
// may perform before it gives up with a LimitError (spec section 7's
// limit_error, guarding against a runaway or genuinely non-terminating
// program rather than letting the process hang forever).
const defaultStepLimit = 1_000_000

// coreEngine is the shared SLG machinery of spec section 4.F, factored
// out so the base and exact provers (spec sections 4.F and 4.G) differ
// only in their Resolver (see resolve.go). It implements kb.ProverHandle
// itself, so every primitive generator it calls sees this query's own
// cache.
type coreEngine struct {
	store    *kb.KnowledgeBase
	ns       *logic.Namespace
	resolver Resolver
	checker  sentence.Checker

	ctx   context.Context
	cache *queryCache

	subgoals map[string]*subgoalState
	stack    []*frameT
	count    int
	steps    int
}

func newCoreEngine(ctx context.Context, store *kb.KnowledgeBase, ns *logic.Namespace, resolver Resolver, checker sentence.Checker) *coreEngine {
	return &coreEngine{
		store:    store,
		ns:       ns,
		resolver: resolver,
		checker:  checker,
		ctx:      ctx,
		cache:    newQueryCache(),
		subgoals: make(map[string]*subgoalState),
	}
}

// KB and Cache implement kb.ProverHandle.
func (e *coreEngine) KB() *kb.KnowledgeBase { return e.store }
func (e *coreEngine) Cache() (kb.Cache, error) {
	if e.cache == nil {
		return nil, jerr.CacheError("no cache configured for this query")
	}
	return e.cache, nil
}

// solve runs query to completion and returns its (now completed) root
// subgoal, from which Base.Ask and Exact.Ask each build their own
// answer aggregation (spec sections 4.F and 4.G end differently: plain
// head dedup versus grouping by head with sentences disjoined).
func (e *coreEngine) solve(query logic.Literal) (*subgoalState, error) {
	root := &subgoalState{literal: query, tag: query.Tag()}
	e.subgoals[root.tag] = root
	frame := &frameT{subgoal: root, dfn: 1, posLink: 1, negLink: inf}
	root.frame = frame
	e.stack = append(e.stack, frame)
	e.count = 2
	if err := e.slgSubgoal(query, frame); err != nil {
		return nil, err
	}
	return root, nil
}

func (e *coreEngine) checkCanceled() error {
	if err := e.ctx.Err(); err != nil {
		return fmt.Errorf("judged: query canceled: %w", err)
	}
	return nil
}

// admitted reports whether c's sentence, if fully ground, is accepted by
// e.checker. A sentence that still contains free variables (because its
// labels depend on arguments a later body literal will bind) is
// admitted unconditionally: it is re-checked, fully ground, at the point
// it becomes part of an answer's sentence.
func (e *coreEngine) admitted(c *logic.Clause) bool {
	s := c.SentenceOrTop()
	if !logic.SentenceGround(s) {
		return true
	}
	return sentence.Evaluate(s, e.checker)
}

// slgSubgoal implements spec section 4.F's slg_subgoal: iterate every
// clause the knowledge base offers for L, admit it against the checker,
// resolve it against the trivial goal clause L :- L, and feed whatever
// results through slg_newclause. Finishes by calling slg_complete on its
// own frame.
func (e *coreEngine) slgSubgoal(l logic.Literal, frame *frameT) error {
	if err := e.checkCanceled(); err != nil {
		return err
	}
	goalClause := &logic.Clause{Head: l, Body: []logic.Literal{l}, Sentence: logic.Top{}}
	for c := range e.store.Clauses(l, e) {
		if !e.admitted(c) {
			continue
		}
		resolved, ok := e.resolver.Resolve(e.ns, goalClause, 0, c)
		if !ok {
			continue
		}
		if err := e.slgNewClause(l, resolved, frame); err != nil {
			return err
		}
	}
	return e.slgComplete(frame)
}

// slgNewClause implements spec section 4.F's slg_newclause: dispatch on
// the clause's selected literal, or record it as an answer if its body
// is exhausted.
func (e *coreEngine) slgNewClause(l logic.Literal, clause *logic.Clause, frame *frameT) error {
	if err := e.checkCanceled(); err != nil {
		return err
	}
	e.steps++
	if e.steps > defaultStepLimit {
		return jerr.LimitError("query exceeded %d resolution steps without terminating", defaultStepLimit)
	}

	sel, found := selectLiteral(clause.Body)
	if !found {
		return e.slgAnswer(clause, frame)
	}
	if sel.lit.Pos {
		return e.slgPositive(l, clause, sel.idx, sel.lit, frame)
	}
	if !e.resolver.AllowNegative() {
		return jerr.UnsupportedError("negative literal %s is not supported by this query context", sel.lit)
	}
	if sel.lit.IsGrounded() {
		return e.slgNegative(l, clause, sel.idx, sel.lit, frame)
	}
	return fmt.Errorf("judged: non-ground negative literal %s selected (safety should have prevented this)", sel.lit)
}

// slgAnswer implements spec section 4.F's slg_answer.
func (e *coreEngine) slgAnswer(clause *logic.Clause, frame *frameT) error {
	sg := frame.subgoal
	for _, existing := range sg.answers {
		if e.resolver.Subsumed(existing, clause) {
			return nil
		}
	}
	hasOtherSameHead := false
	for _, existing := range sg.answers {
		if existing.Head.ID() == clause.Head.ID() {
			hasOtherSameHead = true
			break
		}
	}
	sg.answers = append(sg.answers, clause)

	if len(clause.Delayed) == 0 {
		sg.negativeWaiters = nil
		for _, w := range sg.positiveWaiters {
			resolved, ok := e.resolver.Resolve(e.ns, w.clause, w.idx, clause)
			if !ok {
				continue
			}
			if err := e.slgNewClause(w.origin, resolved, w.originFrame); err != nil {
				return err
			}
		}
		return nil
	}
	if hasOtherSameHead {
		return nil
	}
	for _, w := range sg.positiveWaiters {
		factored, ok := e.resolver.Factor(e.ns, w.clause, w.idx, clause)
		if !ok {
			continue
		}
		if err := e.slgNewClause(w.origin, factored, w.originFrame); err != nil {
			return err
		}
	}
	return nil
}

// slgPositive implements spec section 4.F's slg_positive: dispatch on
// whether a subgoal already exists (and if so, whether it is complete)
// for the selected literal.
func (e *coreEngine) slgPositive(l logic.Literal, clause *logic.Clause, idx int, selected logic.Literal, frame *frameT) error {
	tag := selected.Tag()
	target, exists := e.subgoals[tag]
	if !exists {
		target = &subgoalState{literal: selected, tag: tag}
		e.subgoals[tag] = target
		newFrame := &frameT{subgoal: target, dfn: e.count, posLink: e.count, negLink: inf}
		target.frame = newFrame
		e.count++
		e.stack = append(e.stack, newFrame)
		target.positiveWaiters = append(target.positiveWaiters, &waiter{origin: l, originFrame: frame, clause: clause, idx: idx})
		if err := e.slgSubgoal(selected, newFrame); err != nil {
			return err
		}
		e.updateSolution(frame, newFrame, true)
		return nil
	}
	if !target.completed {
		target.positiveWaiters = append(target.positiveWaiters, &waiter{origin: l, originFrame: frame, clause: clause, idx: idx})
		e.updateLookup(frame, target.frame, true)
		return nil
	}
	for _, ans := range target.answers {
		var resolved *logic.Clause
		var ok bool
		if len(ans.Delayed) == 0 {
			resolved, ok = e.resolver.Resolve(e.ns, clause, idx, ans)
		} else {
			resolved, ok = e.resolver.Factor(e.ns, clause, idx, ans)
		}
		if ok {
			if err := e.slgNewClause(l, resolved, frame); err != nil {
				return err
			}
		}
	}
	return nil
}

// slgNegative implements spec section 4.F's slg_negative: the tabled
// subgoal is keyed by the positive form of the selected literal, since
// testing a negative literal's truth means testing whether its positive
// form has any answer at all.
func (e *coreEngine) slgNegative(l logic.Literal, clause *logic.Clause, idx int, selected logic.Literal, frame *frameT) error {
	pos := selected.Invert()
	tag := pos.Tag()
	target, exists := e.subgoals[tag]
	if !exists {
		target = &subgoalState{literal: pos, tag: tag}
		e.subgoals[tag] = target
		newFrame := &frameT{subgoal: target, dfn: e.count, posLink: e.count, negLink: inf}
		target.frame = newFrame
		e.count++
		e.stack = append(e.stack, newFrame)
		target.negativeWaiters = append(target.negativeWaiters, &waiter{origin: l, originFrame: frame, clause: clause, idx: idx})
		if err := e.slgSubgoal(pos, newFrame); err != nil {
			return err
		}
		e.updateSolution(frame, newFrame, false)
		return nil
	}
	if !target.completed {
		target.negativeWaiters = append(target.negativeWaiters, &waiter{origin: l, originFrame: frame, clause: clause, idx: idx})
		e.updateLookup(frame, target.frame, false)
		return nil
	}
	if len(target.answers) == 0 {
		simplified := removeLiteral(clause, idx)
		return e.slgNewClause(l, simplified, frame)
	}
	return nil
}

// updateLookup implements spec section 4.F's update_lookup: merge a
// still-live target frame's links into frame's own. A positive
// dependency edge takes the minimum of both the target's poslink and
// neglink; a negative edge only propagates neglink.
func (e *coreEngine) updateLookup(frame, target *frameT, positive bool) {
	if positive {
		if target.posLink < frame.posLink {
			frame.posLink = target.posLink
		}
		if target.negLink < frame.posLink {
			frame.posLink = target.negLink
		}
		return
	}
	if target.negLink < frame.negLink {
		frame.negLink = target.negLink
	}
}

// updateSolution implements spec section 4.F's update_solution: the
// same merge as update_lookup, called after the target subgoal's own
// exploration has returned. A target that has since completed
// contributes nothing (its bmins is effectively {∞,∞}): a fully
// resolved subgoal cannot be part of any unresolved cycle.
func (e *coreEngine) updateSolution(frame, target *frameT, positive bool) {
	if target.subgoal.completed {
		return
	}
	e.updateLookup(frame, target, positive)
}

// slgComplete implements spec section 4.F's slg_complete.
func (e *coreEngine) slgComplete(frame *frameT) error {
	if frame.posLink == frame.dfn && frame.negLink == inf {
		popped := e.popTo(frame)
		for _, sg := range popped {
			sg.completed = true
			sg.frame = nil
			waiters := sg.negativeWaiters
			sg.negativeWaiters = nil
			for _, w := range waiters {
				if len(sg.answers) != 0 {
					continue
				}
				simplified := removeLiteral(w.clause, w.idx)
				if err := e.slgNewClause(w.origin, simplified, w.originFrame); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if frame.posLink == frame.dfn && frame.negLink >= frame.dfn {
		above := e.framesAbove(frame)
		for _, f := range above {
			waiters := f.subgoal.negativeWaiters
			f.subgoal.negativeWaiters = nil
			for _, w := range waiters {
				delayed := delayLiteral(w.clause, w.idx)
				if err := e.slgNewClause(w.origin, delayed, w.originFrame); err != nil {
					return err
				}
			}
			f.negLink = inf
		}
		for _, f := range above {
			if err := e.slgSubgoal(f.subgoal.literal, f); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

func (e *coreEngine) popTo(frame *frameT) []*subgoalState {
	idx := -1
	for i, f := range e.stack {
		if f == frame {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}
	popped := e.stack[idx:]
	e.stack = e.stack[:idx]
	out := make([]*subgoalState, len(popped))
	for i, f := range popped {
		out[i] = f.subgoal
	}
	return out
}

func (e *coreEngine) framesAbove(frame *frameT) []*frameT {
	idx := -1
	for i, f := range e.stack {
		if f == frame {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}
	above := make([]*frameT, len(e.stack)-idx-1)
	copy(above, e.stack[idx+1:])
	return above
}

// removeLiteral returns a clause like c with its idx'th body literal
// dropped: used when a completed negative subgoal has no answers, so
// the literal that depended on its absence is simply proven true.
func removeLiteral(c *logic.Clause, idx int) *logic.Clause {
	body := make([]logic.Literal, 0, len(c.Body)-1)
	body = append(body, c.Body[:idx]...)
	body = append(body, c.Body[idx+1:]...)
	return &logic.Clause{Head: c.Head, Body: body, Delayed: c.Delayed, Sentence: c.SentenceOrTop()}
}

// delayLiteral returns a clause like c with its idx'th body literal
// moved to the delayed list: used when a negative dependency's
// truth value is conditionally resolved as part of collapsing a cycle
// that mixes positive and negative edges (spec section 4.F's slg_complete
// second branch).
func delayLiteral(c *logic.Clause, idx int) *logic.Clause {
	body := make([]logic.Literal, 0, len(c.Body)-1)
	body = append(body, c.Body[:idx]...)
	body = append(body, c.Body[idx+1:]...)
	delayed := make([]logic.Literal, 0, len(c.Delayed)+1)
	delayed = append(delayed, c.Delayed...)
	delayed = append(delayed, c.Body[idx])
	return &logic.Clause{Head: c.Head, Body: body, Delayed: delayed, Sentence: c.SentenceOrTop()}
}
