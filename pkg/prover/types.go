package prover

import (
	"math"

	"github.com/gitrdm/judged/pkg/logic"
)

// inf stands in for the "∞" sentinel spec section 4.F uses for an
// as-yet-unconstrained neglink.
const inf = math.MaxInt

// subgoalState is spec section 4.F's Subgoal: a tabled literal together
// with its accumulated answers and the clauses waiting on more of them.
type subgoalState struct {
	literal logic.Literal
	tag     string

	answers          []*logic.Clause
	positiveWaiters  []*waiter
	negativeWaiters  []*waiter
	completed        bool

	// frame is this subgoal's stack frame while it is live (nil once
	// completed and popped); used to read its current poslink/neglink
	// from update_lookup/update_solution.
	frame *frameT
}

// waiter is spec section 4.F's Waiter: a clause, paused at its selected
// literal, waiting for another subgoal to produce more answers. origin
// and originFrame identify the subgoal exploration this clause belongs
// to, so that once it can be resumed, the resumed resolvent re-enters
// slg_newclause under the correct poslink/neglink bookkeeping.
type waiter struct {
	origin      logic.Literal
	originFrame *frameT
	clause      *logic.Clause
	idx         int
}

// frameT is spec section 4.F's Frame: a stack entry recording when a
// subgoal was opened (dfn) and the minimum depth reachable from it via a
// positive or negative dependency edge (poslink/neglink). Completion
// (spec section 4.F's slg_complete) compares these against dfn.
//
// A frame doubles as the "mins" accumulator threaded through
// slg_subgoal's exploration of its own subgoal: poslink and neglink
// start equal to dfn and ∞ respectively and are only ever lowered.
type frameT struct {
	subgoal *subgoalState
	dfn     int
	posLink int
	negLink int
}
