package prover

import "github.com/gitrdm/judged/pkg/logic"

// selection names the literal slg_newclause chose from a resolvent's
// body, together with its index (needed to splice it back out during
// resolve/factor).
type selection struct {
	idx int
	lit logic.Literal
}

// selectLiteral implements spec section 4.F's literal selection rule:
// prefer any positive literal in body order; otherwise the first
// negative literal that is ground; otherwise the first body literal at
// all (which, being negative and non-ground, only exists to trigger the
// "programming error" path the caller checks for).
func selectLiteral(body []logic.Literal) (selection, bool) {
	for i, l := range body {
		if l.Pos {
			return selection{i, l}, true
		}
	}
	for i, l := range body {
		if !l.Pos && l.IsGrounded() {
			return selection{i, l}, true
		}
	}
	if len(body) > 0 {
		return selection{0, body[0]}, true
	}
	return selection{}, false
}
