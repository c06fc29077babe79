package kb

import (
	"iter"

	"github.com/gitrdm/judged/pkg/logic"
)

// clauseSet is an insertion-ordered, id-deduplicated set of clauses. Go
// maps iterate in randomized order; judged's answer ordering only needs
// to be stable with respect to assert order (spec section 5), which
// this preserves without the complexity of a real persistent ordered
// map.
type clauseSet struct {
	byID  map[string]*logic.Clause
	order []string
}

func newClauseSet() *clauseSet {
	return &clauseSet{byID: make(map[string]*logic.Clause)}
}

func (s *clauseSet) put(c *logic.Clause) {
	id := c.ID()
	if _, exists := s.byID[id]; !exists {
		s.order = append(s.order, id)
	}
	s.byID[id] = c
}

func (s *clauseSet) delete(id string) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, x := range s.order {
		if x == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *clauseSet) len() int { return len(s.byID) }

func (s *clauseSet) all() iter.Seq[*logic.Clause] {
	return func(yield func(*logic.Clause) bool) {
		for _, id := range s.order {
			c, ok := s.byID[id]
			if !ok {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}
