package logic

import "fmt"

// Predicate is a (name, arity) pair, interned by that key (spec section
// 3).
type Predicate struct {
	Name  string
	Arity int
}

// ID returns the canonical "name/arity" key used to index the knowledge
// base and the prover's subgoal table.
func (p *Predicate) ID() string { return fmt.Sprintf("%s/%d", p.Name, p.Arity) }

func (p *Predicate) String() string { return p.ID() }

// Pred interns a predicate by (name, arity).
func (ns *Namespace) Pred(name string, arity int) *Predicate {
	key := fmt.Sprintf("%s/%d", name, arity)
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if p, ok := ns.preds[key]; ok {
		return p
	}
	p := &Predicate{Name: name, Arity: arity}
	ns.preds[key] = p
	return p
}

// EqualityPredicate is the always-registered =/2 primitive predicate
// (spec sections 3 and 6).
func (ns *Namespace) EqualityPredicate() *Predicate { return ns.Pred("=", 2) }
