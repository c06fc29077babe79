// Package bdd implements an Ordered Binary Decision Diagram engine
// (spec section 4.C): two sink nodes and internal (root, high, low)
// nodes, canonicalized by structural interning so that node identity
// equality is BDD equivalence.
//
// An Engine owns its own node table and its own label-tag-to-variable-
// index numbering (spec section 9's "move into a BDD-engine instance
// owned by the context so multiple independent provers do not share
// numbering"). It is not safe for concurrent use, matching judged's
// single-threaded-per-context evaluation model (spec section 5).
package bdd

import (
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"
)

// sink ranks: negative so they never collide with a real variable
// index, but rank() below maps them to +infinity so the ordering check
// ("variables ordered by ascending index") always treats them as
// falling after every real variable, per spec section 4.C.
const (
	zeroRoot = -1
	oneRoot  = -2
)

// Node is a canonical BDD node. Two Nodes are equal iff they are the
// same pointer.
type Node struct {
	Root int
	High *Node
	Low  *Node
}

func (n *Node) String() string {
	switch n.Root {
	case zeroRoot:
		return "0"
	case oneRoot:
		return "1"
	default:
		return fmt.Sprintf("(v%d ? %s : %s)", n.Root, n.High, n.Low)
	}
}

func rank(root int) int {
	if root < 0 {
		return math.MaxInt
	}
	return root
}

type nodeKey struct {
	root int
	high *Node
	low  *Node
}

type iteKey struct{ f, g, h *Node }

// Engine is a single BDD instance: a node table plus a stable
// label-tag -> variable-index map.
type Engine struct {
	zero, one *Node
	nodes     map[nodeKey]*Node
	iteMemo   map[iteKey]*Node
	support   map[*Node]*bitset.BitSet
	varIndex  map[string]int
	nextVar   int
}

// New creates an empty Engine with its own sinks and variable numbering.
func New() *Engine {
	e := &Engine{
		nodes:    make(map[nodeKey]*Node),
		iteMemo:  make(map[iteKey]*Node),
		support:  make(map[*Node]*bitset.BitSet),
		varIndex: make(map[string]int),
	}
	e.zero = &Node{Root: zeroRoot}
	e.one = &Node{Root: oneRoot}
	return e
}

// Zero and One return the engine's canonical sink nodes.
func (e *Engine) Zero() *Node { return e.zero }
func (e *Engine) One() *Node  { return e.one }

func (e *Engine) isSink(n *Node) bool { return n == e.zero || n == e.one }

// VarIndex returns the stable BDD variable index assigned to tag,
// assigning the next available index the first time tag is seen. The
// same tag always compiles to the same variable for this Engine's
// lifetime (spec section 4.C).
func (e *Engine) VarIndex(tag string) int {
	if idx, ok := e.varIndex[tag]; ok {
		return idx
	}
	idx := e.nextVar
	e.nextVar++
	e.varIndex[tag] = idx
	return idx
}

// mk returns the canonical node for (root, high, low), applying the
// standard BDD reduction rule (a node whose two children are identical
// is redundant and is replaced by that child).
func (e *Engine) mk(root int, high, low *Node) *Node {
	if high == low {
		return high
	}
	key := nodeKey{root, high, low}
	if n, ok := e.nodes[key]; ok {
		return n
	}
	n := &Node{Root: root, High: high, Low: low}
	e.nodes[key] = n
	return n
}

// Var returns the node for "variable idx is true".
func (e *Engine) Var(idx int) *Node {
	return e.mk(idx, e.one, e.zero)
}

// Neg returns the negation of n.
func (e *Engine) Neg(n *Node) *Node {
	if n == e.zero {
		return e.one
	}
	if n == e.one {
		return e.zero
	}
	return e.mk(n.Root, e.Neg(n.High), e.Neg(n.Low))
}

// Ite is the canonical Shannon "if-then-else" form (spec section 4.C),
// with the named shortcuts applied before falling back to recursive
// co-factor expansion on the minimum-index non-sink variable among f, g
// and h.
func (e *Engine) Ite(f, g, h *Node) *Node {
	switch {
	case f == e.one:
		return g
	case f == e.zero:
		return h
	case g == e.one && h == e.zero:
		return f
	case g == e.zero && h == e.one:
		return e.Neg(f)
	case g == h:
		return g
	}

	key := iteKey{f, g, h}
	if n, ok := e.iteMemo[key]; ok {
		return n
	}

	top := rank(f.Root)
	if r := rank(g.Root); r < top {
		top = r
	}
	if r := rank(h.Root); r < top {
		top = r
	}

	fHigh, fLow := e.cofactor(f, top)
	gHigh, gLow := e.cofactor(g, top)
	hHigh, hLow := e.cofactor(h, top)

	result := e.mk(top, e.Ite(fHigh, gHigh, hHigh), e.Ite(fLow, gLow, hLow))
	e.iteMemo[key] = result
	return result
}

// cofactor returns (n|var=1, n|var=0) for n with respect to the
// variable at index `top`. A node whose own root is not `top` does not
// depend on it (by construction top is always <= every live node's
// root at the point this is called from Ite), so both co-factors are n
// itself.
func (e *Engine) cofactor(n *Node, top int) (*Node, *Node) {
	if n.Root == top {
		return n.High, n.Low
	}
	return n, n
}

// And, Or and Xor are derived operators built on Ite, per spec section
// 4.C.
func (e *Engine) And(a, b *Node) *Node { return e.Ite(a, b, e.zero) }
func (e *Engine) Or(a, b *Node) *Node  { return e.Ite(a, e.one, b) }
func (e *Engine) Xor(a, b *Node) *Node { return e.Ite(a, e.Neg(b), b) }

// Restrict substitutes the given variable-index assignments into n,
// collapsing nodes whose root is assigned and rebuilding the remainder
// (spec section 4.C).
func (e *Engine) Restrict(n *Node, assign map[int]bool) *Node {
	if e.isSink(n) {
		return n
	}
	if val, ok := assign[n.Root]; ok {
		if val {
			return e.Restrict(n.High, assign)
		}
		return e.Restrict(n.Low, assign)
	}
	high := e.Restrict(n.High, assign)
	low := e.Restrict(n.Low, assign)
	return e.mk(n.Root, high, low)
}

// Support returns the set of variable indices appearing anywhere below
// n, memoized per node since nodes are canonical and immutable. Ite
// picks its splitting variable from its operands' roots and does not
// consult it, and neither does the exclusion matrix in package sentence.
func (e *Engine) Support(n *Node) *bitset.BitSet {
	if e.isSink(n) {
		return bitset.New(0)
	}
	if s, ok := e.support[n]; ok {
		return s
	}
	s := bitset.New(uint(n.Root + 1)).Set(uint(n.Root))
	s = s.Union(e.Support(n.High))
	s = s.Union(e.Support(n.Low))
	e.support[n] = s
	return s
}
