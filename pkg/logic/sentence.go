package logic

// Sentence is a descriptive-sentence AST node (spec section 3): Top,
// Bottom, a Label, or a Not/And/Or over child sentences. This type only
// carries the data model and the substitution/free-variable/label-
// enumeration operations that do not require BDD compilation; the
// compile-to-BDD algebra (create_bdd, equivalent, falsehood,
// exclusion_matrix, conjunct/disjunct) lives in package sentence, which
// imports this package rather than the reverse, to avoid a cycle with
// package bdd.
type Sentence interface {
	isSentence()
	String() string
}

type Top struct{}

func (Top) isSentence()  {}
func (Top) String() string { return "true" }

type Bottom struct{}

func (Bottom) isSentence()  {}
func (Bottom) String() string { return "false" }

type LabelSentence struct {
	Label *Label
}

func (LabelSentence) isSentence() {}
func (l LabelSentence) String() string { return l.Label.String() }

type Not struct {
	Operand Sentence
}

func (Not) isSentence() {}
func (n Not) String() string { return "not (" + n.Operand.String() + ")" }

type And struct {
	Operands []Sentence
}

func (And) isSentence() {}
func (a And) String() string { return joinSentences(a.Operands, " and ") }

type Or struct {
	Operands []Sentence
}

func (Or) isSentence() {}
func (o Or) String() string { return joinSentences(o.Operands, " or ") }

func joinSentences(ss []Sentence, sep string) string {
	if len(ss) == 0 {
		return "true"
	}
	out := ss[0].String()
	for _, s := range ss[1:] {
		out += sep + s.String()
	}
	return "(" + out + ")"
}

// SentenceSubst substitutes every Term appearing in every Label of s
// under env, used when a clause's head becomes ground and its sentence
// must be grounded along with it (spec section 4.D "grounding via
// substitution").
func SentenceSubst(s Sentence, env Env) Sentence {
	switch x := s.(type) {
	case Top:
		return x
	case Bottom:
		return x
	case LabelSentence:
		return LabelSentence{Label: x.Label.Subst(env)}
	case Not:
		return Not{Operand: SentenceSubst(x.Operand, env)}
	case And:
		return And{Operands: substAll(x.Operands, env)}
	case Or:
		return Or{Operands: substAll(x.Operands, env)}
	default:
		return s
	}
}

func substAll(ss []Sentence, env Env) []Sentence {
	out := make([]Sentence, len(ss))
	for i, s := range ss {
		out[i] = SentenceSubst(s, env)
	}
	return out
}

// SentenceFreeVars collects every Variable appearing in s's labels into
// set.
func SentenceFreeVars(s Sentence, set map[*Variable]bool) {
	switch x := s.(type) {
	case LabelSentence:
		x.Label.Partitioning.freeVars(set)
		x.Label.Part.freeVars(set)
	case Not:
		SentenceFreeVars(x.Operand, set)
	case And:
		for _, op := range x.Operands {
			SentenceFreeVars(op, set)
		}
	case Or:
		for _, op := range x.Operands {
			SentenceFreeVars(op, set)
		}
	}
}

// SentenceLabels collects every distinct Label appearing anywhere in s
// (spec section 4.D "labels(s)").
func SentenceLabels(s Sentence, out map[*Label]bool) {
	switch x := s.(type) {
	case LabelSentence:
		out[x.Label] = true
	case Not:
		SentenceLabels(x.Operand, out)
	case And:
		for _, op := range x.Operands {
			SentenceLabels(op, out)
		}
	case Or:
		for _, op := range x.Operands {
			SentenceLabels(op, out)
		}
	}
}

// SentenceRename shuffles every Term in every Label of s apart using
// renaming as shared scratch space, mirroring Literal.Rename. Used by
// Clause.Rename to keep a clause's sentence consistent with its
// freshly-renamed body/delayed/head variables.
func SentenceRename(s Sentence, renaming map[*Variable]*Variable, ns *Namespace) Sentence {
	switch x := s.(type) {
	case Top:
		return x
	case Bottom:
		return x
	case LabelSentence:
		return LabelSentence{Label: &Label{
			Partitioning: renameSide(x.Label.Partitioning, renaming, ns),
			Part:         renameSide(x.Label.Part, renaming, ns),
		}}
	case Not:
		return Not{Operand: SentenceRename(x.Operand, renaming, ns)}
	case And:
		return And{Operands: renameAll(x.Operands, renaming, ns)}
	case Or:
		return Or{Operands: renameAll(x.Operands, renaming, ns)}
	default:
		return s
	}
}

func renameSide(s LabelSide, renaming map[*Variable]*Variable, ns *Namespace) LabelSide {
	if len(s.Args) == 0 {
		return s
	}
	out := make([]Term, len(s.Args))
	for i, a := range s.Args {
		out[i] = Shuffle(a, renaming, ns)
	}
	return LabelSide{Functor: s.Functor, Args: out}
}

func renameAll(ss []Sentence, renaming map[*Variable]*Variable, ns *Namespace) []Sentence {
	out := make([]Sentence, len(ss))
	for i, s := range ss {
		out[i] = SentenceRename(s, renaming, ns)
	}
	return out
}

// SentenceKey renders a deterministic (not BDD-canonical) key that
// distinguishes structurally different sentences, used for Clause.ID so
// that e.g. "f. [x=1]" and "f. [x=2]" are stored as distinct facts
// rather than colliding. Equivalence up to the knowledge base's
// exclusion matrix is a separate, coarser notion computed by package
// sentence's Equivalent.
func SentenceKey(s Sentence) string {
	switch x := s.(type) {
	case Top:
		return "T"
	case Bottom:
		return "F"
	case LabelSentence:
		return lpConcat([]string{"L", x.Label.ID()})
	case Not:
		return lpConcat([]string{"N", SentenceKey(x.Operand)})
	case And:
		parts := []string{"A"}
		for _, op := range x.Operands {
			parts = append(parts, SentenceKey(op))
		}
		return lpConcat(parts)
	case Or:
		parts := []string{"O"}
		for _, op := range x.Operands {
			parts = append(parts, SentenceKey(op))
		}
		return lpConcat(parts)
	default:
		return "?"
	}
}

// SentenceGround reports whether every label in s is fully ground.
func SentenceGround(s Sentence) bool {
	switch x := s.(type) {
	case LabelSentence:
		return x.Label.Ground()
	case Not:
		return SentenceGround(x.Operand)
	case And:
		for _, op := range x.Operands {
			if !SentenceGround(op) {
				return false
			}
		}
		return true
	case Or:
		for _, op := range x.Operands {
			if !SentenceGround(op) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
