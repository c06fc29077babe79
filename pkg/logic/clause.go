package logic

import "strings"

// Clause is a logical rule Head :- Body1, ..., Bodyn | Delayed1, ...,
// Delayedm [Sentence] (spec section 3 and the GLOSSARY). A Clause with
// empty Body and Delayed is a fact.
type Clause struct {
	Head    Literal
	Body    []Literal
	Delayed []Literal
	Sentence Sentence

	id string
}

// NewFact builds a fact clause with a Top sentence.
func NewFact(head Literal) *Clause {
	return &Clause{Head: head, Sentence: Top{}}
}

// IsFact reports whether c has no body and no delayed literals (spec
// section 3).
func (c *Clause) IsFact() bool { return len(c.Body) == 0 && len(c.Delayed) == 0 }

func (c *Clause) sentenceOrTop() Sentence {
	if c.Sentence == nil {
		return Top{}
	}
	return c.Sentence
}

// SentenceOrTop returns c.Sentence, or Top if it is nil. Exported for
// packages (such as the prover's exact variant) that need to read a
// clause's effective sentence without constructing their own nil check.
func (c *Clause) SentenceOrTop() Sentence { return c.sentenceOrTop() }

// ID is c's identity key, used both for map storage in the knowledge
// base and for clause equality (spec section 4.B "Clause operations ...
// id, equality by id"). Two clauses with the same head/body/delayed but
// differing sentences are distinct clauses, per spec scenario 3 (two
// facts for the same head under different world labels).
func (c *Clause) ID() string {
	if c.id != "" {
		return c.id
	}
	parts := []string{c.Head.ID()}
	for _, b := range c.Body {
		parts = append(parts, b.ID())
	}
	parts = append(parts, "|")
	for _, d := range c.Delayed {
		parts = append(parts, d.ID())
	}
	parts = append(parts, SentenceKey(c.sentenceOrTop()))
	c.id = lpConcat(parts)
	return c.id
}

// Equal reports whether c and other have the same ID.
func (c *Clause) Equal(other *Clause) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.ID() == other.ID()
}

func (c *Clause) String() string {
	var b strings.Builder
	b.WriteString(c.Head.String())
	if len(c.Body) > 0 {
		b.WriteString(" :- ")
		for i, l := range c.Body {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(l.String())
		}
	}
	if len(c.Delayed) > 0 {
		b.WriteString(" | ")
		for i, l := range c.Delayed {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(l.String())
		}
	}
	if _, ok := c.sentenceOrTop().(Top); !ok {
		b.WriteString(" [")
		b.WriteString(c.Sentence.String())
		b.WriteString("]")
	}
	return b.String()
}

// Subst substitutes every literal and the sentence of c under env,
// returning a fresh Clause.
func (c *Clause) Subst(env Env) *Clause {
	body := make([]Literal, len(c.Body))
	for i, l := range c.Body {
		body[i] = l.Subst(env)
	}
	delayed := make([]Literal, len(c.Delayed))
	for i, l := range c.Delayed {
		delayed[i] = l.Subst(env)
	}
	return &Clause{
		Head:     c.Head.Subst(env),
		Body:     body,
		Delayed:  delayed,
		Sentence: SentenceSubst(c.sentenceOrTop(), env),
	}
}

// Rename renames c apart from every other live clause: the renaming is
// driven by Body and Delayed (in that order), never by the head alone,
// because spec section 3's safety invariant guarantees every head
// variable already appears in some body literal. The same renaming is
// then applied to Head and Sentence so every occurrence of a shared
// variable renames consistently.
func (c *Clause) Rename(ns *Namespace) *Clause {
	renaming := make(map[*Variable]*Variable)
	body := make([]Literal, len(c.Body))
	for i, l := range c.Body {
		body[i] = l.Rename(renaming, ns)
	}
	delayed := make([]Literal, len(c.Delayed))
	for i, l := range c.Delayed {
		delayed[i] = l.Rename(renaming, ns)
	}
	head := c.Head.Rename(renaming, ns)
	sentence := SentenceRename(c.sentenceOrTop(), renaming, ns)
	return &Clause{Head: head, Body: body, Delayed: delayed, Sentence: sentence}
}

// FreeVars collects every Variable appearing in c's head, body, delayed
// literals and sentence.
func (c *Clause) FreeVars() map[*Variable]bool {
	set := make(map[*Variable]bool)
	c.Head.freeVars(set)
	for _, l := range c.Body {
		l.freeVars(set)
	}
	for _, l := range c.Delayed {
		l.freeVars(set)
	}
	SentenceFreeVars(c.sentenceOrTop(), set)
	return set
}

// IsSafe checks the three safety conditions of spec section 3:
//
//  1. every variable in the head appears in some body literal,
//  2. every variable in a negated body literal appears in some
//     positive body literal,
//  3. every variable in the sentence's labels appears in the head or
//     body.
//
// It returns a descriptive error (unwrapped; callers construct the
// jerr.SafetyError) rather than a bool, so the knowledge base can report
// exactly which condition failed.
func (c *Clause) IsSafe() error {
	bodyVars := make(map[*Variable]bool)
	posVars := make(map[*Variable]bool)
	for _, l := range c.Body {
		l.freeVars(bodyVars)
		if l.Pos {
			l.freeVars(posVars)
		}
	}

	headVars := make(map[*Variable]bool)
	c.Head.freeVars(headVars)
	for v := range headVars {
		if !bodyVars[v] {
			return &safetyViolation{"head variable " + v.Name + " does not appear in the body"}
		}
	}

	for _, l := range c.Body {
		if l.Pos {
			continue
		}
		vs := make(map[*Variable]bool)
		l.freeVars(vs)
		for v := range vs {
			if !posVars[v] {
				return &safetyViolation{"negated body variable " + v.Name + " does not appear in a positive body literal"}
			}
		}
	}

	sentenceVars := make(map[*Variable]bool)
	SentenceFreeVars(c.sentenceOrTop(), sentenceVars)
	for v := range sentenceVars {
		if !headVars[v] && !bodyVars[v] {
			return &safetyViolation{"sentence variable " + v.Name + " does not appear in the head or body"}
		}
	}

	return nil
}

type safetyViolation struct{ msg string }

func (e *safetyViolation) Error() string { return e.msg }
