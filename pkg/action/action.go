// Package action implements spec section 4.I's closed action set: the
// operations a program's surface syntax ultimately compiles down to,
// each executed against a worlds.Context.
package action

import (
	"context"

	"github.com/gitrdm/judged/pkg/extension"
	"github.com/gitrdm/judged/pkg/jerr"
	"github.com/gitrdm/judged/pkg/logic"
	"github.com/gitrdm/judged/pkg/worlds"
)

// Context is the slice of worlds.Context an action needs to execute,
// defined on the consumer side (as with kb.ProverHandle and
// extension.Handle) so this package never imports package worlds'
// concrete variant types — only its Deterministic/Exact/MonteCarlo
// constructors satisfy it structurally.
type Context interface {
	AssertClause(c *logic.Clause) error
	RetractClause(c *logic.Clause)
	AddProbability(partitioning, part logic.LabelSide, p float64)
	Ask(ctx context.Context, query logic.Literal) (worlds.Result, error)
	Parts(partitioning logic.LabelSide) []logic.LabelSide
	UseExtension(ext *extension.Extension, config map[string]any) error
}

// Action is the interface every action implements: spec section 4.I's
// closed set of AssertAction, RetractAction, QueryAction,
// AnnotateProbabilityAction, AnnotateDistributionAction,
// UseModuleAction, UsePredicateAction, CompoundAction, GeneratorAction.
type Action interface {
	Execute(ctx context.Context, c Context) (worlds.Result, error)
}

// Assert stores a clause (spec section 4.I).
type Assert struct{ Clause *logic.Clause }

func (a Assert) Execute(_ context.Context, c Context) (worlds.Result, error) {
	return worlds.Result{}, c.AssertClause(a.Clause)
}

// Retract removes a clause (spec section 4.I).
type Retract struct{ Clause *logic.Clause }

func (a Retract) Execute(_ context.Context, c Context) (worlds.Result, error) {
	c.RetractClause(a.Clause)
	return worlds.Result{}, nil
}

// Query delegates to the context's Ask (spec section 4.I). Per spec, a
// QueryAction's clause must be a bare literal (no body) with a Top
// sentence; that shape is enforced by the syntax layer that builds
// Query values, not re-checked here.
type Query struct{ Literal logic.Literal }

func (a Query) Execute(ctx context.Context, c Context) (worlds.Result, error) {
	return c.Ask(ctx, a.Literal)
}

// AnnotateProbability records a probability for one partition (spec
// section 4.I's `@p(...)=...` surface form).
type AnnotateProbability struct {
	Partitioning, Part logic.LabelSide
	Probability        float64
}

func (a AnnotateProbability) Execute(_ context.Context, c Context) (worlds.Result, error) {
	c.AddProbability(a.Partitioning, a.Part, a.Probability)
	return worlds.Result{}, nil
}

// Distribution names a named probability-distribution annotation
// strategy (spec section 4.I names "uniform" as the one built-in kind).
type Distribution string

const Uniform Distribution = "uniform"

// AnnotateDistribution distributes probability across every part of a
// partitioning currently observed in the knowledge base, per
// Distribution's strategy (spec section 4.I). Uniform is the only
// strategy named by spec; an unrecognized one is a QueryShapeError.
type AnnotateDistribution struct {
	Partitioning logic.LabelSide
	Distribution Distribution
}

func (a AnnotateDistribution) Execute(_ context.Context, c Context) (worlds.Result, error) {
	switch a.Distribution {
	case Uniform:
		parts := c.Parts(a.Partitioning)
		if len(parts) == 0 {
			return worlds.Result{}, nil
		}
		p := 1.0 / float64(len(parts))
		for _, part := range parts {
			c.AddProbability(a.Partitioning, part, p)
		}
		return worlds.Result{}, nil
	default:
		return worlds.Result{}, jerr.QueryShapeError("unsupported probability distribution %q", a.Distribution)
	}
}

// UseModule activates a host extension by name (spec section 4.I's
// `@use "module" with k="v", ...` surface form); Extension is resolved by
// the caller (typically a module registry the CLI wires up) since this
// package has no notion of where extensions come from.
type UseModule struct {
	Extension *extension.Extension
	Config    map[string]any
}

func (a UseModule) Execute(_ context.Context, c Context) (worlds.Result, error) {
	return worlds.Result{}, c.UseExtension(a.Extension, a.Config)
}

// UsePredicate records a `@from "module" use name [as alias]` or
// `@from "module" use all` statement (spec section 4.I / 6). Executing
// it does nothing: it registers no primitive in the knowledge base and
// applies no alias. UseModule does not register an extension's
// Primitives either; they reach the knowledge base only if the
// extension's own Setup hook registers them.
type UsePredicate struct {
	Extension string
	Name      string // empty means "use all"
	Alias     string // empty means no alias requested
}

func (a UsePredicate) Execute(_ context.Context, _ Context) (worlds.Result, error) {
	return worlds.Result{}, nil
}

// Compound runs a sequence of actions in order, stopping and returning
// the first error (spec section 4.I).
type Compound struct{ Actions []Action }

func (a Compound) Execute(ctx context.Context, c Context) (worlds.Result, error) {
	var last worlds.Result
	for _, sub := range a.Actions {
		result, err := sub.Execute(ctx, c)
		if err != nil {
			return worlds.Result{}, err
		}
		last = result
	}
	return last, nil
}

// Generator runs Query, then for every answer whose probability is 1.0
// or none and whose clause carries a Top sentence, unifies Query's
// literal against the answer's head and substitutes the result into
// each child action before executing it (spec section 4.I).
// Answers with an intermediate probability are skipped: the generator
// is only meaningful on grounded, unconditional answers.
type Generator struct {
	Children []Action
	Query    logic.Literal
}

func (a Generator) Execute(ctx context.Context, c Context) (worlds.Result, error) {
	result, err := c.Ask(ctx, a.Query)
	if err != nil {
		return worlds.Result{}, err
	}
	for _, ans := range result.Answers {
		if ans.Probability != nil && *ans.Probability != 1.0 {
			continue
		}
		if _, isTop := ans.Clause.SentenceOrTop().(logic.Top); !isTop {
			continue
		}
		env, ok := a.Query.Unify(ans.Clause.Head, logic.Env{})
		if !ok {
			continue
		}
		for _, child := range a.Children {
			if _, err := substAction(child, env).Execute(ctx, c); err != nil {
				return worlds.Result{}, err
			}
		}
	}
	return worlds.Result{}, nil
}

// substAction rebuilds an action with every logic.Literal/Clause value
// it carries substituted under env, so a Generator can ground its
// children's variables from a query answer before running them.
func substAction(a Action, env logic.Env) Action {
	switch x := a.(type) {
	case Assert:
		return Assert{Clause: x.Clause.Subst(env)}
	case Retract:
		return Retract{Clause: x.Clause.Subst(env)}
	case Query:
		return Query{Literal: x.Literal.Subst(env)}
	case AnnotateProbability:
		return AnnotateProbability{
			Partitioning: x.Partitioning.Subst(env),
			Part:         x.Part.Subst(env),
			Probability:  x.Probability,
		}
	case AnnotateDistribution:
		return AnnotateDistribution{Partitioning: x.Partitioning.Subst(env), Distribution: x.Distribution}
	case Compound:
		out := make([]Action, len(x.Actions))
		for i, sub := range x.Actions {
			out[i] = substAction(sub, env)
		}
		return Compound{Actions: out}
	case Generator:
		children := make([]Action, len(x.Children))
		for i, sub := range x.Children {
			children[i] = substAction(sub, env)
		}
		return Generator{Children: children, Query: x.Query.Subst(env)}
	default:
		return a
	}
}
