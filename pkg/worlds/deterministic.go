package worlds

import (
	"context"

	"github.com/gitrdm/judged/pkg/extension"
	"github.com/gitrdm/judged/pkg/jerr"
	"github.com/gitrdm/judged/pkg/logic"
	"github.com/gitrdm/judged/pkg/prover"
	"github.com/gitrdm/judged/pkg/sentence"
)

// Deterministic is spec section 4.H's Deterministic context: it keeps a
// single chosen part per partitioning and answers queries against that
// one world using the base prover. Asking about a partitioning with no
// selected part is a QueryShapeError.
type Deterministic struct {
	*core
	prover  *prover.Base
	choices map[string]logic.LabelSide
}

// NewDeterministic returns an empty Deterministic context.
func NewDeterministic() *Deterministic {
	c := newCore()
	return &Deterministic{core: c, prover: prover.NewBase(c.store, c.ns), choices: make(map[string]logic.LabelSide)}
}

// SelectWorld records that partitioning currently takes part, for the
// lifetime of the context or until ResetWorld is called.
func (d *Deterministic) SelectWorld(partitioning, part logic.LabelSide) {
	d.choices[partitioning.Key()] = part
}

// ResetWorld clears every previously selected part.
func (d *Deterministic) ResetWorld() {
	d.choices = make(map[string]logic.LabelSide)
}

func (d *Deterministic) checker() (sentence.Checker, *error) {
	var captured error
	checker := func(partitioning, part logic.LabelSide) bool {
		if captured != nil {
			return false
		}
		chosen, ok := d.choices[partitioning.Key()]
		if !ok {
			captured = jerr.QueryShapeError("no part is selected for the partitioning %q", partitioning.String())
			return false
		}
		return chosen.Key() == part.Key()
	}
	return checker, &captured
}

// Ask resolves query against the currently selected world, with every
// registered extension's before_ask/after_ask hooks fired symmetrically
// around it (spec section 4.H).
func (d *Deterministic) Ask(ctx context.Context, query logic.Literal) (Result, error) {
	var result Result
	err := d.exts.RunAsk(d.core, func() error {
		checker, captured := d.checker()
		answers, err := d.prover.Ask(askCtx(ctx), query, checker)
		if err != nil {
			return err
		}
		if *captured != nil {
			return *captured
		}
		result = Result{Answers: make([]Answer, len(answers))}
		for i, a := range answers {
			result.Answers[i] = Answer{Clause: a}
		}
		return nil
	})
	return result, err
}

// UseExtension installs ext against this context's handle.
func (d *Deterministic) UseExtension(ext *extension.Extension, config map[string]any) error {
	return d.core.UseExtension(d.core, ext, config)
}
