package worlds

import (
	"context"

	"github.com/gitrdm/judged/pkg/extension"
	"github.com/gitrdm/judged/pkg/logic"
	"github.com/gitrdm/judged/pkg/prover"
)

// Exact is spec section 4.H's Exact context: every world is admitted
// (check is the constant true), and queries run through the sentence-
// aware Exact prover, so each answer carries the disjunction of every
// sentence it was derived under rather than a plain probability.
type Exact struct {
	*core
	prover *prover.Exact
}

// NewExact returns an empty Exact context.
func NewExact() *Exact {
	c := newCore()
	return &Exact{core: c, prover: prover.NewExact(c.store, c.ns, c.store)}
}

// Ask resolves query over every admitted world, with extension hooks
// fired symmetrically around it (spec section 4.H).
func (e *Exact) Ask(ctx context.Context, query logic.Literal) (Result, error) {
	var result Result
	err := e.exts.RunAsk(e.core, func() error {
		answers, err := e.prover.Ask(askCtx(ctx), query)
		if err != nil {
			return err
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
func (e *Exact) UseExtension(ext *extension.Extension, config map[string]any) error {
	return e.core.UseExtension(e.core, ext, config)
}
