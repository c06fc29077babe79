package worlds

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/google/uuid"
	"github.com/gitrdm/judged/pkg/extension"
	"github.com/gitrdm/judged/pkg/jerr"
	"github.com/gitrdm/judged/pkg/logic"
	"github.com/gitrdm/judged/pkg/prover"
	"github.com/gitrdm/judged/pkg/sentence"
	"go.uber.org/zap"
)

// hardIterationCap bounds an "unbounded" (Number == 0) Monte Carlo run
// so a tolerance that is never reached cannot hang a query forever
// (spec section 5's general liveness expectation).
const hardIterationCap = 1_000_000

// MonteCarlo is spec section 4.H's Monte Carlo context: repeatedly
// samples a world by drawing a weighted-random part for every
// partitioning a query references, tallies answer and world
// frequencies, and reports each distinct answer's probability as its
// observed frequency, stopping early once the root-mean-square error
// between observed and exact world frequencies falls at or under a
// configured tolerance.
type MonteCarlo struct {
	*core
	prover *prover.Base

	// Number is N: the iteration cap, 0 meaning "run until Tolerance is
	// met" (bounded in practice by hardIterationCap).
	Number int
	// Tolerance is τ: a non-positive value disables early stopping.
	Tolerance float64
	// Logger, if set, receives one debug entry per completed run with
	// its sample count and final error, tagged with a fresh run id
	// (spec section 9's "check closures" note generalized to
	// structured run tracing).
	Logger *zap.Logger

	choices map[string]logic.LabelSide
}

// NewMonteCarlo returns a Monte Carlo context with the given iteration
// cap and tolerance (spec section 4.H's N and τ).
func NewMonteCarlo(number int, tolerance float64) *MonteCarlo {
	c := newCore()
	return &MonteCarlo{
		core:      c,
		prover:    prover.NewBase(c.store, c.ns),
		Number:    number,
		Tolerance: tolerance,
		choices:   make(map[string]logic.LabelSide),
	}
}

type choicePair struct {
	partitioning, part logic.LabelSide
}

type worldRecord struct {
	parts []choicePair
	count int
}

type answerRecord struct {
	clause *logic.Clause
	count  int
}

func (m *MonteCarlo) probOf(partitioningKey, partKey string) (float64, bool) {
	for _, e := range m.prob[partitioningKey] {
		if e.part.Key() == partKey {
			return e.p, true
		}
	}
	return 0, false
}

// pick draws a weighted-random part for partitioning (spec section
// 4.H's "pick"), erroring if no distribution was configured or the
// configured weights do not reach 1.0.
func (m *MonteCarlo) pick(partitioning logic.LabelSide) (logic.LabelSide, error) {
	entries := m.prob[partitioning.Key()]
	if len(entries) == 0 {
		return logic.LabelSide{}, jerr.DistributionError("no probability distribution set for partitioning %q", partitioning.String())
	}
	total := 0.0
	for _, e := range entries {
		total += e.p
	}
	if total < 1.0-1e-9 {
		return logic.LabelSide{}, jerr.DistributionError("probabilities for partitioning %q do not sum to 1.0", partitioning.String())
	}
	r := rand.Float64()
	a := 0.0
	for _, e := range entries {
		a += e.p
		if a >= r {
			return e.part, nil
		}
	}
	return logic.LabelSide{}, jerr.DistributionError("probabilities for partitioning %q do not sum to 1.0", partitioning.String())
}

func (m *MonteCarlo) checker() (sentence.Checker, *error) {
	var captured error
	checker := func(partitioning, part logic.LabelSide) bool {
		if captured != nil {
			return false
		}
		chosen, ok := m.choices[partitioning.Key()]
		if !ok {
			picked, err := m.pick(partitioning)
			if err != nil {
				captured = err
				return false
			}
			m.choices[partitioning.Key()] = picked
			chosen = picked
		}
		return chosen.Key() == part.Key()
	}
	return checker, &captured
}

func worldKey(choices map[string]logic.LabelSide) string {
	keys := make([]string, 0, len(choices))
	for k := range choices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	key := ""
	for _, k := range keys {
		key += k + "=" + choices[k].Key() + ";"
	}
	return key
}

func (m *MonteCarlo) exactProbability(rec *worldRecord) float64 {
	result := 1.0
	for _, pair := range rec.parts {
		p, ok := m.probOf(pair.partitioning.Key(), pair.part.Key())
		if !ok {
			return 0
		}
		result *= p
	}
	return result
}

// rmse implements spec section 4.H / 9's Monte Carlo error formula,
// guarded against the empty-worlds division by zero spec section 9
// flags explicitly.
func (m *MonteCarlo) rmse(worlds map[string]*worldRecord, count int) float64 {
	if len(worlds) == 0 {
		return 0
	}
	sum := 0.0
	for _, rec := range worlds {
		exact := m.exactProbability(rec)
		observed := float64(rec.count) / float64(count)
		diff := exact - observed
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(worlds)))
}

// Ask runs up to Number iterations (or hardIterationCap, if Number is
// 0), sampling a world per iteration and tallying answer and world
// frequencies, with extension hooks fired symmetrically around the
// whole run rather than per iteration (spec section 4.H).
func (m *MonteCarlo) Ask(ctx context.Context, query logic.Literal) (Result, error) {
	runCtx := askCtx(ctx)
	runID := uuid.New().String()

	var result Result
	err := m.exts.RunAsk(m.core, func() error {
		worldTally := make(map[string]*worldRecord)
		answerOrder := make([]string, 0)
		answerTally := make(map[string]*answerRecord)

		limit := m.Number
		if limit == 0 || limit > hardIterationCap {
			limit = hardIterationCap
		}

		count := 0
		var errRate float64
		for count < limit {
			if err := runCtx.Err(); err != nil {
				return err
			}
			count++
			m.choices = make(map[string]logic.LabelSide)
			checker, captured := m.checker()
			answers, err := m.prover.Ask(runCtx, query, checker)
			if err != nil {
				return err
			}
			if *captured != nil {
				return *captured
			}

			for _, a := range answers {
				id := a.Head.ID()
				if rec, ok := answerTally[id]; ok {
					rec.count++
					continue
				}
				answerTally[id] = &answerRecord{clause: a, count: 1}
				answerOrder = append(answerOrder, id)
			}

			key := worldKey(m.choices)
			rec, ok := worldTally[key]
			if !ok {
				rec = &worldRecord{parts: resolvePartitionings(m.choices)}
				worldTally[key] = rec
			}
			rec.count++

			errRate = m.rmse(worldTally, count)
			if m.Tolerance > 0 && errRate <= m.Tolerance {
				break
			}
		}

		if count >= hardIterationCap && (m.Number == 0 || m.Number > hardIterationCap) {
			return jerr.LimitError("Monte Carlo run did not converge within %d iterations", hardIterationCap)
		}

		answers := make([]Answer, 0, len(answerOrder))
		for _, id := range answerOrder {
			rec := answerTally[id]
			p := float64(rec.count) / float64(count)
			answers = append(answers, Answer{Clause: rec.clause, Probability: &p})
		}
		result = Result{
			Answers: answers,
			Notes: map[string]any{
				"iterations": count,
				"error":      errRate,
				"run_id":     runID,
			},
		}
		if m.Logger != nil {
			m.Logger.Debug("monte carlo run complete",
				zap.String("run_id", runID),
				zap.Int("iterations", count),
				zap.Float64("error", errRate),
			)
		}
		return nil
	})
	return result, err
}

// resolvePartitionings turns the (partitioning key, part) entries of
// choices into pairs whose partitioning is a LabelSide with the key as
// its Functor and no arguments. Such a side's Key() equals the original
// key, which is all exactProbability needs to look up a probability.
func resolvePartitionings(choices map[string]logic.LabelSide) []choicePair {
	out := make([]choicePair, 0, len(choices))
	for pk, part := range choices {
		out = append(out, choicePair{partitioning: logic.LabelSide{Functor: partitioningFunctorOf(pk)}, part: part})
	}
	return out
}

// partitioningFunctorOf returns key unchanged. A no-argument LabelSide's
// Key is its Functor, so a side built from this value has the same Key
// as the partitioning it came from, functor-applied ones included; its
// String is the key text, not the original spelling.
func partitioningFunctorOf(key string) string { return key }

// UseExtension installs ext against this context's handle.
func (m *MonteCarlo) UseExtension(ext *extension.Extension, config map[string]any) error {
	return m.core.UseExtension(m.core, ext, config)
}
