package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/gitrdm/judged/pkg/action"
	"github.com/gitrdm/judged/pkg/kb"
	"github.com/gitrdm/judged/pkg/logic"
	"github.com/gitrdm/judged/pkg/syntax"
	"github.com/gitrdm/judged/pkg/worlds"
	"go.uber.org/zap"
)

// mode names the three evaluation strategies a session can run under
// (spec section 4.H), spelled the way original_source/judged/
// __main__.py's subcommands name them, shortened for flag ergonomics.
type mode string

const (
	modeDeterministic mode = "det"
	modeExact         mode = "exact"
	modeMonteCarlo    mode = "mc"
)

func parseMode(s string) (mode, error) {
	switch mode(s) {
	case modeDeterministic, modeExact, modeMonteCarlo:
		return mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want det, exact or mc)", s)
	}
}

// worldContext is the slice of a pkg/worlds Context variant the CLI
// drives: action execution plus the accessors needed to parse against
// the same namespace and inspect the same knowledge base.
type worldContext interface {
	action.Context
	NS() *logic.Namespace
	KB() *kb.KnowledgeBase
}

// selector is implemented only by *worlds.Deterministic; the REPL's
// :choose meta-command type-asserts for it.
type selector interface {
	SelectWorld(partitioning, part logic.LabelSide)
}

// session bundles one active evaluation context with the extension
// registry and output stream the actions it executes report through.
type session struct {
	mode   mode
	ctx    worldContext
	ext    *moduleRegistry
	logger *zap.Logger
	out    io.Writer
}

func buildContext(m mode, cfg *Config, logger *zap.Logger) worldContext {
	switch m {
	case modeExact:
		return worlds.NewExact()
	case modeMonteCarlo:
		number := cfg.MonteCarlo.Number
		tolerance := cfg.MonteCarlo.Tolerance
		if number == 0 && tolerance <= 0 {
			number = 1000 // original_source/judged/__main__.py's --number default
		}
		mc := worlds.NewMonteCarlo(number, tolerance)
		mc.Logger = logger
		return mc
	default:
		return worlds.NewDeterministic()
	}
}

// newSession builds a fresh context for m and applies cfg's
// deterministic world choices. cfg.Extensions is not applied.
func newSession(m mode, cfg *Config, logger *zap.Logger, out io.Writer) (*session, error) {
	s := &session{
		mode:   m,
		ctx:    buildContext(m, cfg, logger),
		ext:    newModuleRegistry(),
		logger: logger,
		out:    out,
	}
	if err := s.applyChoices(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) applyChoices(cfg *Config) error {
	sel, ok := s.ctx.(selector)
	if !ok || len(cfg.Deterministic.Choices) == 0 {
		return nil
	}
	for partitioning, part := range cfg.Deterministic.Choices {
		p, q, err := parseChoice(s.ctx.NS(), partitioning+"="+part)
		if err != nil {
			return fmt.Errorf("judged.yaml deterministic.choices: %w", err)
		}
		sel.SelectWorld(p, q)
	}
	return nil
}

// switchMode discards the current context and starts a fresh one
// under m, used by the REPL's :mode meta-command. Stored facts do not
// survive the switch: Deterministic, Exact and Monte Carlo each keep
// their own knowledge base and namespace, so there is no shared state
// to carry across (spec section 4.H).
func (s *session) switchMode(m mode) {
	s.mode = m
	s.ctx = buildContext(m, &Config{}, s.logger)
}

// parseChoice parses "partitioning=part" by reusing the probability-
// label grammar (`P(partitioning=part)=...`) pkg/syntax already
// implements, rather than hand-rolling a second label-side parser.
func parseChoice(ns *logic.Namespace, expr string) (logic.LabelSide, logic.LabelSide, error) {
	entries, err := syntax.Parse(fmt.Sprintf("@p(%s)=1.", expr), ns, nil)
	if err != nil {
		return logic.LabelSide{}, logic.LabelSide{}, err
	}
	ap, ok := entries[0].Action.(action.AnnotateProbability)
	if !ok {
		return logic.LabelSide{}, logic.LabelSide{}, fmt.Errorf("expected partitioning=part, got %q", expr)
	}
	return ap.Partitioning, ap.Part, nil
}

// runEntry executes e's action against the session's context,
// printing a trace line first when verbose and printing answers after
// a query completes.
func (s *session) runEntry(ctx context.Context, e syntax.Entry, verbose bool) error {
	if verbose {
		if line, err := syntax.FormatAction(e.Action); err == nil {
			fmt.Fprintf(s.out, "%% %s\n", line)
		}
	}
	result, err := e.Action.Execute(ctx, s.ctx)
	if err != nil {
		return err
	}
	if _, ok := e.Action.(action.Query); ok {
		s.printResult(result)
	}
	return nil
}

// printResult renders a query's notes and answers the way
// original_source/judged/__main__.go's query() does: sorted note
// lines as comments, then one line per answer with its probability
// trailing as a comment when present.
func (s *session) printResult(result worlds.Result) {
	keys := make([]string, 0, len(result.Notes))
	for k := range result.Notes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(s.out, "%% %s: %v\n", k, result.Notes[k])
	}
	for _, a := range result.Answers {
		line := syntax.FormatClause(a.Clause) + "."
		if a.Probability != nil {
			line += fmt.Sprintf(" %% p = %g", *a.Probability)
		}
		fmt.Fprintln(s.out, line)
	}
}

// printKB dumps every stored predicate's facts, rules and primitive
// markers, mirroring original_source/judged/__main__.go's `.kb`
// interactive command.
func (s *session) printKB() {
	store := s.ctx.KB()
	fmt.Fprintln(s.out, "% knowledge base:")
	for _, pred := range store.Predicates() {
		fmt.Fprintf(s.out, "%% %s =>\n", pred)
		for _, c := range store.FactsFor(pred) {
			fmt.Fprintf(s.out, "%%   %s\n", syntax.FormatClause(c))
		}
		for _, c := range store.RulesFor(pred) {
			fmt.Fprintf(s.out, "%%   %s\n", syntax.FormatClause(c))
		}
		if store.HasPrimitiveID(pred) {
			fmt.Fprintln(s.out, "%   <primitive>")
		}
	}
}

// loadFile parses and executes every entry in path, wrapping a
// mid-file error with the file name and location, per spec section
// 6's batch runner stopping at the first error.
func (s *session) loadFile(ctx context.Context, path string, src string, verbose bool) error {
	entries, err := syntax.Parse(src, s.ctx.NS(), s.ext.Resolve)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, e := range entries {
		if err := s.runEntry(ctx, e, verbose); err != nil {
			return fmt.Errorf("%s: %s: %w", path, e.Loc, err)
		}
	}
	return nil
}
