package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/gitrdm/judged/pkg/logic"
	"github.com/gitrdm/judged/pkg/syntax"
	"go.uber.org/zap"
)

func TestParseMode(t *testing.T) {
	cases := map[string]mode{"det": modeDeterministic, "exact": modeExact, "mc": modeMonteCarlo}
	for s, want := range cases {
		got, err := parseMode(s)
		if err != nil {
			t.Fatalf("parseMode(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("parseMode(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := parseMode("bogus"); err == nil {
		t.Error("expected an error for an unknown mode, got nil")
	}
}

func TestBuildContextMonteCarloHasNamespace(t *testing.T) {
	ctx := buildContext(modeMonteCarlo, &Config{}, zap.NewNop())
	if ctx == nil {
		t.Fatal("buildContext returned nil")
	}
	if ctx.NS() == nil {
		t.Error("expected a non-nil namespace")
	}
}

func TestBuildContextDeterministicIsSelectable(t *testing.T) {
	ctx := buildContext(modeDeterministic, &Config{}, zap.NewNop())
	if _, ok := ctx.(selector); !ok {
		t.Error("expected a deterministic context to implement selector")
	}
}

func TestBuildContextExactIsNotSelectable(t *testing.T) {
	ctx := buildContext(modeExact, &Config{}, zap.NewNop())
	if _, ok := ctx.(selector); ok {
		t.Error("did not expect an exact context to implement selector")
	}
}

func TestParseChoice(t *testing.T) {
	ns := logic.NewNamespace()
	partitioning, part, err := parseChoice(ns, "coin=heads")
	if err != nil {
		t.Fatalf("parseChoice: %v", err)
	}
	if partitioning.Functor != "coin" {
		t.Errorf("partitioning.Functor = %q, want coin", partitioning.Functor)
	}
	if part.Functor != "heads" {
		t.Errorf("part.Functor = %q, want heads", part.Functor)
	}
}

func TestParseChoiceRejectsMalformed(t *testing.T) {
	ns := logic.NewNamespace()
	if _, _, err := parseChoice(ns, "not a choice expression"); err == nil {
		t.Error("expected an error for a malformed choice expression, got nil")
	}
}

func TestApplyChoicesOnlyAffectsDeterministic(t *testing.T) {
	cfg := &Config{}
	cfg.Deterministic.Choices = map[string]string{"coin": "heads"}

	s, err := newSession(modeExact, cfg, zap.NewNop(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("newSession(exact): %v", err)
	}
	if _, ok := s.ctx.(selector); ok {
		t.Fatal("exact context unexpectedly implements selector")
	}

	s, err = newSession(modeDeterministic, cfg, zap.NewNop(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("newSession(det) with choices: %v", err)
	}
	if s.mode != modeDeterministic {
		t.Errorf("mode = %v, want det", s.mode)
	}
}

func TestApplyChoicesRejectsBadPartitioning(t *testing.T) {
	cfg := &Config{}
	cfg.Deterministic.Choices = map[string]string{"": "heads"}
	if _, err := newSession(modeDeterministic, cfg, zap.NewNop(), &bytes.Buffer{}); err == nil {
		t.Error("expected newSession to reject an unparsable choice, got nil")
	}
}

func TestSwitchModeResetsKnowledgeBase(t *testing.T) {
	s, err := newSession(modeDeterministic, &Config{}, zap.NewNop(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	if err := s.loadFile(context.Background(), "mem", "fact(a).", false); err != nil {
		t.Fatalf("loadFile: %v", err)
	}
	if s.ctx.KB().FactCount() == 0 {
		t.Fatal("expected the fact to be stored before switching modes")
	}

	s.switchMode(modeExact)
	if s.mode != modeExact {
		t.Errorf("mode = %v, want exact", s.mode)
	}
	if s.ctx.KB().FactCount() != 0 {
		t.Error("expected a fresh knowledge base after switching modes")
	}
}

func TestLoadFileAndQueryPrintsAnswer(t *testing.T) {
	var out bytes.Buffer
	s, err := newSession(modeDeterministic, &Config{}, zap.NewNop(), &out)
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	src := "parent(tom, bob).\nparent(bob, ann).\n"
	if err := s.loadFile(context.Background(), "mem", src, false); err != nil {
		t.Fatalf("loadFile: %v", err)
	}

	entries, err := syntax.Parse("parent(tom, X)?", s.ctx.NS(), s.ext.Resolve)
	if err != nil {
		t.Fatalf("syntax.Parse: %v", err)
	}
	for _, e := range entries {
		if err := s.runEntry(context.Background(), e, false); err != nil {
			t.Fatalf("runEntry: %v", err)
		}
	}

	if got := out.String(); !strings.Contains(got, "bob") {
		t.Errorf("expected the query output to mention bob, got %q", got)
	}
}

func TestPrintKBListsStoredPredicates(t *testing.T) {
	var out bytes.Buffer
	s, err := newSession(modeDeterministic, &Config{}, zap.NewNop(), &out)
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	if err := s.loadFile(context.Background(), "mem", "fact(a).", false); err != nil {
		t.Fatalf("loadFile: %v", err)
	}
	s.printKB()
	if got := out.String(); !strings.Contains(got, "fact") {
		t.Errorf("expected :kb output to mention the fact predicate, got %q", got)
	}
}

func TestLoadFileWrapsParseError(t *testing.T) {
	s, err := newSession(modeDeterministic, &Config{}, zap.NewNop(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	err = s.loadFile(context.Background(), "broken.jd", "not valid(", false)
	if err == nil {
		t.Fatal("expected an error for unparsable source, got nil")
	}
	if !strings.Contains(err.Error(), "broken.jd") {
		t.Errorf("expected the error to name the file, got %q", err.Error())
	}
}
