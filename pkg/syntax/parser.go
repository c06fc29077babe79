package syntax

import (
	"strconv"
	"unicode"

	"github.com/gitrdm/judged/pkg/action"
	"github.com/gitrdm/judged/pkg/extension"
	"github.com/gitrdm/judged/pkg/jerr"
	"github.com/gitrdm/judged/pkg/logic"
	"github.com/gitrdm/judged/pkg/sentence"
)

// Entry pairs a parsed action with the source location it was read
// from, mirroring judged/parser.py's (clause, action, context) triples.
type Entry struct {
	Action action.Action
	Loc    jerr.Location
}

// ModuleResolver resolves the module name named by `@use "name"` or
// `@from "name" ...` to the extension it refers to. The parser has no
// notion of where extensions come from, so this is supplied by the
// caller (typically a CLI wired against a fixed extension registry).
type ModuleResolver func(name string) (*extension.Extension, error)

// Parse lexes and parses src into a sequence of Entry values (spec
// section 6). Every literal, variable and constant encountered is
// interned into ns, so repeated Parse calls against the same
// Namespace share identity with clauses asserted elsewhere.
func Parse(src string, ns *logic.Namespace, resolve ModuleResolver) ([]Entry, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	ts := newTokenStream(toks)

	var entries []Entry
	for !ts.isEmpty() {
		startTok, _ := ts.peek()

		if ts.consume(AT) {
			act, err := parseAnnotation(ts, ns, resolve)
			if err != nil {
				return nil, err
			}
			endTok, err := ts.nextIf(func(t Token) bool { return t.Kind == PERIOD },
				"expected a period to close annotation")
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{Action: act, Loc: span(startTok, endTok)})
			continue
		}

		clause, err := parseClause(ts, ns)
		if err != nil {
			return nil, err
		}
		endTok, err := ts.nextIf(
			func(t Token) bool { return t.Kind == PERIOD || t.Kind == TILDE || t.Kind == QUERY },
			"expected period, tilde or question mark to indicate action")
		if err != nil {
			return nil, err
		}
		act, err := clauseAction(clause, endTok)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Action: act, Loc: span(startTok, endTok)})
	}
	return entries, nil
}

func span(start, end Token) jerr.Location {
	return jerr.Location{StartLine: start.Line, EndLine: end.Line}
}

// clauseAction turns a parsed clause plus its terminator into the
// corresponding action (spec section 4.I / 6's `.`/`~`/`?` terminators).
func clauseAction(c *logic.Clause, terminator Token) (action.Action, error) {
	switch terminator.Kind {
	case PERIOD:
		return action.Assert{Clause: c}, nil
	case TILDE:
		return action.Retract{Clause: c}, nil
	case QUERY:
		if len(c.Body) != 0 {
			return nil, jerr.ParseError(terminator.loc(), "a query must be a bare literal, not a rule with a body")
		}
		if _, ok := c.SentenceOrTop().(logic.Top); !ok {
			return nil, jerr.ParseError(terminator.loc(), "a query may not carry a descriptive sentence")
		}
		return action.Query{Literal: c.Head}, nil
	default:
		return nil, jerr.ParseError(terminator.loc(), "expected period, tilde or question mark to indicate action")
	}
}

// --- token stream -----------------------------------------------------

// tokenStream wraps a token slice with a pushback stack, mirroring
// judged/parser.py's Tokens helper.
type tokenStream struct {
	toks []Token
	pos  int
	buf  []Token
}

func newTokenStream(toks []Token) *tokenStream { return &tokenStream{toks: toks} }

func (ts *tokenStream) next() (Token, bool) {
	if n := len(ts.buf); n > 0 {
		t := ts.buf[n-1]
		ts.buf = ts.buf[:n-1]
		return t, true
	}
	if ts.pos >= len(ts.toks) {
		return Token{}, false
	}
	t := ts.toks[ts.pos]
	ts.pos++
	return t, true
}

func (ts *tokenStream) push(t Token) { ts.buf = append(ts.buf, t) }

func (ts *tokenStream) peek() (Token, bool) {
	t, ok := ts.next()
	if ok {
		ts.push(t)
	}
	return t, ok
}

func (ts *tokenStream) isEmpty() bool {
	_, ok := ts.peek()
	return !ok
}

// nextIf consumes and returns the next token if it satisfies test, else
// raises a ParseError located at that token (or with no location, at
// end of input).
func (ts *tokenStream) nextIf(test func(Token) bool, message string) (Token, error) {
	t, ok := ts.next()
	if !ok || !test(t) {
		if ok {
			return Token{}, jerr.ParseError(t.loc(), message)
		}
		return Token{}, jerr.ParseError(jerr.Location{}, message+" (reached end of input)")
	}
	return t, nil
}

func (ts *tokenStream) expect(k Kind, context string) (Token, error) {
	msg := "expected a token of type " + k.String()
	if context != "" {
		msg += " " + context
	}
	return ts.nextIf(func(t Token) bool { return t.Kind == k }, msg)
}

func (ts *tokenStream) testFor(k Kind) bool {
	t, ok := ts.peek()
	return ok && t.Kind == k
}

func (ts *tokenStream) testKeyword(spelling string) bool {
	t, ok := ts.peek()
	return ok && t.Kind == NAME && t.Text == spelling
}

func (ts *tokenStream) consume(k Kind) bool {
	if !ts.testFor(k) {
		return false
	}
	ts.next()
	return true
}

// --- terms and literals -------------------------------------------------

func isIdentifierTok(t Token) bool {
	return t.Kind == NAME || t.Kind == STRING || t.Kind == NUMBER
}

func isProbKeyword(t Token) bool {
	return t.Kind == NAME && (t.Text == "P" || t.Text == "p")
}

func (ts *tokenStream) testProbKeyword() bool {
	t, ok := ts.peek()
	return ok && isProbKeyword(t)
}

// makeTerm converts a token into a Variable or Constant (spec section
// 6): an uppercase-leading NAME is a Variable, a bare "_" is a fresh
// Variable, and everything else is a typed Constant.
func makeTerm(ns *logic.Namespace, t Token) logic.Term {
	switch t.Kind {
	case NAME:
		if t.Text == "_" {
			return ns.FreshVar("_")
		}
		if r := []rune(t.Text); len(r) > 0 && unicode.IsUpper(r[0]) {
			return ns.Var(t.Text)
		}
		return ns.Symbol(t.Text)
	case STRING:
		return ns.Str(t.Text)
	default: // NUMBER
		v, _ := strconv.ParseFloat(t.Text, 64)
		return ns.Number(v)
	}
}

// parseLiteral parses a single literal, including the `=`/`!=` infix
// forms (spec section 6).
func parseLiteral(ts *tokenStream, ns *logic.Namespace) (logic.Literal, error) {
	pos := !ts.consume(TILDE)

	predTok, err := ts.nextIf(isIdentifierTok, "expected an identifier or string as predicate or start of equality")
	if err != nil {
		return logic.Literal{}, err
	}

	var terms []Token
	switch {
	case ts.consume(LPAREN):
		if !ts.testFor(RPAREN) {
			t, err := ts.nextIf(isIdentifierTok, "expected an identifier or string as literal term")
			if err != nil {
				return logic.Literal{}, err
			}
			terms = append(terms, t)
			for ts.consume(COMMA) {
				t, err := ts.nextIf(isIdentifierTok, "expected an identifier or string as literal term")
				if err != nil {
					return logic.Literal{}, err
				}
				terms = append(terms, t)
			}
		}
		if _, err := ts.expect(RPAREN, "to close literal with terms"); err != nil {
			return logic.Literal{}, err
		}

	case ts.testFor(EQUALS):
		terms = append(terms, predTok)
		eqTok, err := ts.expect(EQUALS, "")
		if err != nil {
			return logic.Literal{}, err
		}
		predTok = eqTok
		rhs, err := ts.nextIf(isIdentifierTok, "expected an identifier or string as right hand side of equality")
		if err != nil {
			return logic.Literal{}, err
		}
		terms = append(terms, rhs)

	case ts.testFor(NEQUALS):
		terms = append(terms, predTok)
		neTok, err := ts.expect(NEQUALS, "")
		if err != nil {
			return logic.Literal{}, err
		}
		predTok = Token{Kind: EQUALS, Text: "=", Line: neTok.Line}
		pos = false
		rhs, err := ts.nextIf(isIdentifierTok, "expected an identifier or string as right hand side of inequality")
		if err != nil {
			return logic.Literal{}, err
		}
		terms = append(terms, rhs)
	}

	if predTok.Kind != NAME && predTok.Kind != EQUALS {
		return logic.Literal{}, jerr.ParseError(predTok.loc(), "expected a name as predicate")
	}

	predicate := ns.Pred(predTok.Text, len(terms))
	args := make([]logic.Term, len(terms))
	for i, t := range terms {
		args[i] = makeTerm(ns, t)
	}
	return logic.Literal{Pred: predicate, Args: args, Pos: pos}, nil
}

// parseLabelSide builds a LabelSide from a name token, optionally
// consuming a parenthesized argument list to make it a label function
// (spec section 6).
func parseLabelSide(ts *tokenStream, ns *logic.Namespace, nameTok Token) (logic.LabelSide, error) {
	if !ts.consume(LPAREN) {
		return logic.LabelSide{Functor: nameTok.Text}, nil
	}
	var args []logic.Term
	if !ts.consume(RPAREN) {
		t, err := ts.nextIf(isIdentifierTok, "expected a variable name or constant in a label function")
		if err != nil {
			return logic.LabelSide{}, err
		}
		args = append(args, makeTerm(ns, t))
		for ts.consume(COMMA) {
			t, err := ts.nextIf(isIdentifierTok, "expected a variable name or constant in a label function")
			if err != nil {
				return logic.LabelSide{}, err
			}
			args = append(args, makeTerm(ns, t))
		}
		if _, err := ts.expect(RPAREN, "to close a label function"); err != nil {
			return logic.LabelSide{}, err
		}
	}
	return logic.LabelSide{Functor: nameTok.Text, Args: args}, nil
}

// parseDescriptiveLabel parses a bare label "l = r", or the
// keywords "true"/"false" (spec section 6).
func parseDescriptiveLabel(ts *tokenStream, ns *logic.Namespace) (logic.Sentence, error) {
	partTok, err := ts.nextIf(isIdentifierTok, "expected an identifier or string as partitioning of label in descriptive sentence")
	if err != nil {
		return nil, err
	}
	if partTok.Kind == NAME && partTok.Text == "true" {
		return logic.Top{}, nil
	}
	if partTok.Kind == NAME && partTok.Text == "false" {
		return logic.Bottom{}, nil
	}

	left, err := parseLabelSide(ts, ns, partTok)
	if err != nil {
		return nil, err
	}
	if _, err := ts.expect(EQUALS, "as part of a label"); err != nil {
		return nil, err
	}
	rightTok, err := ts.nextIf(isIdentifierTok, "expected an identifier or string as part of a label in descriptive sentence")
	if err != nil {
		return nil, err
	}
	right, err := parseLabelSide(ts, ns, rightTok)
	if err != nil {
		return nil, err
	}
	return logic.LabelSentence{Label: ns.Label(left, right)}, nil
}

// parseProbabilityLabel parses the "P(x=n)" notation, returning the
// underlying Label; "true"/"false" are rejected since a probability
// cannot attach to either.
func parseProbabilityLabel(ts *tokenStream, ns *logic.Namespace) (*logic.Label, error) {
	if _, err := ts.nextIf(isProbKeyword, "expected a probability notation of the form P(x=n)"); err != nil {
		return nil, err
	}
	if _, err := ts.expect(LPAREN, ""); err != nil {
		return nil, err
	}
	sen, err := parseDescriptiveLabel(ts, ns)
	if err != nil {
		return nil, err
	}
	if _, err := ts.expect(RPAREN, ""); err != nil {
		return nil, err
	}
	ls, ok := sen.(logic.LabelSentence)
	if !ok {
		return nil, jerr.ParseError(jerr.Location{}, "a probability notation must name a label, not true/false")
	}
	return ls.Label, nil
}

// --- sentences -----------------------------------------------------------

func parseSentenceLeaf(ts *tokenStream, ns *logic.Namespace) (logic.Sentence, error) {
	if ts.consume(LPAREN) {
		s, err := parseSentence(ts, ns)
		if err != nil {
			return nil, err
		}
		if _, err := ts.expect(RPAREN, "to close expression"); err != nil {
			return nil, err
		}
		return s, nil
	}
	return parseDescriptiveLabel(ts, ns)
}

func parseSentenceNotTest(ts *tokenStream, ns *logic.Namespace) (logic.Sentence, error) {
	if ts.testKeyword("not") {
		ts.next()
		operand, err := parseSentenceNotTest(ts, ns)
		if err != nil {
			return nil, err
		}
		return logic.Not{Operand: operand}, nil
	}
	return parseSentenceLeaf(ts, ns)
}

func parseSentenceAndTest(ts *tokenStream, ns *logic.Namespace) (logic.Sentence, error) {
	left, err := parseSentenceNotTest(ts, ns)
	if err != nil {
		return nil, err
	}
	if ts.testKeyword("and") {
		ts.next()
		right, err := parseSentenceAndTest(ts, ns)
		if err != nil {
			return nil, err
		}
		return sentence.Conjunct(left, right), nil
	}
	return left, nil
}

func parseSentenceOrTest(ts *tokenStream, ns *logic.Namespace) (logic.Sentence, error) {
	left, err := parseSentenceAndTest(ts, ns)
	if err != nil {
		return nil, err
	}
	if ts.testKeyword("or") {
		ts.next()
		right, err := parseSentenceOrTest(ts, ns)
		if err != nil {
			return nil, err
		}
		return sentence.Disjunct(left, right), nil
	}
	return left, nil
}

func parseSentence(ts *tokenStream, ns *logic.Namespace) (logic.Sentence, error) {
	return parseSentenceOrTest(ts, ns)
}

// --- clauses ---------------------------------------------------------

func parseClause(ts *tokenStream, ns *logic.Namespace) (*logic.Clause, error) {
	head, err := parseLiteral(ts, ns)
	if err != nil {
		return nil, err
	}

	var body []logic.Literal
	if ts.consume(WHERE) {
		lit, err := parseLiteral(ts, ns)
		if err != nil {
			return nil, err
		}
		body = append(body, lit)
		for ts.consume(COMMA) {
			lit, err := parseLiteral(ts, ns)
			if err != nil {
				return nil, err
			}
			body = append(body, lit)
		}
	}

	var sen logic.Sentence = logic.Top{}
	if ts.consume(LBRACKET) {
		sen, err = parseSentence(ts, ns)
		if err != nil {
			return nil, err
		}
		if _, err := ts.expect(RBRACKET, "to close a sentence"); err != nil {
			return nil, err
		}
	}

	return &logic.Clause{Head: head, Body: body, Sentence: sen}, nil
}

// --- annotations -------------------------------------------------------

func parseAnnotation(ts *tokenStream, ns *logic.Namespace, resolve ModuleResolver) (action.Action, error) {
	switch {
	case ts.testProbKeyword():
		label, err := parseProbabilityLabel(ts, ns)
		if err != nil {
			return nil, err
		}
		if _, err := ts.expect(EQUALS, "to continue probability assignment"); err != nil {
			return nil, err
		}
		probTok, err := ts.expect(NUMBER, "to complete probability assignment")
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(probTok.Text, 64)
		if err != nil {
			return nil, jerr.ParseError(probTok.loc(), "invalid probability value %q", probTok.Text)
		}
		return action.AnnotateProbability{Partitioning: label.Partitioning, Part: label.Part, Probability: v}, nil

	case ts.testKeyword("uniform"):
		ts.next()
		leftTok, err := ts.nextIf(isIdentifierTok, "expected an identifier as partitioning name or label function name")
		if err != nil {
			return nil, err
		}
		left, err := parseLabelSide(ts, ns, leftTok)
		if err != nil {
			return nil, err
		}
		return action.AnnotateDistribution{Partitioning: left, Distribution: action.Uniform}, nil

	case ts.testKeyword("use"):
		name, config, err := parseUseAnnotation(ts)
		if err != nil {
			return nil, err
		}
		if resolve == nil {
			return nil, jerr.ExtensionError("no module resolver configured to resolve %q", name)
		}
		ext, err := resolve(name)
		if err != nil {
			return nil, jerr.ExtensionErrorWrap(err, "resolving module %q", name)
		}
		return action.UseModule{Extension: ext, Config: config}, nil

	case ts.testKeyword("from"):
		moduleName, predName, alias, err := parseFromAnnotation(ts)
		if err != nil {
			return nil, err
		}
		return action.UsePredicate{Extension: moduleName, Name: predName, Alias: alias}, nil

	default:
		t, ok := ts.peek()
		loc := jerr.Location{}
		if ok {
			loc = t.loc()
		}
		return nil, jerr.ParseError(loc, "expected explicit probability assignment, distribution assignment, use statement, or from statement")
	}
}

func parseUseAnnotation(ts *tokenStream) (string, map[string]any, error) {
	ts.consume(NAME) // the 'use' keyword itself
	modTok, err := ts.expect(STRING, "to indicate which module to use")
	if err != nil {
		return "", nil, err
	}
	config := map[string]any{}
	if ts.testKeyword("with") {
		ts.next()
		for {
			keyTok, err := ts.expect(NAME, "as the configuration key name")
			if err != nil {
				return "", nil, err
			}
			if _, err := ts.expect(EQUALS, "to separate configuration key and value"); err != nil {
				return "", nil, err
			}
			valTok, err := ts.expect(STRING, "as the value for the configuration key")
			if err != nil {
				return "", nil, err
			}
			config[keyTok.Text] = valTok.Text
			if !ts.consume(COMMA) {
				break
			}
		}
	}
	return modTok.Text, config, nil
}

func parseFromAnnotation(ts *tokenStream) (module, predicate, alias string, err error) {
	ts.consume(NAME) // the 'from' keyword itself
	modTok, err := ts.expect(STRING, "to indicate from which module to use")
	if err != nil {
		return "", "", "", err
	}
	if !ts.testKeyword("use") {
		t, ok := ts.peek()
		loc := jerr.Location{}
		if ok {
			loc = t.loc()
		}
		return "", "", "", jerr.ParseError(loc, "expected keyword 'use' to indicate which predicates to use from the module")
	}
	if _, err := ts.expect(NAME, "the keyword 'use'"); err != nil {
		return "", "", "", err
	}
	predTok, err := ts.expect(NAME, "as the predicate name to use, or the indicator 'all' to use all predicates")
	if err != nil {
		return "", "", "", err
	}
	if predTok.Text == "all" {
		return modTok.Text, "", "", nil
	}
	if ts.testKeyword("as") {
		if _, err := ts.expect(NAME, "to separate used predicate and alias"); err != nil {
			return "", "", "", err
		}
		aliasTok, err := ts.expect(NAME, "to give the alias under which the predicate should be used")
		if err != nil {
			return "", "", "", err
		}
		return modTok.Text, predTok.Text, aliasTok.Text, nil
	}
	return modTok.Text, predTok.Text, "", nil
}
