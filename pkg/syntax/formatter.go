package syntax

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gitrdm/judged/pkg/action"
	"github.com/gitrdm/judged/pkg/jerr"
	"github.com/gitrdm/judged/pkg/logic"
)

// FormatLiteral renders l back to surface syntax (spec section 6),
// preferring the infix `=`/`!=` spelling for the equality predicate
// since that is the only form the parser accepts for it.
func FormatLiteral(l logic.Literal) string {
	if l.Pred.Name == "=" && len(l.Args) == 2 {
		op := "="
		if !l.Pos {
			op = "!="
		}
		return fmt.Sprintf("%s %s %s", l.Args[0], op, l.Args[1])
	}
	return l.String()
}

// FormatClause renders c's head, optional body and optional sentence,
// without a terminator (spec section 6).
func FormatClause(c *logic.Clause) string {
	var b strings.Builder
	b.WriteString(FormatLiteral(c.Head))
	if len(c.Body) > 0 {
		b.WriteString(" :- ")
		for i, l := range c.Body {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(FormatLiteral(l))
		}
	}
	if _, ok := c.SentenceOrTop().(logic.Top); !ok {
		b.WriteString(" [")
		b.WriteString(c.SentenceOrTop().String())
		b.WriteString("]")
	}
	return b.String()
}

// formatNumber renders v without an exponent: the tokenizer has no
// scientific-notation state, so 'g' formatting could emit text the
// parser cannot read back.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatAction renders a to its surface-syntax spelling, including the
// terminator (spec section 6). Compound and Generator have no surface
// form (spec section 6 only names assert/retract/query/annotations),
// so formatting one is an UnsupportedError.
func FormatAction(a action.Action) (string, error) {
	switch x := a.(type) {
	case action.Assert:
		return FormatClause(x.Clause) + ".", nil
	case action.Retract:
		return FormatClause(x.Clause) + "~", nil
	case action.Query:
		return FormatLiteral(x.Literal) + "?", nil
	case action.AnnotateProbability:
		return fmt.Sprintf("@p(%s=%s)=%s.", x.Partitioning, x.Part, formatNumber(x.Probability)), nil
	case action.AnnotateDistribution:
		return fmt.Sprintf("@%s p(%s).", x.Distribution, x.Partitioning), nil
	case action.UseModule:
		out := fmt.Sprintf("@use %q", x.Extension.Name)
		if len(x.Config) > 0 {
			keys := make([]string, 0, len(x.Config))
			for k := range x.Config {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i] = fmt.Sprintf("%s=%q", k, x.Config[k])
			}
			out += " with " + strings.Join(parts, ", ")
		}
		return out + ".", nil
	case action.UsePredicate:
		if x.Name == "" {
			return fmt.Sprintf("@from %q use all.", x.Extension), nil
		}
		if x.Alias != "" {
			return fmt.Sprintf("@from %q use %s as %s.", x.Extension, x.Name, x.Alias), nil
		}
		return fmt.Sprintf("@from %q use %s.", x.Extension, x.Name), nil
	default:
		return "", jerr.UnsupportedError("cannot format action of type %T back to surface syntax", a)
	}
}
