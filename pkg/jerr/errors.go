// Package jerr defines the flat error taxonomy shared across judged's
// packages (spec section 7): a single Error type discriminated by Kind,
// every variant carrying an optional source Location and wrapped cause so
// callers can use errors.As/errors.Is uniformly instead of type-switching
// across a dozen named error types.
package jerr

import "fmt"

// Kind discriminates the error taxonomy of spec section 7.
type Kind string

const (
	KindParse        Kind = "parse_error"
	KindTokenize     Kind = "tokenize_error"
	KindSafety       Kind = "safety_error"
	KindQueryShape   Kind = "query_shape_error"
	KindUnsupported  Kind = "unsupported_error"
	KindDistribution Kind = "distribution_error"
	KindCache        Kind = "cache_error"
	KindExtension    Kind = "extension_error"
	KindLimit        Kind = "limit_error"
)

// Location is the line range a syntax error was raised at.
type Location struct {
	StartLine int
	EndLine   int
}

func (l Location) String() string {
	if l.StartLine == l.EndLine {
		return fmt.Sprintf("line %d", l.StartLine)
	}
	return fmt.Sprintf("lines %d-%d", l.StartLine, l.EndLine)
}

// Error is the common base for every error judged raises across its
// package boundary. It is never constructed directly outside this
// package; use the Kind-specific constructors below.
type Error struct {
	Kind Kind
	Msg  string
	Loc  *Location
	Err  error
}

func (e *Error) Error() string {
	if e.Loc != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Loc, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind, letting
// callers write errors.Is(err, &jerr.Error{Kind: jerr.KindSafety}) — more
// commonly callers use Kind-testing helpers like IsSafety below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func new_(k Kind, loc *Location, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Loc: loc}
}

func wrap(k Kind, loc *Location, cause error, format string, args ...any) *Error {
	e := new_(k, loc, format, args...)
	e.Err = cause
	return e
}

func ParseError(loc Location, format string, args ...any) *Error {
	return new_(KindParse, &loc, format, args...)
}

func TokenizeError(loc Location, format string, args ...any) *Error {
	return new_(KindTokenize, &loc, format, args...)
}

func SafetyError(format string, args ...any) *Error {
	return new_(KindSafety, nil, format, args...)
}

func QueryShapeError(format string, args ...any) *Error {
	return new_(KindQueryShape, nil, format, args...)
}

func UnsupportedError(format string, args ...any) *Error {
	return new_(KindUnsupported, nil, format, args...)
}

func DistributionError(format string, args ...any) *Error {
	return new_(KindDistribution, nil, format, args...)
}

func CacheError(format string, args ...any) *Error {
	return new_(KindCache, nil, format, args...)
}

func ExtensionError(format string, args ...any) *Error {
	return new_(KindExtension, nil, format, args...)
}

func ExtensionErrorWrap(cause error, format string, args ...any) *Error {
	return wrap(KindExtension, nil, cause, format, args...)
}

func LimitError(format string, args ...any) *Error {
	return new_(KindLimit, nil, format, args...)
}

// Is* helpers test the Kind of an error, looking through wrapping via
// errors.As.
func kindOf(err error) (Kind, bool) {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind, true
	}
	return "", false
}

// asError is a tiny local errors.As to avoid importing "errors" just for
// this one call site in every helper below.
func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func IsParse(err error) bool        { k, ok := kindOf(err); return ok && k == KindParse }
func IsTokenize(err error) bool     { k, ok := kindOf(err); return ok && k == KindTokenize }
func IsSafety(err error) bool       { k, ok := kindOf(err); return ok && k == KindSafety }
func IsQueryShape(err error) bool   { k, ok := kindOf(err); return ok && k == KindQueryShape }
func IsUnsupported(err error) bool  { k, ok := kindOf(err); return ok && k == KindUnsupported }
func IsDistribution(err error) bool { k, ok := kindOf(err); return ok && k == KindDistribution }
func IsCache(err error) bool        { k, ok := kindOf(err); return ok && k == KindCache }
func IsExtension(err error) bool    { k, ok := kindOf(err); return ok && k == KindExtension }
func IsLimit(err error) bool        { k, ok := kindOf(err); return ok && k == KindLimit }
