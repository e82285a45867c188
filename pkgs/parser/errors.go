package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrorType categorizes a ParseError the way a caller wants to react to
// it, independent of the human-readable message.
type ErrorType int

const (
	ErrorSyntax ErrorType = iota
	ErrorArity
	ErrorUnexpected
	ErrorMissing
	ErrorInvalid
	ErrorUnknownOp
	ErrorBracket
)

func (e ErrorType) String() string {
	switch e {
	case ErrorSyntax:
		return "syntax error"
	case ErrorArity:
		return "wrong number of arguments"
	case ErrorUnexpected:
		return "unexpected input"
	case ErrorMissing:
		return "missing argument"
	case ErrorInvalid:
		return "invalid argument"
	case ErrorUnknownOp:
		return "unknown operation"
	case ErrorBracket:
		return "bracket mismatch"
	default:
		return "error"
	}
}

// ParseError reports where in the (already-normalized) macro string a
// problem occurred, with a Rust/Clang-style single-line snippet.
type ParseError struct {
	Type    ErrorType
	Message string
	Input   string
	Offset  int // byte offset into Input
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s: %s\n%s", e.Type, e.Message, e.snippet())
}

func (e ParseError) snippet() string {
	if e.Input == "" {
		return ""
	}
	col := e.Offset + 1

	var b strings.Builder
	fmt.Fprintf(&b, "  --> 1:%d\n", col)
	b.WriteString("   |\n")
	fmt.Fprintf(&b, " 1 | %s\n", e.Input)
	b.WriteString("   | ")
	if col >= 1 && col <= len(e.Input)+1 {
		b.WriteString(strings.Repeat(" ", col-1) + "^")
	}
	return b.String()
}

// knownOps lists every head name the parser recognizes, used to suggest
// the closest known one when parseOperation meets an unknown head.
var knownOps = []string{"k", "r", "w", "h", "m", "mouse", "wheel", "e", "set", "ifeq"}

func (p *parser) errorf(typ ErrorType, offset int, format string, args ...interface{}) error {
	return ParseError{
		Type:    typ,
		Message: fmt.Sprintf(format, args...),
		Input:   p.normalized,
		Offset:  offset,
	}
}

func (p *parser) unknownOpError(name string, offset int) error {
	msg := fmt.Sprintf("unknown operation %q", name)
	lower := strings.ToLower(name)
	ranks := fuzzy.RankFindFold(lower, knownOps)
	if len(ranks) == 0 {
		// A head with extra characters ("kk", "mousee") is not found inside
		// any known op; rank the known ops found inside it instead.
		for i, op := range knownOps {
			if fuzzy.MatchFold(op, lower) {
				ranks = append(ranks, fuzzy.Rank{Source: lower, Target: op, Distance: fuzzy.LevenshteinDistance(lower, op), OriginalIndex: i})
			}
		}
	}
	if len(ranks) > 0 {
		sort.Sort(ranks)
		msg += fmt.Sprintf(" (did you mean %q?)", ranks[0].Target)
	}
	return p.errorf(ErrorUnknownOp, offset, "%s", msg)
}

func (p *parser) arityError(op string, want int, got int, offset int) error {
	return p.errorf(ErrorArity, offset, "%s expects %d argument(s), got %d", op, want, got)
}
