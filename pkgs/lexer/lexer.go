// Package lexer performs the textual preprocessing that runs before a macro
// string ever reaches the parser: whitespace/quote normalization, the `+`
// shorthand rewrite, and the bracket bookkeeping the parser's recursive
// descent leans on to split "head(args).tail" without a separate tokenizer
// pass.
package lexer

import "strings"

// ASCII lookup tables for fast classification, precomputed once at package
// init rather than branching per rune on every call.
var (
	isStrippable [128]bool // characters Normalize removes outright
	isIdentPart  [128]bool // characters allowed in a bare identifier/symbol
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isStrippable[i] = ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' ||
			ch == '"' || ch == '\''
		isIdentPart[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') ||
			('0' <= ch && ch <= '9') || ch == '_' || ch == '-'
	}
}

// Normalize strips whitespace and quote characters from a raw macro string.
// Macro text carries no significant whitespace and quoting is purely
// cosmetic (`k("a")` and `k(a)` are the same macro), so both are removed
// unconditionally before any structural parsing happens.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch < 128 && isStrippable[ch] {
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// IsMacro reports whether value should be handed to the parser at all.
// value is typically whatever a mapping's target field held in source
// form; anything that is not a string can never be a macro. Among
// strings, a macro is either an explicit call ("k(a)") or the `+`
// shorthand ("a+b"); a bare symbol name ("a") is not.
func IsMacro(value interface{}) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	if strings.Contains(s, "(") {
		return true
	}
	return hasPlusPattern(s)
}

// hasPlusPattern reports whether s is a well-formed '+' chain: at least
// one '+' outside of any parenthesized region, with non-empty tokens on
// both sides of every '+'. A '+' nested inside a call's arguments (e.g.
// the one in "k(a + b)") does not make the outer string a plus-shorthand
// expression, and degenerate forms ("+", "a+", "a++b") don't either.
func hasPlusPattern(s string) bool {
	tokens := splitTopLevel(strings.TrimSpace(s), '+')
	if len(tokens) < 2 {
		return false
	}
	for _, tok := range tokens {
		if strings.TrimSpace(tok) == "" {
			return false
		}
	}
	return true
}

// HandlePlusSyntax rewrites the "a+b+c" shorthand for chained key holds
// into its equivalent call form, "m(a,m(b,m(c,h())))". It is a no-op
// (returns text unchanged, not even trimmed) unless the entire trimmed
// string is a well-formed, non-empty chain of tokens separated by '+'
// signs that sit outside any parentheses: a leading/trailing/doubled '+'
// or a '+' that is nested inside parentheses is left untouched for the
// parser to reject on its own terms.
func HandlePlusSyntax(text string) string {
	trimmed := strings.TrimSpace(text)

	tokens := splitTopLevel(trimmed, '+')
	if len(tokens) < 2 {
		return text
	}

	for i, tok := range tokens {
		tokens[i] = strings.TrimSpace(tok)
		if tokens[i] == "" {
			return text
		}
	}

	result := "h()"
	for i := len(tokens) - 1; i >= 0; i-- {
		result = "m(" + tokens[i] + "," + result + ")"
	}
	return result
}

// splitTopLevel splits s on sep, but only where sep appears outside of any
// parenthesized region.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// CountBrackets returns the length of the prefix of text ending at the
// closing parenthesis that matches the first opening parenthesis, e.g.
// CountBrackets("a(b(c))d") is 7 ("a(b(c))"), and CountBrackets("") is 0.
// ok is false when the first opening parenthesis is never closed; text
// after the matching parenthesis, or a ')' before the first '(', is not
// examined (CountBrackets("a)b") is 0, true).
func CountBrackets(text string) (int, bool) {
	start := strings.IndexByte(text, '(')
	if start == -1 {
		return 0, true
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, true
			}
			if depth < 0 {
				return 0, false
			}
		}
	}
	return 0, false
}

// IsBareIdentifier reports whether text is a plain symbol/variable token:
// non-empty and free of the structural characters ('(', ')', ',', '.')
// that would make it part of a call expression instead.
func IsBareIdentifier(text string) bool {
	if text == "" {
		return false
	}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(', ')', ',', '.':
			return false
		}
	}
	return true
}

// ExtractParams splits argument text on top-level commas. An empty string
// yields a single empty parameter ([""]), matching the convention that a
// call with nothing between its parentheses has one, empty, argument.
func ExtractParams(argsText string) []string {
	return splitTopLevel(argsText, ',')
}
