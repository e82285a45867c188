// Package parser implements a recursive-descent parser for the macro
// language: a small grammar of "head(args)" operation calls chained with
// '.', where each argument is itself either a literal, a bare word, or a
// nested call. The parser has no separate tokenizer; pkgs/lexer supplies
// the few structural primitives (bracket matching, top-level comma/plus
// splitting) it needs to find call boundaries directly in the string.
package parser

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/keymacro/keymacro/core/ast"
	"github.com/keymacro/keymacro/pkgs/lexer"
)

// Parse normalizes and parses a raw macro string into a tree. It always
// returns a diagnostic error on failure; callers on a hot path that only
// care whether the macro is usable at all should use ParseSilent instead.
func Parse(text string) (*ast.Node, error) {
	// The '+' shorthand is rewritten once, at the top level only: a '+'
	// nested inside a call's arguments is not sugar and falls through to
	// the grammar (where it reads as part of a bare word).
	normalized := lexer.HandlePlusSyntax(lexer.Normalize(text))
	p := &parser{normalized: normalized}

	result, err := p.parseRecurse(normalized, 0)
	if err != nil {
		return nil, err
	}
	if result.node == nil {
		return nil, p.errorf(ErrorInvalid, 0, "macro must be an operation call, got %q", normalized)
	}
	return result.node, nil
}

// ParseSilent parses text and discards diagnostic detail, returning nil on
// any failure. This is the "silent" evaluation-mode counterpart to Parse
// described for the hot execution path, where a malformed macro should be
// treated as simply absent rather than raised to the user mid-keystroke.
func ParseSilent(text string) *ast.Node {
	node, err := Parse(text)
	if err != nil {
		return nil
	}
	return node
}

type parser struct {
	normalized string // full normalized input, kept only for error snippets
}

// argValue is the result of recursively parsing one piece of source text:
// exactly one of empty, a literal Value, or a nested operation Node.
type argValue struct {
	value ast.Value
	node  *ast.Node
	empty bool
}

func (p *parser) parseRecurse(text string, offset int) (argValue, error) {
	if text == "" {
		return argValue{empty: true}, nil
	}
	if n, ok := parseInt(text); ok {
		return argValue{value: ast.IntValue(n)}, nil
	}
	if lexer.IsBareIdentifier(text) {
		return argValue{value: ast.WordValue(text)}, nil
	}

	node, err := p.parseCallChain(text, offset)
	if err != nil {
		return argValue{}, err
	}
	return argValue{node: node}, nil
}

func parseInt(text string) (int, bool) {
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseCallChain parses "head(args)" optionally followed by ".tail",
// where tail is itself a call chain.
func (p *parser) parseCallChain(text string, offset int) (*ast.Node, error) {
	if !strings.Contains(text, "(") {
		return nil, p.errorf(ErrorUnexpected, offset, "expected an operation call, got %q", text)
	}

	end, ok := lexer.CountBrackets(text)
	if !ok {
		return nil, p.errorf(ErrorBracket, offset, "unmatched bracket in %q", text)
	}

	node, err := p.parseOperation(text[:end], offset)
	if err != nil {
		return nil, err
	}

	rest := text[end:]
	if rest == "" {
		return node, nil
	}
	if rest[0] == ')' {
		return nil, p.errorf(ErrorBracket, offset+end, "unmatched closing bracket in %q", text)
	}
	if rest[0] != '.' {
		return nil, p.errorf(ErrorSyntax, offset+end, "expected '.' after operation, got %q", rest)
	}

	tailText := rest[1:]
	tailOffset := offset + end + 1
	tailArg, err := p.parseRecurse(tailText, tailOffset)
	if err != nil {
		return nil, err
	}
	if tailArg.node == nil {
		return nil, p.errorf(ErrorInvalid, tailOffset, "chained expression must be an operation, got %q", tailText)
	}
	return &ast.Node{Op: ast.OpSeq, Children: []*ast.Node{node, tailArg.node}}, nil
}

// parseOperation parses a single balanced "head(args)" call.
func (p *parser) parseOperation(headCall string, offset int) (*ast.Node, error) {
	idx := strings.IndexByte(headCall, '(')
	name := headCall[:idx]
	argsText := headCall[idx+1 : len(headCall)-1]
	params, offsets := splitParamsWithOffsets(argsText, offset+idx+1)

	switch strings.ToLower(name) {
	case "k":
		return p.buildTap(params, offsets, offset)
	case "r":
		return p.buildRepeat(params, offsets, offset)
	case "w":
		return p.buildSleep(params, offsets, offset)
	case "h":
		return p.buildHold(params, offsets, offset)
	case "m":
		return p.buildModifier(params, offsets, offset)
	case "mouse":
		return p.buildMouse(params, offsets, offset)
	case "wheel":
		return p.buildWheel(params, offsets, offset)
	case "e":
		return p.buildEvent(params, offsets, offset)
	case "set":
		return p.buildSet(params, offsets, offset)
	case "ifeq":
		return p.buildIfEq(params, offsets, offset)
	default:
		return nil, p.unknownOpError(name, offset)
	}
}

// splitParamsWithOffsets is lexer.ExtractParams with a source offset
// tracked alongside each piece, so argument-level errors can point at the
// right column instead of the whole call's start.
func splitParamsWithOffsets(argsText string, base int) ([]string, []int) {
	depth := 0
	start := 0
	var params []string
	var offsets []int
	offsets = append(offsets, base)
	for i := 0; i < len(argsText); i++ {
		switch argsText[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				params = append(params, argsText[start:i])
				start = i + 1
				offsets = append(offsets, base+start)
			}
		}
	}
	params = append(params, argsText[start:])
	return params, offsets
}

func (p *parser) parseLiteral(text string, offset int, what string) (ast.Value, error) {
	arg, err := p.parseRecurse(text, offset)
	if err != nil {
		return ast.Value{}, err
	}
	if arg.node != nil {
		return ast.Value{}, p.errorf(ErrorInvalid, offset, "%s must be a literal, got an operation", what)
	}
	if arg.empty {
		return ast.Value{}, p.errorf(ErrorMissing, offset, "%s requires a value", what)
	}
	return arg.value, nil
}

func (p *parser) parseIntLiteral(text string, offset int, what string) (int, error) {
	v, err := p.parseLiteral(text, offset, what)
	if err != nil {
		return 0, err
	}
	if v.Kind != ast.ValueInt {
		// A word-shaped argument here is never a valid variable reference
		// (integer arguments, r's count included, are literal-only); surface
		// the strconv failure that rejected it as the literal's root cause.
		if v.Kind == ast.ValueWord {
			if _, atoiErr := strconv.Atoi(v.Word); atoiErr != nil {
				wrapped := errors.Wrapf(atoiErr, "%s must be an integer, got %q", what, text)
				return 0, p.errorf(ErrorInvalid, offset, "%s", wrapped)
			}
		}
		return 0, p.errorf(ErrorInvalid, offset, "%s must be an integer, got %q", what, text)
	}
	return v.Int, nil
}

// parseBody parses an expression-typed argument: empty text yields a nil
// node (an absent optional branch), non-empty text must parse to an
// operation.
func (p *parser) parseBody(text string, offset int, what string) (*ast.Node, error) {
	if text == "" {
		return nil, nil
	}
	arg, err := p.parseRecurse(text, offset)
	if err != nil {
		return nil, err
	}
	if arg.node == nil {
		return nil, p.errorf(ErrorInvalid, offset, "%s must be an operation, got %q", what, text)
	}
	return arg.node, nil
}

func (p *parser) buildTap(params []string, offsets []int, offset int) (*ast.Node, error) {
	if len(params) != 1 {
		return nil, p.arityError("k", 1, len(params), offset)
	}
	sym, err := p.parseLiteral(params[0], offsets[0], "k's key")
	if err != nil {
		return nil, err
	}
	return &ast.Node{Op: ast.OpTap, Values: []ast.Value{sym}}, nil
}

func (p *parser) buildRepeat(params []string, offsets []int, offset int) (*ast.Node, error) {
	if len(params) != 2 {
		return nil, p.arityError("r", 2, len(params), offset)
	}
	n, err := p.parseIntLiteral(params[0], offsets[0], "r's count")
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, p.errorf(ErrorInvalid, offsets[0], "r's count must be non-negative, got %d", n)
	}
	body, err := p.parseBody(params[1], offsets[1], "r's body")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, p.errorf(ErrorMissing, offsets[1], "r requires a body")
	}
	return &ast.Node{Op: ast.OpRepeat, Values: []ast.Value{ast.IntValue(n)}, Children: []*ast.Node{body}}, nil
}

func (p *parser) buildSleep(params []string, offsets []int, offset int) (*ast.Node, error) {
	if len(params) != 1 {
		return nil, p.arityError("w", 1, len(params), offset)
	}
	ms, err := p.parseIntLiteral(params[0], offsets[0], "w's duration")
	if err != nil {
		return nil, err
	}
	if ms < 0 {
		return nil, p.errorf(ErrorInvalid, offsets[0], "w's duration must be non-negative, got %d", ms)
	}
	return &ast.Node{Op: ast.OpSleep, Values: []ast.Value{ast.IntValue(ms)}}, nil
}

func (p *parser) buildHold(params []string, offsets []int, offset int) (*ast.Node, error) {
	if len(params) > 1 {
		return nil, p.errorf(ErrorArity, offset, "h accepts 0 or 1 arguments, got %d", len(params))
	}
	if len(params) == 0 || params[0] == "" {
		return &ast.Node{Op: ast.OpHoldWait}, nil
	}
	arg, err := p.parseRecurse(params[0], offsets[0])
	if err != nil {
		return nil, err
	}
	if arg.node != nil {
		return &ast.Node{Op: ast.OpHoldRepeat, Children: []*ast.Node{arg.node}}, nil
	}
	// A literal argument names a key to hold down for the duration of the
	// physical hold, the same way k's argument names a key to tap.
	return &ast.Node{Op: ast.OpHoldKey, Values: []ast.Value{arg.value}}, nil
}

func (p *parser) buildModifier(params []string, offsets []int, offset int) (*ast.Node, error) {
	if len(params) != 2 {
		return nil, p.arityError("m", 2, len(params), offset)
	}
	sym, err := p.parseLiteral(params[0], offsets[0], "m's key")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBody(params[1], offsets[1], "m's body")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, p.errorf(ErrorMissing, offsets[1], "m requires a body")
	}
	return &ast.Node{Op: ast.OpModifier, Values: []ast.Value{sym}, Children: []*ast.Node{body}}, nil
}

func (p *parser) buildDirectional(op ast.Opcode, opName string, params []string, offsets []int, offset int) (*ast.Node, error) {
	if len(params) != 2 {
		return nil, p.arityError(opName, 2, len(params), offset)
	}
	dir, err := p.parseLiteral(params[0], offsets[0], opName+"'s direction")
	if err != nil {
		return nil, err
	}
	if dir.Kind != ast.ValueWord || !isDirection(dir.Word) {
		return nil, p.errorf(ErrorInvalid, offsets[0], "%s's direction must be one of up/down/left/right, got %q", opName, params[0])
	}
	speed, err := p.parseIntLiteral(params[1], offsets[1], opName+"'s speed")
	if err != nil {
		return nil, err
	}
	return &ast.Node{Op: op, Values: []ast.Value{dir, ast.IntValue(speed)}}, nil
}

func (p *parser) buildMouse(params []string, offsets []int, offset int) (*ast.Node, error) {
	return p.buildDirectional(ast.OpMouse, "mouse", params, offsets, offset)
}

func (p *parser) buildWheel(params []string, offsets []int, offset int) (*ast.Node, error) {
	return p.buildDirectional(ast.OpWheel, "wheel", params, offsets, offset)
}

func isDirection(word string) bool {
	switch strings.ToLower(word) {
	case ast.DirUp, ast.DirDown, ast.DirLeft, ast.DirRight:
		return true
	default:
		return false
	}
}

func (p *parser) buildEvent(params []string, offsets []int, offset int) (*ast.Node, error) {
	if len(params) != 3 {
		return nil, p.arityError("e", 3, len(params), offset)
	}
	what := []string{"e's event type", "e's event code", "e's event value"}
	values := make([]ast.Value, 3)
	for i := range params {
		n, err := p.parseIntLiteral(params[i], offsets[i], what[i])
		if err != nil {
			return nil, err
		}
		values[i] = ast.IntValue(n)
	}
	return &ast.Node{Op: ast.OpEvent, Values: values}, nil
}

func (p *parser) buildSet(params []string, offsets []int, offset int) (*ast.Node, error) {
	if len(params) != 2 {
		return nil, p.arityError("set", 2, len(params), offset)
	}
	name, err := p.parseLiteral(params[0], offsets[0], "set's name")
	if err != nil {
		return nil, err
	}
	if name.Kind != ast.ValueWord {
		return nil, p.errorf(ErrorInvalid, offsets[0], "set's name must be an identifier, got %q", params[0])
	}
	value, err := p.parseLiteral(params[1], offsets[1], "set's value")
	if err != nil {
		return nil, err
	}
	return &ast.Node{Op: ast.OpSet, Values: []ast.Value{name, value}}, nil
}

func (p *parser) buildIfEq(params []string, offsets []int, offset int) (*ast.Node, error) {
	if len(params) != 4 {
		return nil, p.arityError("ifeq", 4, len(params), offset)
	}
	name, err := p.parseLiteral(params[0], offsets[0], "ifeq's name")
	if err != nil {
		return nil, err
	}
	if name.Kind != ast.ValueWord {
		return nil, p.errorf(ErrorInvalid, offsets[0], "ifeq's name must be an identifier, got %q", params[0])
	}
	value, err := p.parseLiteral(params[1], offsets[1], "ifeq's value")
	if err != nil {
		return nil, err
	}
	thenNode, err := p.parseBody(params[2], offsets[2], "ifeq's then-branch")
	if err != nil {
		return nil, err
	}
	elseNode, err := p.parseBody(params[3], offsets[3], "ifeq's else-branch")
	if err != nil {
		return nil, err
	}
	return &ast.Node{
		Op:       ast.OpIfEq,
		Values:   []ast.Value{name, value},
		Children: []*ast.Node{thenNode, elseNode},
	}, nil
}
