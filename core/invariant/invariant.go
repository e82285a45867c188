// Package invariant provides contract assertions for the macro interpreter.
//
// Assertions are a force multiplier for discovering bugs. Use
// Precondition/Postcondition to express function contracts, and Invariant
// for internal consistency checks inside the parser and scheduler.
//
// All functions panic on violation - these are programming errors, not user
// errors. A malformed macro string is a parse error (returned, never
// panicked); a scheduler that emits a key-down with no matching key-up is a
// programming error (panicked).
package invariant

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
)

// Precondition checks an input contract at function entry.
// Panics with PRECONDITION VIOLATION if condition is false.
//
// Example:
//
//	func Resolve(name string) (int, bool) {
//	    invariant.Precondition(name != "", "symbol name must not be empty")
//	    // ... lookup ...
//	}
func Precondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition checks an output contract before function return.
// Panics with POSTCONDITION VIOLATION if condition is false.
//
// Example:
//
//	func (n *Node) Capabilities() CapabilitySet {
//	    caps := n.computeCapabilities()
//	    invariant.Postcondition(caps != nil, "capabilities must not be nil")
//	    return caps
//	}
func Postcondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant checks an internal invariant during function execution.
// Panics with INVARIANT VIOLATION if condition is false.
//
// Example:
//
//	downs := 0
//	for range events {
//	    // ... process event ...
//	    invariant.Invariant(downs >= 0, "key-down count must never go negative")
//	}
func Invariant(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// NotNil panics if value is nil.
// This is a precondition check for pointer/interface arguments.
//
// Example:
//
//	func Run(sink EventSink) {
//	    invariant.NotNil(sink, "sink")
//	    // ... work ...
//	}
func NotNil(value interface{}, name string) {
	if value == nil {
		fail("PRECONDITION", "%s must not be nil", name)
	}
	// Check for typed nil (e.g., (*T)(nil))
	if isNilValue(value) {
		fail("PRECONDITION", "%s must not be nil", name)
	}
}

// isNilValue checks if a value is a typed nil using reflection
func isNilValue(value interface{}) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	kind := v.Kind()

	switch kind {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

// InRange panics if value is outside [min, max].
// This is a precondition check for numeric arguments.
//
// Example:
//
//	func (p *Parser) paramAt(params []string, index int) string {
//	    invariant.InRange(index, 0, len(params)-1, "index")
//	    return params[index]
//	}
func InRange(value, minVal, maxVal int, name string) {
	if value < minVal || value > maxVal {
		fail("PRECONDITION", "%s must be in range [%d, %d], got %d",
			name, minVal, maxVal, value)
	}
}

// Positive panics if value <= 0.
//
// Example:
//
//	func (s *store) nextGeneration() uint64 {
//	    gen := s.generation.Add(1)
//	    invariant.Positive(int(gen), "generation")
//	    return gen
//	}
func Positive(value int, name string) {
	if value <= 0 {
		fail("POSTCONDITION", "%s must be positive, got %d", name, value)
	}
}

// ExpectNoError panics if error is not nil.
// This is a postcondition check for operations that should never fail.
//
// Example:
//
//	func compileBuiltinGrammar() *Node {
//	    tree, err := Parse(builtinSource, defaultConfig)
//	    invariant.ExpectNoError(err, "builtin macro must parse")
//	    return tree
//	}
func ExpectNoError(err error, msg string) {
	if err != nil {
		fail("POSTCONDITION", "%s must not fail: %v", msg, err)
	}
}

// ContextNotBackground panics if context is context.Background().
// This catches bugs where a parent context should be passed but Background()
// is used instead.
//
// Only the process-level entry point (e.g. the broker's Serve) should create
// a fresh context; everything downstream must receive it as a parameter so
// shutdown propagates.
//
// Example:
//
//	func (b *Broker) handleConn(ctx context.Context, conn net.Conn) {
//	    invariant.ContextNotBackground(ctx, "handleConn")
//	    // ... use ctx for cancellation ...
//	}
func ContextNotBackground(ctx context.Context, location string) {
	if ctx == nil {
		fail("PRECONDITION", "%s: context must not be nil", location)
	}
	if ctx == context.Background() {
		fail("PRECONDITION", "%s: context must not be Background() - parent context required for cancellation", location)
	}
}

// fail panics with a formatted message including call stack context.
func fail(kind, format string, args ...interface{}) {
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])

	msg := fmt.Sprintf("%s VIOLATION: "+format, append([]interface{}{kind}, args...)...)

	if frame, ok := frames.Next(); ok {
		msg += fmt.Sprintf("\n  at %s:%d", frame.File, frame.Line)
	}

	panic(msg)
}
