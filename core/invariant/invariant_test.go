package invariant_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/keymacro/keymacro/core/invariant"
)

// expectPanic runs fn and asserts it panics with a message containing every
// fragment, including the file:line context fail() appends.
func expectPanic(t *testing.T, fn func(), fragments ...string) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		msg := fmt.Sprintf("%v", r)
		for _, frag := range fragments {
			if !strings.Contains(msg, frag) {
				t.Errorf("panic message missing %q:\n%s", frag, msg)
			}
		}
	}()
	fn()
}

func TestPreconditionPassesWhenTrue(t *testing.T) {
	invariant.Precondition(true, "never fires")
	invariant.Precondition(len("k(a)") > 0, "macro text not empty")
}

func TestPreconditionPanicsWhenFalse(t *testing.T) {
	expectPanic(t,
		func() { invariant.Precondition(false, "symbol name must not be empty") },
		"PRECONDITION VIOLATION",
		"symbol name must not be empty",
		"at ",
		"invariant_test.go:",
	)
}

func TestPostcondition(t *testing.T) {
	invariant.Postcondition(true, "never fires")

	expectPanic(t,
		func() { invariant.Postcondition(false, "capability set must not be nil") },
		"POSTCONDITION VIOLATION",
		"capability set must not be nil",
	)
}

func TestInvariantFormatsArguments(t *testing.T) {
	invariant.Invariant(true, "never fires")

	downs, ups := 2, 1
	expectPanic(t,
		func() { invariant.Invariant(downs == ups, "unbalanced key events: %d downs, %d ups", downs, ups) },
		"INVARIANT VIOLATION",
		"unbalanced key events: 2 downs, 1 ups",
	)
}

func TestNotNil(t *testing.T) {
	sink := func(int, int, int) {}
	invariant.NotNil(sink, "sink")
	invariant.NotNil(&struct{}{}, "instance")
	invariant.NotNil([]int{1}, "codes")

	expectPanic(t,
		func() { invariant.NotNil(nil, "sink") },
		"PRECONDITION VIOLATION", "sink must not be nil",
	)

	// A typed nil hiding inside an interface is still nil.
	var tree *struct{}
	expectPanic(t,
		func() { invariant.NotNil(tree, "tree") },
		"tree must not be nil",
	)
}

func TestInRange(t *testing.T) {
	invariant.InRange(0, 0, 3, "param index")
	invariant.InRange(3, 0, 3, "param index")

	for _, value := range []int{-1, 4, 100} {
		expectPanic(t,
			func() { invariant.InRange(value, 0, 3, "param index") },
			"param index must be in range [0, 3]",
			fmt.Sprintf("got %d", value),
		)
	}
}

func TestPositive(t *testing.T) {
	invariant.Positive(1, "keystroke interval")

	for _, value := range []int{0, -20} {
		expectPanic(t,
			func() { invariant.Positive(value, "keystroke interval") },
			"POSTCONDITION VIOLATION",
			"keystroke interval must be positive",
			fmt.Sprintf("got %d", value),
		)
	}
}

func TestExpectNoError(t *testing.T) {
	invariant.ExpectNoError(nil, "builtin macro parse")

	expectPanic(t,
		func() { invariant.ExpectNoError(fmt.Errorf("bad bracket"), "builtin macro parse") },
		"builtin macro parse must not fail",
		"bad bracket",
	)
}

func TestContextNotBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	invariant.ContextNotBackground(ctx, "Broker.Serve")

	expectPanic(t,
		func() { invariant.ContextNotBackground(context.Background(), "Broker.Serve") },
		"Broker.Serve",
		"context must not be Background()",
	)

	expectPanic(t,
		func() { invariant.ContextNotBackground(nil, "Broker.Serve") },
		"context must not be nil",
	)
}
