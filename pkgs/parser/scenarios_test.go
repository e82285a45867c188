package parser_test

// End-to-end scenarios: parse a source string and run the resulting tree
// against a recording sink, checking the emitted event stream. These sit
// with the parser tests because the source strings are the interface under
// test; the per-op execution details have their own tests in
// runtime/execution.

import (
	"testing"
	"time"

	"github.com/keymacro/keymacro/core/ast"
	"github.com/keymacro/keymacro/core/config"
	"github.com/keymacro/keymacro/core/symbols"
	"github.com/keymacro/keymacro/core/varstore"
	"github.com/keymacro/keymacro/runtime"
	"github.com/keymacro/keymacro/runtime/emit"
)

func fastConfig() *config.Store {
	ms := 1
	return config.NewStore(config.Options{KeystrokeSleepMs: &ms})
}

func run(t *testing.T, text string, table symbols.Table, hold time.Duration, vars varstore.Store) []emit.Event {
	t.Helper()
	tree := mustParse(t, text)
	rec, err := runtime.RunRecording(tree, table, runtime.RunOptions{
		Hold:   hold,
		Vars:   vars,
		Config: fastConfig(),
	})
	if err != nil {
		t.Fatalf("run %q: %v", text, err)
	}
	return rec.Events()
}

func TestScenarioChainedTaps(t *testing.T) {
	table := symbols.NewStatic(map[string]int{"1": 2, "a": 30, "3": 4})
	events := run(t, `k(1).k("a").k(3)`, table, 0, nil)

	want := []emit.Event{
		{Type: ast.EvKey, Code: 2, Value: 1}, {Type: ast.EvKey, Code: 2, Value: 0},
		{Type: ast.EvKey, Code: 30, Value: 1}, {Type: ast.EvKey, Code: 30, Value: 0},
		{Type: ast.EvKey, Code: 4, Value: 1}, {Type: ast.EvKey, Code: 4, Value: 0},
	}
	if len(events) != len(want) {
		t.Fatalf("got %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d = %v, want %v", i, events[i], want[i])
		}
	}
}

func TestScenarioHoldBody(t *testing.T) {
	table := symbols.NewStatic(map[string]int{"1": 2, "a": 30, "3": 4})
	events := run(t, "k(1).h(k(a)).k(3)", table, 100*time.Millisecond, nil)

	if len(events) < 8 {
		t.Fatalf("expected the held body to repeat, got %v", events)
	}
	if events[0] != (emit.Event{Type: ast.EvKey, Code: 2, Value: 1}) {
		t.Fatalf("expected k(1) down first, got %v", events[0])
	}
	if events[len(events)-1] != (emit.Event{Type: ast.EvKey, Code: 4, Value: 0}) {
		t.Fatalf("expected k(3) up last, got %v", events[len(events)-1])
	}
	downs := 0
	for _, e := range events {
		if e == (emit.Event{Type: ast.EvKey, Code: 30, Value: 1}) {
			downs++
		}
	}
	if downs <= 2 {
		t.Fatalf("expected more than 2 k(a) presses during the hold, got %d", downs)
	}
}

func TestScenarioPlusSugarReleaseOrder(t *testing.T) {
	table := symbols.NewStatic(map[string]int{"a": 1, "b": 2, "c": 3, "d": 4})
	events := run(t, "a+b+c+d", table, 50*time.Millisecond, nil)

	if len(events) != 8 {
		t.Fatalf("expected 4 presses and 4 releases, got %v", events)
	}
	wantCodes := []int{1, 2, 3, 4, 4, 3, 2, 1}
	wantValues := []int{1, 1, 1, 1, 0, 0, 0, 0}
	for i, e := range events {
		if e.Code != wantCodes[i] || e.Value != wantValues[i] {
			t.Fatalf("event %d = %v, want code %d value %d", i, e, wantCodes[i], wantValues[i])
		}
	}
}

func TestScenarioSetAndIfEq(t *testing.T) {
	table := symbols.NewStatic(map[string]int{"a": 30, "b": 48})

	vars := varstore.NewLocal()
	events := run(t, "set(foo,2).ifeq(foo,2,k(a),k(b))", table, 0, vars)
	if len(events) != 2 || events[0].Code != 30 {
		t.Fatalf("expected the then-branch only, got %v", events)
	}

	events = run(t, "ifeq(qux,2,k(a),k(b))", table, 0, varstore.NewLocal())
	if len(events) != 2 || events[0].Code != 48 {
		t.Fatalf("expected the else-branch only, got %v", events)
	}
}

func TestScenarioRawEvent(t *testing.T) {
	table := symbols.NewStatic(nil)
	tree := mustParse(t, "r(1, e(5421, 324, 154))")

	caps := tree.Capabilities(table)
	if codes := caps.Codes(5421); len(codes) != 1 || !caps.Has(5421, 324) {
		t.Fatalf("capabilities[5421] = %v, want {324}", codes)
	}

	events := run(t, "r(1, e(5421, 324, 154))", table, 0, nil)
	if len(events) != 1 || events[0] != (emit.Event{Type: 5421, Code: 324, Value: 154}) {
		t.Fatalf("got %v, want a single (5421, 324, 154)", events)
	}
}

// TestCapabilitiesCoverEmittedEvents checks the universal property that a
// tree's static capability set is a superset of whatever it actually
// emits, across hold-sensitive and conditional ops alike.
func TestCapabilitiesCoverEmittedEvents(t *testing.T) {
	table := symbols.NewStatic(map[string]int{"a": 30, "b": 48, "ctrl": 29})
	sources := []string{
		"k(a).k(b)",
		"m(ctrl, k(a))",
		"h(a)",
		"mouse(up, 4)",
		"wheel(left, 2)",
		"set(foo,1).ifeq(foo,1,k(a),k(b))",
		"a+b",
	}
	for _, text := range sources {
		tree := mustParse(t, text)
		caps := tree.Capabilities(table)
		events := run(t, text, table, 20*time.Millisecond, varstore.NewLocal())
		for _, e := range events {
			if !caps.Has(e.Type, e.Code) {
				t.Errorf("%q emitted (%d,%d) outside its capability set %v", text, e.Type, e.Code, caps)
			}
		}
	}
}
