package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/keymacro/keymacro/core/symbols"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func withTestSymbols(t *testing.T) {
	t.Helper()
	prev := symbols.Global()
	symbols.SetGlobal(symbols.NewStatic(map[string]int{"a": 30, "b": 48}))
	t.Cleanup(func() { symbols.SetGlobal(prev) })
}

func TestParseCommandPrintsTree(t *testing.T) {
	out, err := execute(t, "parse", "k(a).k(b)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(out, "seq") || !strings.Contains(out, "k a") {
		t.Fatalf("unexpected tree dump:\n%s", out)
	}
}

func TestParseCommandSurfacesDiagnostics(t *testing.T) {
	out, err := execute(t, "parse", "k(1))")
	if err == nil {
		t.Fatalf("expected a parse error, got output:\n%s", out)
	}
	if !strings.Contains(err.Error(), "bracket") {
		t.Fatalf("expected a bracket diagnostic, got %v", err)
	}
}

func TestCapsCommandText(t *testing.T) {
	withTestSymbols(t)

	out, err := execute(t, "caps", "k(a).mouse(up,2)")
	if err != nil {
		t.Fatalf("caps: %v", err)
	}
	if !strings.Contains(out, "type 1: [30]") {
		t.Fatalf("expected the key capability line, got:\n%s", out)
	}
	if !strings.Contains(out, "type 2:") {
		t.Fatalf("expected a relative-axis capability line, got:\n%s", out)
	}
}

func TestCapsCommandRejectsUnknownFormat(t *testing.T) {
	withTestSymbols(t)

	if _, err := execute(t, "caps", "k(a)", "--format", "yaml"); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestRunCommandLogsEvents(t *testing.T) {
	withTestSymbols(t)

	out, err := execute(t, "run", "e(1,30,1)")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "code=30") {
		t.Fatalf("expected the emitted event in the log output, got:\n%s", out)
	}
}
