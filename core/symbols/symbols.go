// Package symbols provides the symbol table collaborator: a
// case-insensitive mapping from a human-readable name ("a", "BTN_LEFT")
// to the numeric output code the injector understands.
//
// The real symbol table belongs to the surrounding system (it usually
// mirrors an evdev keycode registry or similar); this package supplies
// the lookup contract the macro parser and evaluator depend on, plus a
// small in-memory implementation good enough for tests and the
// standalone CLI tool.
package symbols

import (
	"strings"
	"sync"
)

// Table resolves symbolic names to numeric output codes.
type Table interface {
	// Resolve looks up name, case-insensitively, returning its code and
	// whether it was found.
	Resolve(name string) (code int, ok bool)

	// Names returns every known name, for capability enumeration tooling.
	Names() []string
}

// Static is a case-insensitive in-memory symbol table. Registration
// follows the same registry shape as the shared variable store
// (core/varstore): a mutex-guarded map behind a narrow interface, usually
// filled once by NewStatic; Put adds or overwrites names afterwards.
type Static struct {
	mu    sync.RWMutex
	codes map[string]int
}

// NewStatic builds a Static table from a name->code mapping. Names are
// normalized to lower case internally.
func NewStatic(codes map[string]int) *Static {
	s := &Static{codes: make(map[string]int, len(codes))}
	for name, code := range codes {
		s.codes[strings.ToLower(name)] = code
	}
	return s
}

// Resolve implements Table.
func (s *Static) Resolve(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.codes[strings.ToLower(name)]
	return code, ok
}

// Names implements Table.
func (s *Static) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.codes))
	for name := range s.codes {
		names = append(names, name)
	}
	return names
}

// Put adds or overwrites a single name, for tests and incremental setup
// (the GUI's mapping loader is expected to build a full table up front,
// but tests construct tables incrementally).
func (s *Static) Put(name string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[strings.ToLower(name)] = code
}

var (
	globalMu sync.RWMutex
	global   Table = NewStatic(nil)
)

// SetGlobal installs the process-wide default symbol table. The CLI tool
// and tests that don't want to thread a Table through every call use this;
// production embedders should prefer passing an explicit Table.
func SetGlobal(t Table) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = t
}

// Global returns the process-wide default symbol table.
func Global() Table {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}
