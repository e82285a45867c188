// Package execution is the cooperative scheduler that walks a parsed
// macro tree and turns it into timed output events. Each Instance owns
// exactly one goroutine at a time (Run), with a small set of atomically
// updated flags letting the physical key's up/down transitions and the
// macro's own execution communicate without a channel round trip per
// event.
package execution

import (
	"sync"
	"sync/atomic"

	"github.com/keymacro/keymacro/core/ast"
	"github.com/keymacro/keymacro/core/config"
	"github.com/keymacro/keymacro/core/symbols"
	"github.com/keymacro/keymacro/core/varstore"
)

// EventSink receives the raw (type, code, value) triples an Instance
// produces while executing, in the same vocabulary as core/ast's Linux
// input-event constants.
type EventSink interface {
	Emit(evType, code, value int)
}

// Instance binds a parsed tree to everything it needs to actually run: the
// symbol table it resolves key names against, the shared variable store
// set/ifeq read and write, and the config store it reads
// keystroke_sleep_ms from. The event sink is supplied per Run call rather
// than at construction, matching the external `instance.run(sink)` entry
// point: the same Instance can be driven against a real output device in
// production and a recording sink in a test, without rebuilding it.
//
// An Instance is created once per physical key mapping and reused across
// every press of that key; Press/Release update the same holding flag
// every run observes.
type Instance struct {
	tree      *ast.Node
	mappingID string
	symbols   symbols.Table
	vars      varstore.Store
	config    *config.Store

	sink EventSink // valid only for the duration of a Run call

	holding atomic.Bool
	running atomic.Bool

	releaseCond *sync.Cond
	releaseMu   sync.Mutex
}

// NewInstance builds an Instance for tree. vars may be nil, in which case
// set/ifeq observe an empty store that never matches (this is only useful
// for capability probing and tests; a real mapping always supplies one).
func NewInstance(tree *ast.Node, mappingID string, table symbols.Table, vars varstore.Store, cfg *config.Store) *Instance {
	in := &Instance{
		tree:      tree,
		mappingID: mappingID,
		symbols:   table,
		vars:      vars,
		config:    cfg,
	}
	in.releaseCond = sync.NewCond(&in.releaseMu)
	return in
}

// Press marks the bound physical key as currently held. h(body), mouse,
// and wheel poll this; a bare h() additionally wakes on Release via the
// release condition variable.
func (in *Instance) Press() {
	in.holding.Store(true)
}

// Release marks the bound physical key as no longer held and wakes any
// execution blocked in a bare h().
func (in *Instance) Release() {
	in.holding.Store(false)
	in.releaseMu.Lock()
	in.releaseCond.Broadcast()
	in.releaseMu.Unlock()
}

// IsHolding reports the current state of the bound physical key.
func (in *Instance) IsHolding() bool {
	return in.holding.Load()
}

// IsRunning reports whether a Run is currently in flight for this
// Instance.
func (in *Instance) IsRunning() bool {
	return in.running.Load()
}
