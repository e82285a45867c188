// Package runtime wires together a parsed macro tree, its collaborators,
// and an output sink into a single call, the way a GUI or daemon embeds
// this engine without touching runtime/execution directly.
package runtime

import (
	"fmt"
	"time"

	"github.com/keymacro/keymacro/core/ast"
	"github.com/keymacro/keymacro/core/config"
	"github.com/keymacro/keymacro/core/symbols"
	"github.com/keymacro/keymacro/core/varstore"
	"github.com/keymacro/keymacro/runtime/emit"
	"github.com/keymacro/keymacro/runtime/execution"
)

// RunOptions configures a single invocation of a macro tree.
type RunOptions struct {
	MappingID string        // identifies the mapping for per-mapping config overrides
	Hold      time.Duration // how long the simulated physical key stays down
	Sink      execution.EventSink
	Vars      varstore.Store // nil uses an in-process store scoped to this call
	Config    *config.Store  // nil uses package defaults
}

// Run builds an Instance for tree and drives one full press/release cycle
// against opts.Sink. It simulates the physical key being held for
// opts.Hold before releasing it, so h(), h(body), mouse, and wheel nodes
// all observe a real hold window; a zero Hold releases immediately after
// starting Run, which is enough for trees with no hold-dependent ops.
//
// Run returns once the macro has finished, mirroring execution.Instance's
// own contract: there is no mid-macro cancellation.
func Run(tree *ast.Node, table symbols.Table, opts RunOptions) error {
	if tree == nil {
		return fmt.Errorf("runtime: nil tree")
	}
	if opts.Sink == nil {
		return fmt.Errorf("runtime: nil sink")
	}

	vars := opts.Vars
	if vars == nil {
		vars = varstore.NewLocal()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewStore(config.Options{})
	}

	in := execution.NewInstance(tree, opts.MappingID, table, vars, cfg)
	in.Press()

	done := make(chan error, 1)
	go func() { done <- in.Run(opts.Sink) }()

	if opts.Hold > 0 {
		time.Sleep(opts.Hold)
	}
	in.Release()

	return <-done
}

// RunRecording is Run, with a emit.Recorder supplied as the sink and
// returned alongside the run's error so callers that only want the
// recorded events (tests, for instance) don't have to wire one up
// themselves.
func RunRecording(tree *ast.Node, table symbols.Table, opts RunOptions) (*emit.Recorder, error) {
	rec := &emit.Recorder{}
	opts.Sink = rec
	err := Run(tree, table, opts)
	return rec, err
}

// Capabilities resolves tree's capability set against table, the same
// overapproximation execution.Run's own emissions are bound by. Embedding
// processes use this ahead of time to pre-register the event codes a
// mapping might ever produce, without running it.
func Capabilities(tree *ast.Node, table symbols.Table) ast.CapabilitySet {
	if tree == nil {
		return ast.CapabilitySet{}
	}
	return tree.Capabilities(table)
}
