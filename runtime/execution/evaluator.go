package execution

import (
	"errors"
	"log/slog"
	"time"

	"github.com/keymacro/keymacro/core/ast"
	"github.com/keymacro/keymacro/core/invariant"
)

// ErrAlreadyRunning is returned by Run when a previous Run on the same
// Instance has not yet returned. A physical key held down longer than its
// macro takes to complete re-fires key events, not new Run calls, so this
// guards against re-entrancy rather than handling it as routine traffic.
var ErrAlreadyRunning = errors.New("execution: instance is already running")

// Run walks the bound tree to completion, emitting timed events through
// sink. Macros have no cancellation API (an in-flight run always finishes
// on its own terms); Run blocks the calling goroutine for as long as that
// takes, so callers run it in its own goroutine per keystroke. A second
// Run call while the first is still in flight returns ErrAlreadyRunning
// immediately rather than running a concurrent pass over the same tree.
func (in *Instance) Run(sink EventSink) error {
	invariant.NotNil(sink, "sink")

	if !in.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer in.running.Store(false)

	in.sink = sink
	in.exec(in.tree)
	in.sink = nil
	return nil
}

func (in *Instance) exec(n *ast.Node) {
	if n == nil {
		return
	}

	switch n.Op {
	case ast.OpSeq:
		in.exec(n.Children[0])
		in.exec(n.Children[1])

	case ast.OpTap:
		in.tap(n.Values[0])

	case ast.OpRepeat:
		count := n.Values[0].Int
		body := n.Children[0]
		for i := 0; i < count; i++ {
			in.exec(body)
		}

	case ast.OpSleep:
		time.Sleep(time.Duration(n.Values[0].Int) * time.Millisecond)

	case ast.OpHoldWait:
		in.awaitRelease()

	case ast.OpHoldRepeat:
		body := n.Children[0]
		for in.IsHolding() {
			in.exec(body)
		}

	case ast.OpHoldKey:
		in.holdKey(n.Values[0])

	case ast.OpModifier:
		in.modifier(n.Values[0], n.Children[0])

	case ast.OpMouse:
		in.relative(n.Values[0].Word, n.Values[1].Int, ast.RelX, ast.RelY)

	case ast.OpWheel:
		in.relative(n.Values[0].Word, n.Values[1].Int, ast.RelHWheel, ast.RelWheel)

	case ast.OpEvent:
		in.sink.Emit(n.Values[0].Int, n.Values[1].Int, n.Values[2].Int)

	case ast.OpSet:
		if in.vars != nil {
			in.vars.Set(n.Values[0].Word, n.Values[1].String())
		}

	case ast.OpIfEq:
		in.ifeq(n)
	}
}

// awaitRelease blocks until the bound key is no longer held. Unlike
// h(body)/mouse/wheel, a bare h() has nothing to do while waiting, so it
// parks on a condition variable rather than busy-polling.
func (in *Instance) awaitRelease() {
	in.releaseMu.Lock()
	for in.holding.Load() {
		in.releaseCond.Wait()
	}
	in.releaseMu.Unlock()
}

func (in *Instance) keystrokeSleep() time.Duration {
	return time.Duration(in.config.KeystrokeSleepMs(in.mappingID)) * time.Millisecond
}

// tap resolves sym through the symbol table and emits a key-down followed
// by a key-up after one keystroke interval, then sleeps one more interval
// before returning so consecutive taps stay spaced apart. The trailing
// sleep is load-bearing: r(n, k(x)) takes 2*n keystroke intervals, and
// callers time against that. An unresolved symbol is a semantic error:
// the op is skipped and logged, execution continues.
func (in *Instance) tap(sym ast.Value) {
	code, ok := in.symbols.Resolve(sym.String())
	if !ok {
		slog.Info("macro: unresolved symbol, skipping tap", "symbol", sym.String())
		return
	}

	pressed := 0
	in.sink.Emit(ast.EvKey, code, 1)
	pressed++
	time.Sleep(in.keystrokeSleep())
	in.sink.Emit(ast.EvKey, code, 0)
	pressed--
	time.Sleep(in.keystrokeSleep())

	invariant.Invariant(pressed == 0, "tap(%s) left an unbalanced key-down", sym.String())
}

// holdKey keeps sym pressed for as long as the physical key is held:
// key-down on entry, key-up once the holding flag drops. Without an armed
// hold the pair is emitted back to back, so the key still taps cleanly.
func (in *Instance) holdKey(sym ast.Value) {
	code, ok := in.symbols.Resolve(sym.String())
	if !ok {
		slog.Info("macro: unresolved symbol, skipping hold", "symbol", sym.String())
		return
	}

	pressed := 0
	in.sink.Emit(ast.EvKey, code, 1)
	pressed++
	in.awaitRelease()
	in.sink.Emit(ast.EvKey, code, 0)
	pressed--

	invariant.Invariant(pressed == 0, "h(%s) left an unbalanced key-down", sym.String())
}

// modifier holds sym down for exactly the duration of body's execution.
func (in *Instance) modifier(sym ast.Value, body *ast.Node) {
	code, ok := in.symbols.Resolve(sym.String())
	if !ok {
		slog.Info("macro: unresolved symbol, skipping modifier", "symbol", sym.String())
		in.exec(body)
		return
	}

	pressed := 0
	in.sink.Emit(ast.EvKey, code, 1)
	pressed++
	in.exec(body)
	in.sink.Emit(ast.EvKey, code, 0)
	pressed--

	invariant.Invariant(pressed == 0, "modifier(%s) left an unbalanced key-down", sym.String())
}

// relative drives mouse/wheel: while the bound key is held, emit one
// signed event per keystroke interval. up/left are negative, down/right
// positive; xAxis/yAxis select which relative code carries the up/down
// vs. left/right motion (REL_Y/REL_X for mouse, REL_WHEEL/REL_HWHEEL for
// wheel).
func (in *Instance) relative(dir string, speed int, xAxis, yAxis int) {
	for in.IsHolding() {
		switch dir {
		case ast.DirUp:
			in.sink.Emit(ast.EvRel, yAxis, -speed)
		case ast.DirDown:
			in.sink.Emit(ast.EvRel, yAxis, speed)
		case ast.DirLeft:
			in.sink.Emit(ast.EvRel, xAxis, -speed)
		case ast.DirRight:
			in.sink.Emit(ast.EvRel, xAxis, speed)
		}
		time.Sleep(in.keystrokeSleep())
	}
}

// ifeq compares the shared variable store's current value for name
// against the literal comparand. Both sides are compared as text, so
// set(foo,2) matches ifeq(foo,2,...) and ifeq(foo,"2",...) alike.
func (in *Instance) ifeq(n *ast.Node) {
	name := n.Values[0].Word
	want := n.Values[1].String()

	var got string
	if in.vars != nil {
		got, _ = in.vars.Get(name)
	}

	if got == want {
		in.exec(n.Children[0])
	} else {
		in.exec(n.Children[1])
	}
}
