// Package emit provides EventSink implementations for runtime/execution.
// It deliberately carries no scheduling or timing logic of its own -
// every Instance already decides what to emit and when; a Sink's only job
// is to do something with the (type, code, value) triple it's handed.
package emit

import (
	"log/slog"
	"sync"
)

// Event is one emitted (type, code, value) triple, in the same
// vocabulary as core/ast's Linux input-event constants.
type Event struct {
	Type  int
	Code  int
	Value int
}

// Recorder is a Sink that appends every event it receives. It is the
// sink tests (via runtime.RunRecording) use in place of a real output
// device.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements execution.EventSink.
func (r *Recorder) Emit(evType, code, value int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Type: evType, Code: code, Value: value})
}

// Events returns a snapshot of every event recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// LogSink wraps a structured logger, recording every emitted event at
// debug level: the shape a real uinput-backed sink would use for its own
// diagnostics alongside the actual device write.
type LogSink struct {
	Logger *slog.Logger
}

// Emit implements execution.EventSink.
func (s *LogSink) Emit(evType, code, value int) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("emit", "type", evType, "code", code, "value", value)
}

// Multi fans a single Emit out to every sink in the slice, in order.
// Useful for driving a real device and a Recorder (for `--trace`-style
// tooling) from the same Instance.
type Multi []interface {
	Emit(evType, code, value int)
}

// Emit implements execution.EventSink.
func (m Multi) Emit(evType, code, value int) {
	for _, sink := range m {
		sink.Emit(evType, code, value)
	}
}
