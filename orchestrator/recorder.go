package orchestrator

import "time"

// Recorder receives per-turn observability events. Implementations must be
// safe for concurrent use.
type Recorder interface {
	// RecordTurn is called once per successfully committed turn.
	RecordTurn(policy, handler string, changed bool, dur time.Duration)

	// RecordFailure is called when a turn fails before commit. Kind is "route"
	// or "process".
	RecordFailure(policy, kind string)
}

// NoopRecorder discards all events.
type NoopRecorder struct{}

// RecordTurn implements Recorder.
func (NoopRecorder) RecordTurn(string, string, bool, time.Duration) {}

// RecordFailure implements Recorder.
func (NoopRecorder) RecordFailure(string, string) {}
