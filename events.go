// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

package jobsystem

// Kind identifies the lifecycle events a Manager or Worker can report to an
// Observer. These eight kinds and the Event payload fields form a stable
// contract: downstream sinks (logging, tracing, profiling) may rely on
// them.
type Kind int

const (
	// EventJobPopped fires when a job is removed from a queue for execution,
	// whether from the worker's own queue, a peer's via stealing, or an
	// assist loop.
	EventJobPopped Kind = iota
	// EventJobStart fires immediately before a job's delegate is invoked.
	EventJobStart
	// EventJobDone fires immediately after a job's delegate returns, before
	// SetDone has been called on its state.
	EventJobDone
	// EventJobRun fires after a worker goroutine has run a job's delegate and
	// called SetDone on its state. A cancelled job discarded from a queue
	// without running emits no event.
	EventJobRun
	// EventJobRunAssisted fires instead of EventJobRun when the job was run
	// inline by an assist loop rather than a worker goroutine.
	EventJobRunAssisted
	// EventJobStolen fires when a job was popped from a peer's queue rather
	// than the popping worker's own.
	EventJobStolen
	// EventWorkerAwoken fires each time a worker wakes from the global
	// condition variable, whether or not it found work.
	EventWorkerAwoken
	// EventWorkerUsed fires when a worker is about to execute a job it
	// popped itself (as opposed to via assist).
	EventWorkerUsed
)

// String returns a short diagnostic name for the event kind.
func (k Kind) String() string {
	switch k {
	case EventJobPopped:
		return "job-popped"
	case EventJobStart:
		return "job-start"
	case EventJobDone:
		return "job-done"
	case EventJobRun:
		return "job-run"
	case EventJobRunAssisted:
		return "job-run-assisted"
	case EventJobStolen:
		return "job-stolen"
	case EventWorkerAwoken:
		return "worker-awoken"
	case EventWorkerUsed:
		return "worker-used"
	default:
		return "unknown"
	}
}

// Event is the payload delivered to an Observer. WorkerIndex identifies the
// worker that produced the event; for the start, done and run-assisted
// events of a job run inline by an assist loop it is set to the total worker
// count, a sentinel index reserved for the synthetic assist "worker" (the
// popped and stolen events of such a job carry the index of the worker whose
// queue scan found it). JobID and Tag identify the job involved, when there
// is one.
type Event struct {
	Kind        Kind
	WorkerIndex int
	JobID       int64
	Tag         byte
}

// Observer receives lifecycle events from workers and from the manager's
// assist paths. Implementations are called outside of any per-worker queue
// lock but may be called while the manager's global signal lock is held
// (by a worker goroutine for EventWorkerAwoken, and for the EventJobPopped
// and EventJobStolen events of its own queue scans), so Handle must be
// non-blocking and allocation-light.
type Observer interface {
	Handle(Event)
}

// NopObserver discards every event. It is the default Observer for a
// Manager that isn't configured with one.
type NopObserver struct{}

// Handle implements Observer by doing nothing.
func (NopObserver) Handle(Event) {}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Event)

// Handle implements Observer.
func (f ObserverFunc) Handle(ev Event) { f(ev) }
