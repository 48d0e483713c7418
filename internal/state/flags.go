// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

// Package state holds the atomic bookkeeping shared by a job, its queue
// entry, and any predecessor's dependants list. It has no notion of
// delegates, workers, or queues; it only tracks readiness, completion,
// cancellation, and the dependency count that gates eligibility.
package state

import (
	"sync"
	"sync/atomic"
	"time"
)

// Flags is the shared, reference-counted-by-convention record backing one
// job. It is safe for concurrent use: every exported method may be called
// from any goroutine. Go's atomic and mutex primitives already provide the
// sequentially-consistent ordering the acquire/release pairing in the
// originating design calls for, so no additional fencing is needed here.
type Flags struct {
	// ID is a diagnostic, monotonically assigned identifier, unique within a
	// single process run.
	ID int64
	// Tag is a single diagnostic character supplied by the caller.
	Tag byte

	ready       atomic.Bool
	done        atomic.Bool
	cancelled   atomic.Bool
	outstanding atomic.Int64

	mu         sync.Mutex
	dependants []*Flags
}

// New returns a Flags in the not-ready, not-done, not-cancelled state.
func New(id int64, tag byte) *Flags {
	return &Flags{ID: id, Tag: tag}
}

// SetReady marks the job ready. It is idempotent but callers are expected to
// call it exactly once, after the job's dependants list is fully built.
func (f *Flags) SetReady() {
	f.ready.Store(true)
}

// Ready reports whether SetReady has been called.
func (f *Flags) Ready() bool {
	return f.ready.Load()
}

// Cancel marks the job as awaiting cancellation. Monotonic: once set, stays
// set.
func (f *Flags) Cancel() {
	f.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (f *Flags) Cancelled() bool {
	return f.cancelled.Load()
}

// IsDone reports whether SetDone has been called.
func (f *Flags) IsDone() bool {
	return f.done.Load()
}

// Outstanding returns the current count of predecessors not yet done.
func (f *Flags) Outstanding() int64 {
	return f.outstanding.Load()
}

// AddDependant appends other to f's dependants and increments other's
// outstanding count. Must only be called before either job is marked ready;
// callers (normally the chain builder) are responsible for enforcing that.
func (f *Flags) AddDependant(other *Flags) {
	f.mu.Lock()
	f.dependants = append(f.dependants, other)
	f.mu.Unlock()
	other.outstanding.Add(1)
}

// DependenciesMet reports whether the job is ready and has no outstanding
// predecessors. It does not consider cancellation.
func (f *Flags) DependenciesMet() bool {
	return f.ready.Load() && f.outstanding.Load() == 0
}

// Eligible reports whether the job may be executed now: ready, not
// cancelled, and with zero outstanding dependencies.
func (f *Flags) Eligible() bool {
	return !f.cancelled.Load() && f.DependenciesMet()
}

// SetDone decrements the outstanding counter of every dependant and then
// marks f done. Safe to call exactly once per job, whether the job actually
// ran or was discarded because it was cancelled.
func (f *Flags) SetDone() {
	f.mu.Lock()
	dependants := f.dependants
	f.mu.Unlock()
	for _, d := range dependants {
		d.outstanding.Add(-1)
	}
	f.done.Store(true)
}

// Wait blocks, polling IsDone every 10 microseconds, until the job is done
// or maxWait has elapsed. A maxWait of zero waits indefinitely. This is a
// diagnostic escape hatch; production code should prefer
// Manager.AssistUntilJobDone.
func (f *Flags) Wait(maxWait time.Duration) {
	const tick = 10 * time.Microsecond
	var waited time.Duration
	for !f.IsDone() {
		time.Sleep(tick)
		if maxWait != 0 {
			waited += tick
			if waited > maxWait {
				return
			}
		}
	}
}
