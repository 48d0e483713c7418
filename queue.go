// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

package jobsystem

import (
	"sync"

	"github.com/gammazero/deque"

	"github.com/realwujing/basic-job-system/internal/state"
)

// entry pairs a delegate with the job state that gates and tracks it.
type entry struct {
	delegate Delegate
	state    *state.Flags
}

// Delegate is the unit of work a job performs. It takes no arguments and
// returns nothing: any inputs or outputs are expected to flow through
// captured variables in a closure, and any faults are the delegate's own to
// handle, since the job system treats delegates as opaque.
type Delegate func()

// workerQueue is an ordered sequence of pending job entries guarded by its
// own mutex. New jobs are pushed to the front; popEligible scans front to
// back, discarding cancelled entries in place and returning the first entry
// whose dependencies are met.
//
// The "scan until eligible" semantics are necessary because a chain builder
// submits jobs to queues in dependency order but only marks the whole graph
// ready at the end, so a queue may hold jobs in arbitrary readiness order.
type workerQueue struct {
	mu    sync.Mutex
	items deque.Deque[*entry]
}

// pushFront inserts e at the front of the queue.
func (q *workerQueue) pushFront(e *entry) {
	q.mu.Lock()
	q.items.PushFront(e)
	q.mu.Unlock()
}

// popEligible scans the queue for the first entry that is ready for
// execution, discarding any cancelled entries it encounters along the way
// (marking their state done without ever running their delegate). It
// reports whether an eligible entry was found, and separately whether any
// ineligible-but-not-cancelled entry was seen; the latter lets callers tell
// "nothing to do" apart from "nothing ready yet" when deciding whether a
// drain loop should terminate.
func (q *workerQueue) popEligible() (found *entry, sawIneligible bool, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := 0; i < q.items.Len(); {
		candidate := q.items.At(i)

		if candidate.state.Eligible() {
			q.items.Remove(i)
			return candidate, sawIneligible, true
		}

		if candidate.state.Cancelled() {
			candidate.state.SetDone()
			q.items.Remove(i)
			continue
		}

		sawIneligible = true
		i++
	}

	return nil, sawIneligible, false
}

// empty reports whether the queue currently holds no entries.
func (q *workerQueue) empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len() == 0
}
