// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

package jobsystem

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/realwujing/basic-job-system/affinity"
)

// Descriptor configures a [Manager]. Create returns false without starting
// anything if Workers is empty.
type Descriptor struct {
	Workers []WorkerDescriptor
}

// Manager owns a fixed set of workers, dispatches jobs to them round-robin,
// and provides the caller-assisted draining loops that let a submitting
// goroutine run work cooperatively instead of blocking idle.
//
// The "global signal" described by the job system's design is scoped to one
// Manager's lifetime rather than a true process-wide primitive, since a
// lazily-constructed-and-torn-down-per-Manager mutex/condition-variable
// pair gives the same coordination guarantees and Go offers no cheaper
// zero-cost process global; in practice there is usually one Manager per
// process anyway.
type Manager struct {
	mu      sync.Mutex
	running bool
	workers []*Worker
	wg      sync.WaitGroup

	signalMu   sync.Mutex
	signalCond *sync.Cond

	nextRoundRobin atomic.Int64
	nextJobID      atomic.Int64
	activeWorkers  atomic.Int64

	jobsRun      atomic.Uint64
	jobsStolen   atomic.Uint64
	jobsAssisted atomic.Uint64
	usedMask     atomic.Uint64
	awokenMask   atomic.Uint64

	observer   Observer
	threadHook affinity.Hook
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithObserver sets the Observer that receives every lifecycle event the
// manager and its workers emit. The default is [NopObserver].
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// WithThreadHook overrides the [affinity.Hook] each worker invokes once at
// startup. The default is affinity.Default.
func WithThreadHook(h affinity.Hook) Option {
	return func(m *Manager) { m.threadHook = h }
}

// NewManager constructs a Manager that is not yet running; call Create to
// start its workers.
func NewManager(opts ...Option) *Manager {
	m := &Manager{observer: NopObserver{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// emit updates the manager's own lifecycle counters/masks and then forwards
// the event to the configured Observer.
func (m *Manager) emit(ev Event) {
	switch ev.Kind {
	case EventJobRun:
		m.jobsRun.Add(1)
	case EventJobRunAssisted:
		m.jobsRun.Add(1)
		m.jobsAssisted.Add(1)
	case EventJobStolen:
		m.jobsStolen.Add(1)
	case EventWorkerAwoken:
		m.setMaskBit(&m.awokenMask, ev.WorkerIndex)
	case EventWorkerUsed:
		m.setMaskBit(&m.usedMask, ev.WorkerIndex)
	}
	m.observer.Handle(ev)
}

func (m *Manager) setMaskBit(mask *atomic.Uint64, bit int) {
	if bit < 0 || bit >= 64 {
		return
	}
	for {
		old := mask.Load()
		next := old | (1 << uint(bit))
		if mask.CompareAndSwap(old, next) {
			return
		}
	}
}

// Stats is a snapshot of the manager's lifecycle counters, useful for
// diagnostics and tests.
type Stats struct {
	JobsRun      uint64
	JobsStolen   uint64
	JobsAssisted uint64
	UsedMask     uint64
	AwokenMask   uint64
}

// Stats returns a snapshot of the manager's event counters.
func (m *Manager) Stats() Stats {
	return Stats{
		JobsRun:      m.jobsRun.Load(),
		JobsStolen:   m.jobsStolen.Load(),
		JobsAssisted: m.jobsAssisted.Load(),
		UsedMask:     m.usedMask.Load(),
		AwokenMask:   m.awokenMask.Load(),
	}
}

// Create tears down any prior state, constructs a worker per entry in
// desc.Workers, and starts each one's goroutine. It returns false, starting
// nothing, iff desc.Workers is empty.
func (m *Manager) Create(desc Descriptor) bool {
	m.Shutdown(false)

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(desc.Workers) == 0 {
		return false
	}

	m.signalCond = sync.NewCond(&m.signalMu)

	workers := make([]*Worker, len(desc.Workers))
	for i, wd := range desc.Workers {
		workers[i] = newWorker(i, wd, m, m.threadHook)
	}
	for _, w := range workers {
		w.peers = workers
	}
	m.workers = workers
	m.running = true

	for _, w := range workers {
		m.wg.Add(1)
		go func(w *Worker) {
			defer m.wg.Done()
			w.run()
		}(w)
	}

	return true
}

// AddJob allocates a not-yet-ready job, assigns it to the next worker in
// round-robin order, and returns a handle to it. The caller is responsible
// for arranging SetReady, typically via the chain builder.
func (m *Manager) AddJob(delegate Delegate, tag byte) *JobHandle {
	m.mu.Lock()
	workers := m.workers
	m.mu.Unlock()

	assertHook(len(workers) > 0, "AddJob called with no workers configured")

	idx := int(uint64(m.nextRoundRobin.Add(1)-1) % uint64(len(workers)))
	id := m.nextJobID.Add(1)
	return workers[idx].pushJob(id, tag, delegate)
}

// broadcastWake wakes every worker blocked on the global signal. It is used
// by SetReady (a new job may now be eligible on any queue), by a worker after
// it finishes a job (a dependant may now be eligible on any queue, including
// one whose worker does not steal), and by Shutdown (to unblock workers so
// they can observe the stop request).
func (m *Manager) broadcastWake() {
	m.signalMu.Lock()
	if m.signalCond != nil {
		m.signalCond.Broadcast()
	}
	m.signalMu.Unlock()
}

// wakeOne wakes a single worker blocked on the global signal. It is used by
// the assist loops after they run a job inline; those loops keep scanning
// the queues themselves until their own exit condition holds.
func (m *Manager) wakeOne() {
	m.signalMu.Lock()
	if m.signalCond != nil {
		m.signalCond.Signal()
	}
	m.signalMu.Unlock()
}

// AssistUntilJobDone runs jobs on the calling goroutine until target is
// done. target must already be ready (i.e. SetReady must have been called
// on it, directly or via a chain builder's Go); calling this on a job that
// was never readied is a programming error.
//
// Per the design this is grounded on, only worker 0 is ever polled
// directly; stealing is forced for that poll so it reaches every other
// worker's queue. The poll reads the queues directly, so it does not depend
// on worker 0's goroutine still running.
func (m *Manager) AssistUntilJobDone(target *JobHandle) {
	m.mu.Lock()
	workers := m.workers
	m.mu.Unlock()

	assertHook(target.state.Ready(), "AssistUntilJobDone target was never made ready")
	assertHook(len(workers) > 0, "AssistUntilJobDone called with no workers configured")

	for !target.state.IsDone() {
		found, _, ok := workers[0].popNextJob(stealAlways)
		if !ok {
			time.Sleep(100 * time.Microsecond)
			continue
		}

		m.emit(Event{Kind: EventJobStart, WorkerIndex: len(workers), JobID: found.state.ID, Tag: found.state.Tag})
		found.delegate()
		m.emit(Event{Kind: EventJobDone, WorkerIndex: len(workers), JobID: found.state.ID, Tag: found.state.Tag})
		found.state.SetDone()
		m.emit(Event{Kind: EventJobRunAssisted, WorkerIndex: len(workers), JobID: found.state.ID, Tag: found.state.Tag})
		m.wakeOne()
	}
}

// AssistUntilDone runs jobs on the calling goroutine, scanning every
// worker's own queue (without stealing) each pass, until a full pass finds
// nothing eligible anywhere. A queued job that is not yet eligible (not
// ready, or with outstanding predecessors) keeps the loop scanning, so the
// call does not return while such a job is queued; it asserts that every
// queue is empty on return. Jobs that a worker goroutine has already popped
// are not waited for and may still be running when it returns.
func (m *Manager) AssistUntilDone() {
	m.mu.Lock()
	workers := m.workers
	m.mu.Unlock()

	assertHook(len(workers) > 0, "AssistUntilDone called with no workers configured")

	for {
		foundBusy := false
		for _, w := range workers {
			found, sawIneligible, ok := w.popNextJob(stealNever)
			if sawIneligible {
				foundBusy = true
			}
			if ok {
				m.emit(Event{Kind: EventJobStart, WorkerIndex: len(workers), JobID: found.state.ID, Tag: found.state.Tag})
				found.delegate()
				m.emit(Event{Kind: EventJobDone, WorkerIndex: len(workers), JobID: found.state.ID, Tag: found.state.Tag})
				found.state.SetDone()
				m.emit(Event{Kind: EventJobRunAssisted, WorkerIndex: len(workers), JobID: found.state.ID, Tag: found.state.Tag})
				foundBusy = true
				m.wakeOne()
				break
			}
		}
		if !foundBusy {
			break
		}
	}

	for _, w := range workers {
		assertHook(w.queue.empty(), "AssistUntilDone returned with a non-empty worker queue")
	}
}

// Shutdown stops every worker and releases them. If finishJobs is true, it
// first drains every queue via AssistUntilDone; if false, any un-popped
// entries are simply dropped, and any dependants gated on them will never
// have their outstanding count decremented — callers holding handles to
// jobs left behind this way will wait forever, a contract callers must
// plan around rather than one Shutdown can paper over.
func (m *Manager) Shutdown(finishJobs bool) {
	if finishJobs {
		m.mu.Lock()
		running := m.running
		m.mu.Unlock()
		if running {
			m.AssistUntilDone()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	for _, w := range m.workers {
		w.requestStop()
	}
	for _, w := range m.workers {
		for !w.hasShutDown() {
			m.broadcastWake()
			time.Sleep(100 * time.Microsecond)
		}
	}

	m.wg.Wait()
	m.workers = nil
	m.running = false
}
