// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

package jobsystem

import (
	"sync/atomic"

	"github.com/realwujing/basic-job-system/affinity"
	"github.com/realwujing/basic-job-system/internal/state"
)

// WorkerDescriptor configures one worker within a [Descriptor]. The zero
// value is not directly usable; use [DefaultWorkerDescriptor] to get sane
// defaults.
type WorkerDescriptor struct {
	// Name identifies the worker in diagnostics and is passed to the thread
	// hook at startup.
	Name string
	// Affinity is a CPU bitmask passed to the thread hook at startup.
	Affinity uint64
	// EnableWorkStealing controls whether the worker, on finding its own
	// queue empty, scans peer queues for work.
	EnableWorkStealing bool
}

// DefaultWorkerDescriptor returns a WorkerDescriptor with work stealing
// enabled, affinity unrestricted (all bits set), and the generic name every
// worker gets unless configured otherwise.
func DefaultWorkerDescriptor() WorkerDescriptor {
	return WorkerDescriptor{
		Name:               "JobSystemWorker",
		Affinity:           ^uint64(0),
		EnableWorkStealing: true,
	}
}

// Worker owns one queue and the goroutine that drains it. Workers are
// created and started by a [Manager]; callers never construct one directly.
type Worker struct {
	index int
	desc  WorkerDescriptor
	mgr   *Manager
	queue workerQueue
	peers []*Worker

	stop       atomic.Bool
	shutdownCh chan struct{}

	threadHook affinity.Hook
}

func newWorker(index int, desc WorkerDescriptor, mgr *Manager, hook affinity.Hook) *Worker {
	if hook == nil {
		hook = affinity.Default
	}
	return &Worker{
		index:      index,
		desc:       desc,
		mgr:        mgr,
		shutdownCh: make(chan struct{}),
		threadHook: hook,
	}
}

// pushJob allocates a not-ready job state, enqueues it, and returns a
// handle to it.
func (w *Worker) pushJob(id int64, tag byte, delegate Delegate) *JobHandle {
	st := state.New(id, tag)
	w.queue.pushFront(&entry{delegate: delegate, state: st})
	return &JobHandle{state: st, mgr: w.mgr}
}

// stealPolicy controls whether popNextJob may fall back to a peer's queue
// once this worker's own queue has nothing eligible.
type stealPolicy int

const (
	// stealPerDescriptor falls back to peer queues iff this worker's own
	// WorkerDescriptor.EnableWorkStealing is set.
	stealPerDescriptor stealPolicy = iota
	// stealAlways falls back to peer queues regardless of the worker's own
	// descriptor.
	stealAlways
	// stealNever never falls back to peer queues, regardless of the
	// worker's own descriptor.
	stealNever
)

// popNextJob attempts to pop an eligible entry from this worker's own
// queue, falling back to peer queues in index order (starting from peer 0,
// including self, which is redundant but harmless) per policy. It reports
// the entry if found, whether any ineligible-but-not-cancelled entry was
// seen across every queue scanned, and whether an entry was found at all.
func (w *Worker) popNextJob(policy stealPolicy) (found *entry, sawIneligible bool, ok bool) {
	found, sawIneligible, ok = w.queue.popEligible()
	if ok {
		w.mgr.emit(Event{Kind: EventJobPopped, WorkerIndex: w.index, JobID: found.state.ID, Tag: found.state.Tag})
		return found, sawIneligible, true
	}

	steal := policy == stealAlways || (policy == stealPerDescriptor && w.desc.EnableWorkStealing)
	if !steal {
		return nil, sawIneligible, false
	}

	for _, peer := range w.peers {
		pf, peerIneligible, pok := peer.queue.popEligible()
		sawIneligible = sawIneligible || peerIneligible
		if pok {
			w.mgr.emit(Event{Kind: EventJobPopped, WorkerIndex: w.index, JobID: pf.state.ID, Tag: pf.state.Tag})
			w.mgr.emit(Event{Kind: EventJobStolen, WorkerIndex: w.index, JobID: pf.state.ID, Tag: pf.state.Tag})
			return pf, sawIneligible, true
		}
	}

	return nil, sawIneligible, false
}

// run is the worker's main loop. It is launched as its own goroutine by
// Manager.Create and returns only after requestStop has been called and
// the manager has broadcast the global wake signal.
func (w *Worker) run() {
	w.threadHook.Apply(w.desc.Name, w.desc.Affinity)

	for {
		var found *entry

		w.mgr.signalMu.Lock()
		for {
			if w.stop.Load() {
				w.mgr.signalMu.Unlock()
				close(w.shutdownCh)
				return
			}
			var ok bool
			found, _, ok = w.popNextJob(stealPerDescriptor)
			if ok {
				break
			}
			w.mgr.signalCond.Wait()
			w.mgr.emit(Event{Kind: EventWorkerAwoken, WorkerIndex: w.index})
		}
		w.mgr.signalMu.Unlock()

		w.mgr.activeWorkers.Add(1)
		w.mgr.emit(Event{Kind: EventWorkerUsed, WorkerIndex: w.index, JobID: found.state.ID, Tag: found.state.Tag})
		w.mgr.emit(Event{Kind: EventJobStart, WorkerIndex: w.index, JobID: found.state.ID, Tag: found.state.Tag})
		found.delegate()
		w.mgr.emit(Event{Kind: EventJobDone, WorkerIndex: w.index, JobID: found.state.ID, Tag: found.state.Tag})
		found.state.SetDone()
		w.mgr.emit(Event{Kind: EventJobRun, WorkerIndex: w.index, JobID: found.state.ID, Tag: found.state.Tag})
		w.mgr.activeWorkers.Add(-1)
		w.mgr.broadcastWake()
	}
}

// requestStop signals the worker to exit its main loop. It does not itself
// wake the worker; callers (Manager.Shutdown) must also broadcast the
// global wake signal.
func (w *Worker) requestStop() {
	w.stop.Store(true)
}

// hasShutDown reports whether the worker's goroutine has observed the stop
// request and exited its loop.
func (w *Worker) hasShutDown() bool {
	select {
	case <-w.shutdownCh:
		return true
	default:
		return false
	}
}
