// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

package jobsystem

import (
	"time"

	"github.com/realwujing/basic-job-system/internal/state"
)

// JobHandle is the caller-facing reference to a job submitted via
// [Manager.AddJob]. A freshly returned handle is not yet ready to run; the
// caller (typically the chain builder in the sibling "chain" package) must
// wire up any dependants and eventually call SetReady.
type JobHandle struct {
	state *state.Flags
	mgr   *Manager
}

// ID returns the job's diagnostic identifier.
func (h *JobHandle) ID() int64 {
	return h.state.ID
}

// Tag returns the job's diagnostic debug character.
func (h *JobHandle) Tag() byte {
	return h.state.Tag
}

// SetReady marks the job ready to run and wakes any workers that might now
// be able to make progress on it. Exactly one call is expected per job;
// extra calls are harmless since the underlying flag is idempotent.
func (h *JobHandle) SetReady() {
	h.state.SetReady()
	h.mgr.broadcastWake()
}

// Cancel marks the job for cancellation. A cancelled job still sitting in a
// queue is discarded (without running) the next time a worker scans that
// queue; a cancelled job that has already started runs to completion.
// Cancellation is cooperative and advisory; dependants are still released
// because the job's done transition always fires, whether or not its
// delegate actually ran.
func (h *JobHandle) Cancel() {
	h.state.Cancel()
}

// IsDone reports whether the job has completed, successfully or via
// cancellation.
func (h *JobHandle) IsDone() bool {
	return h.state.IsDone()
}

// Wait blocks until the job is done or maxWait elapses (zero means wait
// indefinitely). This is a diagnostic escape hatch for callers that are not
// participating in assisted draining; see [Manager.AssistUntilJobDone].
func (h *JobHandle) Wait(maxWait time.Duration) {
	h.state.Wait(maxWait)
}

// AddDependant registers other as a job that must not start until h
// completes. It must only be called before either job has had SetReady
// called on it; the chain builder enforces this by construction.
func (h *JobHandle) AddDependant(other *JobHandle) {
	h.state.AddDependant(other.state)
}
