// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

package jobsystem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/realwujing/basic-job-system/internal/state"
)

func newEntry(id int64, tag byte) *entry {
	return &entry{delegate: func() {}, state: state.New(id, tag)}
}

func TestWorkerQueuePopEligibleSkipsNotReady(t *testing.T) {
	var q workerQueue
	notReady := newEntry(1, 'a')
	ready := newEntry(2, 'b')
	ready.state.SetReady()

	q.pushFront(ready)
	q.pushFront(notReady) // now at front

	found, sawIneligible, ok := q.popEligible()
	require.True(t, ok)
	require.Equal(t, int64(2), found.state.ID)
	require.True(t, sawIneligible)

	require.False(t, q.empty())
	require.False(t, notReady.state.IsDone())
}

func TestWorkerQueuePopEligibleDiscardsCancelled(t *testing.T) {
	var q workerQueue
	cancelled := newEntry(1, 'a')
	cancelled.state.SetReady()
	cancelled.state.Cancel()

	q.pushFront(cancelled)

	found, _, ok := q.popEligible()
	require.False(t, ok)
	require.Nil(t, found)
	require.True(t, q.empty())
	require.True(t, cancelled.state.IsDone())
}

func TestWorkerQueuePopEligibleScansPastCancelledToReady(t *testing.T) {
	var q workerQueue
	cancelled := newEntry(1, 'a')
	cancelled.state.SetReady()
	cancelled.state.Cancel()

	ready := newEntry(2, 'b')
	ready.state.SetReady()

	q.pushFront(ready)
	q.pushFront(cancelled) // now at front

	found, _, ok := q.popEligible()
	require.True(t, ok)
	require.Equal(t, int64(2), found.state.ID)
	require.True(t, cancelled.state.IsDone())
	require.True(t, q.empty())
}

func TestWorkerQueueEmpty(t *testing.T) {
	var q workerQueue
	require.True(t, q.empty())
	q.pushFront(newEntry(1, 'a'))
	require.False(t, q.empty())
}
