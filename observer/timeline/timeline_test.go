// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

package timeline_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	jobsystem "github.com/realwujing/basic-job-system"
	"github.com/realwujing/basic-job-system/observer/timeline"
)

func TestObserverRenderWithNoJobsRecorded(t *testing.T) {
	o := timeline.New(2)
	out := o.Render(40)
	require.Contains(t, out, "no jobs recorded")
}

func TestObserverRenderMarksBusySpans(t *testing.T) {
	o := timeline.New(1)
	o.SetWorkerName(0, "w0")

	o.Handle(jobsystem.Event{Kind: jobsystem.EventJobPopped, WorkerIndex: 0, JobID: 1, Tag: 'x'})
	o.Handle(jobsystem.Event{Kind: jobsystem.EventJobStart, WorkerIndex: 0, JobID: 1, Tag: 'x'})
	o.Handle(jobsystem.Event{Kind: jobsystem.EventJobDone, WorkerIndex: 0, JobID: 1, Tag: 'x'})

	out := o.Render(40)
	require.Contains(t, out, "w0")
	require.True(t, strings.ContainsRune(out, 'x'))
}

func TestObserverHandleIgnoresUnmatchedDone(t *testing.T) {
	o := timeline.New(1)
	// A Done event with no matching Start must not panic or record a span.
	o.Handle(jobsystem.Event{Kind: jobsystem.EventJobDone, WorkerIndex: 0, JobID: 99})
	out := o.Render(40)
	require.Contains(t, out, "no jobs recorded")
}
