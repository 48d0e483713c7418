// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

package state_test

import (
	"testing"
	"time"

	"github.com/realwujing/basic-job-system/internal/state"
	"github.com/stretchr/testify/require"
)

func TestFlagsLifecycle(t *testing.T) {
	f := state.New(1, 'a')
	require.False(t, f.Ready())
	require.False(t, f.IsDone())
	require.False(t, f.Eligible())

	f.SetReady()
	require.True(t, f.Ready())
	require.True(t, f.Eligible())

	f.SetDone()
	require.True(t, f.IsDone())
}

func TestFlagsDependencyGating(t *testing.T) {
	pred := state.New(1, 'p')
	dep := state.New(2, 'd')

	pred.AddDependant(dep)
	require.EqualValues(t, 1, dep.Outstanding())

	dep.SetReady()
	require.False(t, dep.Eligible(), "dependant must wait on predecessor")

	pred.SetReady()
	pred.SetDone()

	require.EqualValues(t, 0, dep.Outstanding())
	require.True(t, dep.Eligible())
}

func TestFlagsCancelSuppressesEligibility(t *testing.T) {
	f := state.New(1, 'c')
	f.SetReady()
	require.True(t, f.Eligible())

	f.Cancel()
	require.True(t, f.Cancelled())
	require.False(t, f.Eligible())
}

func TestFlagsCancelledDependantsStillRelease(t *testing.T) {
	pred := state.New(1, 'p')
	dep := state.New(2, 'd')
	pred.AddDependant(dep)

	pred.Cancel()
	pred.SetDone() // a worker marks a cancelled, un-run job done on pop

	require.EqualValues(t, 0, dep.Outstanding())
}

func TestFlagsWaitTimesOut(t *testing.T) {
	f := state.New(1, 'w')
	start := time.Now()
	f.Wait(200 * time.Microsecond)
	require.Less(t, time.Since(start), 50*time.Millisecond)
	require.False(t, f.IsDone())
}

func TestFlagsWaitReturnsOnDone(t *testing.T) {
	f := state.New(1, 'w')
	go func() {
		time.Sleep(time.Millisecond)
		f.SetDone()
	}()
	f.Wait(0)
	require.True(t, f.IsDone())
}
