// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

package chain_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	jobsystem "github.com/realwujing/basic-job-system"
	"github.com/realwujing/basic-job-system/chain"
)

func newTestManager(t *testing.T, workers int) *jobsystem.Manager {
	t.Helper()
	descs := make([]jobsystem.WorkerDescriptor, workers)
	for i := range descs {
		descs[i] = jobsystem.DefaultWorkerDescriptor()
	}
	mgr := jobsystem.NewManager()
	require.True(t, mgr.Create(jobsystem.Descriptor{Workers: descs}))
	t.Cleanup(func() { mgr.Shutdown(false) })
	return mgr
}

// S1: Do -> Then -> Do -> Then -> Do runs strictly in order.
func TestBuilderLinearChain(t *testing.T) {
	mgr := newTestManager(t, 4)

	var mu sync.Mutex
	var order []string
	record := func(tag string) jobsystem.Delegate {
		return func() {
			mu.Lock()
			order = append(order, tag)
			mu.Unlock()
		}
	}

	b := chain.NewBuilder(mgr, 16)
	b.Do(record("a"), 'a').Then().
		Do(record("b"), 'b').Then().
		Do(record("c"), 'c')
	b.Go()

	mgr.AssistUntilDone()
	// Wait for any job a worker goroutine popped to finish.
	mgr.Shutdown(false)

	require.False(t, b.Failed())
	require.Equal(t, []string{"a", "b", "c"}, order)
}

// S2: Do(a) -> Then -> Together{x,y,z} -> Close -> Then -> Do(f): a must
// finish before any of x/y/z start, and all of x/y/z must finish before f
// starts.
func TestBuilderFanOutJoin(t *testing.T) {
	mgr := newTestManager(t, 4)

	var mu sync.Mutex
	times := map[string]time.Time{}
	mark := func(tag, field string) {
		mu.Lock()
		times[tag+"."+field] = time.Now()
		mu.Unlock()
	}
	step := func(tag string) jobsystem.Delegate {
		return func() {
			mark(tag, "start")
			time.Sleep(time.Millisecond)
			mark(tag, "end")
		}
	}

	b := chain.NewBuilder(mgr, 16)
	b.Do(step("a"), 'a').Then().
		Together('g').
		Do(step("x"), 'x').
		Do(step("y"), 'y').
		Do(step("z"), 'z').
		Close().Then().
		Do(step("f"), 'f')
	b.Go()

	mgr.AssistUntilDone()
	// Wait for any job a worker goroutine popped to finish.
	mgr.Shutdown(false)

	require.False(t, b.Failed())
	mu.Lock()
	defer mu.Unlock()
	require.True(t, times["a.end"].Before(times["x.start"]))
	require.True(t, times["a.end"].Before(times["y.start"]))
	require.True(t, times["a.end"].Before(times["z.start"]))
	require.True(t, times["x.end"].Before(times["f.start"]))
	require.True(t, times["y.end"].Before(times["f.start"]))
	require.True(t, times["z.end"].Before(times["f.start"]))
}

// S4: calling Fail before Go means nothing runs, and Failed reports true.
func TestBuilderFailBeforeGoRunsNothing(t *testing.T) {
	mgr := newTestManager(t, 4)

	var ran atomic.Bool
	mark := func() { ran.Store(true) }

	b := chain.NewBuilder(mgr, 16)
	b.Do(mark, 'a').Then().Do(mark, 'b').Then().Do(mark, 'c')
	b.Fail()
	b.Go()

	done := make(chan struct{})
	go func() {
		mgr.AssistUntilDone()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("AssistUntilDone did not terminate")
	}

	require.True(t, b.Failed())
	require.False(t, ran.Load())
}

// S5: a 4-node arena, one node of which holds the builder's root, is
// overflowed by the 4th of five Do calls; the whole builder fails, and the
// delegate of the 5th call never runs.
func TestBuilderArenaOverflowFailsWholeChain(t *testing.T) {
	mgr := newTestManager(t, 4)

	var ran [5]bool
	b := chain.NewBuilder(mgr, 4)
	for i := 0; i < 5; i++ {
		i := i
		b.Do(func() { ran[i] = true }, byte('0'+i))
	}
	b.Go()

	mgr.AssistUntilDone()

	require.True(t, b.Failed())
	require.False(t, ran[4])
}

// S3: a single Together group of many independent steps, run with stealing
// enabled, executes every step exactly once.
func TestBuilderParallelBreadthRunsEachStepExactlyOnce(t *testing.T) {
	mgr := newTestManager(t, 16)

	const stepCount = 1000
	var ran [stepCount]atomic.Int32

	b := chain.NewBuilder(mgr, stepCount+4)
	b.Together('g')
	for i := 0; i < stepCount; i++ {
		i := i
		b.Do(func() { ran[i].Add(1) }, 0)
	}
	b.Close()
	b.Go()

	mgr.AssistUntilDone()
	// Wait for any job a worker goroutine popped to finish.
	mgr.Shutdown(false)

	require.False(t, b.Failed())
	for i := 0; i < stepCount; i++ {
		require.EqualValues(t, 1, ran[i].Load(), "step %d ran %d times", i, ran[i].Load())
	}
}

// Reset returns a builder to its initial state so it can build a second,
// independent graph.
func TestBuilderResetAllowsReuse(t *testing.T) {
	mgr := newTestManager(t, 2)

	var count atomic.Int64
	inc := func() { count.Add(1) }

	b := chain.NewBuilder(mgr, 16)
	b.Do(inc, 'a')
	b.Go()
	mgr.AssistUntilDone()

	require.Equal(t, int64(1), count.Load())

	b.Reset()
	b.Do(inc, 'b')
	b.Go()
	mgr.AssistUntilDone()

	require.Equal(t, int64(2), count.Load())
	require.False(t, b.Failed())
}
