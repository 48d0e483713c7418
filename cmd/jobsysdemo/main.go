// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

// Command jobsysdemo exercises the job system's chain builder against a
// handful of representative scenarios and prints an ASCII timeline of the
// run. It exits 0 if every scenario's check passed, and 1 otherwise; the
// cancel-before-go and arena-overflow scenarios pass only when their builder
// reports Failed. Scenarios after the first failing one are not run.
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	jobsystem "github.com/realwujing/basic-job-system"
	"github.com/realwujing/basic-job-system/chain"
	"github.com/realwujing/basic-job-system/observer/timeline"
)

func main() {
	tl := timeline.New(4)
	mgr := jobsystem.NewManager(jobsystem.WithObserver(tl))
	if !mgr.Create(jobsystem.Descriptor{Workers: []jobsystem.WorkerDescriptor{
		defaultNamed("w0"), defaultNamed("w1"), defaultNamed("w2"), defaultNamed("w3"),
	}}) {
		fmt.Fprintln(os.Stderr, "failed to create manager")
		os.Exit(1)
	}
	defer mgr.Shutdown(true)

	failed := false

	failed = failed || !runLinearChain(mgr)
	failed = failed || !runFanOutJoin(mgr)
	failed = failed || !runCancelBeforeGo(mgr)
	failed = failed || !runArenaOverflow(mgr)

	fmt.Print(tl.Render(100))

	if failed {
		os.Exit(1)
	}
}

func defaultNamed(name string) jobsystem.WorkerDescriptor {
	wd := jobsystem.DefaultWorkerDescriptor()
	wd.Name = name
	return wd
}

// runLinearChain builds Do(a) -> Then -> Do(b) -> Then -> Do(c) and checks
// the three delegates ran in order.
func runLinearChain(mgr *jobsystem.Manager) bool {
	var mu sync.Mutex
	var order []string
	record := func(tag string) func() {
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

	ok := len(order) == 3 && order[0] == "a" && order[1] == "b" && order[2] == "c"
	fmt.Printf("S1 linear chain: order=%v ok=%v\n", order, ok)
	return ok
}

// runFanOutJoin builds Do(a) -> Then -> Together{x,y,z} -> Close -> Then ->
// Do(f) and checks a finished before x/y/z started, and all of x/y/z
// finished before f started.
func runFanOutJoin(mgr *jobsystem.Manager) bool {
	var mu sync.Mutex
	times := map[string]time.Time{}
	mark := func(tag string, field string) {
		mu.Lock()
		times[tag+"."+field] = time.Now()
		mu.Unlock()
	}
	step := func(tag string) jobsystem.Delegate {
		return func() {
			mark(tag, "start")
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

	mu.Lock()
	defer mu.Unlock()
	ok := times["a.end"].Before(times["x.start"]) &&
		times["a.end"].Before(times["y.start"]) &&
		times["a.end"].Before(times["z.start"]) &&
		times["x.end"].Before(times["f.start"]) &&
		times["y.end"].Before(times["f.start"]) &&
		times["z.end"].Before(times["f.start"])
	fmt.Printf("S2 fan-out join: ok=%v\n", ok)
	return ok
}

// runCancelBeforeGo builds a 3-step linear chain, fails it before Go, then
// calls Go anyway, and checks no delegate ran.
func runCancelBeforeGo(mgr *jobsystem.Manager) bool {
	ran := false
	mark := func() { ran = true }

	b := chain.NewBuilder(mgr, 16)
	b.Do(mark, 'a').Then().Do(mark, 'b').Then().Do(mark, 'c')
	b.Fail()
	b.Go()

	mgr.AssistUntilDone()

	ok := !ran && b.Failed()
	fmt.Printf("S4 cancel-before-go: ran=%v failed=%v ok=%v\n", ran, b.Failed(), ok)
	return ok
}

// runArenaOverflow builds a capacity-4 builder and submits 5 Do calls,
// checking the builder reports failure and nothing from the 5th call runs.
func runArenaOverflow(mgr *jobsystem.Manager) bool {
	ran := make([]bool, 5)
	b := chain.NewBuilder(mgr, 4)
	for i := range ran {
		i := i
		b.Do(func() { ran[i] = true }, byte('0'+i))
	}
	b.Go()

	mgr.AssistUntilDone()

	ok := b.Failed() && !ran[4]
	fmt.Printf("S5 arena overflow: failed=%v ran4=%v ok=%v\n", b.Failed(), ran[4], ok)
	return ok
}
