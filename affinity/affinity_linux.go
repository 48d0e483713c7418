// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

//go:build linux

package affinity

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// defaultHook binds the calling goroutine's OS thread to the CPUs named by
// mask via sched_setaffinity(2). Thread naming is left to the process name
// visible in /proc, since Go exposes no portable per-goroutine thread-name
// syscall; binding the OS thread is the part that actually affects
// scheduling, so it is what this hook spends its effort on.
type defaultHook struct{}

func (defaultHook) Apply(name string, mask uint64) {
	runtime.LockOSThread()

	if mask == 0 {
		return
	}

	var set unix.CPUSet
	set.Zero()
	for cpu := 0; cpu < 64 && cpu < runtime.NumCPU(); cpu++ {
		if mask&(1<<uint(cpu)) != 0 {
			set.Set(cpu)
		}
	}

	// Best effort: affinity is an optimization hint, not a correctness
	// requirement, so failures (e.g. insufficient permission in a sandboxed
	// environment) are silently ignored.
	_ = unix.SchedSetaffinity(0, &set)
}
