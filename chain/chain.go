// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

// Package chain provides a fluent builder for constructing job dependency
// graphs: linear chains, fan-out/fan-in groups, and combinations of the two.
// It mirrors a small stack machine: Do attaches a job to whatever the
// current top of the builder's group stack is waiting on, Then promotes the
// most recently attached job (or group) into the dependency for whatever
// comes next, Together opens a new fan-out group, and Close ends it.
package chain

import (
	jobsystem "github.com/realwujing/basic-job-system"
)

// node is one entry in the builder's fixed-capacity arena. A node either
// wraps a single job (isGroup false) or is the synthetic join job of a
// Together group (isGroup true), in which case groupDependency records
// whatever the group itself depended on when it was opened (the node a
// preceding Then promoted), so that every job added inside the group also
// waits on that node.
type node struct {
	job             *jobsystem.JobHandle
	groupDependency *node
	isGroup         bool
}

// Builder constructs a job dependency graph against a [jobsystem.Manager],
// node by node, then readies every job it created in one call to Go.
//
// A Builder is not safe for concurrent use; it is meant to be built up by a
// single goroutine and then discarded (or Reset and reused) once Go or Fail
// has been called.
//
// The capacity of a Builder's node arena is fixed at construction, mirroring
// the compile-time node pool of the design this is grounded on; Go has no
// equivalent of a const-generic array size tied to a type parameter, so the
// capacity is instead a runtime parameter backing a preallocated slice.
// Exhausting it fails the whole builder rather than silently dropping
// nodes, matching that design's all-or-nothing treatment of overflow.
type Builder struct {
	mgr *jobsystem.Manager

	pool    []node
	nextIdx int

	stack []*node

	allJobs []*jobsystem.JobHandle

	last       *node
	dependency *node

	failed bool
}

// NewBuilder returns a Builder that submits jobs to mgr, with its node arena
// sized for up to capacity nodes. A capacity of zero or less is treated as
// 256, the default the design this is grounded on uses.
func NewBuilder(mgr *jobsystem.Manager, capacity int) *Builder {
	if capacity <= 0 {
		capacity = 256
	}
	b := &Builder{
		mgr:  mgr,
		pool: make([]node, capacity),
	}
	b.Reset()
	return b
}

// Reset discards all nodes and jobs built so far and returns the Builder to
// its initial state, ready to build a new graph. It does not cancel or
// otherwise affect jobs already submitted to the manager by a prior use.
func (b *Builder) Reset() {
	b.allJobs = nil
	b.stack = nil
	b.last = nil
	b.dependency = nil
	b.nextIdx = 0
	b.failed = false

	root := b.allocNode()
	b.stack = append(b.stack, root)
}

// allocNode returns a fresh zero-value node from the arena, or nil if the
// arena is exhausted.
func (b *Builder) allocNode() *node {
	if b.nextIdx >= len(b.pool) {
		return nil
	}
	n := &b.pool[b.nextIdx]
	*n = node{}
	b.nextIdx++
	return n
}

func (b *Builder) top() *node {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

// Do submits delegate as a new job, attached as a dependant of whatever
// Then most recently promoted (if any) and, if the builder is currently
// inside a Together group, also wired so the group's synthetic join job
// waits on it. It returns the Builder for chaining.
func (b *Builder) Do(delegate jobsystem.Delegate, tag byte) *Builder {
	owner := b.top()

	item := b.allocNode()
	if item == nil {
		b.Fail()
		return b
	}

	item.job = b.mgr.AddJob(delegate, tag)
	b.allJobs = append(b.allJobs, item.job)

	if b.dependency != nil {
		b.dependency.job.AddDependant(item.job)
		b.dependency = nil
	}

	if owner != nil && owner.isGroup {
		item.job.AddDependant(owner.job)
		if owner.groupDependency != nil {
			owner.groupDependency.job.AddDependant(item.job)
		}
	}

	b.last = item
	return b
}

// Together opens a new fan-out group: a synthetic, no-op join job is
// created now, and every Do call until the matching Close becomes a member
// of the group, each one a predecessor the join job waits on. The group
// itself behaves like a single node with respect to surrounding Then/Do
// calls. tag labels the synthetic join job for diagnostics.
func (b *Builder) Together(tag byte) *Builder {
	item := b.allocNode()
	if item == nil {
		b.Fail()
		return b
	}

	item.isGroup = true
	item.groupDependency = b.dependency

	item.job = b.mgr.AddJob(func() {}, tag)
	b.allJobs = append(b.allJobs, item.job)

	b.last = item
	b.dependency = nil

	b.stack = append(b.stack, item)
	return b
}

// Then promotes the most recently attached job or group into the
// dependency for whatever Do or Together comes next, establishing a direct
// predecessor/successor edge.
func (b *Builder) Then() *Builder {
	b.dependency = b.last
	if b.dependency != nil {
		b.last = b.dependency.groupDependency
	} else {
		b.last = nil
	}
	return b
}

// Close ends the innermost Together group, making the group's synthetic
// join job the Builder's "last" node so that a following Then makes the next
// Do or Together depend on the whole group having finished. A Do called
// directly after Close, with no Then in between, gets no edge to the group.
func (b *Builder) Close() *Builder {
	if owner := b.top(); owner != nil && owner.isGroup {
		b.last = owner
	}
	b.dependency = nil

	if len(b.stack) > 1 {
		b.stack = b.stack[:len(b.stack)-1]
	}
	return b
}

// Go marks every job the Builder has created ready to run. It must be
// called exactly once, after the graph is fully built; calling Do,
// Together, Then, or Close afterward produces an inconsistent graph.
func (b *Builder) Go() {
	for _, job := range b.allJobs {
		job.SetReady()
	}
}

// Fail cancels every job the Builder has created so far and marks the
// Builder failed. It is called automatically when the node arena is
// exhausted, but callers may also call it directly to abandon a
// partially-built graph.
func (b *Builder) Fail() {
	for _, job := range b.allJobs {
		job.Cancel()
	}
	b.failed = true
}

// Failed reports whether Fail has been called, whether automatically (node
// arena exhaustion) or explicitly.
func (b *Builder) Failed() bool {
	return b.failed
}
