// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

// Package jobsystem provides a fixed-size pool of worker goroutines that
// execute short-lived units of work ("jobs") whose start order is
// constrained by a directed acyclic dependency graph.
//
// A [Manager] owns a set of [Worker] goroutines, each with its own queue.
// Workers pop ready jobs from their own queue and, when idle, steal from
// peer queues. [Manager.AddJob] enqueues a not-yet-ready job; a job becomes
// eligible to run only once it has been marked ready and every job it
// depends on has finished. Callers typically wire dependencies and readiness
// through the fluent DAG builder in the sibling "chain" package rather than
// by hand.
//
// A submitting goroutine that would otherwise block waiting for a job to
// finish can instead call [Manager.AssistUntilJobDone] or
// [Manager.AssistUntilDone] to run jobs itself, reducing latency and
// degrading gracefully when the pool is oversubscribed.
//
// The package intentionally says nothing about persistence, cross-process
// distribution, job priority, preemption, or fairness across workers: it is
// a single-process, best-effort scheduler for in-memory work.
package jobsystem
