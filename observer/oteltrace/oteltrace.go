// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

// Package oteltrace adapts the job system's event stream to
// go.opentelemetry.io/otel spans: one span per job, opened on
// EventJobStart and closed on EventJobDone, with stolen/assisted status
// recorded as attributes. Cancellation is not recorded: a cancelled job that
// is discarded from a queue emits no events.
package oteltrace

import (
	"context"
	"sync"

	jobsystem "github.com/realwujing/basic-job-system"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Observer opens a span per job against a fixed background context, since
// the job system's event stream carries no per-job context of its own.
// Spans are correlated across the Start/Done event pair by job ID.
//
// Observer is safe for concurrent use: Handle is called from worker
// goroutines without coordination between them.
type Observer struct {
	tracer trace.Tracer
	ctx    context.Context

	mu    sync.Mutex
	spans map[int64]trace.Span
}

// New returns an Observer that opens spans against ctx using the
// "jobsystem" tracer from the global otel TracerProvider.
func New(ctx context.Context) *Observer {
	return &Observer{
		tracer: otel.Tracer("jobsystem"),
		ctx:    ctx,
		spans:  make(map[int64]trace.Span),
	}
}

// Handle implements [jobsystem.Observer].
func (o *Observer) Handle(ev jobsystem.Event) {
	switch ev.Kind {
	case jobsystem.EventJobStart:
		_, span := o.tracer.Start(o.ctx, "job",
			trace.WithAttributes(
				attribute.Int64("job.id", ev.JobID),
				attribute.Int("job.worker", ev.WorkerIndex),
			),
		)
		o.mu.Lock()
		o.spans[ev.JobID] = span
		o.mu.Unlock()

	case jobsystem.EventJobStolen:
		o.withSpan(ev.JobID, func(span trace.Span) {
			span.SetAttributes(attribute.Bool("job.stolen", true))
		})

	case jobsystem.EventJobRunAssisted:
		o.withSpan(ev.JobID, func(span trace.Span) {
			span.SetAttributes(attribute.Bool("job.assisted", true))
		})

	case jobsystem.EventJobDone:
		o.mu.Lock()
		span, ok := o.spans[ev.JobID]
		delete(o.spans, ev.JobID)
		o.mu.Unlock()
		if ok {
			span.End()
		}
	}
}

func (o *Observer) withSpan(jobID int64, fn func(trace.Span)) {
	o.mu.Lock()
	span, ok := o.spans[jobID]
	o.mu.Unlock()
	if ok {
		fn(span)
	}
}
