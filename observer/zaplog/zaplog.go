// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

// Package zaplog adapts the job system's event stream to structured logging
// via go.uber.org/zap.
package zaplog

import (
	jobsystem "github.com/realwujing/basic-job-system"
	"go.uber.org/zap"
)

// Observer logs every event it receives at debug level, except
// EventJobStolen which it logs at info level since stealing is the signal
// most worth noticing when tuning worker counts.
//
// If Logger is nil, Handle uses zap.L(), the global logger.
type Observer struct {
	Logger *zap.Logger
}

// New returns an Observer that logs through logger. Passing nil defers to
// zap.L() at call time.
func New(logger *zap.Logger) *Observer {
	return &Observer{Logger: logger}
}

// Handle implements [jobsystem.Observer].
func (o *Observer) Handle(ev jobsystem.Event) {
	logger := o.Logger
	if logger == nil {
		logger = zap.L()
	}

	fields := []zap.Field{
		zap.String("event", ev.Kind.String()),
		zap.Int("worker", ev.WorkerIndex),
		zap.Int64("job_id", ev.JobID),
	}
	if ev.Tag != 0 {
		fields = append(fields, zap.String("tag", string(ev.Tag)))
	}

	if ev.Kind == jobsystem.EventJobStolen {
		logger.Info("job stolen", fields...)
		return
	}

	logger.Debug("job system event", fields...)
}
