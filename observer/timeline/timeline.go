// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

// Package timeline renders an ASCII timeline of job execution per worker,
// the way a profiling build of the design this is grounded on dumps its
// results: one row per worker (plus a synthetic row for assisted jobs),
// each a dashed line with the busy spans overwritten by a character
// identifying the job.
package timeline

import (
	"cmp"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/addrummond/heap"

	jobsystem "github.com/realwujing/basic-job-system"
)

// busySymbols is the fallback alphabet used to mark a job's span when it
// was not given a debug tag.
const busySymbols = "abcdefghijklmn"

type span struct {
	jobID int64
	tag   byte
	start time.Time
	end   time.Time
}

func (a *span) Cmp(b *span) int {
	return cmp.Compare(a.start.UnixNano(), b.start.UnixNano())
}

// Observer buffers EventJobStart/EventJobDone pairs per worker (with the
// assist loops' synthetic worker index folded into its own row) and renders
// them as an ASCII timeline on demand via Render.
//
// Observer is safe for concurrent use.
type Observer struct {
	workerCount int

	mu        sync.Mutex
	open      map[int64]time.Time // jobID -> start, pending its matching Done
	rows      map[int][]span      // workerIndex (workerCount == assist row) -> completed spans
	firstJob  time.Time
	haveFirst bool
	names     map[int]string
}

// New returns an Observer for a pool of workerCount workers. Row
// workerCount (one past the last real worker) collects jobs run via an
// assist loop.
func New(workerCount int) *Observer {
	return &Observer{
		workerCount: workerCount,
		open:        make(map[int64]time.Time),
		rows:        make(map[int][]span),
		names:       make(map[int]string),
	}
}

// SetWorkerName records a display name for a worker row, used by Render.
// Unset rows display as "worker N".
func (o *Observer) SetWorkerName(workerIndex int, name string) {
	o.mu.Lock()
	o.names[workerIndex] = name
	o.mu.Unlock()
}

// Handle implements [jobsystem.Observer].
func (o *Observer) Handle(ev jobsystem.Event) {
	switch ev.Kind {
	case jobsystem.EventJobPopped:
		o.mu.Lock()
		if !o.haveFirst {
			o.firstJob = timeNow()
			o.haveFirst = true
		}
		o.mu.Unlock()

	case jobsystem.EventJobStart:
		o.mu.Lock()
		o.open[ev.JobID] = timeNow()
		o.mu.Unlock()

	case jobsystem.EventJobDone:
		now := timeNow()
		o.mu.Lock()
		start, ok := o.open[ev.JobID]
		delete(o.open, ev.JobID)
		if ok {
			o.rows[ev.WorkerIndex] = append(o.rows[ev.WorkerIndex], span{
				jobID: ev.JobID,
				tag:   ev.Tag,
				start: start,
				end:   now,
			})
		}
		o.mu.Unlock()
	}
}

// timeNow is a seam so tests can stub elapsed time if ever needed; it is
// always time.Now in production use.
var timeNow = time.Now

// Render produces the multi-line ASCII timeline built from every span
// recorded so far, normalized to the window between the first job popped
// and the latest job completion. width controls how wide each row's busy
// track is rendered.
func (o *Observer) Render(width int) string {
	if width < 8 {
		width = 8
	}

	o.mu.Lock()
	firstJob := o.firstJob
	haveFirst := o.haveFirst
	rows := make(map[int][]span, len(o.rows))
	for idx, s := range o.rows {
		rows[idx] = append([]span(nil), s...)
	}
	names := make(map[int]string, len(o.names))
	for k, v := range o.names {
		names[k] = v
	}
	o.mu.Unlock()

	if !haveFirst {
		return "[no jobs recorded]\n"
	}

	var ordered heap.Heap[span, heap.Min]
	var last time.Time
	for _, spans := range rows {
		for _, s := range spans {
			heap.PushOrderable(&ordered, s)
			if s.end.After(last) {
				last = s.end
			}
		}
	}
	total := last.Sub(firstJob)
	if total <= 0 {
		total = time.Nanosecond
	}

	legend := make([]span, 0, heap.Len(&ordered))
	for heap.Len(&ordered) > 0 {
		s, _ := heap.PopOrderable(&ordered)
		legend = append(legend, s)
	}

	var b strings.Builder
	b.WriteString("[Worker Profiling Results]\n")

	for i := 0; i <= o.workerCount; i++ {
		name := names[i]
		if name == "" {
			if i == o.workerCount {
				name = "[Assist]"
			} else {
				name = fmt.Sprintf("worker %d", i)
			}
		}

		track := []byte(strings.Repeat("-", width))
		for _, s := range rows[i] {
			startPct := float64(s.start.Sub(firstJob)) / float64(total)
			endPct := float64(s.end.Sub(firstJob)) / float64(total)
			startIdx := clampIndex(int(startPct*float64(width)), width)
			endIdx := clampIndex(int(endPct*float64(width)), width)
			if endIdx < startIdx {
				endIdx = startIdx
			}

			ch := s.tag
			if ch == 0 {
				ch = busySymbols[int(s.jobID)%len(busySymbols)]
			}
			for j := startIdx; j <= endIdx; j++ {
				track[j] = ch
			}
		}

		fmt.Fprintf(&b, "%20s: %s\n", name, string(track))
	}

	b.WriteString("[Start Order]")
	for _, s := range legend {
		ch := s.tag
		if ch == 0 {
			ch = busySymbols[int(s.jobID)%len(busySymbols)]
		}
		fmt.Fprintf(&b, " %c", ch)
	}
	b.WriteString("\n")

	return b.String()
}

func clampIndex(i, width int) int {
	if i < 0 {
		return 0
	}
	if i >= width {
		return width - 1
	}
	return i
}
