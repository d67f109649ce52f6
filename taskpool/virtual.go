// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package taskpool

import (
	"sync"
	"time"

	"code.hybscloud.com/task"
)

type virtualTimer struct {
	at       time.Duration
	r        task.Runnable
	canceled bool
}

// Virtual is a deterministic, single-goroutine virtual-time Scheduler: no
// wall-clock time ever elapses on its own. Execute queues work for Drain;
// ScheduleOnce queues a timer against the virtual clock for AdvanceTime.
// Tests drive both explicitly, so timing scenarios reproduce identically
// on every run.
//
// Virtual has no precedent in the example corpus — the pack's scheduling
// code all drives real timers — so it is built directly on stdlib
// sync/time; see DESIGN.md.
type Virtual struct {
	mu         sync.Mutex
	now        time.Duration
	queue      []task.Runnable
	timers     []*virtualTimer
	reportSink func(error)
	batchSize  int
}

// NewVirtual builds a Virtual scheduler starting at virtual time zero.
func NewVirtual(reportSink func(error)) *Virtual {
	return &Virtual{reportSink: reportSink, batchSize: 512}
}

// WithBatchSize overrides the default frame-yield budget.
func (v *Virtual) WithBatchSize(n int) *Virtual {
	v.batchSize = n
	return v
}

func (v *Virtual) Execute(r task.Runnable) {
	v.mu.Lock()
	v.queue = append(v.queue, r)
	v.mu.Unlock()
}

func (v *Virtual) ScheduleOnce(delay time.Duration, r task.Runnable) task.CancelToken {
	v.mu.Lock()
	t := &virtualTimer{at: v.now + delay, r: r}
	v.timers = append(v.timers, t)
	v.mu.Unlock()
	return task.CancelFunc(func() {
		v.mu.Lock()
		t.canceled = true
		v.mu.Unlock()
	})
}

func (v *Virtual) ReportFailure(err error) {
	if v.reportSink != nil {
		v.reportSink(err)
	}
}

func (v *Virtual) ExecutionModel() task.ExecutionModel {
	return batchExecutionModel{batchSize: v.batchSize}
}

// Drain runs every runnable currently queued by Execute, including any
// that Execute queues as a side effect of running one, until the queue is
// empty.
func (v *Virtual) Drain() {
	for {
		v.mu.Lock()
		if len(v.queue) == 0 {
			v.mu.Unlock()
			return
		}
		r := v.queue[0]
		v.queue = v.queue[1:]
		v.mu.Unlock()
		r()
	}
}

// Now returns the current virtual time, starting at zero.
func (v *Virtual) Now() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// AdvanceTime moves the virtual clock forward by d, firing every timer due
// at or before the new time, then drains whatever those timers (or their
// continuations) queued.
func (v *Virtual) AdvanceTime(d time.Duration) {
	v.mu.Lock()
	v.now += d
	due := make([]*virtualTimer, 0, len(v.timers))
	remaining := v.timers[:0:0]
	for _, t := range v.timers {
		switch {
		case t.canceled:
		case t.at <= v.now:
			due = append(due, t)
		default:
			remaining = append(remaining, t)
		}
	}
	v.timers = remaining
	v.mu.Unlock()

	for _, t := range due {
		t.r()
	}
	v.Drain()
}

var _ task.Scheduler = (*Virtual)(nil)
