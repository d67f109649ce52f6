// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package taskpool

import (
	"time"

	"code.hybscloud.com/task"
)

// Immediate is a synchronous Scheduler for tests: Execute and ScheduleOnce
// both run r on the calling goroutine before returning, and ScheduleOnce
// ignores its delay entirely. This deliberately violates the Scheduler
// contract's "never synchronously inline" guarantee — tests that need to
// assert on the asynchronous-boundary guarantee itself (Fork, Async) should
// use Pool or Virtual instead.
type Immediate struct {
	batchSize  int
	reportSink func(error)
}

// NewImmediate builds an Immediate scheduler. A nil reportSink drops
// reported failures.
func NewImmediate(reportSink func(error)) *Immediate {
	return &Immediate{batchSize: 512, reportSink: reportSink}
}

// WithBatchSize overrides the default frame-yield budget; pass a small
// value to exercise the forced-yield path deterministically in a test.
func (i *Immediate) WithBatchSize(n int) *Immediate {
	i.batchSize = n
	return i
}

func (i *Immediate) Execute(r task.Runnable) { r() }

func (i *Immediate) ScheduleOnce(_ time.Duration, r task.Runnable) task.CancelToken {
	r()
	return task.CancelFunc(func() {})
}

func (i *Immediate) ReportFailure(err error) {
	if i.reportSink != nil {
		i.reportSink(err)
	}
}

func (i *Immediate) ExecutionModel() task.ExecutionModel {
	return batchExecutionModel{batchSize: i.batchSize}
}

var _ task.Scheduler = (*Immediate)(nil)
