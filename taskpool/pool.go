// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package taskpool provides concrete task.Scheduler implementations: Pool,
// a bounded goroutine pool for production use, Immediate, a synchronous
// scheduler for tests, and Virtual, a deterministic virtual-time scheduler
// for exercising timing-dependent programs without a wall clock.
package taskpool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"code.hybscloud.com/task"
)

// Pool is a bounded goroutine-pool Scheduler. Execute never runs r on the
// calling goroutine: it always hands off through a dispatcher goroutine
// that waits for an admission slot before invoking r, so a saturated pool
// never blocks the submitter.
type Pool struct {
	sem           *semaphore.Weighted
	wg            sync.WaitGroup
	reportFailure func(error)
	model         task.ExecutionModel
}

// NewPool builds a Pool from opts, defaulting to GOMAXPROCS*4 concurrent
// runnables, a 512-frame execution batch, and tasklog-backed failure
// reporting.
func NewPool(opts ...Option) *Pool {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Pool{
		sem:           semaphore.NewWeighted(int64(cfg.poolSize)),
		reportFailure: cfg.reportSinkFor(),
		model:         batchExecutionModel{batchSize: cfg.batchSize},
	}
}

func (p *Pool) Execute(r task.Runnable) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(context.Background(), 1); err != nil {
			p.ReportFailure(fmt.Errorf("taskpool: acquire: %w", err))
			return
		}
		defer p.sem.Release(1)
		p.safeRun(r)
	}()
}

func (p *Pool) ScheduleOnce(delay time.Duration, r task.Runnable) task.CancelToken {
	timer := time.AfterFunc(delay, func() { p.Execute(r) })
	return task.CancelFunc(func() { timer.Stop() })
}

func (p *Pool) ReportFailure(err error) {
	p.reportFailure(err)
}

func (p *Pool) ExecutionModel() task.ExecutionModel {
	return p.model
}

// Close blocks until every runnable accepted by Execute has returned. It
// does not stop accepting new work; callers should stop submitting before
// calling Close.
func (p *Pool) Close() {
	p.wg.Wait()
}

func (p *Pool) safeRun(r task.Runnable) {
	defer func() {
		if rec := recover(); rec != nil {
			p.ReportFailure(fmt.Errorf("taskpool: panic: %v", rec))
		}
	}()
	r()
}

var _ task.Scheduler = (*Pool)(nil)
