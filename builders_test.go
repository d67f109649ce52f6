// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/task"
	"code.hybscloud.com/task/taskpool"
)

func TestAsyncForcesSchedulerBoundary(t *testing.T) {
	sched := taskpool.NewVirtual(nil)
	registered := false
	p := task.Async(func(s task.Scheduler, scope *task.StackedCancelable, cb task.Callback[int]) {
		registered = true
		cb.OnSuccess(1)
	})
	task.RunWithCallback(p, sched, noopCallback[int]{})
	assert.False(t, registered)
	sched.Drain()
	assert.True(t, registered)
}

func TestUnsafeAsyncRunsRegisterInline(t *testing.T) {
	sched := taskpool.NewVirtual(nil)
	registered := false
	p := task.UnsafeAsync(func(s task.Scheduler, scope *task.StackedCancelable, cb task.Callback[int]) {
		registered = true
		cb.OnSuccess(1)
	})
	task.RunWithCallback(p, sched, noopCallback[int]{})
	assert.True(t, registered)
}

func TestNeverNeverCompletes(t *testing.T) {
	sched := taskpool.NewImmediate(nil)
	future, _ := task.RunAsFuture(task.Never[int](), sched)
	_, resolved := future.TryGet()
	assert.False(t, resolved)
}

func TestSleepCompletesAfterDelay(t *testing.T) {
	sched := taskpool.NewVirtual(nil)
	future, _ := task.RunAsFuture(task.Sleep(10*time.Millisecond), sched)
	sched.Drain()
	_, resolved := future.TryGet()
	assert.False(t, resolved)
	sched.AdvanceTime(10 * time.Millisecond)
	a, resolved := future.TryGet()
	require.True(t, resolved)
	assert.True(t, a.IsSuccess())
}

func TestCancellationHygieneStopsScheduledTimer(t *testing.T) {
	sched := taskpool.NewVirtual(nil)
	var successes, errs int
	cb := funcCallback[struct{}]{
		success: func(struct{}) { successes++ },
		failure: func(error) { errs++ },
	}
	token := task.RunWithCallback(task.Sleep(10*time.Millisecond), sched, cb)
	sched.Drain()
	token.Cancel()
	sched.AdvanceTime(10 * time.Millisecond)
	assert.Equal(t, 0, successes)
	assert.Equal(t, 0, errs)
}

type funcCallback[A any] struct {
	success func(A)
	failure func(error)
}

func (f funcCallback[A]) OnSuccess(a A)     { f.success(a) }
func (f funcCallback[A]) OnError(err error) { f.failure(err) }
