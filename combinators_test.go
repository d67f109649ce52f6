// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/task"
	"code.hybscloud.com/task/taskpool"
)

func TestZipCombinesBothResults(t *testing.T) {
	pool := taskpool.NewPool(taskpool.WithPoolSize(4))
	defer pool.Close()

	p := task.Zip(task.Now("a"), task.Now(1))
	future, _ := task.RunAsFuture(p, pool)
	a := future.Wait()
	v, ok := a.Value()
	require.True(t, ok)
	assert.Equal(t, task.Pair[string, int]{First: "a", Second: 1}, v)
}

func TestZipWithPropagatesFirstObservedError(t *testing.T) {
	pool := taskpool.NewPool(taskpool.WithPoolSize(4))
	defer pool.Close()

	boom := errors.New("boom")
	p := task.ZipWith(task.Now(1), task.Fail[int](boom), func(a, b int) int { return a + b })
	future, _ := task.RunAsFuture(p, pool)
	a := future.Wait()
	assert.False(t, a.IsSuccess())
	assert.Equal(t, boom, a.Err())
}

func TestFirstCompletedOfReturnsEarliestWinner(t *testing.T) {
	pool := taskpool.NewPool(taskpool.WithPoolSize(4))
	defer pool.Close()

	fast := task.Now(1)
	slow := task.Async(func(s task.Scheduler, scope *task.StackedCancelable, cb task.Callback[int]) {
		go func() {
			time.Sleep(50 * time.Millisecond)
			cb.OnSuccess(2)
		}()
	})
	p := task.FirstCompletedOf([]task.Task[int]{slow, fast})
	future, _ := task.RunAsFuture(p, pool)
	a := future.Wait()
	v, ok := a.Value()
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestFirstCompletedOfReportsLateLoserFailure(t *testing.T) {
	reported := make(chan error, 1)
	pool := taskpool.NewPool(taskpool.WithPoolSize(4), taskpool.WithReportSink(func(err error) {
		reported <- err
	}))
	defer pool.Close()

	boom := errors.New("late loser failure")
	fast := task.Now(1)
	slowLoser := task.Async(func(s task.Scheduler, scope *task.StackedCancelable, cb task.Callback[int]) {
		go func() {
			time.Sleep(50 * time.Millisecond)
			cb.OnError(boom)
		}()
	})
	p := task.FirstCompletedOf([]task.Task[int]{fast, slowLoser})
	future, _ := task.RunAsFuture(p, pool)
	a := future.Wait()
	v, ok := a.Value()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	select {
	case err := <-reported:
		assert.Equal(t, boom, err)
	case <-time.After(time.Second):
		t.Fatal("late loser failure was never reported")
	}
}

func TestZipWithReportsLateSiblingFailure(t *testing.T) {
	reported := make(chan error, 1)
	pool := taskpool.NewPool(taskpool.WithPoolSize(4), taskpool.WithReportSink(func(err error) {
		reported <- err
	}))
	defer pool.Close()

	boom := errors.New("late sibling failure")
	fastFailure := task.Fail[int](errors.New("fails immediately"))
	slowSibling := task.Async(func(s task.Scheduler, scope *task.StackedCancelable, cb task.Callback[int]) {
		go func() {
			time.Sleep(50 * time.Millisecond)
			cb.OnError(boom)
		}()
	})
	p := task.ZipWith(fastFailure, slowSibling, func(a, b int) int { return a + b })
	future, _ := task.RunAsFuture(p, pool)
	a := future.Wait()
	assert.False(t, a.IsSuccess())

	select {
	case err := <-reported:
		assert.Equal(t, boom, err)
	case <-time.After(time.Second):
		t.Fatal("late sibling failure was never reported")
	}
}

func TestSequenceRunsInProgramOrderAndShortCircuits(t *testing.T) {
	pool := taskpool.NewPool(taskpool.WithPoolSize(4))
	defer pool.Close()

	var order []int
	mk := func(i int) task.Task[int] {
		return task.EvalAlways(func() int {
			order = append(order, i)
			return i
		})
	}
	boom := errors.New("boom")
	p := task.Sequence([]task.Task[int]{mk(1), mk(2), task.Fail[int](boom), mk(4)})
	future, _ := task.RunAsFuture(p, pool)
	a := future.Wait()
	assert.False(t, a.IsSuccess())
	assert.Equal(t, boom, a.Err())
	assert.Equal(t, []int{1, 2}, order)
}

func TestSequenceCollectsAllResultsOnSuccess(t *testing.T) {
	pool := taskpool.NewPool(taskpool.WithPoolSize(4))
	defer pool.Close()

	p := task.Sequence([]task.Task[int]{task.Now(1), task.Now(2), task.Now(3)})
	future, _ := task.RunAsFuture(p, pool)
	a := future.Wait()
	v, ok := a.Value()
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, v)
}

func TestTimeoutFailsWhenProgramIsTooSlow(t *testing.T) {
	pool := taskpool.NewPool(taskpool.WithPoolSize(4))
	defer pool.Close()

	slow := task.Async(func(s task.Scheduler, scope *task.StackedCancelable, cb task.Callback[int]) {
		go func() {
			time.Sleep(100 * time.Millisecond)
			cb.OnSuccess(1)
		}()
	})
	p := task.Timeout(slow, 5*time.Millisecond)
	future, _ := task.RunAsFuture(p, pool)
	a := future.Wait()
	assert.False(t, a.IsSuccess())
}

func TestOnErrorRetryEventuallySucceeds(t *testing.T) {
	attempts := 0
	p := task.EvalAlways(func() int {
		attempts++
		if attempts < 3 {
			panic(errors.New("not yet"))
		}
		return attempts
	})
	retried := task.OnErrorRetry(p, 5)
	a := runSync(t, retried)
	v, ok := a.Value()
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestOnErrorRetryGivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	boom := errors.New("always fails")
	p := task.EvalAlways(func() int {
		attempts++
		panic(boom)
	})
	retried := task.OnErrorRetry(p, 2)
	a := runSync(t, retried)
	assert.False(t, a.IsSuccess())
	assert.Equal(t, 3, attempts) // initial attempt + 2 retries
}

func TestDelayPostponesExecution(t *testing.T) {
	sched := taskpool.NewVirtual(nil)
	ran := false
	p := task.Delay(10*time.Millisecond, task.EvalAlways(func() struct{} {
		ran = true
		return struct{}{}
	}))
	task.RunWithCallback(p, sched, noopCallback[struct{}]{})
	sched.Drain()
	assert.False(t, ran)
	sched.AdvanceTime(10 * time.Millisecond)
	assert.True(t, ran)
}
