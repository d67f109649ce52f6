// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/task"
	"code.hybscloud.com/task/taskpool"
)

func runSync[A any](t *testing.T, p task.Task[A]) task.Attempt[A] {
	t.Helper()
	sched := taskpool.NewImmediate(func(err error) { t.Errorf("unexpected reported failure: %v", err) })
	future, _ := task.RunAsFuture(p, sched)
	return future.Wait()
}

func TestNowCompletesWithValue(t *testing.T) {
	a := runSync(t, task.Now(42))
	v, ok := a.Value()
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestFailCompletesWithError(t *testing.T) {
	boom := errors.New("boom")
	a := runSync(t, task.Fail[int](boom))
	assert.False(t, a.IsSuccess())
	assert.Equal(t, boom, a.Err())
}

func TestFlatMapChain(t *testing.T) {
	p := task.FlatMap(task.Now(5), func(x int) task.Task[int] {
		return task.FlatMap(task.Now(x+1), func(y int) task.Task[int] {
			return task.Now(y * 2)
		})
	})
	a := runSync(t, p)
	v, ok := a.Value()
	require.True(t, ok)
	assert.Equal(t, 12, v)
}

func TestFlatMapShortCircuitsOnFailure(t *testing.T) {
	boom := errors.New("boom")
	called := false
	p := task.FlatMap(task.Fail[int](boom), func(x int) task.Task[int] {
		called = true
		return task.Now(x)
	})
	a := runSync(t, p)
	assert.False(t, called)
	assert.Equal(t, boom, a.Err())
}

func TestEvalAlwaysRunsEveryTime(t *testing.T) {
	count := 0
	p := task.EvalAlways(func() int {
		count++
		return count
	})
	first := runSync(t, p)
	second := runSync(t, p)
	v1, _ := first.Value()
	v2, _ := second.Value()
	assert.Equal(t, 1, v1)
	assert.Equal(t, 2, v2)
}

func TestEvalOnceCachesAcrossRuns(t *testing.T) {
	count := 0
	p := task.EvalOnce(func() int {
		count++
		return count
	})
	first := runSync(t, p)
	second := runSync(t, p)
	v1, _ := first.Value()
	v2, _ := second.Value()
	assert.Equal(t, 1, v1)
	assert.Equal(t, 1, v2)
	assert.Equal(t, 1, count)
}

func TestSuspendDefersConstruction(t *testing.T) {
	built := false
	p := task.Suspend(func() task.Task[int] {
		built = true
		return task.Now(7)
	})
	assert.False(t, built)
	a := runSync(t, p)
	assert.True(t, built)
	v, _ := a.Value()
	assert.Equal(t, 7, v)
}

func TestMapConvertsPanicToFailure(t *testing.T) {
	p := task.Map(task.Now(1), func(int) int {
		panic("kaboom")
	})
	a := runSync(t, p)
	require.False(t, a.IsSuccess())
	assert.Contains(t, a.Err().Error(), "kaboom")
}

func TestFatalPanicPropagates(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		f, ok := r.(task.Fatal)
		require.True(t, ok)
		assert.True(t, task.IsFatal(f))
	}()
	p := task.Map(task.Now(1), func(int) int {
		panic(task.Fatal{Err: errors.New("unrecoverable")})
	})
	sched := taskpool.NewImmediate(nil)
	task.RunAsFuture(p, sched)
}
