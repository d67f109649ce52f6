// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/task"
	"code.hybscloud.com/task/taskpool"
)

func TestMemoizeSharesResultAcrossRuns(t *testing.T) {
	var calls int32
	p := task.Memoize(task.EvalAlways(func() int {
		return int(atomic.AddInt32(&calls, 1))
	}))

	sched := taskpool.NewImmediate(func(err error) { t.Errorf("unexpected failure: %v", err) })
	a1, _ := task.RunAsFuture(p, sched)
	a2, _ := task.RunAsFuture(p, sched)

	v1, ok1 := a1.Wait().Value()
	v2, ok2 := a2.Wait().Value()
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, 1, v1)
	assert.Equal(t, 1, v2)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestMemoizeConcurrentWaitersShareOneEvaluation(t *testing.T) {
	var calls int32
	pool := taskpool.NewPool(taskpool.WithPoolSize(8))
	defer pool.Close()

	underlying := task.Async(func(s task.Scheduler, scope *task.StackedCancelable, cb task.Callback[int]) {
		atomic.AddInt32(&calls, 1)
		cb.OnSuccess(99)
	})
	p := task.Memoize(underlying)

	const n = 20
	var wg sync.WaitGroup
	results := make([]int, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, _ := task.RunAsFuture(p, pool)
			a := f.Wait()
			v, _ := a.Value()
			results[i] = v
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	for _, v := range results {
		assert.Equal(t, 99, v)
	}
}

func TestMemoizeCancelingOneWaiterDoesNotAffectOthers(t *testing.T) {
	pool := taskpool.NewPool(taskpool.WithPoolSize(4))
	defer pool.Close()

	release := make(chan struct{})
	underlying := task.Async(func(s task.Scheduler, scope *task.StackedCancelable, cb task.Callback[int]) {
		go func() {
			<-release
			cb.OnSuccess(7)
		}()
	})
	p := task.Memoize(underlying)

	_, cancelA := task.RunAsFuture(p, pool)
	futureB, _ := task.RunAsFuture(p, pool)

	cancelA.Cancel()
	close(release)

	a := futureB.Wait()
	v, ok := a.Value()
	require.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestMemoizeIsIdempotent(t *testing.T) {
	p := task.Memoize(task.Now(1))
	q := task.Memoize(p)
	sched := taskpool.NewImmediate(nil)
	a, _ := task.RunAsFuture(q, sched)
	v, ok := a.Wait().Value()
	require.True(t, ok)
	assert.Equal(t, 1, v)
}
