// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/task"
	"code.hybscloud.com/task/taskpool"
)

// TestForcedYieldSplitsAcrossExecuteSubmissions exercises the run-loop's
// frame-budget policy directly: with a batch size of 1, every single node
// transition forces a fresh submission through the scheduler, so a chain
// long enough to need several transitions is split across several Execute
// calls rather than completing within one; the test checks that the chain
// still completes with the right value.
func TestForcedYieldSplitsAcrossExecuteSubmissions(t *testing.T) {
	sched := taskpool.NewImmediate(nil).WithBatchSize(1)

	p := task.Now(0)
	for i := 0; i < 50; i++ {
		p = task.FlatMap(p, func(x int) task.Task[int] { return task.Now(x + 1) })
	}
	a := runSyncOn(t, sched, p)
	v, ok := a.Value()
	require.True(t, ok)
	assert.Equal(t, 50, v)
}

func TestForcedYieldDoesNotApplyAcrossAsyncNodes(t *testing.T) {
	sched := taskpool.NewVirtual(nil).WithBatchSize(1)
	p := task.FlatMap(task.Async(func(s task.Scheduler, scope *task.StackedCancelable, cb task.Callback[int]) {
		cb.OnSuccess(1)
	}), func(x int) task.Task[int] {
		return task.Now(x + 1)
	})
	future, _ := task.RunAsFuture(p, sched)
	sched.Drain()
	a := future.Wait()
	v, ok := a.Value()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func runSyncOn[A any](t *testing.T, sched task.Scheduler, p task.Task[A]) task.Attempt[A] {
	t.Helper()
	future, _ := task.RunAsFuture(p, sched)
	return future.Wait()
}
