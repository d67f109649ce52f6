// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import "time"

// Runnable is a zero-argument callback submitted to a [Scheduler].
type Runnable func()

// ExecutionModel governs how many program nodes the run-loop processes
// before it forces an asynchronous yield back to the scheduler. See
// NextFrameIndex.
type ExecutionModel interface {
	// NextFrameIndex computes the frame index for the next loop iteration
	// given the current one. Returning 0 forces the run-loop to submit a
	// continuation through the scheduler instead of processing the next
	// node inline.
	NextFrameIndex(current int) int
}

// Scheduler is the only ambient capability a run depends on: an executor, a
// timer, a failure sink, and a yield policy. No run entry point reaches for
// a global executor — the scheduler is always passed explicitly.
//
// Implementations must guarantee Execute is non-reentrant with respect to
// the caller: the runnable always runs at some later point, never
// synchronously inline within the call to Execute.
type Scheduler interface {
	// Execute schedules r to run asynchronously on some executor.
	Execute(r Runnable)

	// ScheduleOnce delivers r after delay elapses, returning a token that
	// cancels the pending delivery if invoked beforehand.
	ScheduleOnce(delay time.Duration, r Runnable) CancelToken

	// ReportFailure surfaces an error that has no callback left to
	// receive it — e.g. a callback's own handler panicked, or an async
	// register violated the at-most-once completion contract.
	ReportFailure(err error)

	// ExecutionModel exposes this scheduler's yield policy.
	ExecutionModel() ExecutionModel
}
