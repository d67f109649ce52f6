// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

// Future is the eager-future runner's handle: a Task has already started
// running against a scheduler, and Future lets any number of observers
// learn its outcome once, whenever it arrives.
// It is built on the same fanout primitive as the memoized node — both are
// "one result, many subscribers" cells, so Future simply adapts fanout's
// node-shaped result to a typed Attempt.
type Future[A any] struct {
	fan *fanout
	s   Scheduler
}

// OnComplete registers fn to run with the Future's outcome. If the Future
// is already resolved, fn runs before OnComplete returns; otherwise it runs
// later, on whichever goroutine resolves the underlying run. A panic inside
// fn is recovered and routed to the originating scheduler's ReportFailure —
// the run that produced this Future has already delivered its result by the
// time an observer's handler runs, so there is nothing left to fail.
func (f Future[A]) OnComplete(fn func(Attempt[A])) {
	safe := func(n *node) {
		defer func() {
			if r := recover(); r != nil && f.s != nil {
				f.s.ReportFailure(toError(r))
			}
		}()
		fn(attemptFromNode[A](n))
	}
	if resolved, result := f.fan.subscribe(safe); resolved {
		safe(result)
	}
}

// Wait blocks the calling goroutine until the Future resolves and returns
// its outcome. It is a convenience for tests and CLI tooling, not a
// replacement for OnComplete in code that must stay non-blocking.
func (f Future[A]) Wait() Attempt[A] {
	ch := make(chan Attempt[A], 1)
	f.OnComplete(func(a Attempt[A]) { ch <- a })
	return <-ch
}

// TryGet returns the Future's outcome and true if it has already resolved,
// or the zero Attempt and false otherwise.
func (f Future[A]) TryGet() (Attempt[A], bool) {
	if resolved, result := f.fan.peek(); resolved {
		return attemptFromNode[A](result), true
	}
	return Attempt[A]{}, false
}

// FromFuture lifts an already-running Future back into a Task: running it
// subscribes to the Future's outcome and completes with whatever it
// delivers. If the run's scope is already canceled by the time the Future
// resolves, the result is dropped silently rather than delivered — a
// Future carries no cancel token of its own onto the run's scope, so this
// check is the only thing that makes FromFuture respect cancellation.
func FromFuture[A any](f Future[A]) Task[A] {
	register := func(s Scheduler, scope *StackedCancelable, inner rawCallback) {
		f.OnComplete(func(a Attempt[A]) {
			if scope.IsCanceled() {
				return
			}
			if v, ok := a.Value(); ok {
				inner.onSuccess(v)
			} else {
				inner.onError(a.Err())
			}
		})
	}
	erased := func(s Scheduler, scope *StackedCancelable, inner rawCallback) {
		register(s, scope, inner)
	}
	return Task[A]{n: &node{kind: kindAsync, register: erased}}
}
