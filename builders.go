// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import "time"

// Now returns a Task that completes immediately with a, without ever
// suspending.
func Now[A any](a A) Task[A] {
	return Task[A]{n: nowNode(a)}
}

// Fail returns a Task that completes immediately with err. A nil err is
// replaced with a sentinel error rather than silently treated as success.
func Fail[A any](err error) Task[A] {
	return Task[A]{n: failNode(err)}
}

// Unit is the Task that immediately succeeds with no meaningful value.
var Unit = Now(struct{}{})

// EvalOnce returns a Task that invokes f at most once across every run of
// the returned value, caching and reusing (value, err) for any subsequent
// run.
func EvalOnce[A any](f func() A) Task[A] {
	cell := newOnceCell(func() any { return f() })
	return Task[A]{n: &node{kind: kindEvalOnce, once: cell}}
}

// EvalAlways returns a Task that invokes f exactly once per run, every run.
func EvalAlways[A any](f func() A) Task[A] {
	return Task[A]{n: &node{kind: kindEvalAlways, thunk: func() any { return f() }}}
}

// Suspend defers the construction of a Task until run, invoking f fresh on
// every run. It is the escape hatch for building a Task from values only
// known at run time, or for controlling where recursion unfolds (named
// Suspend rather than Defer to avoid shadowing Go's own defer statement).
func Suspend[A any](f func() Task[A]) Task[A] {
	return Task[A]{n: &node{kind: kindSuspend, nodeThunk: func() *node {
		return f().n
	}}}
}

// Never returns a Task that never completes: its register function never
// invokes the callback it is handed. It is useful for testing cancellation
// and for combinators like FirstCompletedOf where one branch should simply
// never win.
func Never[A any]() Task[A] {
	return Task[A]{n: &node{kind: kindAsync, register: func(Scheduler, *StackedCancelable, rawCallback) {}}}
}

// Async builds a Task around a register function that eventually calls
// cb.OnSuccess or cb.OnError exactly once. Async always forces an
// asynchronous boundary: register itself is only ever invoked from inside a
// scheduler.Execute submission, never inline on the interpreting goroutine,
// regardless of how quickly it completes.
func Async[A any](register func(s Scheduler, scope *StackedCancelable, cb Callback[A])) Task[A] {
	erased := func(s Scheduler, scope *StackedCancelable, inner rawCallback) {
		s.Execute(func() {
			register(s, scope, callbackFromRaw[A]{inner: inner})
		})
	}
	return Task[A]{n: &node{kind: kindAsync, register: erased}}
}

// UnsafeAsync is Async without the forced scheduling boundary: register
// runs directly on whatever goroutine the interpreter is on when it reaches
// this node. Most callers want Async; UnsafeAsync exists for adapting
// callback-based APIs that must register synchronously (e.g. to observe a
// channel send that happens on the calling goroutine).
func UnsafeAsync[A any](register func(s Scheduler, scope *StackedCancelable, cb Callback[A])) Task[A] {
	erased := func(s Scheduler, scope *StackedCancelable, inner rawCallback) {
		register(s, scope, callbackFromRaw[A]{inner: inner})
	}
	return Task[A]{n: &node{kind: kindAsync, register: erased}}
}

// callbackFromRaw adapts the interpreter's erased rawCallback to a typed
// Callback[A] for the duration of a single Async/UnsafeAsync register call.
type callbackFromRaw[A any] struct {
	inner rawCallback
}

func (c callbackFromRaw[A]) OnSuccess(a A)     { c.inner.onSuccess(a) }
func (c callbackFromRaw[A]) OnError(err error) { c.inner.onError(err) }

// Fork inserts an asynchronous boundary at the start of p. Unless p already
// begins with an Async/BindAsync node, Fork wraps p in an Async node whose
// register hands off through scheduler.Execute, so running Fork(p) returns
// control to the calling goroutine before any of p's own binds execute,
// even if p would otherwise complete entirely synchronously. If p already
// begins with an Async/BindAsync node, Fork returns p unchanged and the
// boundary is whatever that node's register provides: a scheduler hand-off
// for Async and Sleep, none for UnsafeAsync, FromFuture or Materialize,
// whose registers run inline.
func Fork[A any](p Task[A]) Task[A] {
	n := p.n
	if n.kind == kindAsync || n.kind == kindBindAsync {
		return p
	}
	register := func(s Scheduler, scope *StackedCancelable, inner rawCallback) {
		s.Execute(func() {
			runLoop(s, scope, inner, n, nil, s.ExecutionModel().NextFrameIndex(0))
		})
	}
	return Task[A]{n: &node{kind: kindAsync, register: register}}
}

// Sleep returns a Task that succeeds with no meaningful value after delay
// elapses, scheduled via the running Scheduler's timer.
func Sleep(delay time.Duration) Task[struct{}] {
	return Async(func(s Scheduler, scope *StackedCancelable, cb Callback[struct{}]) {
		token := s.ScheduleOnce(delay, func() { cb.OnSuccess(struct{}{}) })
		scope.Push(token)
	})
}
