// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import "sync/atomic"

// runLoop is the bind-stack trampoline. It interprets
// current, folding a pending continuation stack (binds), honoring the
// scheduler's yield budget (frameIndex), and handing off to the scheduler
// or to an async register whenever it must cross a suspension point.
//
// runLoop never recurses on itself for ordinary node transitions — every
// case in the switch below either falls through to the next loop iteration
// or returns, so an arbitrarily long flatMap chain runs in O(1) native
// stack frames. The two exceptions — entering a Memoized node and crossing
// an Async/BindAsync boundary — hand control to another call to runLoop,
// but that call happens either synchronously-but-boundedly (one nesting
// level per distinct Memoized node encountered) or on a wholly separate
// goroutine invocation (async resumption), never as unbounded recursion
// driven by bind depth.
func runLoop(s Scheduler, scope *StackedCancelable, cb rawCallback, current *node, binds []erasedBind, frameIndex int) {
	for {
		if frameIndex == 0 && current.kind != kindAsync && current.kind != kindBindAsync {
			capturedCurrent, capturedBinds := current, binds
			s.Execute(func() {
				runLoop(s, scope, cb, capturedCurrent, capturedBinds, s.ExecutionModel().NextFrameIndex(0))
			})
			return
		}

		switch current.kind {
		case kindNow:
			if len(binds) == 0 {
				cb.onSuccess(current.value)
				return
			}
			k := binds[len(binds)-1]
			binds = binds[:len(binds)-1]
			current = attemptApply(k, current.value)

		case kindFail:
			// Binds are success-only: a failure always discards whatever
			// remains on the stack and short-circuits straight to the
			// terminal callback.
			cb.onError(current.err)
			return

		case kindEvalOnce:
			v, err := current.once.get()
			if err != nil {
				current = failNode(err)
			} else {
				current = nowNode(v)
			}

		case kindEvalAlways:
			th := current.thunk
			current = attemptCall(func() *node { return nowNode(th()) })

		case kindSuspend:
			current = attemptCall(current.nodeThunk)

		case kindBindSync:
			binds = append(binds, current.bind)
			current = attemptCall(current.nodeThunk)

		case kindMemoized:
			nextNode, inline := memoDispatch(s, scope, cb, binds, current.memo)
			if !inline {
				return
			}
			current = nextNode

		case kindAsync:
			dispatchAsync(s, scope, cb, current.register, binds)
			return

		case kindBindAsync:
			binds = append(binds, current.bind)
			dispatchAsync(s, scope, cb, current.register, binds)
			return

		default:
			panic("task: unknown node kind in runLoop")
		}

		frameIndex = s.ExecutionModel().NextFrameIndex(frameIndex)
	}
}

// asyncInnerCallback is the callback register functions receive. Its
// onSuccess re-enters the run-loop with the resumed binds; onError
// short-circuits straight to the outer callback. Both enforce at-most-once
// delivery; a second completion attempt is a protocol violation by the
// register and is routed to reportFailure instead of silently dropped.
type asyncInnerCallback struct {
	s     Scheduler
	scope *StackedCancelable
	outer rawCallback
	binds []erasedBind
	done  atomic.Bool
}

func (c *asyncInnerCallback) onSuccess(a any) {
	if !c.done.CompareAndSwap(false, true) {
		c.s.ReportFailure(errDoubleCompletion)
		return
	}
	runLoop(c.s, c.scope, c.outer, nowNode(a), c.binds, c.s.ExecutionModel().NextFrameIndex(0))
}

func (c *asyncInnerCallback) onError(err error) {
	if !c.done.CompareAndSwap(false, true) {
		c.s.ReportFailure(errDoubleCompletion)
		return
	}
	c.outer.onError(err)
}

// dispatchAsync implements the async runner: if scope is
// already canceled, register is never invoked (silent termination);
// otherwise register is called with a fresh inner callback. A non-fatal
// panic raised by register before the inner callback has completed is
// treated like any other node-construction panic and converted to Fail.
// register may complete the inner callback synchronously (UnsafeAsync does,
// and so does Async under a scheduler whose Execute runs inline); a
// non-fatal panic that escapes after that completion is dropped.
func dispatchAsync(s Scheduler, scope *StackedCancelable, cb rawCallback, register erasedRegister, binds []erasedBind) {
	if scope.IsCanceled() {
		return
	}
	inner := &asyncInnerCallback{s: s, scope: scope, outer: cb, binds: binds}
	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(Fatal); ok {
					panic(r)
				}
				if inner.done.CompareAndSwap(false, true) {
					cb.onError(toError(r))
				}
			}
		}()
		register(s, scope, inner)
	}()
}

var errDoubleCompletion = doubleCompletionError{}

type doubleCompletionError struct{}

func (doubleCompletionError) Error() string {
	return "task: async register completed its callback more than once"
}

// --- Run entry points -------------------------------------------------------

// RunWithCallback builds a root cancellation scope, interprets p, and
// delivers its outcome to cb exactly once. The returned CancelToken cancels
// the whole run.
func RunWithCallback[A any](p Task[A], s Scheduler, cb Callback[A]) CancelToken {
	scope := NewStackedCancelable(s.ReportFailure)
	safe := newSafeCallback(typedCallback[A]{cb: cb}, s)
	runLoop(s, scope, safe, p.n, nil, s.ExecutionModel().NextFrameIndex(0))
	return CancelFunc(scope.Cancel)
}

// fanoutCallback adapts a fanout to rawCallback so the run-loop can resolve
// it directly; used by both RunAsFuture and RunTryGetSync.
type fanoutCallback struct {
	fan *fanout
}

func (c *fanoutCallback) onSuccess(a any)   { c.fan.resolve(nowNode(a)) }
func (c *fanoutCallback) onError(err error) { c.fan.resolve(failNode(err)) }

// RunAsFuture runs p and returns a [Future] that resolves when the run
// completes, plus a CancelToken for the whole run.
func RunAsFuture[A any](p Task[A], s Scheduler) (Future[A], CancelToken) {
	scope := NewStackedCancelable(s.ReportFailure)
	fan := newFanout()
	runLoop(s, scope, &fanoutCallback{fan: fan}, p.n, nil, s.ExecutionModel().NextFrameIndex(0))
	return Future[A]{fan: fan, s: s}, CancelFunc(scope.Cancel)
}

// SyncResult is the outcome of [RunTryGetSync]: either a synchronously
// available Attempt, or a Future to observe asynchronously.
type SyncResult[A any] struct {
	attempt Attempt[A]
	future  Future[A]
	isSync  bool
}

// IsSync reports whether the run completed synchronously.
func (r SyncResult[A]) IsSync() bool { return r.isSync }

// Attempt returns the synchronous result and true, or the zero Attempt and
// false if the run needed to fall back to a Future.
func (r SyncResult[A]) Attempt() (Attempt[A], bool) { return r.attempt, r.isSync }

// Future returns the fallback Future and true, or the zero Future and false
// if the run completed synchronously.
func (r SyncResult[A]) Future() (Future[A], bool) { return r.future, !r.isSync }

// RunTryGetSync attempts to deliver a synchronous answer: if the run has
// completed by the time the run-loop hands control back, it returns the
// resolved Attempt directly, which is always the case while p only
// encounters strict/lazy/sync nodes (and already-resolved Memoized nodes).
// If the run is still waiting at that point — on an Async/BindAsync node, a
// forced frame-budget yield, or a Memoized node that is not yet resolved —
// it returns a Future that resolves once the run completes. Crossing such a
// boundary does not by itself select the Future: a boundary that completes
// inline (UnsafeAsync, or a scheduler whose Execute runs inline) still
// yields a synchronous Attempt. Both outcomes share the returned
// CancelToken.
func RunTryGetSync[A any](p Task[A], s Scheduler) (SyncResult[A], CancelToken) {
	scope := NewStackedCancelable(s.ReportFailure)
	fan := newFanout()
	runLoop(s, scope, &fanoutCallback{fan: fan}, p.n, nil, s.ExecutionModel().NextFrameIndex(0))
	if resolved, result := fan.peek(); resolved {
		return SyncResult[A]{attempt: attemptFromNode[A](result), isSync: true}, CancelFunc(scope.Cancel)
	}
	return SyncResult[A]{future: Future[A]{fan: fan, s: s}, isSync: false}, CancelFunc(scope.Cancel)
}

func attemptFromNode[A any](n *node) Attempt[A] {
	if n.kind == kindFail {
		return Failure[A](n.err)
	}
	return Success[A](n.value.(A))
}
