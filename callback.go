// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import "sync/atomic"

// Callback is a one-shot sink receiving either a success of A or a failure.
// Exactly one of OnSuccess/OnError is invoked, at most once, for any given
// run.
type Callback[A any] interface {
	OnSuccess(a A)
	OnError(err error)
}

// rawCallback is the type-erased counterpart of Callback, used internally
// by the run-loop so that a single trampoline can drive any Task[A] without
// being generic over A itself. Public entry points adapt a Callback[A] into
// a rawCallback once, at the boundary, and recover A with a single type
// assertion when delivering success.
type rawCallback interface {
	onSuccess(a any)
	onError(err error)
}

// typedCallback adapts a Callback[A] to rawCallback.
type typedCallback[A any] struct {
	cb Callback[A]
}

func (t typedCallback[A]) onSuccess(a any) { t.cb.OnSuccess(a.(A)) }
func (t typedCallback[A]) onError(err error) { t.cb.OnError(err) }

// funcCallback adapts two plain functions to Callback[A] without defining a
// named type for them.
type funcCallback[A any] struct {
	success func(A)
	failure func(error)
}

func (f funcCallback[A]) OnSuccess(a A)      { f.success(a) }
func (f funcCallback[A]) OnError(err error)  { f.failure(err) }

// safeCallback wraps a rawCallback to self-protect against double
// completion and to route a panic thrown by the inner handler to
// scheduler.ReportFailure. A run's terminal callback is always wrapped this
// way so the at-most-once invariant holds even when the interpreter itself
// has bugs.
type safeCallback struct {
	inner     rawCallback
	scheduler Scheduler
	done      atomic.Bool
}

func newSafeCallback(inner rawCallback, scheduler Scheduler) *safeCallback {
	return &safeCallback{inner: inner, scheduler: scheduler}
}

func (s *safeCallback) onSuccess(a any) {
	if !s.done.CompareAndSwap(false, true) {
		return
	}
	s.guard(func() { s.inner.onSuccess(a) })
}

func (s *safeCallback) onError(err error) {
	if !s.done.CompareAndSwap(false, true) {
		return
	}
	s.guard(func() { s.inner.onError(err) })
}

// guard invokes f, routing any panic (raised by the user's own
// OnSuccess/OnError handler) to the scheduler's failure sink instead of
// letting it escape — the run is already complete by the time the
// consumer's handler runs.
func (s *safeCallback) guard(f func()) {
	defer func() {
		if r := recover(); r != nil {
			if s.scheduler != nil {
				s.scheduler.ReportFailure(toError(r))
			}
		}
	}()
	f()
}
