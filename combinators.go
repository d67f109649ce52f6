// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import (
	"sync"
	"sync/atomic"
	"time"
)

// Map transforms a successful result; a failure passes through unchanged.
func Map[A, B any](p Task[A], f func(A) B) Task[B] {
	return Task[B]{n: mapNode(p.n, func(a any) any { return f(a.(A)) })}
}

// FlatMap sequences p into a Task built from its result; a failure in p
// short-circuits without ever calling f.
func FlatMap[A, B any](p Task[A], f func(A) Task[B]) Task[B] {
	return Task[B]{n: flatMapNode(p.n, func(a any) *node { return f(a.(A)).n })}
}

// Then sequences p before next, discarding p's result.
func Then[A, B any](p Task[A], next Task[B]) Task[B] {
	return Task[B]{n: thenNode(p.n, next.n)}
}

// funcRawCallback adapts two closures to rawCallback; used by combinators
// that drive an inner run-loop directly instead of through a public run
// entry point.
type funcRawCallback struct {
	success func(any)
	failure func(error)
}

func (f funcRawCallback) onSuccess(a any)   { f.success(a) }
func (f funcRawCallback) onError(err error) { f.failure(err) }

// Materialize turns p's outcome into a value: a successful run produces
// Success(a), a failed run produces Failure(err), and the resulting Task
// itself never fails.
func Materialize[A any](p Task[A]) Task[Attempt[A]] {
	n := p.n
	register := func(s Scheduler, scope *StackedCancelable, inner rawCallback) {
		cb := funcRawCallback{
			success: func(a any) { inner.onSuccess(Success(a.(A))) },
			failure: func(err error) { inner.onSuccess(Failure[A](err)) },
		}
		runLoop(s, scope, cb, n, nil, s.ExecutionModel().NextFrameIndex(0))
	}
	return Task[Attempt[A]]{n: &node{kind: kindAsync, register: register}}
}

// Dematerialize is Materialize's inverse: Success unwraps to a value,
// Failure unwraps to a failed Task.
func Dematerialize[A any](p Task[Attempt[A]]) Task[A] {
	return FlatMap(p, func(a Attempt[A]) Task[A] {
		if v, ok := a.Value(); ok {
			return Now(v)
		}
		return Fail[A](a.Err())
	})
}

// OnErrorHandleWith recovers from a failure in p by switching to a Task
// built from the error; a success in p passes through unchanged.
func OnErrorHandleWith[A any](p Task[A], handler func(error) Task[A]) Task[A] {
	return FlatMap(Materialize(p), func(a Attempt[A]) Task[A] {
		if v, ok := a.Value(); ok {
			return Now(v)
		}
		return handler(a.Err())
	})
}

// OnErrorRetryIf re-runs p up to maxRetries times when it fails with an
// error shouldRetry accepts, and fails immediately with the first error
// shouldRetry rejects. Each retry is a fresh run of p, so EvalAlways/Suspend
// nodes inside it re-execute rather than replaying a cached result.
func OnErrorRetryIf[A any](p Task[A], shouldRetry func(error) bool, maxRetries int) Task[A] {
	return OnErrorHandleWith(p, func(err error) Task[A] {
		if maxRetries <= 0 || !shouldRetry(err) {
			return Fail[A](err)
		}
		return OnErrorRetryIf(p, shouldRetry, maxRetries-1)
	})
}

// OnErrorRetry is OnErrorRetryIf with every error accepted for retry.
func OnErrorRetry[A any](p Task[A], maxRetries int) Task[A] {
	return OnErrorRetryIf(p, func(error) bool { return true }, maxRetries)
}

// Delay runs p only after d has elapsed.
func Delay[A any](d time.Duration, p Task[A]) Task[A] {
	return Then(Sleep(d), p)
}

// Pair is the result of Zip: pa's value alongside pb's.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip runs pa and pb concurrently (each forked onto the scheduler as a
// Future) and succeeds with both results once both have arrived, or fails
// with whichever of the two errors is observed first.
func Zip[A, B any](pa Task[A], pb Task[B]) Task[Pair[A, B]] {
	return ZipWith(pa, pb, func(a A, b B) Pair[A, B] { return Pair[A, B]{First: a, Second: b} })
}

// ZipWith is Zip generalized over the combining function f. The first
// error from either side short-circuits: the sibling's token is canceled
// and the error delivers immediately, without waiting for the sibling to
// settle. A sibling that is already in flight may still complete after
// that point (cancellation is cooperative, not instantaneous); any such
// late completion is dropped if it is a success, or routed to the
// scheduler's ReportFailure if it is itself a failure.
func ZipWith[A, B, C any](pa Task[A], pb Task[B], f func(A, B) C) Task[C] {
	return Async(func(s Scheduler, scope *StackedCancelable, cb Callback[C]) {
		fa, tokenA := RunAsFuture(Fork(pa), s)
		fb, tokenB := RunAsFuture(Fork(pb), s)
		scope.Push(tokenA)
		scope.Push(tokenB)

		var mu sync.Mutex
		var aVal Attempt[A]
		var bVal Attempt[B]
		var aDone, bDone, delivered bool

		deliverSuccess := func() {
			av, _ := aVal.Value()
			bv, _ := bVal.Value()
			defer func() {
				if r := recover(); r != nil {
					if _, ok := r.(Fatal); ok {
						panic(r)
					}
					cb.OnError(toError(r))
				}
			}()
			cb.OnSuccess(f(av, bv))
		}

		fa.OnComplete(func(a Attempt[A]) {
			mu.Lock()
			if delivered {
				mu.Unlock()
				if _, ok := a.Value(); !ok {
					s.ReportFailure(a.Err())
				}
				return
			}
			aVal, aDone = a, true
			if _, ok := a.Value(); !ok {
				delivered = true
				mu.Unlock()
				tokenB.Cancel()
				cb.OnError(a.Err())
				return
			}
			if !bDone {
				mu.Unlock()
				return
			}
			delivered = true
			mu.Unlock()
			deliverSuccess()
		})
		fb.OnComplete(func(b Attempt[B]) {
			mu.Lock()
			if delivered {
				mu.Unlock()
				if _, ok := b.Value(); !ok {
					s.ReportFailure(b.Err())
				}
				return
			}
			bVal, bDone = b, true
			if _, ok := b.Value(); !ok {
				delivered = true
				mu.Unlock()
				tokenA.Cancel()
				cb.OnError(b.Err())
				return
			}
			if !aDone {
				mu.Unlock()
				return
			}
			delivered = true
			mu.Unlock()
			deliverSuccess()
		})
	})
}

// FirstCompletedOf races ps against each other and completes with whichever
// finishes first — by arrival order, not program order — canceling every
// other branch once a winner is chosen.
func FirstCompletedOf[A any](ps []Task[A]) Task[A] {
	return Async(func(s Scheduler, scope *StackedCancelable, cb Callback[A]) {
		var winner atomic.Bool
		var mu sync.Mutex
		tokens := make([]CancelToken, 0, len(ps))
		for _, p := range ps {
			f, token := RunAsFuture(p, s)
			mu.Lock()
			tokens = append(tokens, token)
			won := winner.Load()
			mu.Unlock()
			scope.Push(token)
			if won {
				token.Cancel()
			}
			f.OnComplete(func(a Attempt[A]) {
				if !winner.CompareAndSwap(false, true) {
					if _, ok := a.Value(); !ok {
						s.ReportFailure(a.Err())
					}
					return
				}
				mu.Lock()
				started := append([]CancelToken(nil), tokens...)
				mu.Unlock()
				for _, t := range started {
					t.Cancel()
				}
				if v, ok := a.Value(); ok {
					cb.OnSuccess(v)
				} else {
					cb.OnError(a.Err())
				}
			})
		}
	})
}

// Sequence runs ps one at a time, in program order, collecting their
// results. The first failure short-circuits the remaining tasks.
func Sequence[A any](ps []Task[A]) Task[[]A] {
	return Suspend(func() Task[[]A] {
		acc := Now([]A{})
		for _, p := range ps {
			pp := p
			acc = FlatMap(acc, func(xs []A) Task[[]A] {
				return Map(pp, func(x A) []A { return append(xs, x) })
			})
		}
		return acc
	})
}

var errTimeout = timeoutError{}

type timeoutError struct{}

func (timeoutError) Error() string { return "task: timed out" }

// Timeout fails with a timeout error if p has not completed within d,
// canceling p's own run at that point. If p completes first, the pending
// timer is canceled instead.
func Timeout[A any](p Task[A], d time.Duration) Task[A] {
	return Async(func(s Scheduler, scope *StackedCancelable, cb Callback[A]) {
		var winner atomic.Bool
		f, token := RunAsFuture(p, s)
		scope.Push(token)

		var timerToken CancelToken
		timerToken = s.ScheduleOnce(d, func() {
			if !winner.CompareAndSwap(false, true) {
				return
			}
			token.Cancel()
			cb.OnError(errTimeout)
		})
		scope.Push(timerToken)

		f.OnComplete(func(a Attempt[A]) {
			if !winner.CompareAndSwap(false, true) {
				return
			}
			timerToken.Cancel()
			if v, ok := a.Value(); ok {
				cb.OnSuccess(v)
			} else {
				cb.OnError(a.Err())
			}
		})
	})
}
