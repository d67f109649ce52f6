// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import "sync/atomic"

// waiterNode is one entry of fanout's intrusive, immutable waiter list.
type waiterNode struct {
	next *waiterNode
	fn   func(result *node)
}

// fanoutState is the immutable snapshot fanout.state points to. Before
// resolution it holds the waiter list collected so far; after resolution it
// holds the terminal result and the waiter list is gone (drained once by
// whichever goroutine wins the CAS into the resolved state).
type fanoutState struct {
	resolved bool
	result   *node
	head     *waiterNode
}

// fanout is a single-word-CAS multi-waiter completion cell: any number of
// goroutines may subscribe before resolution; resolve() delivers to every
// subscriber exactly once, and any subscription that arrives after
// resolution is answered immediately instead of being queued. It backs both
// the memoized node below and the eager-future runner in future.go, reusing
// one suspension shape across both call sites (see DESIGN.md).
//
// No lock is ever held while invoking a waiter's fn: resolve() swaps in the
// resolved state, then walks the list it displaced and calls each fn with
// the CAS already complete.
type fanout struct {
	state atomic.Pointer[fanoutState]
}

func newFanout() *fanout {
	f := &fanout{}
	f.state.Store(&fanoutState{})
	return f
}

// subscribe registers fn to be called with the result once resolved. If the
// fanout is already resolved, subscribe does not call fn — it reports the
// result directly so the caller can deliver it inline.
func (f *fanout) subscribe(fn func(result *node)) (resolved bool, result *node) {
	for {
		old := f.state.Load()
		if old.resolved {
			return true, old.result
		}
		nw := &fanoutState{head: &waiterNode{next: old.head, fn: fn}}
		if f.state.CompareAndSwap(old, nw) {
			return false, nil
		}
	}
}

// peek reports the current state without registering a waiter.
func (f *fanout) peek() (resolved bool, result *node) {
	st := f.state.Load()
	return st.resolved, st.result
}

// resolve transitions to the resolved state exactly once and delivers to
// every waiter collected up to that point. A second resolve is a no-op —
// callers (memoNode, Future) only ever resolve via a Callback already
// protected by at-most-once delivery, but resolve is itself idempotent
// defensively.
func (f *fanout) resolve(result *node) {
	var head *waiterNode
	for {
		old := f.state.Load()
		if old.resolved {
			return
		}
		nw := &fanoutState{resolved: true, result: result}
		if f.state.CompareAndSwap(old, nw) {
			head = old.head
			break
		}
	}
	for w := head; w != nil; w = w.next {
		w.fn(result)
	}
}

// memoNode implements the memoized node's state machine: Unstarted
// (promise == nil) → Pending (promise non-nil, not yet resolved) →
// Resolved (promise resolved). The transition Unstarted → Pending is a
// single compare-and-swap; Pending → Resolved is fanout's own CAS. thunk is
// released as soon as one caller wins ownership of the evaluation.
type memoNode struct {
	thunk   erasedNodeThunk
	promise atomic.Pointer[fanout]
}

// memoOwnerCallback resolves the owning memoNode's fanout when the
// underlying computation it is driving completes.
type memoOwnerCallback struct {
	p *fanout
}

func (o *memoOwnerCallback) onSuccess(a any)    { o.p.resolve(nowNode(a)) }
func (o *memoOwnerCallback) onError(err error)  { o.p.resolve(failNode(err)) }

// memoDispatch implements the memoized node's three cases (Unstarted,
// Pending, Resolved).
// It either returns a node the caller's run-loop should continue
// interpreting inline (already resolved), or reports that it has taken over
// delivery (registered a waiter, or started the owning evaluation) — in
// which case the caller's run-loop returns without delivering anything
// itself; the waiter's closure (or the owner's completion) re-enters
// runLoop later, possibly on a different goroutine.
func memoDispatch(s Scheduler, scope *StackedCancelable, cb rawCallback, binds []erasedBind, m *memoNode) (next *node, inline bool) {
	for {
		p := m.promise.Load()
		if p == nil {
			newP := newFanout()
			if !m.promise.CompareAndSwap(nil, newP) {
				continue // lost the race to become the owner; re-read
			}
			th := m.thunk
			m.thunk = nil
			underlying := attemptCall(th)

			waiterScope, waiterBinds, waiterCb := scope, binds, cb
			newP.subscribe(func(result *node) {
				if waiterScope.IsCanceled() {
					return
				}
				runLoop(s, waiterScope, waiterCb, result, waiterBinds, s.ExecutionModel().NextFrameIndex(0))
			})

			// The shared evaluation runs under its own scope, not the first
			// runner's, so canceling that runner only detaches its waiter.
			runLoop(s, NewStackedCancelable(s.ReportFailure), &memoOwnerCallback{p: newP}, underlying, nil, s.ExecutionModel().NextFrameIndex(0))
			return nil, false
		}

		waiterScope, waiterBinds, waiterCb := scope, binds, cb
		resolved, result := p.subscribe(func(result *node) {
			if waiterScope.IsCanceled() {
				return
			}
			runLoop(s, waiterScope, waiterCb, result, waiterBinds, s.ExecutionModel().NextFrameIndex(0))
		})
		if resolved {
			return result, true
		}
		// Registered as a pending waiter: canceling this waiter's own
		// scope only detaches this waiter (the
		// IsCanceled check inside the closure above) — it never reaches
		// into the owner's scope, so the in-flight evaluation continues
		// for every other waiter.
		return nil, false
	}
}

// Memoize caches the outcome of p's first evaluation — a success or a
// failure alike — and shares both the in-flight computation and that
// outcome across every subsequent and concurrent run of the returned Task. Re-memoizing an already-memoized
// Task is idempotent: it returns an equivalent Task wrapping the same
// underlying memoNode.
func Memoize[A any](p Task[A]) Task[A] {
	if p.n.kind == kindMemoized {
		return p
	}
	underlying := p.n
	return Task[A]{n: &node{kind: kindMemoized, memo: &memoNode{
		thunk: func() *node { return underlying },
	}}}
}
