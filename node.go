// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

// nodeKind tags the variant of a program node. A tagged sum (as opposed to
// a class hierarchy with runtime subtype casts) keeps dispatch in the
// run-loop a single switch.
type nodeKind uint8

const (
	kindNow nodeKind = iota
	kindFail
	kindEvalOnce
	kindEvalAlways
	kindSuspend
	kindBindSync
	kindAsync
	kindBindAsync
	kindMemoized
)

// erasedThunk yields a value, or panics to signal failure. It is the
// erased counterpart of a user's EvalOnce/EvalAlways closure.
type erasedThunk = func() any

// erasedNodeThunk yields the next node, or panics. It is the erased
// counterpart of Suspend's/BindSync's "th".
type erasedNodeThunk = func() *node

// erasedBind is flatMap's k, erased: A -> Program becomes any -> *node.
type erasedBind = func(any) *node

// erasedRegister is Async's register function, erased over the value type
// it eventually hands to innerCb.
type erasedRegister = func(s Scheduler, scope *StackedCancelable, inner rawCallback)

// node is the type-erased, immutable representation of a Program. Only the
// fields relevant to kind are populated, repurposing a handful of
// `any`-typed fields across several node kinds instead of allocating one
// struct type per variant.
type node struct {
	kind nodeKind

	value any   // kindNow
	err   error // kindFail

	once  *onceCell   // kindEvalOnce
	thunk erasedThunk // kindEvalAlways

	nodeThunk erasedNodeThunk // kindSuspend, kindBindSync: "th"
	bind      erasedBind      // kindBindSync, kindBindAsync: "k"

	register erasedRegister // kindAsync, kindBindAsync

	memo *memoNode // kindMemoized
}

func nowNode(v any) *node  { return &node{kind: kindNow, value: v} }
func failNode(e error) *node {
	if e == nil {
		e = errNilFailure
	}
	return &node{kind: kindFail, err: e}
}

// attemptCall invokes f, converting a recovered panic into a Fail node.
// A panic carrying a [Fatal] marker is re-raised rather than converted.
func attemptCall(f erasedNodeThunk) (result *node) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(Fatal); ok {
				panic(r)
			}
			result = failNode(toError(r))
		}
	}()
	return f()
}

// attemptApply is attemptCall specialized for applying a bind function to a
// value already in hand.
func attemptApply(k erasedBind, a any) *node {
	return attemptCall(func() *node { return k(a) })
}

// flatMapNode implements the program's rewrite table. It is the single
// place construction-time normalisation happens; Map, Then and the public
// FlatMap are built from it. Materialize is not: it builds an Async node
// that drives p through a nested run-loop (combinators.go).
func flatMapNode(n *node, k erasedBind) *node {
	switch n.kind {
	case kindNow:
		v := n.value
		return &node{kind: kindSuspend, nodeThunk: func() *node {
			return attemptApply(k, v)
		}}

	case kindFail:
		// Short-circuit: k is never invoked.
		return n

	case kindEvalOnce:
		once := n.once
		return &node{kind: kindSuspend, nodeThunk: func() *node {
			v, err := once.get()
			if err != nil {
				return failNode(err)
			}
			return attemptApply(k, v)
		}}

	case kindEvalAlways:
		th := n.thunk
		return &node{kind: kindSuspend, nodeThunk: func() *node {
			v := th()
			return attemptApply(k, v)
		}}

	case kindSuspend:
		// BindSync(th, k) — the run-loop applies attempt() around both the
		// thunk invocation and the later bind application, so no extra
		// wrapping belongs here; see run.go.
		return &node{kind: kindBindSync, nodeThunk: n.nodeThunk, bind: k}

	case kindMemoized:
		m := n
		return &node{kind: kindBindSync, nodeThunk: func() *node { return m }, bind: k}

	case kindBindSync:
		th, g := n.nodeThunk, n.bind
		return &node{kind: kindSuspend, nodeThunk: func() *node {
			return &node{kind: kindBindSync, nodeThunk: th, bind: func(x any) *node {
				return flatMapNode(g(x), k)
			}}
		}}

	case kindAsync:
		r := n.register
		return &node{kind: kindBindAsync, register: r, bind: k}

	case kindBindAsync:
		r, g := n.register, n.bind
		return &node{kind: kindSuspend, nodeThunk: func() *node {
			return &node{kind: kindBindAsync, register: r, bind: func(x any) *node {
				return flatMapNode(g(x), k)
			}}
		}}

	default:
		panic("task: unknown node kind in flatMapNode")
	}
}

// mapNode is flatMap(a -> attempt(Now(f(a)))).
func mapNode(n *node, f func(any) any) *node {
	return flatMapNode(n, func(a any) *node {
		return nowNode(f(a))
	})
}

// thenNode sequences n before next, discarding n's result.
func thenNode(n *node, next *node) *node {
	return flatMapNode(n, func(any) *node { return next })
}

var errNilFailure = nilFailureError{}

type nilFailureError struct{}

func (nilFailureError) Error() string { return "task: Fail called with nil error" }
