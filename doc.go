// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package task provides a lazy, composable description of a
// possibly-asynchronous computation — a deferred effect — together with the
// run-loop that executes it.
//
// A [Task] is a value that, when run, eventually yields either a success of
// some type or a failure carrying an error. Construction builds an immutable
// program tree; nothing executes until the program is explicitly run with a
// [Scheduler] (an execution context) and a completion callback.
//
// # Design Philosophy
//
// task provides:
//   - A tagged-variant program tree (see node.go) instead of a class
//     hierarchy: every combinator rewrites the tree, it never performs a
//     runtime type check against an open set of subtypes.
//   - A stack-safe bind-stack trampoline (run.go): flatMap chains of
//     arbitrary depth run without growing the Go call stack, and respect a
//     per-scheduler yield budget so a single run never starves its executor.
//   - Type erasure at the bind boundary: program nodes and the functions
//     that sequence them operate on `any` internally; a type parameter is
//     recovered via assertion only at the typed boundaries — the public
//     combinators ([FlatMap], [Map], ...), the callback adapter, and result
//     conversion for [Future] and [SyncResult].
//
// # Core Operations
//
//   - [Now]: lift a pure value.
//   - [Fail]: a resolved failure.
//   - [FlatMap]: monadic sequencing — the operation whose rewrite rules keep
//     evaluation stack-safe (see node.go).
//   - [Map], [Then]: derived from FlatMap.
//   - [EvalOnce], [EvalAlways], [Suspend]: lazy constructors.
//
// # Run Entry Points
//
//   - [RunWithCallback]: deliver the result to a [Callback].
//   - [RunAsFuture]: obtain a [Future] plus a [CancelToken].
//   - [RunTryGetSync]: attempt a synchronous answer, falling back to a future.
//
// # Memoization
//
// [Memoize] caches the outcome of a Task's first evaluation (success or
// failure) and shares it — and the in-flight computation — across every
// subsequent and concurrent run of the memoized value. See memo.go.
//
// # Concurrency
//
// [ZipWith] and [FirstCompletedOf] run child computations under their own
// cancellation scopes, chained to the parent scope created by the run entry
// point; [Sequence] runs its children one after another inside the parent
// run, under the parent's scope. Cancelling the parent cancels every
// descendant;
// cancelling one sibling of [FirstCompletedOf] does not cancel the others —
// only the first arrival does, and it cancels the rest.
//
// # Error Handling
//
// A failure is reified as [Fail]; [Materialize] brings it into the value
// domain as an [Attempt] so it can be inspected and recovered from with
// ordinary [FlatMap]; [OnErrorHandleWith] is the common case built on top.
// Panics raised by user thunks and bind functions are recovered and
// converted to Fail at the smallest possible scope — see attemptCall in
// node.go and [IsFatal] in errors.go for what is deliberately never caught.
package task
