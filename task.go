// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

// Task is a description of a deferred, possibly asynchronous computation
// producing an A or failing with an error. Building
// a Task never runs anything; only a run entry point — RunWithCallback,
// RunAsFuture, RunTryGetSync — does. A Task value is safe to run any number
// of times, from any number of goroutines, concurrently: running it never
// mutates the Task itself, only the fresh run state created for that run.
//
// Task wraps an internal, non-generic node tree so that the run-loop can
// stay a single ordinary function instead of being instantiated once per A.
// A is recovered via type assertion only at the typed boundaries (the
// combinators in combinators.go, the callback adapter in callback.go, and
// result conversion in run.go); once a value
// enters the node tree it travels as any until a terminal callback recovers
// its real type at the boundary.
type Task[A any] struct {
	n *node
}
