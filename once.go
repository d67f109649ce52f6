// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import (
	"sync"
	"sync/atomic"
)

// onceCell caches an EvalOnce thunk's result across every run of the Task
// that holds it — not just within a single run. The thunk must run at most
// once across all runs of the returned program, which a per-run cache
// cannot provide, so the cell lives on the node itself and is shared by
// every caller holding that Task value.
//
// Unlike the memoized node (memo.go), EvalOnce has no waiter fan-out: its
// thunk is a plain synchronous computation, not itself a Task, so a mutex
// held only around the thunk call is sufficient (see DESIGN.md).
type onceCell struct {
	mu    sync.Mutex
	done  atomic.Bool
	value any
	err   error
	thunk erasedThunk
}

func newOnceCell(thunk erasedThunk) *onceCell {
	return &onceCell{thunk: thunk}
}

// get returns the cached (value, err) pair, computing and caching it on
// first call. A panic raised by the thunk is converted to err unless it
// carries a Fatal marker, in which case it is re-raised.
func (c *onceCell) get() (v any, err error) {
	if c.done.Load() {
		return c.value, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done.Load() {
		return c.value, c.err
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(Fatal); ok {
					c.thunk = nil
					panic(r)
				}
				err = toError(r)
			}
		}()
		v = c.thunk()
	}()
	c.value, c.err = v, err
	c.thunk = nil
	c.done.Store(true)
	return v, err
}
