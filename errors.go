// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package task

import "fmt"

// Attempt is a resolved program: either a success of A or a failure
// carrying an error. It is the value-domain counterpart of Now/Fail,
// produced by [Materialize] and consumed by [Dematerialize].
type Attempt[A any] struct {
	value   A
	err     error
	isValue bool
}

// Success wraps a successful value as an Attempt.
func Success[A any](a A) Attempt[A] {
	return Attempt[A]{value: a, isValue: true}
}

// Failure wraps an error as an Attempt.
func Failure[A any](err error) Attempt[A] {
	return Attempt[A]{err: err}
}

// IsSuccess reports whether the Attempt holds a value.
func (a Attempt[A]) IsSuccess() bool { return a.isValue }

// IsFailure reports whether the Attempt holds an error.
func (a Attempt[A]) IsFailure() bool { return !a.isValue }

// Value returns the success value and true, or the zero value and false.
func (a Attempt[A]) Value() (A, bool) {
	return a.value, a.isValue
}

// Err returns the failure error, or nil if this Attempt is a success.
func (a Attempt[A]) Err() error { return a.err }

// MapAttempt applies f to a successful Attempt, leaving a failure untouched.
func MapAttempt[A, B any](a Attempt[A], f func(A) B) Attempt[B] {
	if a.isValue {
		return Success(f(a.value))
	}
	return Failure[B](a.err)
}

// FlatMapAttempt sequences a to f when a is a success, short-circuiting a
// failure.
func FlatMapAttempt[A, B any](a Attempt[A], f func(A) Attempt[B]) Attempt[B] {
	if a.isValue {
		return f(a.value)
	}
	return Failure[B](a.err)
}

// Fatal marks an error as non-recoverable: a thunk or bind function that
// panics with a Fatal value is never converted to a [Fail] node — the panic
// is re-raised and allowed to terminate the executing goroutine instead of
// ever being captured.
//
// In Go, true runtime fatal conditions (stack overflow, out-of-memory) are
// already unrecoverable and never reach recover() at all, so Fatal exists
// for the cases user code wants to opt a specific error into that same
// treatment explicitly (see DESIGN.md, Open Question O1).
type Fatal struct {
	Err error
}

func (f Fatal) Error() string { return "fatal: " + f.Err.Error() }
func (f Fatal) Unwrap() error { return f.Err }

// IsFatal reports whether err is, or wraps, a [Fatal] marker.
func IsFatal(err error) bool {
	var f Fatal
	return asFatal(err, &f)
}

func asFatal(err error, target *Fatal) bool {
	for err != nil {
		if f, ok := err.(Fatal); ok {
			*target = f
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// toError converts a recovered panic value into an error. Values that are
// already errors pass through unchanged so that callers can distinguish a
// propagated error from an unrelated panic by inspecting its type.
func toError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("task: panic: %v", r)
}
