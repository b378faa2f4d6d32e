// Package cancel provides a process-wide cooperative cancellation flag.
//
// The install pipeline's driver is single-threaded cooperative: one flag,
// set by the interrupt handler, is polled at every suspension point (HTTP
// chunk reads, blocking-worker dispatches, pipeline Advance calls). There is
// deliberately one central flag rather than per-call context cancellation
// tokens, matching the single-process, single-install-at-a-time model.
package cancel

import "sync/atomic"

var cancelled atomic.Bool

// SetCancelled marks the process as cancelled. Idempotent.
func SetCancelled() {
	cancelled.Store(true)
}

// IsCancelled reports whether cancellation has been requested.
func IsCancelled() bool {
	return cancelled.Load()
}

// reset clears the cancellation flag. Used by this package's own tests;
// production code never uncancels a process.
func reset() {
	cancelled.Store(false)
}

// Guard runs fn unless cancellation has already been observed, returning
// (result, cancelled, err); the flag is not checked again after fn returns.
// It is the Go-idiomatic equivalent of wrapping a
// future so every suspension point polls the flag first: since Go has no
// async combinators to intercept, callers invoke Guard immediately before
// each blocking step instead of polling inside an executor.
func Guard[T any](fn func() (T, error)) (result T, cancelled bool, err error) {
	if IsCancelled() {
		cancelled = true
		return
	}
	result, err = fn()
	return result, false, err
}
