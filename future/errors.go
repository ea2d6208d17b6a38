package future

import "github.com/cockroachdb/errors"

// ErrCancelled is the cause reported by Cause and returned by Get/Await
// when a Future was completed via Cancel, distinct from a generic
// execution failure set via SetFailure.
var ErrCancelled = errors.New("future: cancelled")

// ErrTooManyWaiters is returned by Await/Get when the number of goroutines
// already blocked waiting on a Future has reached maxWaiters.
var ErrTooManyWaiters = errors.New("future: too many waiters")

// ErrAlreadyCompleted is the panic value of SetSuccess/SetFailure when the
// future is already done and cannot be re-completed. A future that is only
// marked uncancellable is not done and can still be completed.
var ErrAlreadyCompleted = errors.New("future: already completed")

// ErrTimeout is returned by GetTimeout/AwaitTimeout when the deadline
// elapses before the future completes.
var ErrTimeout = errors.New("future: timed out waiting for completion")
