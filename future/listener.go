package future

// Listener is notified exactly once when the Future it was added to
// becomes done. It is invoked with the future itself so it can read the
// final value or cause via GetNow/Cause.
type Listener[V any] func(f *Future[V])
