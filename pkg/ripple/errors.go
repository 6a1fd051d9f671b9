package ripple

import "errors"

// ErrBudgetExceeded is returned by Queue.Flush when the per-flush run
// budget is exhausted. Remaining jobs stay queued for the next flush.
//
// Hitting this budget almost always means an effect cascade: effects whose
// runs trigger further effects without converging. The budget turns a
// would-be infinite drain into a visible error.
var ErrBudgetExceeded = errors.New("ripple: flush budget exceeded")

// ErrQueueClosed is returned by Queue.Flush after Close.
var ErrQueueClosed = errors.New("ripple: queue closed")

// ErrReadOnlyWrite is the panic value for writes to a read-only container
// when DebugMode is set. In production the write is silently dropped.
var ErrReadOnlyWrite = errors.New("ripple: write to read-only container")
