package ripple

import (
	"fmt"
	"sync"
)

// Job is a unit of deferred work a Queue can hold. Effects satisfy Job, so
// a queue's Enqueue can be used directly as an effect scheduler.
type Job interface {
	// ID is used for deduplication: a job already pending is not enqueued
	// a second time.
	ID() uint64

	// Run executes the job.
	Run() any
}

// Queue is the batching scheduler: a deduplicating pending-job list drained
// whole by Flush. Triggers that collapse onto the same job within one flush
// window produce exactly one execution, observing the final state. Jobs
// enqueued while a flush is draining join the current drain; a second flush
// is never started concurrently.
//
// Go has no microtask queue, so flushing is host-driven by default: the
// owner of the event loop calls Flush after processing a turn. WithAutoFlush
// starts a background goroutine that flushes after every enqueue instead.
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pending  []Job
	ids      map[uint64]bool
	flushing bool
	closed   bool

	// budget caps job runs per flush; 0 means unlimited.
	budget int

	auto bool
	wake chan struct{}
}

// QueueOption configures a Queue.
type QueueOption interface {
	isQueueOption()
	applyQueue(q *Queue)
}

type queueOptionFunc func(*Queue)

func (f queueOptionFunc) isQueueOption()      {}
func (f queueOptionFunc) applyQueue(q *Queue) { f(q) }

// WithFlushBudget caps the number of job runs in a single flush. When the
// cap is hit the flush stops with ErrBudgetExceeded, leaving the rest
// queued. Protects against non-converging effect cascades.
func WithFlushBudget(n int) QueueOption {
	return queueOptionFunc(func(q *Queue) {
		q.budget = n
	})
}

// WithAutoFlush starts a background flusher: every enqueue wakes it and it
// drains the queue. Callers that need a drain barrier use Wait.
func WithAutoFlush() QueueOption {
	return queueOptionFunc(func(q *Queue) {
		q.auto = true
	})
}

// NewQueue creates a job queue.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		ids: make(map[uint64]bool),
	}
	q.cond = sync.NewCond(&q.mu)

	for _, opt := range opts {
		opt.applyQueue(q)
	}

	if q.auto {
		q.wake = make(chan struct{}, 1)
		go q.autoFlushLoop()
	}

	return q
}

// Enqueue adds job to the pending set unless it is already there.
// Safe to call from any goroutine, including from inside a running flush.
func (q *Queue) Enqueue(job Job) {
	q.mu.Lock()
	if q.closed || q.ids[job.ID()] {
		q.mu.Unlock()
		return
	}
	q.ids[job.ID()] = true
	q.pending = append(q.pending, job)
	q.mu.Unlock()

	recordQueueJob()

	if q.auto {
		select {
		case q.wake <- struct{}{}:
		default:
		}
	}
}

// EnqueueEffect adapts Enqueue to the effect scheduler signature:
//
//	ripple.NewEffect(fn, ripple.WithScheduler(q.EnqueueEffect))
func (q *Queue) EnqueueEffect(e *Effect) {
	q.Enqueue(e)
}

// Flush drains the entire pending set, running each distinct job once per
// flush window, in the order schedulers first inserted them. Jobs enqueued
// mid-drain are picked up by the same drain. If a flush is already in
// progress the call returns immediately; the in-progress drain will see any
// newly queued jobs.
//
// Bookkeeping (flushing flag) is restored even when a job panics, so one
// failing job cannot wedge subsequent flushes; the panic propagates to the
// caller after cleanup.
func (q *Queue) Flush() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	if q.flushing {
		q.mu.Unlock()
		return nil
	}
	q.flushing = true
	q.mu.Unlock()

	if Debug.LogFlushes {
		fmt.Printf("[FLUSH] begin pending=%d\n", q.Pending())
	}

	probeFlushBegan()
	span := startFlushSpan()

	runs := 0
	var err error

	defer func() {
		q.mu.Lock()
		q.flushing = false
		q.cond.Broadcast()
		q.mu.Unlock()

		if Debug.LogFlushes {
			fmt.Printf("[FLUSH] end runs=%d err=%v\n", runs, err)
		}

		recordQueueFlush(runs)
		probeFlushEnded(runs, err)
		endFlushSpan(span, runs, err)
	}()

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return nil
		}
		if q.budget > 0 && runs >= q.budget {
			q.mu.Unlock()
			if Debug.LogBudget {
				println("ripple: flush budget exceeded")
			}
			err = ErrBudgetExceeded
			return err
		}
		job := q.pending[0]
		q.pending = q.pending[1:]
		delete(q.ids, job.ID())
		q.mu.Unlock()

		runs++
		job.Run()
	}
}

// Wait blocks until the queue is idle: nothing pending and no flush in
// progress. Only meaningful with WithAutoFlush.
func (q *Queue) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.pending) > 0 || q.flushing {
		q.cond.Wait()
	}
}

// Pending returns the number of jobs waiting to run.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close stops the queue. Pending jobs are discarded; later enqueues are
// no-ops and Flush returns ErrQueueClosed.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.pending = nil
	q.ids = make(map[uint64]bool)
	if q.auto {
		close(q.wake)
	}
	q.cond.Broadcast()
}

// autoFlushLoop drains the queue whenever an enqueue wakes it.
func (q *Queue) autoFlushLoop() {
	for range q.wake {
		_ = q.Flush()

		// A flush already in progress returned early above; make sure jobs
		// enqueued in the gap are not stranded.
		q.mu.Lock()
		again := len(q.pending) > 0 && !q.flushing && !q.closed
		q.mu.Unlock()
		if again {
			_ = q.Flush()
		}
	}
}
