package ripple

import "sync/atomic"

// Cleanup is a function that releases something set up earlier: a watcher,
// a subscription, an owned resource. Scopes run cleanups on dispose.
type Cleanup func()

// WatchOption configures Watch.
type WatchOption interface {
	isWatchOption()
	applyWatch(c *watchConfig)
}

type watchConfig struct {
	immediate bool
	queue     *Queue
}

type watchOptionFunc func(*watchConfig)

func (f watchOptionFunc) isWatchOption()            {}
func (f watchOptionFunc) applyWatch(c *watchConfig) { f(c) }

// Immediate fires the callback once right away, with the initial value as
// newVal and nil as oldVal, before any change occurs.
func Immediate() WatchOption {
	return watchOptionFunc(func(c *watchConfig) {
		c.immediate = true
	})
}

// WithQueue defers the watch job through q instead of running it
// synchronously on trigger. Multiple triggers within one flush window
// collapse into a single callback observing the final value.
func WithQueue(q *Queue) WatchOption {
	return watchOptionFunc(func(c *watchConfig) {
		c.queue = q
	})
}

// funcJob adapts a plain function to the Job interface so Watch jobs can
// share a Queue with effects. The stable ID makes repeated triggers of the
// same watcher dedupe to one run per flush.
type funcJob struct {
	id uint64
	fn func()
}

func (j *funcJob) ID() uint64 { return j.id }
func (j *funcJob) Run() any   { j.fn(); return nil }

// Watch observes source and calls cb(newVal, oldVal) when it changes.
//
// Source is either a getter func() any, or a reactive value (*Object,
// *List, or a ref), in which case the effective getter deeply traverses it
// so every nested property is tracked.
//
// Without Immediate, the first run only seeds the old value; cb fires on
// the first change. The returned Cleanup stops the watcher.
//
// Example:
//
//	stop := ripple.Watch(func() any { return user.Get("name") },
//	    func(newVal, oldVal any) {
//	        log.Printf("name: %v -> %v", oldVal, newVal)
//	    })
//	defer stop()
func Watch(source any, cb func(newVal, oldVal any), opts ...WatchOption) Cleanup {
	var cfg watchConfig
	for _, opt := range opts {
		opt.applyWatch(&cfg)
	}

	var getter func() any
	switch s := source.(type) {
	case func() any:
		getter = s
	default:
		getter = func() any {
			return traverse(source, make(map[any]bool))
		}
	}

	var (
		runner *Effect
		oldVal any
	)

	job := func() {
		if runner.Stopped() {
			return
		}
		newVal := runner.Run()
		cb(newVal, oldVal)
		oldVal = newVal
	}

	var sched func(*Effect)
	if cfg.queue != nil {
		j := &funcJob{id: nextID(), fn: job}
		sched = func(*Effect) {
			cfg.queue.Enqueue(j)
		}
	} else {
		sched = func(*Effect) {
			job()
		}
	}

	runner = NewEffect(func() any {
		return getter()
	}, Lazy(), WithScheduler(sched))

	if cfg.immediate {
		job()
	} else {
		oldVal = runner.Run()
	}

	var stopped atomic.Bool
	stop := func() {
		if stopped.Swap(true) {
			return
		}
		runner.Stop()
	}

	if scope := currentScope(); scope != nil {
		scope.OnCleanup(stop)
	}

	return stop
}

// traverse forces a tracked read of every nested property of a reactive
// value. Cycles are guarded with a seen set keyed by container identity.
func traverse(v any, seen map[any]bool) any {
	switch t := v.(type) {
	case *Object:
		if seen[t] {
			return v
		}
		seen[t] = true
		for _, k := range t.Keys() {
			traverse(t.Get(k), seen)
		}
	case *List:
		if seen[t] {
			return v
		}
		seen[t] = true
		n := t.Len()
		for i := 0; i < n; i++ {
			traverse(t.Get(i), seen)
		}
	case anyRef:
		if seen[t] {
			return v
		}
		seen[t] = true
		traverse(t.refAny(), seen)
	}
	return v
}
