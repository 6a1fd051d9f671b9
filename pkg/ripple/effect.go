package ripple

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Effect wraps a computation as a trackable, re-runnable unit.
// Reads performed while the effect runs subscribe it to the values read;
// writes to those values re-run the effect, either synchronously or through
// its scheduler.
//
// Effects run immediately when created unless the Lazy option is given.
// Before every run the effect removes itself from every dependency set it
// joined on the previous run, so conditional reads drop stale subscriptions
// instead of accumulating them.
type Effect struct {
	id uint64

	// fn is the tracked computation. Its result is returned by Run, which
	// lets Computed reuse the effect as its recompute engine.
	fn func() any

	// scheduler, when set, replaces the synchronous run on trigger.
	// It receives the effect itself and decides execution policy.
	scheduler func(*Effect)

	// lazy suppresses the initial run on creation.
	lazy bool

	// onStop runs once when the effect is stopped.
	onStop func()

	// sources is the reverse index: every dependency set currently holding
	// this effect. Needed for cleanup before each re-run.
	sources   []*depSet
	sourcesMu sync.Mutex

	// pending indicates the effect is sitting in a Queue.
	pending atomic.Bool

	// stopped indicates the effect was explicitly disposed.
	stopped atomic.Bool
}

// EffectOption configures an Effect at creation.
type EffectOption interface {
	isEffectOption()
	applyEffect(e *Effect)
}

type effectOptionFunc func(*Effect)

func (f effectOptionFunc) isEffectOption()       {}
func (f effectOptionFunc) applyEffect(e *Effect) { f(e) }

// Lazy suppresses the immediate first run. The caller invokes Run on demand;
// Computed uses this to defer its first computation to the first read.
func Lazy() EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.lazy = true
	})
}

// WithScheduler replaces synchronous re-execution on trigger: instead of
// running, the effect is handed to fn, which decides when (and whether) to
// run it. Pair with Queue for deduplicated batched execution:
//
//	q := ripple.NewQueue()
//	ripple.NewEffect(render, ripple.WithScheduler(func(e *ripple.Effect) {
//	    q.Enqueue(e)
//	}))
func WithScheduler(fn func(*Effect)) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.scheduler = fn
	})
}

// OnStop registers a function that runs once when the effect is stopped.
func OnStop(fn func()) EffectOption {
	return effectOptionFunc(func(e *Effect) {
		e.onStop = fn
	})
}

// NewEffect creates an effect around fn and, unless Lazy is given, runs it
// immediately. The returned handle re-invokes the computation via Run.
// If a Scope is current, the effect is registered with it and stopped when
// the scope is disposed.
func NewEffect(fn func() any, opts ...EffectOption) *Effect {
	e := &Effect{
		id: nextID(),
		fn: fn,
	}

	for _, opt := range opts {
		opt.applyEffect(e)
	}

	if scope := currentScope(); scope != nil {
		scope.register(e)
	}

	if !e.lazy {
		e.Run()
	}

	return e
}

// ID returns the unique identifier for this effect.
// Satisfies the Job interface for Queue deduplication.
func (e *Effect) ID() uint64 {
	return e.id
}

// Stopped reports whether the effect has been stopped.
func (e *Effect) Stopped() bool {
	return e.stopped.Load()
}

// Run executes the computation with tracking and returns its result.
//
// The sequence is: drop all previous dependency memberships, push this
// effect onto the goroutine's active stack, run fn (fresh reads repopulate
// the memberships), pop the stack restoring the previous active effect.
// The pop is deferred so a panicking computation cannot corrupt attribution
// for outer effects.
//
// Running a stopped effect executes fn untracked.
func (e *Effect) Run() any {
	if e.stopped.Load() {
		pauseTracking()
		defer resumeTracking()
		return e.fn()
	}

	e.pending.Store(false)
	e.clearSources()

	pushEffect(e)
	defer popEffect()

	if Debug.LogEffectRuns {
		fmt.Printf("[EFFECT] run id=%d\n", e.id)
	}

	recordEffectRun()
	probeEffectRan(e.id)
	return e.fn()
}

// invoke is the trigger path: route through the scheduler if one is set,
// otherwise run synchronously.
func (e *Effect) invoke() {
	if e.stopped.Load() {
		return
	}
	if e.scheduler != nil {
		e.scheduler(e)
		return
	}
	e.Run()
}

// addSource records membership in a dependency set for later cleanup.
// Called by containers when this effect is subscribed during a run.
func (e *Effect) addSource(d *depSet) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()
	e.sources = append(e.sources, d)
}

// clearSources removes the effect from every dependency set it belongs to
// and resets the reverse index.
func (e *Effect) clearSources() {
	e.sourcesMu.Lock()
	sources := e.sources
	e.sources = nil
	e.sourcesMu.Unlock()

	for _, d := range sources {
		d.remove(e)
	}
}

// Stop disposes the effect: it is removed from every dependency set, will
// never be notified again, and its OnStop callback (if any) runs once.
// Stop is idempotent.
func (e *Effect) Stop() {
	if e.stopped.Swap(true) {
		return
	}

	e.clearSources()

	if e.onStop != nil {
		e.onStop()
		e.onStop = nil
	}
}
