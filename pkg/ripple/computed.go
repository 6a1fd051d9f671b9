package ripple

import (
	"sync"
	"sync/atomic"
)

// Computed is a lazy, memoized derivation. It starts dirty and computes
// nothing until the first read. Upstream changes do not recompute it
// eagerly: the internal effect's scheduler only flips the dirty flag and
// notifies the computed's own dependents, so a chain of computeds stays
// lazy end to end.
//
// Reading Value inside another effect subscribes that effect to the
// computed, which is how upstream changes propagate outward even though the
// computed itself never runs on trigger.
type Computed[T any] struct {
	// dep holds the effects depending on this computed's value.
	dep depSet

	runner *Effect

	value   T
	valueMu sync.RWMutex

	// dirty marks the cached value stale. Starts true.
	dirty atomic.Bool
}

// NewComputed creates a computed around getter. The getter is not run until
// the first Value call.
//
// Example:
//
//	total := ripple.NewComputed(func() int {
//	    return prices.Len() // tracked
//	})
func NewComputed[T any](getter func() T) *Computed[T] {
	c := &Computed[T]{}
	c.dirty.Store(true)

	c.runner = NewEffect(func() any {
		return getter()
	}, Lazy(), WithScheduler(func(*Effect) {
		// Idempotent: repeated upstream changes while already dirty
		// notify nothing.
		if c.dirty.CompareAndSwap(false, true) {
			notifyDep(&c.dep)
		}
	}))

	return c
}

// Value returns the computed value, recomputing at most once per dirty
// transition, and subscribes the active effect to this computed.
func (c *Computed[T]) Value() T {
	trackDep(&c.dep)
	return c.resolve()
}

// Peek returns the value without subscribing. Still recomputes when dirty.
func (c *Computed[T]) Peek() T {
	return c.resolve()
}

// Dirty reports whether the next read will recompute.
func (c *Computed[T]) Dirty() bool {
	return c.dirty.Load()
}

// Stop disposes the internal effect; the computed keeps returning its last
// cached value but no longer observes upstream changes.
func (c *Computed[T]) Stop() {
	c.runner.Stop()
}

func (c *Computed[T]) resolve() T {
	if c.dirty.Load() {
		recordComputedRecompute()
		// Comma-ok: a getter over an interface type may legitimately
		// return nil, which a bare assertion would reject.
		v, _ := c.runner.Run().(T)

		c.valueMu.Lock()
		c.value = v
		c.valueMu.Unlock()

		c.dirty.Store(false)
	}

	c.valueMu.RLock()
	defer c.valueMu.RUnlock()
	return c.value
}
