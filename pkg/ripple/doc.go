// Package ripple provides a fine-grained reactive dependency-tracking engine.
//
// Reads of reactive state automatically record which effects depend on them,
// and writes automatically re-run exactly those effects. Laziness is provided
// by Computed, deferred batched re-execution by Queue and Watch, and value
// boxing by Ref.
//
// # Core Types
//
// Object and List are accessor-wrapped aggregates. Reading a key during an
// effect subscribes the effect to that key; writing notifies subscribers:
//
//	state := ripple.NewObject(map[string]any{"count": 0})
//	ripple.NewEffect(func() any {
//	    fmt.Println("count is", state.Get("count"))
//	    return nil
//	})
//	state.Set("count", 1) // effect re-runs
//
// Computed[T] is a lazy, memoized derivation:
//
//	doubled := ripple.NewComputed(func() int { return counter.Value() * 2 })
//	v := doubled.Value() // recomputes only if dependencies changed
//
// Watch observes a source and reports old/new value pairs:
//
//	stop := ripple.Watch(func() any { return state.Get("count") },
//	    func(newVal, oldVal any) { fmt.Println(oldVal, "->", newVal) })
//
// # Scheduling
//
// A per-effect scheduler decides when a triggered effect runs. Queue provides
// the batching policy: enqueued jobs are deduplicated and drained once per
// flush. Batch collapses multiple synchronous writes into one notification
// phase.
//
// # Thread Safety
//
// All primitives are safe for concurrent access. The tracking context is
// per-goroutine, so effect attribution never crosses goroutines.
package ripple
