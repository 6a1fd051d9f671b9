package ripple

import "sync/atomic"

// Probe receives low-level runtime events: effect executions, trigger
// dispatches, and flush boundaries. Intended for inspection tooling and
// tests; the hooks fire synchronously on the goroutine doing the work, so
// implementations must be fast and must not touch reactive state.
type Probe interface {
	// EffectRan reports that the effect with the given ID executed.
	EffectRan(id uint64)

	// Triggered reports a dispatch against key that notified n effects.
	Triggered(key string, n int)

	// FlushBegan reports the start of a queue flush.
	FlushBegan()

	// FlushEnded reports the end of a queue flush: jobs run and the flush
	// error, if any.
	FlushEnded(jobs int, err error)
}

// globalProbe holds the installed probe. Nil means no probe.
var globalProbe atomic.Pointer[Probe]

// SetProbe installs p as the runtime probe, replacing any previous one.
// Pass nil to remove the probe.
func SetProbe(p Probe) {
	if p == nil {
		globalProbe.Store(nil)
		return
	}
	globalProbe.Store(&p)
}

func probeEffectRan(id uint64) {
	if p := globalProbe.Load(); p != nil {
		(*p).EffectRan(id)
	}
}

func probeTriggered(key string, n int) {
	if p := globalProbe.Load(); p != nil {
		(*p).Triggered(key, n)
	}
}

func probeFlushBegan() {
	if p := globalProbe.Load(); p != nil {
		(*p).FlushBegan()
	}
}

func probeFlushEnded(jobs int, err error) {
	if p := globalProbe.Load(); p != nil {
		(*p).FlushEnded(jobs, err)
	}
}
