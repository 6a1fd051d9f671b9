package ripple

import (
	"sync"
	"testing"
)

func TestTrackingGoroutineIsolation(t *testing.T) {
	o := NewObject(map[string]any{"n": 0})

	start := make(chan struct{})
	inEffect := make(chan struct{})
	release := make(chan struct{})

	runs := 0
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		NewEffect(func() any {
			_ = o.Get("n")
			runs++
			if runs == 1 {
				close(inEffect)
				<-release
			}
			return nil
		})
	}()

	close(start)
	<-inEffect

	// While the effect is mid-run on another goroutine, a read here must
	// not be attributed to it.
	other := NewObject(map[string]any{"x": 1})
	_ = other.Get("x")

	close(release)
	wg.Wait()

	other.Set("x", 2)
	if runs != 1 {
		t.Errorf("cross-goroutine read was attributed, runs=%d", runs)
	}
}

func TestNoTrackingOutsideEffect(t *testing.T) {
	o := NewObject(map[string]any{"n": 0})

	// A bare read subscribes nothing; this write must dispatch nothing.
	_ = o.Get("n")
	o.Set("n", 1)

	if d := o.lookup("n"); d != nil && len(d.snapshot()) != 0 {
		t.Errorf("bare read created subscriptions: %d", len(d.snapshot()))
	}
}

func TestPauseTrackingRestoredAfterPanic(t *testing.T) {
	func() {
		defer func() { recover() }()
		Untracked(func() {
			panic("boom")
		})
	}()

	if trackingPaused() {
		t.Error("tracking left paused after panicking Untracked")
	}
}

func TestNestedUntracked(t *testing.T) {
	Untracked(func() {
		Untracked(func() {
			if !trackingPaused() {
				t.Error("expected tracking paused inside nested Untracked")
			}
		})
		if !trackingPaused() {
			t.Error("inner Untracked resumed tracking early")
		}
	})
	if trackingPaused() {
		t.Error("tracking still paused after outermost Untracked")
	}
}

func TestEffectStackRestoredAfterPanic(t *testing.T) {
	o := NewObject(map[string]any{"n": 0})

	func() {
		defer func() { recover() }()
		e := NewEffect(func() any {
			panic("effect failure")
		}, Lazy())
		e.Run()
	}()

	// The active stack must be clean: this read subscribes nothing.
	_ = o.Get("n")
	if d := o.lookup("n"); d != nil && len(d.snapshot()) != 0 {
		t.Error("panicking effect left itself active")
	}
}
