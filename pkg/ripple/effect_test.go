package ripple

import "testing"

func TestEffectRunsImmediately(t *testing.T) {
	runs := 0
	NewEffect(func() any {
		runs++
		return nil
	})

	if runs != 1 {
		t.Errorf("expected 1 immediate run, got %d", runs)
	}
}

func TestEffectLazy(t *testing.T) {
	runs := 0
	e := NewEffect(func() any {
		runs++
		return "result"
	}, Lazy())

	if runs != 0 {
		t.Fatalf("lazy effect ran on creation, runs=%d", runs)
	}

	if got := e.Run(); got != "result" {
		t.Errorf("expected result, got %v", got)
	}
	if runs != 1 {
		t.Errorf("expected 1 run, got %d", runs)
	}
}

func TestEffectStaleDependencyCleanup(t *testing.T) {
	o := NewObject(map[string]any{"useA": true, "a": 1, "b": 2})

	runs := 0
	NewEffect(func() any {
		runs++
		if o.Get("useA").(bool) {
			return o.Get("a")
		}
		return o.Get("b")
	})

	// Branch on a: writes to b are invisible.
	o.Set("b", 20)
	if runs != 1 {
		t.Errorf("write to unread branch re-ran effect, runs=%d", runs)
	}

	// Flip the branch.
	o.Set("useA", false)
	if runs != 2 {
		t.Fatalf("expected 2 runs after branch flip, got %d", runs)
	}

	// Now a is stale: writes to a must be invisible.
	o.Set("a", 10)
	if runs != 2 {
		t.Errorf("write to stale dependency re-ran effect, runs=%d", runs)
	}

	// And b is live.
	o.Set("b", 30)
	if runs != 3 {
		t.Errorf("write to live branch did not re-run effect, runs=%d", runs)
	}
}

func TestEffectNestingAttribution(t *testing.T) {
	outer := NewObject(map[string]any{"v": 0})
	inner := NewObject(map[string]any{"v": 0})

	outerRuns := 0
	innerRuns := 0

	NewEffect(func() any {
		outerRuns++
		_ = outer.Get("v")

		NewEffect(func() any {
			innerRuns++
			_ = inner.Get("v")
			return nil
		})
		return nil
	})

	if outerRuns != 1 || innerRuns != 1 {
		t.Fatalf("expected 1 run each, got outer=%d inner=%d", outerRuns, innerRuns)
	}

	// The inner dependency belongs to the inner effect only.
	inner.Set("v", 1)
	if outerRuns != 1 {
		t.Errorf("inner write re-ran outer effect, outerRuns=%d", outerRuns)
	}
	if innerRuns != 2 {
		t.Errorf("inner write did not re-run inner effect, innerRuns=%d", innerRuns)
	}

	// The outer dependency belongs to the outer effect.
	outer.Set("v", 1)
	if outerRuns != 2 {
		t.Errorf("outer write did not re-run outer effect, outerRuns=%d", outerRuns)
	}
}

func TestEffectScheduler(t *testing.T) {
	o := NewObject(map[string]any{"n": 0})

	runs := 0
	scheduled := 0
	e := NewEffect(func() any {
		runs++
		_ = o.Get("n")
		return nil
	}, WithScheduler(func(e *Effect) {
		scheduled++
	}))

	if runs != 1 {
		t.Fatalf("expected immediate first run, got %d", runs)
	}

	// Triggers route through the scheduler instead of running.
	o.Set("n", 1)
	if runs != 1 {
		t.Errorf("trigger ran effect despite scheduler, runs=%d", runs)
	}
	if scheduled != 1 {
		t.Errorf("expected 1 scheduler call, got %d", scheduled)
	}

	// The scheduler decides when to run.
	e.Run()
	if runs != 2 {
		t.Errorf("expected 2 runs after manual Run, got %d", runs)
	}
}

func TestEffectStop(t *testing.T) {
	o := NewObject(map[string]any{"n": 0})

	runs := 0
	stopped := 0
	e := NewEffect(func() any {
		runs++
		_ = o.Get("n")
		return nil
	}, OnStop(func() {
		stopped++
	}))

	e.Stop()
	if stopped != 1 {
		t.Errorf("expected OnStop to run once, got %d", stopped)
	}

	o.Set("n", 1)
	if runs != 1 {
		t.Errorf("stopped effect re-ran, runs=%d", runs)
	}

	// Idempotent.
	e.Stop()
	if stopped != 1 {
		t.Errorf("OnStop ran again on second Stop, got %d", stopped)
	}

	if !e.Stopped() {
		t.Error("expected Stopped to report true")
	}

	// A stopped effect still computes, untracked.
	if got := e.Run(); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if runs != 2 {
		t.Errorf("expected manual run of stopped effect, runs=%d", runs)
	}
	o.Set("n", 2)
	if runs != 2 {
		t.Errorf("stopped effect resubscribed during Run, runs=%d", runs)
	}
}

func TestUntrackedRead(t *testing.T) {
	o := NewObject(map[string]any{"n": 0})

	runs := 0
	NewEffect(func() any {
		runs++
		Untracked(func() {
			_ = o.Get("n")
		})
		return nil
	})

	o.Set("n", 1)
	if runs != 1 {
		t.Errorf("untracked read created a subscription, runs=%d", runs)
	}
}

func TestWriteWhilePausedDoesNotNotify(t *testing.T) {
	o := NewObject(map[string]any{"n": 0})

	runs := 0
	NewEffect(func() any {
		runs++
		_ = o.Get("n")
		return nil
	})

	Untracked(func() {
		o.Set("n", 1)
	})

	if runs != 1 {
		t.Errorf("paused write notified, runs=%d", runs)
	}
	// The write itself applied.
	if got := o.Get("n"); got != 1 {
		t.Errorf("paused write was dropped, got %v", got)
	}
}
