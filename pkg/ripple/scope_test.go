package ripple

import "testing"

func TestScopeStopsEffectsOnDispose(t *testing.T) {
	o := NewObject(map[string]any{"n": 0})
	scope := NewScope(nil)

	runs := 0
	scope.Run(func() {
		NewEffect(func() any {
			_ = o.Get("n")
			runs++
			return nil
		})
	})

	o.Set("n", 1)
	if runs != 2 {
		t.Fatalf("expected 2 runs before dispose, got %d", runs)
	}

	scope.Dispose()
	o.Set("n", 2)
	if runs != 2 {
		t.Errorf("disposed scope's effect re-ran, runs=%d", runs)
	}
	if !scope.IsDisposed() {
		t.Error("expected IsDisposed true")
	}
}

func TestScopeCleanupOrder(t *testing.T) {
	scope := NewScope(nil)

	var order []int
	scope.OnCleanup(func() { order = append(order, 1) })
	scope.OnCleanup(func() { order = append(order, 2) })
	scope.OnCleanup(func() { order = append(order, 3) })

	scope.Dispose()

	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Errorf("expected reverse order [3 2 1], got %v", order)
	}

	// Dispose is idempotent.
	scope.Dispose()
	if len(order) != 3 {
		t.Errorf("cleanups ran again on second dispose, got %v", order)
	}

	// Cleanup after dispose runs immediately.
	ran := false
	scope.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("cleanup registered after dispose did not run")
	}
}

func TestScopeChildDisposal(t *testing.T) {
	o := NewObject(map[string]any{"n": 0})

	parent := NewScope(nil)
	var child *Scope

	childRuns := 0
	parent.Run(func() {
		child = NewScope(parent)
		child.Run(func() {
			NewEffect(func() any {
				_ = o.Get("n")
				childRuns++
				return nil
			})
		})
	})

	if child.Parent() != parent {
		t.Error("expected child to know its parent")
	}

	// Disposing the parent disposes the child.
	parent.Dispose()
	if !child.IsDisposed() {
		t.Error("child not disposed with parent")
	}

	o.Set("n", 1)
	if childRuns != 1 {
		t.Errorf("child scope's effect survived disposal, runs=%d", childRuns)
	}
}

func TestScopeChildDisposeDetaches(t *testing.T) {
	parent := NewScope(nil)
	child := NewScope(parent)

	child.Dispose()

	// Disposing the parent afterwards must not re-dispose or panic.
	parent.Dispose()
	if !parent.IsDisposed() {
		t.Error("parent not disposed")
	}
}

func TestScopeImplicitParent(t *testing.T) {
	parent := NewScope(nil)

	var child *Scope
	parent.Run(func() {
		child = NewScope(nil)
	})

	if child.Parent() != parent {
		t.Fatal("scope created during Run did not attach to the current scope")
	}

	parent.Dispose()
	if !child.IsDisposed() {
		t.Error("implicit child not disposed with parent")
	}
}

func TestScopeRunRestoresPrevious(t *testing.T) {
	outer := NewScope(nil)
	inner := NewScope(nil)

	outer.Run(func() {
		inner.Run(func() {
			if currentScope() != inner {
				t.Error("expected inner scope current")
			}
		})
		if currentScope() != outer {
			t.Error("expected outer scope restored")
		}
	})
	if currentScope() != nil {
		t.Error("expected no scope current after Run")
	}
}

func TestWatchStopsWithScope(t *testing.T) {
	o := NewObject(map[string]any{"n": 0})
	scope := NewScope(nil)

	calls := 0
	scope.Run(func() {
		Watch(func() any {
			return o.Get("n")
		}, func(newVal, oldVal any) {
			calls++
		})
	})

	o.Set("n", 1)
	if calls != 1 {
		t.Fatalf("expected 1 callback, got %d", calls)
	}

	scope.Dispose()
	o.Set("n", 2)
	if calls != 1 {
		t.Errorf("watcher survived scope disposal, calls=%d", calls)
	}
}
