package ripple

import "testing"

func TestListBasic(t *testing.T) {
	l := NewList([]any{"a", "b", "c"})

	if l.Len() != 3 {
		t.Errorf("expected length 3, got %d", l.Len())
	}
	if got := l.Get(0); got != "a" {
		t.Errorf("expected a, got %v", got)
	}
	if got := l.Get(5); got != nil {
		t.Errorf("expected nil for out-of-range read, got %v", got)
	}
	if got := l.Get(-1); got != nil {
		t.Errorf("expected nil for negative index, got %v", got)
	}

	l.Set(1, "B")
	if got := l.Get(1); got != "B" {
		t.Errorf("expected B, got %v", got)
	}
}

func TestListIndexTrackTrigger(t *testing.T) {
	l := NewList([]any{10, 20, 30})

	runs := 0
	NewEffect(func() any {
		_ = l.Get(1)
		runs++
		return nil
	})

	l.Set(1, 25)
	if runs != 2 {
		t.Errorf("expected 2 runs after index write, got %d", runs)
	}

	// A different index does not re-run.
	l.Set(0, 11)
	if runs != 2 {
		t.Errorf("unrelated index write re-ran effect, runs=%d", runs)
	}

	// Same value does not re-run.
	l.Set(1, 25)
	if runs != 2 {
		t.Errorf("same-value write re-ran effect, runs=%d", runs)
	}
}

func TestListOutOfRangeReadTracks(t *testing.T) {
	l := NewList([]any{1})

	var got any
	runs := 0
	NewEffect(func() any {
		got = l.Get(3)
		runs++
		return nil
	})

	if got != nil {
		t.Fatalf("expected nil before growth, got %v", got)
	}

	// Growing to cover the index re-runs the reader.
	l.Set(3, "now here")
	if runs != 2 {
		t.Errorf("growth did not re-run out-of-range reader, runs=%d", runs)
	}
	if got != "now here" {
		t.Errorf("expected value after growth, got %v", got)
	}
}

func TestListIndexAppendNotifiesLength(t *testing.T) {
	l := NewList([]any{1, 2})

	lengths := []int{}
	NewEffect(func() any {
		lengths = append(lengths, l.Len())
		return nil
	})

	// Writing past the end is a structural add.
	l.Set(2, 3)
	if len(lengths) != 2 || lengths[1] != 3 {
		t.Errorf("expected length effect to observe 3, got %v", lengths)
	}

	// In-range overwrite is not structural.
	l.Set(0, 100)
	if len(lengths) != 2 {
		t.Errorf("in-range write re-ran length effect, observations=%v", lengths)
	}
}

func TestListSetLenShrink(t *testing.T) {
	l := NewList([]any{"a", "b", "c"})

	lengthRuns := 0
	NewEffect(func() any {
		_ = l.Len()
		lengthRuns++
		return nil
	})

	removedRuns := 0
	NewEffect(func() any {
		_ = l.Get(2)
		removedRuns++
		return nil
	})

	survivorRuns := 0
	NewEffect(func() any {
		_ = l.Get(0)
		survivorRuns++
		return nil
	})

	l.SetLen(1)

	if lengthRuns != 2 {
		t.Errorf("expected length watcher to run once more, runs=%d", lengthRuns)
	}
	if removedRuns != 2 {
		t.Errorf("expected removed-index watcher to re-run, runs=%d", removedRuns)
	}
	if survivorRuns != 1 {
		t.Errorf("surviving index watcher re-ran, runs=%d", survivorRuns)
	}
	if l.Len() != 1 {
		t.Errorf("expected length 1, got %d", l.Len())
	}
}

func TestListSelfTruncateGuard(t *testing.T) {
	l := NewList([]any{1, 2, 3})

	runs := 0
	NewEffect(func() any {
		runs++
		if runs > 10 {
			t.Fatal("truncating effect retriggered itself")
		}
		if l.Len() > 1 {
			l.SetLen(1)
		}
		return nil
	})

	if runs != 1 {
		t.Errorf("expected exactly 1 run, got %d", runs)
	}
	if l.Len() != 1 {
		t.Errorf("expected length 1, got %d", l.Len())
	}
}

func TestListPush(t *testing.T) {
	l := NewList(nil)

	runs := 0
	NewEffect(func() any {
		runs++
		if runs > 10 {
			t.Fatal("push effect looped")
		}
		_ = l.Len()
		return nil
	})

	l.Push("x")
	if runs != 2 {
		t.Errorf("expected 2 runs after push, got %d", runs)
	}

	l.Push("y", "z")
	if runs != 3 {
		t.Errorf("multi-push dispatched more than once, runs=%d", runs)
	}
	if l.Len() != 3 {
		t.Errorf("expected length 3, got %d", l.Len())
	}
}

func TestListPushInsideEffectNoLoop(t *testing.T) {
	l := NewList(nil)
	src := NewObject(map[string]any{"n": 0})

	runs := 0
	NewEffect(func() any {
		runs++
		if runs > 10 {
			t.Fatal("effect that pushes looped")
		}
		n := src.Get("n").(int)
		l.Push(n)
		return nil
	})

	src.Set("n", 1)
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
	if l.Len() != 2 {
		t.Errorf("expected 2 pushed elements, got %d", l.Len())
	}
}

func TestListPopShift(t *testing.T) {
	l := NewList([]any{"a", "b", "c"})

	if got := l.Pop(); got != "c" {
		t.Errorf("expected c from Pop, got %v", got)
	}
	if got := l.Shift(); got != "a" {
		t.Errorf("expected a from Shift, got %v", got)
	}
	if l.Len() != 1 || l.Get(0) != "b" {
		t.Errorf("expected [b], got %v", l.Snapshot())
	}

	empty := NewList(nil)
	if got := empty.Pop(); got != nil {
		t.Errorf("expected nil from empty Pop, got %v", got)
	}
	if got := empty.Shift(); got != nil {
		t.Errorf("expected nil from empty Shift, got %v", got)
	}
}

func TestListShiftNotifiesMovedIndexes(t *testing.T) {
	l := NewList([]any{"a", "b"})

	var got any
	NewEffect(func() any {
		got = l.Get(0)
		return nil
	})

	l.Shift()
	if got != "b" {
		t.Errorf("index 0 watcher did not observe the shifted element, got %v", got)
	}
}

func TestListUnshift(t *testing.T) {
	l := NewList([]any{"c"})
	l.Unshift("a", "b")

	want := []any{"a", "b", "c"}
	snap := l.Snapshot()
	if len(snap) != len(want) {
		t.Fatalf("expected %v, got %v", want, snap)
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], snap[i])
		}
	}
}

func TestListSplice(t *testing.T) {
	l := NewList([]any{1, 2, 3, 4, 5})

	removed := l.Splice(1, 2, "x")
	if len(removed) != 2 || removed[0] != 2 || removed[1] != 3 {
		t.Errorf("expected removed [2 3], got %v", removed)
	}

	want := []any{1, "x", 4, 5}
	snap := l.Snapshot()
	if len(snap) != len(want) {
		t.Fatalf("expected %v, got %v", want, snap)
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], snap[i])
		}
	}

	// Out-of-range start clamps.
	if got := l.Splice(100, 5); len(got) != 0 {
		t.Errorf("expected no removals past the end, got %v", got)
	}
}

func TestListIncludesWrappedElements(t *testing.T) {
	inner := map[string]any{"id": 7}
	l := NewList([]any{inner, "plain"})

	// Reading wraps the aggregate element; the raw fallback must still
	// find it by the original map identity.
	_ = l.Get(0)

	if !l.Includes(inner) {
		t.Error("expected Includes to find the raw map after wrapping")
	}
	if !l.Includes("plain") {
		t.Error("expected Includes to find a plain element")
	}
	if l.Includes("absent") {
		t.Error("Includes reported an absent element")
	}

	if got := l.IndexOf(inner); got != 0 {
		t.Errorf("expected IndexOf 0, got %d", got)
	}
	if got := l.LastIndexOf("plain"); got != 1 {
		t.Errorf("expected LastIndexOf 1, got %d", got)
	}
}

func TestListSearchSubscribes(t *testing.T) {
	l := NewList([]any{1, 2, 3})

	found := false
	NewEffect(func() any {
		found = l.Includes(99)
		return nil
	})

	if found {
		t.Fatal("expected 99 to be absent")
	}

	l.Push(99)
	if !found {
		t.Error("search effect did not re-run after push")
	}
}
