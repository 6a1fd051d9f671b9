package ripple

import "testing"

func BenchmarkObjectGet(b *testing.B) {
	o := NewObject(map[string]any{"n": 1})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = o.Get("n")
	}
}

func BenchmarkObjectSetTracked(b *testing.B) {
	o := NewObject(map[string]any{"n": 0})
	NewEffect(func() any {
		return o.Get("n")
	})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.Set("n", i)
	}
}

func BenchmarkObjectSetUntracked(b *testing.B) {
	o := NewObject(map[string]any{"n": 0})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.Set("n", i)
	}
}

func BenchmarkEffectFanout(b *testing.B) {
	o := NewObject(map[string]any{"n": 0})
	for i := 0; i < 100; i++ {
		NewEffect(func() any {
			return o.Get("n")
		})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.Set("n", i)
	}
}

func BenchmarkBatchedWrites(b *testing.B) {
	o := NewObject(map[string]any{"a": 0, "b": 0, "c": 0})
	NewEffect(func() any {
		_ = o.Get("a")
		_ = o.Get("b")
		_ = o.Get("c")
		return nil
	})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Batch(func() {
			o.Set("a", i)
			o.Set("b", i)
			o.Set("c", i)
		})
	}
}

func BenchmarkComputedRead(b *testing.B) {
	o := NewObject(map[string]any{"n": 1})
	c := NewComputed(func() int {
		return o.Get("n").(int) * 2
	})
	_ = c.Value()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Value()
	}
}

func BenchmarkQueueFlush(b *testing.B) {
	q := NewQueue()
	o := NewObject(map[string]any{"n": 0})
	for i := 0; i < 10; i++ {
		NewEffect(func() any {
			return o.Get("n")
		}, WithScheduler(q.EnqueueEffect))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.Set("n", i)
		_ = q.Flush()
	}
}

func BenchmarkListPush(b *testing.B) {
	l := NewList(nil)
	NewEffect(func() any {
		return l.Len()
	})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Push(i)
	}
}

func BenchmarkRefSet(b *testing.B) {
	r := NewRef(0)
	NewEffect(func() any {
		return r.Value()
	})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Set(i)
	}
}
