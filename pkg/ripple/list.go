package ripple

import (
	"strconv"
	"sync"
)

// List is a reactive integer-indexed aggregate. Index reads track the index
// key, Len tracks the reserved length key, and mutations notify exactly the
// effects whose observed elements changed.
//
// The mutating methods (Push, Pop, Shift, Unshift, Splice) run with
// dependency tracking paused for the calling goroutine, because they read
// and write length and index bookkeeping internally; recording those as
// dependencies would create spurious subscriptions and re-entrant trigger
// loops. Each method fires a single explicit notification after the
// mutation, with tracking restored on all exit paths.
type List struct {
	depOwner

	mu    sync.RWMutex
	items []any

	// wrapped caches reactive children created on read, parallel to items.
	wrapped []any

	shallow  bool
	readonly bool
}

// NewList creates a reactive list seeded from initial.
// The slice is copied; later mutations of the original are not observed.
func NewList(initial []any) *List {
	l := &List{
		items:   make([]any, len(initial)),
		wrapped: make([]any, len(initial)),
	}
	copy(l.items, initial)
	return l
}

func indexKey(i int) string {
	return strconv.Itoa(i)
}

// Get returns the element at index i, tracking the read.
// Out-of-range reads return nil but still track, so an effect reading past
// the end re-runs when the list grows to cover the index.
func (l *List) Get(i int) any {
	if i < 0 {
		return nil
	}
	if !l.readonly {
		l.track(indexKey(i))
	}

	l.mu.RLock()
	if i >= len(l.items) {
		l.mu.RUnlock()
		return nil
	}
	v := l.items[i]
	l.mu.RUnlock()

	if l.shallow {
		return v
	}
	return l.wrapChild(i, v)
}

// Len returns the number of elements, tracking the length key.
func (l *List) Len() int {
	if !l.readonly {
		l.track(lengthKey)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Set writes the element at index i. Writing at or beyond the current
// length grows the list and counts as a structural add, which additionally
// notifies length dependents. Same-value writes notify nothing, as does any
// write while tracking is paused.
func (l *List) Set(i int, value any) {
	if l.readonly {
		readonlyWrite("List.Set")
		return
	}
	if i < 0 {
		return
	}

	l.mu.Lock()
	if i < len(l.items) {
		if sameValue(l.items[i], value) {
			l.mu.Unlock()
			return
		}
		l.items[i] = value
		l.wrapped[i] = nil
		l.mu.Unlock()

		if trackingPaused() {
			return
		}
		l.triggerIndexes(indexKey(i))
		return
	}

	// Index append: grow with nil holes up to i.
	for len(l.items) < i {
		l.items = append(l.items, nil)
		l.wrapped = append(l.wrapped, nil)
	}
	l.items = append(l.items, value)
	l.wrapped = append(l.wrapped, nil)
	l.mu.Unlock()

	if trackingPaused() {
		return
	}
	l.triggerIndexes(indexKey(i), lengthKey)
}

// SetLen resizes the list. Shrinking notifies the effects tracked against
// every removed index (those elements are gone) and length dependents once;
// the currently running effect is excluded, so an effect that truncates a
// list it is iterating cannot retrigger itself. Growing fills with nils and
// notifies length dependents only.
func (l *List) SetLen(n int) {
	if l.readonly {
		readonlyWrite("List.SetLen")
		return
	}
	if n < 0 {
		n = 0
	}

	l.mu.Lock()
	oldLen := len(l.items)
	if n == oldLen {
		l.mu.Unlock()
		return
	}

	if n < oldLen {
		l.items = l.items[:n]
		l.wrapped = l.wrapped[:n]
	} else {
		for len(l.items) < n {
			l.items = append(l.items, nil)
			l.wrapped = append(l.wrapped, nil)
		}
	}
	l.mu.Unlock()

	if trackingPaused() {
		return
	}

	keys := []string{lengthKey}
	for i := n; i < oldLen; i++ {
		keys = append(keys, indexKey(i))
	}
	l.triggerIndexes(keys...)
}

// Push appends values and notifies the new indexes plus length dependents
// with a single dispatch.
func (l *List) Push(values ...any) {
	if l.readonly {
		readonlyWrite("List.Push")
		return
	}
	if len(values) == 0 {
		return
	}

	func() {
		pauseTracking()
		defer resumeTracking()

		l.mu.Lock()
		defer l.mu.Unlock()
		l.items = append(l.items, values...)
		for range values {
			l.wrapped = append(l.wrapped, nil)
		}
	}()

	l.mu.RLock()
	start := len(l.items) - len(values)
	l.mu.RUnlock()

	keys := []string{lengthKey}
	for i := range values {
		keys = append(keys, indexKey(start+i))
	}
	l.triggerIndexes(keys...)
}

// Pop removes and returns the last element.
func (l *List) Pop() any {
	if l.readonly {
		readonlyWrite("List.Pop")
		return nil
	}

	var (
		v any
		n int
	)
	func() {
		pauseTracking()
		defer resumeTracking()

		l.mu.Lock()
		defer l.mu.Unlock()
		n = len(l.items)
		if n == 0 {
			return
		}
		v = l.items[n-1]
		l.items = l.items[:n-1]
		l.wrapped = l.wrapped[:n-1]
	}()
	if n == 0 {
		return nil
	}

	l.triggerIndexes(indexKey(n-1), lengthKey)
	return v
}

// Shift removes and returns the first element. Every surviving element
// moves down one slot, so all index dependents are notified.
func (l *List) Shift() any {
	if l.readonly {
		readonlyWrite("List.Shift")
		return nil
	}

	var (
		v any
		n int
	)
	func() {
		pauseTracking()
		defer resumeTracking()

		l.mu.Lock()
		defer l.mu.Unlock()
		n = len(l.items)
		if n == 0 {
			return
		}
		v = l.items[0]
		l.items = append(l.items[:0], l.items[1:]...)
		l.wrapped = append(l.wrapped[:0], l.wrapped[1:]...)
	}()
	if n == 0 {
		return nil
	}

	keys := []string{lengthKey}
	for i := 0; i < n; i++ {
		keys = append(keys, indexKey(i))
	}
	l.triggerIndexes(keys...)
	return v
}

// Unshift prepends values, shifting every existing element up.
func (l *List) Unshift(values ...any) {
	if l.readonly {
		readonlyWrite("List.Unshift")
		return
	}
	if len(values) == 0 {
		return
	}

	var n int
	func() {
		pauseTracking()
		defer resumeTracking()

		l.mu.Lock()
		defer l.mu.Unlock()
		n = len(l.items)
		l.items = append(append([]any{}, values...), l.items...)
		l.wrapped = make([]any, len(l.items))
	}()

	keys := []string{lengthKey}
	for i := 0; i < n+len(values); i++ {
		keys = append(keys, indexKey(i))
	}
	l.triggerIndexes(keys...)
}

// Splice removes count elements starting at start, inserts values in their
// place, and returns the removed elements. All indexes from start through
// the larger of the old and new lengths are notified, plus length
// dependents when the length changed.
func (l *List) Splice(start, count int, values ...any) []any {
	if l.readonly {
		readonlyWrite("List.Splice")
		return nil
	}

	var oldLen, newLen int
	var removed []any
	func() {
		pauseTracking()
		defer resumeTracking()

		l.mu.Lock()
		defer l.mu.Unlock()
		oldLen = len(l.items)
		if start < 0 {
			start = 0
		}
		if start > oldLen {
			start = oldLen
		}
		if count < 0 {
			count = 0
		}
		if start+count > oldLen {
			count = oldLen - start
		}

		removed = make([]any, count)
		copy(removed, l.items[start:start+count])

		rest := append([]any{}, l.items[start+count:]...)
		l.items = append(l.items[:start], values...)
		l.items = append(l.items, rest...)
		l.wrapped = make([]any, len(l.items))
		newLen = len(l.items)
	}()

	hi := oldLen
	if newLen > hi {
		hi = newLen
	}
	var keys []string
	if newLen != oldLen {
		keys = append(keys, lengthKey)
	}
	for i := start; i < hi; i++ {
		keys = append(keys, indexKey(i))
	}
	l.triggerIndexes(keys...)
	return removed
}

// Includes reports whether value is present. The search runs against the
// wrapped elements first; when that misses, it retries against the raw
// stored values, because aggregate elements are wrapped on read and a raw
// value probe would otherwise wrongly report absence.
func (l *List) Includes(value any) bool {
	return l.IndexOf(value) >= 0
}

// IndexOf returns the first index holding value, or -1.
// Tracks every index and the length, since any element change can change
// the answer.
func (l *List) IndexOf(value any) int {
	n := l.trackAll()
	for i := 0; i < n; i++ {
		if sameValue(l.Get(i), value) {
			return i
		}
	}
	// Raw fallback: reconcile wrapped-vs-raw identity mismatches.
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i, raw := range l.items {
		if sameValue(raw, value) {
			return i
		}
	}
	return -1
}

// LastIndexOf returns the last index holding value, or -1, with the same
// raw fallback as IndexOf.
func (l *List) LastIndexOf(value any) int {
	n := l.trackAll()
	for i := n - 1; i >= 0; i-- {
		if sameValue(l.Get(i), value) {
			return i
		}
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.items) - 1; i >= 0; i-- {
		if sameValue(l.items[i], value) {
			return i
		}
	}
	return -1
}

// Snapshot returns an untracked copy of the raw elements.
func (l *List) Snapshot() []any {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]any, len(l.items))
	copy(out, l.items)
	return out
}

// trackAll subscribes the active effect to the length and every current
// index, returning the current length.
func (l *List) trackAll() int {
	if !l.readonly {
		l.track(lengthKey)
	}

	l.mu.RLock()
	n := len(l.items)
	l.mu.RUnlock()

	if !l.readonly {
		for i := 0; i < n; i++ {
			l.track(indexKey(i))
		}
	}
	return n
}

// triggerIndexes dispatches the effects subscribed to the given keys in one
// deduplicated pass.
func (l *List) triggerIndexes(keys ...string) {
	sets := make([]*depSet, 0, len(keys))
	for _, k := range keys {
		sets = append(sets, l.lookup(k))
	}

	effects := collectEffects(sets...)
	recordTrigger(len(effects))
	if len(keys) > 0 {
		probeTriggered(keys[0], len(effects))
	}
	dispatch(effects)
}

// wrapChild returns the cached reactive wrapper for an aggregate element.
func (l *List) wrapChild(i int, v any) any {
	if !isWrappable(v) {
		return v
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if i >= len(l.wrapped) {
		return v
	}
	if w := l.wrapped[i]; w != nil {
		return w
	}

	var opts []WrapOption
	if l.readonly {
		opts = append(opts, ReadOnly())
	}
	w := Wrap(v, opts...)
	l.wrapped[i] = w
	return w
}
