package ripple

import (
	"sort"
	"sync"
)

// Object is a reactive string-keyed aggregate. Every accessor performs
// dependency bookkeeping: Get/Has track the key, Keys/Len track the
// iteration sentinel, Set/Delete trigger the effects recorded against the
// touched key (plus the iteration sentinel for structural changes).
//
// Objects may form a parent chain (WithParent): reads fall through to the
// parent when the key is absent, but writes and deletes always apply to the
// object they were called on, so a write reaching a child through the chain
// fires only the child's subscribers.
type Object struct {
	depOwner

	mu      sync.RWMutex
	entries map[string]any

	// wrapped caches reactive children created on read, keyed by entry key,
	// so the same nested aggregate always yields the same wrapper.
	wrapped map[string]any

	parent   *Object
	shallow  bool
	readonly bool
}

// ObjectOption configures an Object at creation.
type ObjectOption interface {
	isObjectOption()
	applyObject(o *Object)
}

type objectOptionFunc func(*Object)

func (f objectOptionFunc) isObjectOption()       {}
func (f objectOptionFunc) applyObject(o *Object) { f(o) }

// WithParent links the object to a fallback parent for reads.
func WithParent(parent *Object) ObjectOption {
	return objectOptionFunc(func(o *Object) {
		o.parent = parent
	})
}

// NewObject creates a reactive object seeded from initial.
// The map is copied; later mutations of the original map are not observed.
// If initial is nil, an empty object is created.
func NewObject(initial map[string]any, opts ...ObjectOption) *Object {
	o := &Object{
		entries: make(map[string]any, len(initial)),
	}
	for k, v := range initial {
		o.entries[k] = v
	}

	for _, opt := range opts {
		opt.applyObject(o)
	}

	return o
}

// Get returns the value stored under key, tracking the read.
// Aggregate children (maps, slices) are wrapped reactively on the way out
// unless the object is shallow; the wrapper is cached so repeated reads
// return the same instance. Missing keys fall through to the parent chain.
func (o *Object) Get(key string) any {
	if !o.readonly {
		o.track(key)
	}

	o.mu.RLock()
	v, ok := o.entries[key]
	o.mu.RUnlock()

	if !ok {
		if o.parent != nil {
			return o.parent.Get(key)
		}
		return nil
	}

	if o.shallow {
		return v
	}
	return o.wrapChild(key, v)
}

// Has reports whether key exists on the object or its parent chain,
// tracking the read.
func (o *Object) Has(key string) bool {
	if !o.readonly {
		o.track(key)
	}

	o.mu.RLock()
	_, ok := o.entries[key]
	o.mu.RUnlock()

	if !ok && o.parent != nil {
		return o.parent.Has(key)
	}
	return ok
}

// Keys returns the object's own keys in sorted order.
// Enumeration depends on the whole key set, so this tracks the iteration
// sentinel rather than any single key.
func (o *Object) Keys() []string {
	if !o.readonly {
		o.track(iterateKey)
	}
	return o.rawKeys()
}

// Len returns the number of own keys, tracking the iteration sentinel.
func (o *Object) Len() int {
	if !o.readonly {
		o.track(iterateKey)
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.entries)
}

// Set writes value under key and notifies dependents.
//
// No notification happens when: the object is read-only (the write is
// dropped; in DebugMode it panics), tracking is paused on this goroutine,
// or the new value is the same as the old one under sameValue semantics.
// A key that did not previously exist additionally notifies enumeration
// dependents.
func (o *Object) Set(key string, value any) {
	if o.readonly {
		readonlyWrite("Object.Set")
		return
	}

	o.mu.Lock()
	old, had := o.entries[key]
	if had && sameValue(old, value) {
		o.mu.Unlock()
		return
	}
	o.entries[key] = value
	delete(o.wrapped, key)
	o.mu.Unlock()

	if trackingPaused() {
		return
	}

	kind := mutationSet
	if !had {
		kind = mutationAdd
	}
	o.triggerKey(key, kind)
}

// Delete removes key and notifies dependents. Deleting a key that does not
// exist on the object itself is a no-op; the parent chain is never modified.
func (o *Object) Delete(key string) {
	if o.readonly {
		readonlyWrite("Object.Delete")
		return
	}

	o.mu.Lock()
	_, had := o.entries[key]
	if !had {
		o.mu.Unlock()
		return
	}
	delete(o.entries, key)
	delete(o.wrapped, key)
	o.mu.Unlock()

	if trackingPaused() {
		return
	}

	o.triggerKey(key, mutationDelete)
}

// Snapshot returns an untracked copy of the object's own entries.
func (o *Object) Snapshot() map[string]any {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make(map[string]any, len(o.entries))
	for k, v := range o.entries {
		out[k] = v
	}
	return out
}

// triggerKey dispatches the effects subscribed to key. Structural changes
// (add, delete) also include enumeration dependents, since the key set they
// observed has changed.
func (o *Object) triggerKey(key string, kind mutation) {
	sets := []*depSet{o.lookup(key)}
	if kind == mutationAdd || kind == mutationDelete {
		sets = append(sets, o.lookup(iterateKey))
	}

	effects := collectEffects(sets...)
	recordTrigger(len(effects))
	probeTriggered(key, len(effects))
	dispatch(effects)
}

// wrapChild returns the cached reactive wrapper for an aggregate child,
// creating it on first read. Non-aggregate values pass through unchanged.
func (o *Object) wrapChild(key string, v any) any {
	if !isWrappable(v) {
		return v
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.wrapped == nil {
		o.wrapped = make(map[string]any)
	}
	if w, ok := o.wrapped[key]; ok {
		return w
	}

	var opts []WrapOption
	if o.readonly {
		opts = append(opts, ReadOnly())
	}
	w := Wrap(v, opts...)
	o.wrapped[key] = w
	return w
}

// rawGet returns the stored value without tracking or wrapping.
func (o *Object) rawGet(key string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.entries[key]
	return v, ok
}

// rawKeys returns the own keys in sorted order without tracking.
func (o *Object) rawKeys() []string {
	o.mu.RLock()
	keys := make([]string, 0, len(o.entries))
	for k := range o.entries {
		keys = append(keys, k)
	}
	o.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// readonlyWrite handles a rejected write: dropped in production, panic in
// DebugMode so misuse is caught during development.
func readonlyWrite(op string) {
	if DebugMode {
		panic(ErrReadOnlyWrite.Error() + " (" + op + ")")
	}
}
