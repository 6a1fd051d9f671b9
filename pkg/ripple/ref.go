package ripple

import "sync"

// anyRef is the capability tag for reference boxes. Containers and views
// recognize refs by this interface rather than by probing marker fields,
// so anything implementing it participates in auto-unwrapping.
type anyRef interface {
	refAny() any
	setRefAny(v any)
	isRef()
}

// IsRef reports whether v is a reference box (Ref or an object-key ref).
func IsRef(v any) bool {
	_, ok := v.(anyRef)
	return ok
}

// Unref returns the boxed value when v is a ref (a tracked read), and v
// itself otherwise.
func Unref(v any) any {
	if r, ok := v.(anyRef); ok {
		return r.refAny()
	}
	return v
}

// Ref is a single-value box wired into the tracking substrate: Value reads
// subscribe the active effect, Set writes notify dependents under the same
// same-value suppression rules as containers.
type Ref[T any] struct {
	dep depSet

	mu    sync.RWMutex
	value T
}

// NewRef creates a reference box holding initial.
//
// Example:
//
//	flag := ripple.NewRef(false)
//	ripple.NewEffect(func() any {
//	    fmt.Println("flag:", flag.Value())
//	    return nil
//	})
//	flag.Set(true) // effect re-runs
func NewRef[T any](initial T) *Ref[T] {
	return &Ref[T]{value: initial}
}

// Value returns the boxed value and subscribes the active effect.
func (r *Ref[T]) Value() T {
	trackDep(&r.dep)

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Peek returns the boxed value without subscribing.
func (r *Ref[T]) Peek() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Set replaces the boxed value, notifying dependents unless the new value
// is the same as the old one (NaN overwriting NaN included).
func (r *Ref[T]) Set(v T) {
	r.mu.Lock()
	changed := !sameValue(r.value, v)
	if changed {
		r.value = v
	}
	r.mu.Unlock()

	if !changed || trackingPaused() {
		return
	}
	notifyDep(&r.dep)
}

// Update atomically derives the new value from the old one.
func (r *Ref[T]) Update(fn func(T) T) {
	r.mu.Lock()
	newValue := fn(r.value)
	changed := !sameValue(r.value, newValue)
	if changed {
		r.value = newValue
	}
	r.mu.Unlock()

	if !changed || trackingPaused() {
		return
	}
	notifyDep(&r.dep)
}

func (r *Ref[T]) refAny() any     { return r.Value() }
func (r *Ref[T]) setRefAny(v any) { r.Set(v.(T)) }
func (r *Ref[T]) isRef()          {}

// ObjectRef is a ref-like view over a single Object key. Reads and writes
// flow through the object's tracking, so the view stays live: it reflects
// the current entry rather than a copy.
type ObjectRef struct {
	obj *Object
	key string
}

// ToRef creates a ref-like view over one key of obj.
func ToRef(obj *Object, key string) *ObjectRef {
	return &ObjectRef{obj: obj, key: key}
}

// Value reads the underlying entry (tracked through the object).
func (r *ObjectRef) Value() any {
	return r.obj.Get(r.key)
}

// Set writes the underlying entry (triggering through the object).
func (r *ObjectRef) Set(v any) {
	r.obj.Set(r.key, v)
}

func (r *ObjectRef) refAny() any     { return r.Value() }
func (r *ObjectRef) setRefAny(v any) { r.Set(v) }
func (r *ObjectRef) isRef()          {}

// ToRefs creates a ref view for every current own key of obj.
// The key enumeration itself is untracked; each returned ref is live.
func ToRefs(obj *Object) map[string]*ObjectRef {
	keys := obj.rawKeys()
	out := make(map[string]*ObjectRef, len(keys))
	for _, k := range keys {
		out[k] = ToRef(obj, k)
	}
	return out
}

// RefView wraps an Object so stored refs read and write transparently:
// Get unwraps a stored ref to its boxed value, Set writes through to an
// existing ref when the incoming value is not itself a ref.
type RefView struct {
	obj *Object
}

// ProxyRefs creates an auto-unwrapping view over obj.
//
// Example:
//
//	o := ripple.NewObject(nil)
//	o.Set("count", ripple.NewRef(1))
//	view := ripple.ProxyRefs(o)
//	view.Get("count")    // 1, not the ref
//	view.Set("count", 2) // writes into the existing ref
func ProxyRefs(obj *Object) *RefView {
	return &RefView{obj: obj}
}

// Get returns the entry under key, unwrapping it when it is a ref.
func (v *RefView) Get(key string) any {
	return Unref(v.obj.Get(key))
}

// Set stores value under key. When the existing entry is a ref and the
// incoming value is not, the write goes into the ref; otherwise the entry
// is replaced.
func (v *RefView) Set(key string, value any) {
	if existing, ok := v.obj.rawGet(key); ok {
		if r, isR := existing.(anyRef); isR && !IsRef(value) {
			r.setRefAny(value)
			return
		}
	}
	v.obj.Set(key, value)
}

// Has reports whether key exists (tracked through the object).
func (v *RefView) Has(key string) bool {
	return v.obj.Has(key)
}
