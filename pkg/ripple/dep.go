package ripple

import (
	"math"
	"reflect"
	"sync"
)

// mutation classifies a container write for trigger fan-out.
type mutation int

const (
	// mutationSet overwrites an existing key.
	mutationSet mutation = iota
	// mutationAdd creates a key that did not previously exist.
	mutationAdd
	// mutationDelete removes an existing key.
	mutationDelete
)

// Reserved dependency keys.
const (
	// iterateKey is the sentinel dependency representing "the key set of
	// this container changed". Effects that enumerate keys subscribe here.
	iterateKey = "\x00iterate"

	// lengthKey is the dependency key for a List's length.
	lengthKey = "length"
)

// depSet is an ordered, ID-deduplicated set of effects depending on one
// (container, key) pair. Notification order is insertion order.
type depSet struct {
	mu      sync.Mutex
	effects []*Effect
}

// add inserts e, deduplicating by effect ID. Reports whether e was inserted.
func (d *depSet) add(e *Effect) bool {
	if e == nil {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	eid := e.ID()
	for _, existing := range d.effects {
		if existing.ID() == eid {
			return false
		}
	}
	d.effects = append(d.effects, e)
	return true
}

// remove deletes e from the set, preserving the order of the rest.
func (d *depSet) remove(e *Effect) {
	if e == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	eid := e.ID()
	for i, existing := range d.effects {
		if existing.ID() == eid {
			d.effects = append(d.effects[:i], d.effects[i+1:]...)
			return
		}
	}
}

// snapshot copies the current members so notification never holds the lock.
func (d *depSet) snapshot() []*Effect {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Effect, len(d.effects))
	copy(out, d.effects)
	return out
}

// depOwner holds the per-key dependency sets for one reactive container.
// It is embedded in Object and List; Ref and Computed carry a single bare
// depSet instead. Ownership by the container means the sets become
// unreachable together with the container, so abandoned state cannot pin
// effects forever.
type depOwner struct {
	depMu sync.Mutex
	deps  map[string]*depSet
}

// depFor returns the dependency set for key, creating it if needed.
func (o *depOwner) depFor(key string) *depSet {
	o.depMu.Lock()
	defer o.depMu.Unlock()

	if o.deps == nil {
		o.deps = make(map[string]*depSet)
	}
	d, ok := o.deps[key]
	if !ok {
		d = &depSet{}
		o.deps[key] = d
	}
	return d
}

// lookup returns the dependency set for key, or nil if nothing ever
// subscribed to it. Triggering a key with no subscribers is a no-op.
func (o *depOwner) lookup(key string) *depSet {
	o.depMu.Lock()
	defer o.depMu.Unlock()
	return o.deps[key]
}

// track records that the active effect depends on key.
// No-op when no effect is running or tracking is paused.
func (o *depOwner) track(key string) {
	e := activeEffect()
	if e == nil || trackingPaused() {
		return
	}
	d := o.depFor(key)
	if d.add(e) {
		e.addSource(d)
	}
}

// trackDep subscribes the active effect to a bare dependency set.
// Used by Ref and Computed, which have exactly one observable key.
func trackDep(d *depSet) {
	e := activeEffect()
	if e == nil || trackingPaused() {
		return
	}
	if d.add(e) {
		e.addSource(d)
	}
}

// notifyDep dispatches every effect in a bare dependency set.
func notifyDep(d *depSet) {
	dispatch(collectEffects(d))
}

// collectEffects merges the members of the given sets into one dispatch
// list: insertion order within each set, deduplicated by ID across sets,
// excluding the currently active effect so a computation that writes a key
// it also reads cannot retrigger itself.
func collectEffects(sets ...*depSet) []*Effect {
	self := activeEffect()

	var out []*Effect
	seen := make(map[uint64]bool)
	for _, d := range sets {
		if d == nil {
			continue
		}
		for _, e := range d.snapshot() {
			if self != nil && e.ID() == self.ID() {
				continue
			}
			if seen[e.ID()] {
				continue
			}
			seen[e.ID()] = true
			out = append(out, e)
		}
	}
	return out
}

// dispatch runs or schedules the collected effects. Inside a Batch the
// effects are queued and deduplicated; the outermost batch end dispatches
// them once each.
func dispatch(effects []*Effect) {
	if len(effects) == 0 {
		return
	}

	ctx := currentTracking()
	if ctx.batchDepth > 0 {
		ctx.pending = append(ctx.pending, effects...)
		return
	}

	for _, e := range effects {
		e.invoke()
	}
}

// sameValue implements the write-suppression equality: a write whose new
// value is the "same" as the old one triggers nothing.
//
//   - nil matches only nil
//   - float NaN matches NaN (a NaN overwrite is not a change)
//   - maps, slices, funcs, chans, and pointers compare by identity, never
//     structurally
//   - remaining comparable values compare with ==
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && (av == bv || (math.IsNaN(av) && math.IsNaN(bv)))
	case float32:
		bv, ok := b.(float32)
		return ok && (av == bv || (math.IsNaN(float64(av)) && math.IsNaN(float64(bv))))
	}

	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	if ra.Kind() != rb.Kind() {
		return false
	}

	switch ra.Kind() {
	case reflect.Slice:
		// Identity of the backing array, not structural equality. The
		// length guard keeps different views of one array distinct.
		return ra.Len() == rb.Len() && ra.Pointer() == rb.Pointer()
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	default:
		if ra.Comparable() && rb.Comparable() {
			return a == b
		}
		return false
	}
}
