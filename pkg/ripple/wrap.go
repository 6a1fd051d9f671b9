package ripple

import (
	"reflect"
	"runtime"
	"sync"
	"weak"
)

// WrapOption configures Wrap.
type WrapOption interface {
	isWrapOption()
	applyWrap(c *wrapConfig)
}

type wrapConfig struct {
	shallow  bool
	readonly bool
}

type wrapOptionFunc func(*wrapConfig)

func (f wrapOptionFunc) isWrapOption()           {}
func (f wrapOptionFunc) applyWrap(c *wrapConfig) { f(c) }

// Shallow limits reactivity to the first level: aggregate children are
// returned raw instead of being wrapped on read.
func Shallow() WrapOption {
	return wrapOptionFunc(func(c *wrapConfig) {
		c.shallow = true
	})
}

// ReadOnly makes the wrapper reject writes. Rejected writes are dropped;
// when DebugMode is set they panic so misuse surfaces during development.
func ReadOnly() WrapOption {
	return wrapOptionFunc(func(c *wrapConfig) {
		c.readonly = true
	})
}

// wrapCacheKey identifies one raw aggregate under one wrap flavor.
// The same map wrapped twice with the same options must yield the same
// wrapper, since dependency bookkeeping is keyed by wrapper identity.
type wrapCacheKey struct {
	ptr      uintptr
	shallow  bool
	readonly bool
}

// wrapEntry holds the wrapper weakly, so the cache never extends a
// wrapper's lifetime, and the raw aggregate strongly, so the address the
// key was derived from cannot be recycled while the entry lives. A cleanup
// on the wrapper deletes the entry once the wrapper is collected,
// releasing the raw aggregate with it.
type wrapEntry struct {
	raw  any
	obj  weak.Pointer[Object]
	list weak.Pointer[List]
}

var (
	wrapCacheMu sync.Mutex
	wrapCache   = make(map[wrapCacheKey]*wrapEntry)
)

func cachedObject(key wrapCacheKey, raw map[string]any, cfg wrapConfig) *Object {
	wrapCacheMu.Lock()
	defer wrapCacheMu.Unlock()

	if e, ok := wrapCache[key]; ok {
		if o := e.obj.Value(); o != nil {
			return o
		}
	}

	o := NewObject(raw)
	o.shallow = cfg.shallow
	o.readonly = cfg.readonly

	wp := weak.Make(o)
	wrapCache[key] = &wrapEntry{raw: raw, obj: wp}
	runtime.AddCleanup(o, func(k wrapCacheKey) {
		wrapCacheMu.Lock()
		// A fresh wrapper may have replaced this entry already.
		if e, ok := wrapCache[k]; ok && e.obj == wp {
			delete(wrapCache, k)
		}
		wrapCacheMu.Unlock()
	}, key)
	return o
}

func cachedList(key wrapCacheKey, raw []any, cfg wrapConfig) *List {
	wrapCacheMu.Lock()
	defer wrapCacheMu.Unlock()

	if e, ok := wrapCache[key]; ok {
		if l := e.list.Value(); l != nil {
			return l
		}
	}

	l := NewList(raw)
	l.shallow = cfg.shallow
	l.readonly = cfg.readonly

	wp := weak.Make(l)
	wrapCache[key] = &wrapEntry{raw: raw, list: wp}
	runtime.AddCleanup(l, func(k wrapCacheKey) {
		wrapCacheMu.Lock()
		if e, ok := wrapCache[k]; ok && e.list == wp {
			delete(wrapCache, k)
		}
		wrapCacheMu.Unlock()
	}, key)
	return l
}

// Wrap makes v reactive: map[string]any becomes *Object, []any becomes
// *List. While a wrapper is reachable, wrapping the same map again with the
// same options returns that wrapper. Already-wrapped values pass through
// unchanged; non-aggregate values are returned as-is.
//
// Example:
//
//	state := ripple.Wrap(map[string]any{"user": map[string]any{"name": "Ada"}})
//	obj := state.(*ripple.Object)
//	obj.Get("user").(*ripple.Object).Get("name") // tracked nested read
func Wrap(v any, opts ...WrapOption) any {
	var cfg wrapConfig
	for _, opt := range opts {
		opt.applyWrap(&cfg)
	}

	switch t := v.(type) {
	case *Object, *List:
		return t
	case map[string]any:
		key := wrapCacheKey{
			ptr:      reflect.ValueOf(t).Pointer(),
			shallow:  cfg.shallow,
			readonly: cfg.readonly,
		}
		return cachedObject(key, t, cfg)
	case []any:
		// Zero-length slices have no distinguishing backing array, so
		// they are never cached.
		if len(t) == 0 {
			l := NewList(t)
			l.shallow = cfg.shallow
			l.readonly = cfg.readonly
			return l
		}
		key := wrapCacheKey{
			ptr:      reflect.ValueOf(t).Pointer(),
			shallow:  cfg.shallow,
			readonly: cfg.readonly,
		}
		return cachedList(key, t, cfg)
	default:
		return v
	}
}

// isWrappable reports whether a value would be wrapped by Wrap.
func isWrappable(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}
