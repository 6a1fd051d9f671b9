package ripple

import (
	"sync"
	"sync/atomic"
)

// Scope owns reactive primitives created while it is current. Disposing a
// scope stops its effects, runs registered cleanups in reverse order, and
// disposes child scopes. This gives abandoned computations an explicit
// lifetime instead of relying on their dependencies never firing again.
//
// Scopes form a hierarchy: a scope created while another is current becomes
// its child unless an explicit parent is given.
type Scope struct {
	id     uint64
	parent *Scope

	children   []*Scope
	childrenMu sync.Mutex

	effects   []*Effect
	effectsMu sync.Mutex

	cleanups   []func()
	cleanupsMu sync.Mutex

	disposed atomic.Bool
}

// NewScope creates a scope under parent. Given a nil parent, the scope
// attaches to the current scope if one is active, and is a root scope
// otherwise.
func NewScope(parent *Scope) *Scope {
	if parent == nil {
		parent = currentScope()
	}

	s := &Scope{
		id:     nextID(),
		parent: parent,
	}

	if parent != nil {
		parent.addChild(s)
	}

	return s
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the parent scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsDisposed reports whether the scope has been disposed.
func (s *Scope) IsDisposed() bool {
	return s.disposed.Load()
}

// Run executes fn with this scope current: effects and watchers created
// inside belong to the scope and stop when it is disposed.
//
// Example:
//
//	scope := ripple.NewScope(nil)
//	scope.Run(func() {
//	    ripple.NewEffect(render)
//	})
//	// later
//	scope.Dispose()
func (s *Scope) Run(fn func()) {
	old := setCurrentScope(s)
	defer setCurrentScope(old)
	fn()
}

// OnCleanup registers fn to run when the scope is disposed. If the scope is
// already disposed, fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed.Load() {
		fn()
		return
	}

	s.cleanupsMu.Lock()
	defer s.cleanupsMu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

// register adds an effect to this scope.
func (s *Scope) register(e *Effect) {
	if s.disposed.Load() {
		return
	}

	s.effectsMu.Lock()
	defer s.effectsMu.Unlock()
	s.effects = append(s.effects, e)
}

// addChild registers a child scope.
func (s *Scope) addChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()
	s.children = append(s.children, child)
}

// removeChild removes a child scope.
func (s *Scope) removeChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()

	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// Dispose stops owned effects, disposes children (last created first), and
// runs cleanups in reverse registration order. Idempotent.
func (s *Scope) Dispose() {
	if s.disposed.Swap(true) {
		return
	}

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	s.childrenMu.Lock()
	children := make([]*Scope, len(s.children))
	copy(children, s.children)
	s.children = nil
	s.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	s.effectsMu.Lock()
	effects := s.effects
	s.effects = nil
	s.effectsMu.Unlock()

	for _, e := range effects {
		e.Stop()
	}

	s.cleanupsMu.Lock()
	cleanups := s.cleanups
	s.cleanups = nil
	s.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
