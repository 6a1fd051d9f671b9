package ripple

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state for a goroutine.
// Each goroutine has its own tracking context so concurrent effect graphs
// never cross-attribute dependencies.
type trackingContext struct {
	// effectStack holds the currently running effects, innermost last.
	// Reads attribute to the top of the stack.
	effectStack []*Effect

	// pauseDepth tracks nested PauseTracking calls.
	// When > 0, reads don't create subscriptions and writes don't notify.
	pauseDepth int

	// batchDepth tracks nested Batch() calls.
	// When > 0, triggers queue notifications instead of firing immediately.
	batchDepth int

	// pending accumulates effects to notify when the outermost batch completes.
	// Deduplicated by ID before dispatch.
	pending []*Effect

	// scope is the Scope that will own newly created effects.
	scope *Scope
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// goroutineID returns a unique identifier for the current goroutine.
// This uses the runtime stack to extract the goroutine ID.
// Note: This is an implementation detail and should not be relied upon externally.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> "
	var id uint64
	for i := 10; i < n; i++ { // Skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// currentTracking returns the tracking context for the current goroutine,
// creating one if none exists.
func currentTracking() *trackingContext {
	gid := goroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}

	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// activeEffect returns the innermost running effect, or nil when no effect
// is executing on this goroutine.
func activeEffect() *Effect {
	ctx := currentTracking()
	if n := len(ctx.effectStack); n > 0 {
		return ctx.effectStack[n-1]
	}
	return nil
}

// pushEffect makes e the active effect for the current goroutine.
func pushEffect(e *Effect) {
	ctx := currentTracking()
	ctx.effectStack = append(ctx.effectStack, e)
}

// popEffect restores the previously active effect.
func popEffect() {
	ctx := currentTracking()
	if n := len(ctx.effectStack); n > 0 {
		ctx.effectStack[n-1] = nil
		ctx.effectStack = ctx.effectStack[:n-1]
	}
}

// trackingPaused reports whether dependency tracking is disabled on this
// goroutine. While paused, reads don't subscribe and container writes don't
// notify (required by the list mutators, which read and write bookkeeping
// state internally).
func trackingPaused() bool {
	return currentTracking().pauseDepth > 0
}

// pauseTracking disables dependency tracking for the current goroutine.
// Every call must be paired with resumeTracking, normally via defer, so a
// panicking mutator cannot leave tracking disabled.
func pauseTracking() {
	currentTracking().pauseDepth++
}

// resumeTracking re-enables dependency tracking.
func resumeTracking() {
	ctx := currentTracking()
	if ctx.pauseDepth > 0 {
		ctx.pauseDepth--
	}
}

// Untracked runs fn without tracking reads as dependencies and without
// notifying on writes. Useful for reading reactive state inside an effect
// without subscribing to it.
//
// Example:
//
//	ripple.Untracked(func() {
//	    fmt.Println("current:", state.Get("count"))
//	})
func Untracked(fn func()) {
	pauseTracking()
	defer resumeTracking()
	fn()
}

// currentScope returns the scope owning newly created effects, or nil.
func currentScope() *Scope {
	return currentTracking().scope
}

// setCurrentScope sets the owning scope for effect creation.
// Returns the previous scope so it can be restored.
func setCurrentScope(s *Scope) *Scope {
	ctx := currentTracking()
	old := ctx.scope
	ctx.scope = s
	return old
}
