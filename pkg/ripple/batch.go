package ripple

// Batch groups multiple writes into a single notification phase.
// Triggers raised inside fn are collected and deduplicated; each affected
// effect is dispatched once when the outermost batch completes.
//
// Batches nest: notifications only fire when the outermost batch ends.
//
// Example:
//
//	ripple.Batch(func() {
//	    user.Set("first", "Ada")
//	    user.Set("last", "Lovelace")
//	})
//	// dependents run once, observing both writes
func Batch(fn func()) {
	ctx := currentTracking()
	ctx.batchDepth++

	defer func() {
		ctx.batchDepth--
		if ctx.batchDepth == 0 {
			flushPendingBatch(ctx)
		}
	}()

	fn()
}

// flushPendingBatch deduplicates and dispatches the effects accumulated
// during a batch window.
func flushPendingBatch(ctx *trackingContext) {
	pending := ctx.pending
	ctx.pending = nil
	if len(pending) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(pending))
	for _, e := range pending {
		if seen[e.ID()] {
			continue
		}
		seen[e.ID()] = true
		e.invoke()
	}
}
