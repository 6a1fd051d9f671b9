package ripple

// DebugMode enables development-time checks and panics for invalid
// operations. When true, writes to read-only containers panic instead of
// being dropped. Set this at startup and do not change it at runtime.
var DebugMode = false

// DebugConfig controls debug logging for development.
type DebugConfig struct {
	// LogEffectRuns logs each effect run.
	// Useful for debugging re-run storms. Default: false.
	LogEffectRuns bool

	// LogFlushes logs queue flush begin/end with job counts.
	// Default: false.
	LogFlushes bool

	// LogBudget logs when a flush budget is exceeded.
	// Useful for tuning budget limits. Default: false.
	LogBudget bool
}

// DefaultDebugConfig returns a DebugConfig with all debugging disabled.
func DefaultDebugConfig() DebugConfig {
	return DebugConfig{}
}

// Debug is the global debug configuration.
// Modify at application startup to enable debugging features.
var Debug = DefaultDebugConfig()
