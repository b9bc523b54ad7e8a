// Package chainparams holds process-wide chain configuration consulted by
// the filter subsystem. The values are loaded once at startup from chain
// configuration and treated as read-only afterwards.
package chainparams

import "time"

// Params carries the feature flags and limits that govern filter execution.
type Params struct {
	// LimitMathBuiltins restricts the Math built-in to an allow-list of
	// deterministic functions and removes Date.now entirely, so that any
	// use of a disallowed built-in raises instead of silently returning
	// a stub value.
	LimitMathBuiltins bool

	// FilterTimeout is the default watchdog timeout applied to filter
	// execution. Zero means no timeout.
	FilterTimeout time.Duration
}

// Default returns the parameters used by chains created before the limited
// math set was introduced.
func Default() Params {
	return Params{}
}

// Strict returns the parameters for chains with all determinism protections
// enabled.
func Strict() Params {
	return Params{
		LimitMathBuiltins: true,
		FilterTimeout:     time.Second,
	}
}
