package filter

import (
	_ "embed"

	"github.com/jupiter950/multichain/chainparams"
)

// The preamble runs inside a fresh context before the filter script is
// compiled, rewriting the built-ins that could observe wall-clock time or
// randomness. Its effects persist for the lifetime of the context.

//go:embed preamble.js
var basePreamble string

//go:embed limitmath.js
var limitMathPreamble string

// preambleFor assembles the preamble text for the given chain parameters.
// The base text is constant; the math-restriction fragment is appended when
// the chain enables the limited math set.
func preambleFor(p chainparams.Params) string {
	if p.LimitMathBuiltins {
		return basePreamble + limitMathPreamble
	}
	return basePreamble
}
