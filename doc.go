// Package multichain provides a deterministic, sandboxed execution gate for
// consensus filter scripts.
//
// # Overview
//
// Untrusted JavaScript filters run inside an isolated context whose
// nondeterministic built-ins (Math.random, Date.now, the Date constructor)
// are neutralized before user code loads, so that a filter's output is
// byte-identical on every node that evaluates it. Host capabilities reach
// the script only through an explicit callback registry.
//
// # Basic Usage
//
//	eng := engine.New(hostfunc.NewRegistry())
//
//	f := filter.New()
//	diag, err := f.Initialize(eng, `function main() { return "ok"; }`, "main", nil)
//	if err != nil || diag != "" {
//	    // err: configuration fault; diag: compile error / missing entry
//	}
//	defer f.Destroy()
//
//	result, _ := f.Run() // "ok"
//
// # Failure Contract
//
// Script-level failures are expected, recoverable outcomes: they are
// returned as non-empty diagnostic text with a nil error. Errors are
// reserved for host-level faults such as requesting a callback name that is
// not registered.
//
// See the [filter], [engine], [hostfunc] and [chainparams] packages for
// detailed API documentation.
package multichain
