// Package filter implements the deterministic script-execution gate used to
// evaluate consensus filters. A Filter owns one isolated execution context,
// loads a determinism preamble ahead of the untrusted script, resolves a
// single entry function and runs it on demand, reporting either a string
// result or diagnostic text.
//
// Script-level failures (compile errors, missing entry function, runtime
// exceptions, forced termination) are expected outcomes: they come back as
// non-empty diagnostic text with a nil error. A non-nil error is reserved
// for host-level faults such as requesting an unregistered callback.
package filter

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/jupiter950/multichain/engine"
	"github.com/jupiter950/multichain/hostfunc"
)

const (
	originPreamble = "preamble"
	originScript   = "<script>"

	invalidFilterDiag = "Trying to run an invalid filter"

	// DestroyedReason is the termination reason when a filter is destroyed
	// while its entry function is still executing.
	DestroyedReason = "Filter destroyed during execution"
)

// maxCallStackSize bounds script recursion depth so a runaway filter raises
// instead of exhausting the host stack.
const maxCallStackSize = 1024

// fixedEpoch backs the engine-native time source. The preamble additionally
// rewrites the script-visible Date built-ins.
var fixedEpoch = time.Unix(0, 0).UTC()

// Filter is one loaded filter script bound to an engine. The zero value is
// valid and reports itself as an invalid filter until Initialize succeeds.
// Initialize and Run must not be called concurrently on the same instance;
// Destroy may be called from another goroutine to abort an in-flight run.
type Filter struct {
	eng     *engine.Engine
	vm      *goja.Runtime
	entry   goja.Callable
	sources map[string]string
	running atomic.Bool
}

func New() *Filter {
	return &Filter{}
}

// Initialize creates a fresh execution context, installs the requested
// callbacks as globals, loads the determinism preamble and then the script,
// and resolves entryName in the script's global scope.
//
// The returned error is non-nil only for configuration faults (an unknown
// callback name). Compile and runtime failures while loading are reported
// as non-empty diagnostic text with a nil error; either way the context is
// released and the filter stays uninitialized.
func (f *Filter) Initialize(eng *engine.Engine, script, entryName string, callbackNames []string) (string, error) {
	engine.Logger().Debug("filter: initialize", zap.String("entry", entryName))
	f.Destroy()

	registry := eng.Registry()
	for _, name := range callbackNames {
		if _, ok := registry.Get(name); !ok {
			return "", fmt.Errorf("undefined callback name: %s", name)
		}
	}

	vm := goja.New()
	vm.SetMaxCallStackSize(maxCallStackSize)
	vm.SetRandSource(func() float64 { return 0 })
	vm.SetTimeSource(func() time.Time { return fixedEpoch })

	f.eng = eng
	f.vm = vm
	f.sources = make(map[string]string, 2)

	for _, name := range callbackNames {
		fn, _ := registry.Get(name)
		vm.Set(name, f.thunk(name, fn))
	}

	var diag string
	eng.Exclusive(vm, func() {
		diag = f.compileAndLoad(preambleFor(eng.Params()), "", originPreamble)
		if diag != "" {
			return
		}
		diag = f.compileAndLoad(script, entryName, originScript)
	})
	if diag != "" {
		f.release()
		return diag, nil
	}
	return "", nil
}

// Run invokes the entry function with no arguments against the context's
// global object. It returns the function's string result verbatim, an empty
// string for any non-string result, or diagnostic text when the function
// raised or was forcibly terminated. The error is always nil for
// script-level outcomes; see the package comment.
func (f *Filter) Run() (string, error) {
	return f.run(false)
}

// RunWithCallbackLog is Run with callback recording enabled; it additionally
// returns the ordered log of callback invocations made during this run.
func (f *Filter) RunWithCallbackLog() (string, []hostfunc.Call, error) {
	result, err := f.run(true)
	if f.eng == nil {
		return result, nil, err
	}
	return result, f.eng.CallLog().Calls(), err
}

func (f *Filter) run(withCallbackLog bool) (string, error) {
	engine.Logger().Debug("filter: run")
	if f.vm == nil || f.entry == nil {
		return invalidFilterDiag, nil
	}

	eng, vm, entry := f.eng, f.vm, f.entry
	var out string
	eng.Exclusive(vm, func() {
		eng.CallLog().Reset(withCallbackLog)

		f.running.Store(true)
		value, err := entry(vm.GlobalObject())
		f.running.Store(false)
		vm.ClearInterrupt()

		if err != nil {
			if isInterrupt(err) {
				out = eng.TerminationReason()
			} else {
				out = f.reportException(err)
			}
			return
		}
		if value != nil {
			if s, ok := value.Export().(string); ok {
				out = s
			}
		}
	})
	return out, nil
}

// Destroy tears the filter down. If the entry function is executing it is
// forcibly terminated first. Idempotent, and safe on a zero or
// partially-initialized instance.
func (f *Filter) Destroy() {
	if f.running.Load() && f.eng != nil {
		f.eng.Terminate(DestroyedReason)
	}
	f.release()
}

func (f *Filter) release() {
	f.entry = nil
	f.vm = nil
	f.sources = nil
	f.eng = nil
	f.running.Store(false)
}

// compileAndLoad compiles and executes one script body inside the context.
// When entryName is non-empty, the global of that name must resolve to a
// function after execution; it is retained as the entry function. Returns
// diagnostic text on failure, empty string on success.
func (f *Filter) compileAndLoad(script, entryName, origin string) string {
	engine.Logger().Debug("filter: compile and load", zap.String("origin", origin))
	f.sources[origin] = script

	prog, err := goja.Compile(origin, script, false)
	if err != nil {
		return f.reportException(err)
	}
	if _, err := f.vm.RunProgram(prog); err != nil {
		return f.reportException(err)
	}

	if entryName != "" {
		fn, ok := goja.AssertFunction(f.vm.GlobalObject().Get(entryName))
		if !ok {
			return fmt.Sprintf("Cannot find function '%s' in script", entryName)
		}
		f.entry = fn
	}
	return ""
}

// thunk adapts a registry callback to a script-callable function, recording
// the invocation in the engine's callback log and rethrowing host errors as
// script exceptions.
func (f *Filter) thunk(name string, fn hostfunc.Func) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		args := make([]any, len(call.Arguments))
		for i, a := range call.Arguments {
			args[i] = a.Export()
		}

		result, err := fn(&hostfunc.Context{Name: name, Data: f.eng.UserData()}, args)
		if err != nil {
			f.eng.CallLog().Record(hostfunc.Call{Method: name, Params: args, Error: err.Error()})
			panic(f.vm.NewGoError(err))
		}
		f.eng.CallLog().Record(hostfunc.Call{Method: name, Params: args, Result: result, Success: true})
		return f.vm.ToValue(result)
	}
}

func isInterrupt(err error) bool {
	_, ok := err.(*goja.InterruptedError)
	return ok
}
