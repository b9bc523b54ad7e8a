// Package engine provides the execution-slot handle shared by filter
// instances: the exclusive-access lock around script execution, the opaque
// per-engine user data handed to callbacks, the per-run callback log, and
// forced termination of in-flight execution.
package engine

import (
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/jupiter950/multichain/chainparams"
	"github.com/jupiter950/multichain/hostfunc"
)

// Engine is one logical script-execution slot. Filter instances created
// against the same engine share its lock, so at most one of them compiles
// or runs at a time. The engine outlives the filters created on it.
type Engine struct {
	params   chainparams.Params
	registry *hostfunc.Registry
	userData any
	callLog  hostfunc.Log

	// execMu serializes compilation and execution across all filters
	// bound to this engine.
	execMu sync.Mutex

	mu         sync.Mutex
	current    *goja.Runtime // runtime of the in-flight execution, nil when idle
	termReason string
}

// Option configures an Engine at creation time.
type Option func(*Engine)

// WithParams sets the chain parameters consulted at filter initialization.
func WithParams(p chainparams.Params) Option {
	return func(e *Engine) { e.params = p }
}

// WithUserData attaches opaque host context that callbacks receive on every
// invocation.
func WithUserData(data any) Option {
	return func(e *Engine) { e.userData = data }
}

// New creates an engine backed by the given callback registry.
func New(registry *hostfunc.Registry, opts ...Option) *Engine {
	if registry == nil {
		registry = hostfunc.NewRegistry()
	}
	e := &Engine{
		params:   chainparams.Default(),
		registry: registry,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Params() chainparams.Params { return e.params }

func (e *Engine) Registry() *hostfunc.Registry { return e.registry }

func (e *Engine) UserData() any { return e.userData }

// CallLog returns the per-engine callback log. It is reset by the filter at
// the start of every run, so it must not be shared across concurrently
// executing filters (the execution lock already prevents that).
func (e *Engine) CallLog() *hostfunc.Log { return &e.callLog }

// Exclusive runs fn while holding the engine's execution slot, with vm
// registered as the target for Terminate. Filter initialization and runs go
// through here; the engine is not safe for concurrent script execution
// without it.
func (e *Engine) Exclusive(vm *goja.Runtime, fn func()) {
	e.execMu.Lock()
	defer e.execMu.Unlock()

	e.mu.Lock()
	e.current = vm
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.current = nil
		e.mu.Unlock()
	}()

	fn()
}

// Terminate forcibly stops the in-flight execution, if any, and records the
// reason. The interrupted run reports the reason as its diagnostic instead
// of an exception. Safe to call from any goroutine.
func (e *Engine) Terminate(reason string) {
	e.mu.Lock()
	e.termReason = reason
	vm := e.current
	e.mu.Unlock()

	Logger().Debug("engine: terminate", zap.String("reason", reason))
	if vm != nil {
		vm.Interrupt(reason)
	}
}

// TerminationReason returns the reason given to the most recent Terminate.
func (e *Engine) TerminationReason() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.termReason
}
