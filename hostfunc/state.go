package hostfunc

import (
	"errors"
	"fmt"
	"sync"
)

// State is a deterministic in-memory scratch store filters can use through
// the state_get/state_set/state_delete callbacks. Unlike a real key-value
// store it has no TTLs and no persistence: with identical inputs every node
// sees identical contents, so exposing it to consensus filters is safe.
type State struct {
	data map[string]string
	mu   sync.RWMutex

	maxKeySize   int
	maxValueSize int
	maxEntries   int
}

// StateOption configures limits on a State store.
type StateOption func(*State)

func WithStateMaxKeySize(n int) StateOption {
	return func(s *State) { s.maxKeySize = n }
}

func WithStateMaxValueSize(n int) StateOption {
	return func(s *State) { s.maxValueSize = n }
}

func WithStateMaxEntries(n int) StateOption {
	return func(s *State) { s.maxEntries = n }
}

func NewState(opts ...StateOption) *State {
	s := &State{
		data:         make(map[string]string),
		maxKeySize:   256,
		maxValueSize: 64 * 1024,
		maxEntries:   1024,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterWith installs the state callbacks on a registry.
func (s *State) RegisterWith(r *Registry) {
	r.Register("state_get", s.Get)
	r.Register("state_set", s.Set)
	r.Register("state_delete", s.Delete)
}

func stringArg(args []any, i int, what string) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%s required", what)
	}
	v, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", what)
	}
	return v, nil
}

func (s *State) Get(ctx *Context, args []any) (any, error) {
	key, err := stringArg(args, 0, "key")
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	val, exists := s.data[key]
	s.mu.RUnlock()

	if !exists {
		return nil, nil
	}
	return val, nil
}

func (s *State) Set(ctx *Context, args []any) (any, error) {
	key, err := stringArg(args, 0, "key")
	if err != nil {
		return nil, err
	}
	val, err := stringArg(args, 1, "value")
	if err != nil {
		return nil, err
	}
	if len(key) > s.maxKeySize {
		return nil, fmt.Errorf("key exceeds %d bytes", s.maxKeySize)
	}
	if len(val) > s.maxValueSize {
		return nil, fmt.Errorf("value exceeds %d bytes", s.maxValueSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; !exists && len(s.data) >= s.maxEntries {
		return nil, errors.New("state store full")
	}
	s.data[key] = val
	return "ok", nil
}

func (s *State) Delete(ctx *Context, args []any) (any, error) {
	key, err := stringArg(args, 0, "key")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()

	return "ok", nil
}
