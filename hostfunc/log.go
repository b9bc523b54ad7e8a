package hostfunc

import "sync"

// Call is one recorded callback invocation.
type Call struct {
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

// Log accumulates the callback invocations made during one filter run, in
// call order. Recording is off until enabled by Reset.
type Log struct {
	mu      sync.Mutex
	enabled bool
	calls   []Call
}

// Reset clears the log and sets whether subsequent calls are recorded.
// The filter resets the log at the start of every run.
func (l *Log) Reset(enabled bool) {
	l.mu.Lock()
	l.enabled = enabled
	l.calls = nil
	l.mu.Unlock()
}

// Record appends a call if recording is enabled.
func (l *Log) Record(c Call) {
	l.mu.Lock()
	if l.enabled {
		l.calls = append(l.calls, c)
	}
	l.mu.Unlock()
}

// Calls returns a copy of the recorded calls in invocation order.
func (l *Log) Calls() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Call, len(l.calls))
	copy(out, l.calls)
	return out
}
