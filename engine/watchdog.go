package engine

import (
	"sync"
	"time"
)

// TimeoutReason is the termination reason reported when the watchdog fires.
const TimeoutReason = "Filter aborted due to timeout"

// Watchdog terminates in-flight execution on an engine after a fixed
// timeout. It is the external cancellation source referred to by the filter
// contract: a run interrupted by the watchdog reports TimeoutReason as its
// diagnostic.
type Watchdog struct {
	eng   *Engine
	mu    sync.Mutex
	timer *time.Timer
}

func NewWatchdog(eng *Engine) *Watchdog {
	return &Watchdog{eng: eng}
}

// Arm starts the countdown. A non-positive duration leaves the watchdog
// disarmed. Re-arming restarts the countdown.
func (w *Watchdog) Arm(d time.Duration) {
	w.Disarm()
	if d <= 0 {
		return
	}
	w.mu.Lock()
	w.timer = time.AfterFunc(d, func() {
		w.eng.Terminate(TimeoutReason)
	})
	w.mu.Unlock()
}

// Disarm stops the countdown if it has not fired yet.
func (w *Watchdog) Disarm() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
}
