package filter

import (
	"github.com/jupiter950/multichain/engine"
	"github.com/jupiter950/multichain/hostfunc"
)

// Eval loads a filter script, runs its entry function once with callback
// recording enabled, and destroys the instance. It is a convenience for
// one-shot evaluation; hosts that run the same filter repeatedly should keep
// a Filter instead.
//
// The status/diagnostic contract matches Initialize and Run: err is non-nil
// only for configuration faults, every script-level failure comes back as
// diagnostic text.
func Eval(eng *engine.Engine, script, entryName string, callbackNames []string) (string, []hostfunc.Call, error) {
	f := New()
	defer f.Destroy()

	diag, err := f.Initialize(eng, script, entryName, callbackNames)
	if err != nil || diag != "" {
		return diag, nil, err
	}
	return f.RunWithCallbackLog()
}
