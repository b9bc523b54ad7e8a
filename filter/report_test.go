package filter

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jupiter950/multichain/engine"
)

func TestSpanEnd(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		start int
		want  int
	}{
		{"identifier", "x = missingVar;", 5, 15},
		{"identifier with digits", "foo2bar()", 1, 8},
		{"punctuation", "a + + b", 3, 4},
		{"end of line", "abc", 4, 5},
		{"dollar and underscore", "$my_var", 1, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := spanEnd(tt.line, tt.start); got != tt.want {
				t.Errorf("spanEnd(%q, %d) = %d, want %d", tt.line, tt.start, got, tt.want)
			}
		})
	}
}

func TestCaretLine(t *testing.T) {
	loc := location{StartCol: 3, EndCol: 6}
	if got := caretLine(loc); got != "  ^^^" {
		t.Errorf("caretLine = %q", got)
	}
}

func TestExceptionMessageFallback(t *testing.T) {
	err := errors.New("engine gave up")
	if got := exceptionMessage(err); got != "engine gave up" {
		t.Errorf("unexpected message: %q", got)
	}
}

// captureLogs routes the subsystem logger into an observer for the duration
// of the test.
func captureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	engine.SetLogger(zap.New(core))
	t.Cleanup(func() { engine.SetLogger(nil) })
	return logs
}

func exceptionEntries(logs *observer.ObservedLogs) []observer.LoggedEntry {
	return logs.FilterMessage("filter: exception").All()
}

func TestRuntimeExceptionLocationLogged(t *testing.T) {
	logs := captureLogs(t)

	f := New()
	defer f.Destroy()
	script := "function main(){\n    undefinedVar.x;\n}"
	diag, err := f.Initialize(engine.New(nil), script, "main", nil)
	if err != nil || diag != "" {
		t.Fatalf("Initialize: %v %s", err, diag)
	}

	out, err := f.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out == "" {
		t.Fatal("expected diagnostic text")
	}

	entries := exceptionEntries(logs)
	if len(entries) == 0 {
		t.Fatal("expected an exception log entry")
	}
	fields := entries[len(entries)-1].ContextMap()

	if fields["source"] != originScript {
		t.Errorf("expected source %q, got %v", originScript, fields["source"])
	}
	if fields["line"] != int64(2) {
		t.Errorf("expected line 2, got %v", fields["line"])
	}
	start, _ := fields["startColumn"].(int64)
	end, _ := fields["endColumn"].(int64)
	if start < 1 || end <= start {
		t.Errorf("bad column span: %d..%d", start, end)
	}
	srcLine, _ := fields["sourceLine"].(string)
	if !strings.Contains(srcLine, "undefinedVar") {
		t.Errorf("unexpected source line: %q", srcLine)
	}
	caret, _ := fields["caret"].(string)
	if len(caret) != int(end)-1 {
		t.Errorf("caret %q does not align with span %d..%d", caret, start, end)
	}
}

func TestCompileErrorLocationLogged(t *testing.T) {
	logs := captureLogs(t)

	f := New()
	defer f.Destroy()
	diag, err := f.Initialize(engine.New(nil), "function main( {", "main", nil)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if diag == "" {
		t.Fatal("expected compile diagnostic")
	}

	entries := exceptionEntries(logs)
	if len(entries) == 0 {
		t.Fatal("expected an exception log entry")
	}
	fields := entries[len(entries)-1].ContextMap()
	if msg, _ := fields["message"].(string); msg == "" {
		t.Error("expected message field")
	}
	// Location, when present, must point into the script.
	if src, ok := fields["source"]; ok {
		if src != originScript {
			t.Errorf("expected source %q, got %v", originScript, src)
		}
		if fields["line"] != int64(1) {
			t.Errorf("expected line 1, got %v", fields["line"])
		}
	}
}

func TestLocationAllOrNothing(t *testing.T) {
	f := &Filter{sources: map[string]string{originScript: "one line only"}}

	// A position beyond the script's extent reports no location.
	err := errors.New("SomeError at <script>:99:1(1)")
	if _, ok := f.exceptionLocation(err); ok {
		t.Error("out-of-range line should not produce a location")
	}

	// An error with no position information reports no location.
	if _, ok := f.exceptionLocation(errors.New("no position here")); ok {
		t.Error("positionless error should not produce a location")
	}
}

func TestPreambleOriginRecognized(t *testing.T) {
	f := &Filter{sources: map[string]string{
		originPreamble: "first\nsecond preamble line",
	}}
	err := errors.New("TypeError: boom at preamble:2:8(1)")
	loc, ok := f.exceptionLocation(err)
	if !ok {
		t.Fatal("expected a location")
	}
	if loc.Source != originPreamble || loc.Line != 2 || loc.StartCol != 8 {
		t.Errorf("unexpected location: %+v", loc)
	}
	if loc.Text != "second preamble line" {
		t.Errorf("unexpected source line: %q", loc.Text)
	}
}
