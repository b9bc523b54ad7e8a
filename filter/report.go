package filter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/jupiter950/multichain/engine"
)

// location pinpoints the offending token of a script failure. Line and
// column numbers are 1-based, as reported by the engine. EndCol is
// exclusive.
type location struct {
	Source   string
	Line     int
	StartCol int
	EndCol   int
	Text     string
}

// reportException converts an engine-level failure into the message text
// returned to the caller. When the failure carries position information and
// the offending line can be recovered from the loaded sources, the full
// location is logged at debug level with a caret underline; the location is
// diagnostic only and never part of the returned text.
func (f *Filter) reportException(err error) string {
	msg := exceptionMessage(err)

	loc, ok := f.exceptionLocation(err)
	if !ok {
		engine.Logger().Debug("filter: exception", zap.String("message", msg))
		return msg
	}

	engine.Logger().Debug("filter: exception",
		zap.String("message", msg),
		zap.String("source", loc.Source),
		zap.Int("line", loc.Line),
		zap.Int("startColumn", loc.StartCol),
		zap.Int("endColumn", loc.EndCol),
		zap.String("sourceLine", loc.Text),
		zap.String("caret", caretLine(loc)),
	)
	return msg
}

// exceptionMessage renders the failure the way the script would see it:
// a thrown value is converted to text, anything else falls back to the
// engine's error string.
func exceptionMessage(err error) string {
	if ex, ok := err.(*goja.Exception); ok {
		if v := ex.Value(); v != nil {
			return v.String()
		}
	}
	return err.Error()
}

// Compile errors arrive as "<origin>: Line L:C message"; runtime exceptions
// carry stack frames of the form "<origin>:L:C(pc)".
const (
	lineColPattern  = `: Line (\d+):(\d+)`
	frameColPattern = `:(\d+):(\d+)`
)

// exceptionLocation extracts the source position from a failure. All fields
// are produced together or not at all: if the reported line cannot be
// recovered from the loaded script text, no location is reported.
func (f *Filter) exceptionLocation(err error) (location, bool) {
	detail := err.Error()

	for _, origin := range []string{originScript, originPreamble} {
		text, ok := f.sources[origin]
		if !ok {
			continue
		}
		quoted := regexp.QuoteMeta(origin)
		m := regexp.MustCompile(quoted + lineColPattern).FindStringSubmatch(detail)
		if m == nil {
			m = regexp.MustCompile(quoted + frameColPattern).FindStringSubmatch(detail)
		}
		if m == nil {
			continue
		}

		line, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		lines := strings.Split(text, "\n")
		if line < 1 || line > len(lines) || col < 1 {
			return location{}, false
		}
		srcLine := strings.TrimRight(lines[line-1], "\r")
		return location{
			Source:   origin,
			Line:     line,
			StartCol: col,
			EndCol:   spanEnd(srcLine, col),
			Text:     srcLine,
		}, true
	}
	return location{}, false
}

// spanEnd scans the token starting at the 1-based start column and returns
// the exclusive end column. The engine only reports a start position, so the
// span covers the identifier or at minimum one character.
func spanEnd(line string, start int) int {
	i := start - 1
	if i >= len(line) {
		return start + 1
	}
	j := i
	for j < len(line) && isTokenChar(line[j]) {
		j++
	}
	if j == i {
		j = i + 1
	}
	return j + 1
}

func isTokenChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func caretLine(loc location) string {
	return strings.Repeat(" ", loc.StartCol-1) + strings.Repeat("^", loc.EndCol-loc.StartCol)
}
