package scrollspy

import (
	"fmt"
	"strings"

	"github.com/grindlemire/go-scrollspy/internal/debug"
)

// Logger receives session lifecycle messages as key-value pairs:
//
//	logger.Debug("observer ready", "session", id, "regions", 4)
//
// The signature matches log/slog and zap's SugaredLogger "w" methods
// closely enough for a thin adapter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// debugLogger writes to the SCROLLSPY_DEBUG file, if any.
type debugLogger struct{}

func (debugLogger) Debug(msg string, args ...any) { debugLog("DEBUG", msg, args) }
func (debugLogger) Info(msg string, args ...any)  { debugLog("INFO", msg, args) }
func (debugLogger) Warn(msg string, args ...any)  { debugLog("WARN", msg, args) }
func (debugLogger) Error(msg string, args ...any) { debugLog("ERROR", msg, args) }

// debugLog skips formatting when no debug file is open.
func debugLog(level, msg string, args []any) {
	if !debug.Enabled() {
		return
	}
	debug.Log("%s %s", level, formatKV(msg, args))
}

func formatKV(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	return b.String()
}
