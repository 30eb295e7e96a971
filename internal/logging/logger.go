package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// New returns a structured logger. Output goes to w, or stderr when w is nil,
// because stdout carries the MCP stdio stream while serving.
func New(level, format string, w io.Writer) *pterm.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := pterm.DefaultLogger.
		WithLevel(ParseLevel(level)).
		WithWriter(w).
		WithTime(true)
	if strings.EqualFold(format, "json") {
		l = l.WithFormatter(pterm.LogFormatterJSON)
	}
	return l
}

// ParseLevel maps a config level name to a pterm level. Unknown names map to info.
func ParseLevel(level string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "disabled":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}

// APILogger adapts l to the neonapi request hook. Events are logged at trace level.
func APILogger(l *pterm.Logger) func(event string, metadata map[string]any) {
	return func(event string, metadata map[string]any) {
		args := make([]any, 0, len(metadata)*2)
		for k, v := range metadata {
			if s, ok := v.(string); ok {
				v = Mask(s)
			}
			args = append(args, k, v)
		}
		l.Trace("neon api "+event, l.Args(args...))
	}
}
