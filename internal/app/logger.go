package app

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/specialistvlad/modfactory/internal/ctxlog"
)

func parseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "trace":
		return ctxlog.LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger creates and configures a new slog.Logger instance. It does not
// set the global logger, allowing for isolated logger instances. The text
// format is rendered by charmbracelet/log, the json format by slog.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	level := parseLevel(levelStr)

	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.LevelKey && len(groups) == 0 {
					if l, ok := a.Value.Any().(slog.Level); ok {
						a.Value = slog.StringValue(ctxlog.LevelName(l))
					}
				}
				return a
			},
		}))
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           log.Level(level),
		Prefix:          "modfactory",
		ReportTimestamp: true,
	})
	return slog.New(handler)
}
