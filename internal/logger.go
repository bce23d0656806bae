package internal

import (
	"io"
	"log/slog"
	"time"
)

// NewLogger builds the process logger: JSON with RFC3339Nano timestamps in
// prod, human-readable text everywhere else. Unknown levels fall back to info.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	lvl := new(slog.LevelVar) // info by default
	switch level {
	case "debug":
		lvl.Set(slog.LevelDebug)
	case "info":
	case "warn":
		lvl.Set(slog.LevelWarn)
	case "error":
		lvl.Set(slog.LevelError)
	default:
		slog.Default().Warn("Invalid log level. Using default level: info", slog.String("value", level))
	}

	var h slog.Handler
	if env == "prod" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: lvl,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String("time", a.Value.Time().Format(time.RFC3339Nano))
				}
				return a
			},
		})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	}

	return slog.New(h).With(slog.String("service", "donation"))
}
