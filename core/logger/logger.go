package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

// Init replaces the process logger. format is "json" or "text"; level is
// one of debug, info, warn, error.
func Init(level, format string) {
	InitWithWriter(os.Stdout, level, format)
}

func InitWithWriter(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	current.Store(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Get() *slog.Logger {
	return current.Load()
}

func Debug(msg string, args ...any) {
	current.Load().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	current.Load().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	current.Load().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	current.Load().Error(msg, args...)
}
