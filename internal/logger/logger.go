// Package logger configures the application slog loggers.
//
// Two handler styles are used depending on the server environment:
//   - dev/test: human-readable colorized output (tint)
//   - staging/prod: JSON output suitable for log aggregation
//
// The package also provides request-scoped loggers: the request logging
// middleware stores a logger carrying the request id in the request context,
// and handlers retrieve it with ContextRequestLogger. Handlers can attach
// extra attributes to the final request log line with ContextWithLogAttrs.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// LevelNone disables logging entirely (used by tests).
const LevelNone = slog.Level(128)

// ParseLogLevel converts a LOG_LEVEL string to a slog.Level.
// Unrecognized values default to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		return LevelNone
	default:
		return slog.LevelInfo
	}
}

// InitLogger creates the application logger for the given level and server
// environment and installs it as the slog default.
func InitLogger(level slog.Level, environment string) *slog.Logger {
	if level == LevelNone {
		l := slog.New(slog.DiscardHandler)
		slog.SetDefault(l)
		return l
	}

	var handler slog.Handler
	switch environment {
	case "dev", "test":
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

type contextKey int

const (
	requestLoggerKey contextKey = iota
	logAttrsKey
)

// attrCollector accumulates attributes added by handlers during a request.
// The request logging middleware includes them in the final request log.
type attrCollector struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

// ContextWithRequestLogger returns a context carrying the request-scoped
// logger and an empty attribute collector.
func ContextWithRequestLogger(ctx context.Context, l *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, requestLoggerKey, l)
	return context.WithValue(ctx, logAttrsKey, &attrCollector{})
}

// ContextRequestLogger returns the request-scoped logger stored in ctx,
// falling back to the process default logger.
func ContextRequestLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(requestLoggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// ContextWithLogAttrs records attributes to be included in the final request
// log line. No-op if the context has no collector (e.g. outside a request).
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) {
	c, ok := ctx.Value(logAttrsKey).(*attrCollector)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attrs = append(c.attrs, attrs...)
}

// CollectedLogAttrs returns the attributes recorded during the request.
func CollectedLogAttrs(ctx context.Context) []slog.Attr {
	c, ok := ctx.Value(logAttrsKey).(*attrCollector)
	if !ok {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]slog.Attr(nil), c.attrs...)
}
