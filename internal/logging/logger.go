// Package logging defines the minimal structured-logging interface the
// journal engine depends on, plus a log/slog implementation. Components take
// the interface so tests can substitute a recorder.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// key-value pairs:
//
//	log.Info(ctx, "remote read degraded", "reason", err)
type Logger interface {
	// Debug logs developer-level detail.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions, e.g. a remote store
	// degrading to an empty result.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value
	// pairs.
	With(args ...any) Logger
}
