// Package logger sets up the JSON slog handler and carries request-scoped
// loggers (trace ID, user ID) through context.Context.
package logger
