// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

// Package logger provides a thin wrapper around zerolog.Logger with
// convenience constructors and context-aware helpers used throughout offsync.
//
// The Logger type embeds zerolog.Logger so the full zerolog API (Debug, Info,
// Warn, Error, Fatal, ...) is available directly on *Logger. Application code
// passes *Logger by pointer and obtains request-scoped loggers via
// FromContext or FromRequest.
package logger

import (
	"context"
	"net/http"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a thin wrapper around zerolog.Logger. Embedding the upstream type
// exposes its API while leaving room for application helpers.
type Logger struct {
	zerolog.Logger
}

// New constructs a JSON logger writing to stdout for the given role label
// (e.g. "client", "server", "sync-worker"). Every entry carries the role, a
// timestamp, and the fully-qualified calling function in the "func" field.
func New(role string) *Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"

	l := zerolog.New(os.Stdout).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{l}
}

// Nop returns a *Logger that discards all output. Intended for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// GetChildLogger returns a new *Logger that inherits all fields of the
// receiver. The child logger can be enriched with additional context fields
// without affecting the parent logger.
func (l *Logger) GetChildLogger() *Logger {
	return &Logger{l.With().Logger()}
}

// WithContext stores the logger in ctx so downstream code can recover it via
// FromContext.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext extracts the zerolog.Logger stored in ctx. If none was
// attached, zerolog falls back to its global logger, so the result is never
// nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

// FromRequest extracts the request-scoped logger attached to r's context by
// the logging middleware.
func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}
