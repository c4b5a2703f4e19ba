// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package uiframe

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled reports false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger shared by uiframe and its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used by uiframe:
//   - [slog.LevelDebug]: per-frame diagnostics (region fallback, cache
//     eviction, deferred work rolled over to the next frame)
//   - [slog.LevelInfo]: lifecycle events (scheduler created or closed,
//     viewport resized)
//   - [slog.LevelWarn]: non-fatal anomalies (oversized cache entry admitted)
//
// Example:
//
//	uiframe.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Sub-packages call this to share the
// same configuration without an import cycle back to their callers.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
