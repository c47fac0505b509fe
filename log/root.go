// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

var root atomic.Value

func init() {
	root.Store(&logger{slog.New(DiscardHandler())})
}

// SetDefault sets the default global logger
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the root logger
func Root() Logger {
	return root.Load().(Logger)
}

// The following functions bypass the exported logger methods (logger.Debug,
// etc.) to keep the call depth the same for all paths to logger.Write so
// runtime.Caller(2) always refers to the call site in client code.

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...any) {
	Root().Write(LevelTrace, msg, ctx...)
}

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...any) {
	Root().Write(slog.LevelDebug, msg, ctx...)
}

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...any) {
	Root().Write(slog.LevelInfo, msg, ctx...)
}

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...any) {
	Root().Write(slog.LevelWarn, msg, ctx...)
}

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...any) {
	Root().Write(slog.LevelError, msg, ctx...)
}

// Crit is a convenient alias for Root().Crit
func Crit(msg string, ctx ...any) {
	Root().Write(LevelCrit, msg, ctx...)
	os.Exit(1)
}

// New returns a new logger with the given context.
// New is a convenient alias for Root().New
func New(ctx ...any) Logger {
	return Root().With(ctx...)
}

// WithContext returns a logger that resolves the root logger on every call,
// so package level loggers follow later SetDefault calls.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) resolve() Logger { return Root().With(l.ctx...) }

func (l *lazyLogger) With(ctx ...any) Logger {
	return &lazyLogger{ctx: append(append([]any{}, l.ctx...), ctx...)}
}
func (l *lazyLogger) New(ctx ...any) Logger { return l.With(ctx...) }
func (l *lazyLogger) Log(level slog.Level, msg string, ctx ...any) {
	l.resolve().Write(level, msg, ctx...)
}
func (l *lazyLogger) Trace(msg string, ctx ...any) { l.resolve().Write(LevelTrace, msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.resolve().Write(slog.LevelDebug, msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.resolve().Write(slog.LevelInfo, msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.resolve().Write(slog.LevelWarn, msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.resolve().Write(slog.LevelError, msg, ctx...) }
func (l *lazyLogger) Crit(msg string, ctx ...any) {
	l.resolve().Write(LevelCrit, msg, ctx...)
	os.Exit(1)
}
func (l *lazyLogger) Write(level slog.Level, msg string, attrs ...any) {
	l.resolve().Write(level, msg, attrs...)
}
func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return Root().Enabled(ctx, level)
}
func (l *lazyLogger) Handler() slog.Handler { return Root().Handler() }
