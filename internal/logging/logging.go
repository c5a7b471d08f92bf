// Package logging provides the small leveled logger passed through the
// engine, the checkers and the Risor script runtime.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Level orders log messages by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel resolves a level name such as "debug" or "warn".
func ParseLevel(s string) (Level, error) {
	for l := LevelDebug; l <= LevelError; l++ {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	return LevelInfo, fmt.Errorf("logging: unknown level %q", s)
}

// Logger is the logging interface every component accepts.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// writerLogger writes "[prefix] LEVEL: message" lines.
type writerLogger struct {
	mu     sync.Mutex
	w      io.Writer
	prefix string
	min    Level
}

// New returns a Logger writing messages at or above min to w.
func New(w io.Writer, prefix string, min Level) Logger {
	return &writerLogger{w: w, prefix: prefix, min: min}
}

func (l *writerLogger) logf(level Level, format string, args ...any) {
	if level < l.min {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[%s] %s: %s\n", l.prefix, level, msg)
}

func (l *writerLogger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *writerLogger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *writerLogger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *writerLogger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

// slogLevels maps each Level to its slog counterpart.
var slogLevels = [...]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// Slog returns the slog level for l.
func (l Level) Slog() slog.Level {
	if l < LevelDebug || l > LevelError {
		return slog.LevelInfo
	}
	return slogLevels[l]
}

// slogLogger forwards formatted messages to a *slog.Logger.
type slogLogger struct {
	l *slog.Logger
}

// FromSlog adapts l to Logger. A nil l means slog.Default().
func FromSlog(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return slogLogger{l: l}
}

func (s slogLogger) logf(level Level, format string, args ...any) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, level.Slog()) {
		return
	}
	s.l.Log(ctx, level.Slog(), fmt.Sprintf(format, args...))
}

func (s slogLogger) Debugf(format string, args ...any) { s.logf(LevelDebug, format, args...) }
func (s slogLogger) Infof(format string, args ...any)  { s.logf(LevelInfo, format, args...) }
func (s slogLogger) Warnf(format string, args ...any)  { s.logf(LevelWarn, format, args...) }
func (s slogLogger) Errorf(format string, args ...any) { s.logf(LevelError, format, args...) }

type nop struct{}

func (nop) Debugf(string, ...any) {}
func (nop) Infof(string, ...any)  {}
func (nop) Warnf(string, ...any)  {}
func (nop) Errorf(string, ...any) {}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nop{} }

// OrNop returns l, or Nop when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}
