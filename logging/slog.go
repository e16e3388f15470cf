package logging

import (
	"context"
	"io"
	"log/slog"
)

// Slog adapts the standard library's slog to the Logger interface. Keys
// attached via With ride along on the embedded *slog.Logger.
type Slog struct {
	base *slog.Logger
}

// NewSlog wraps an already configured *slog.Logger.
func NewSlog(base *slog.Logger) *Slog {
	return &Slog{base: base}
}

// NewJSON builds a JSON-emitting Slog on w. Debug lowers the level so
// Debug-level records are kept.
func NewJSON(w io.Writer, debug bool) *Slog {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &Slog{base: slog.New(handler)}
}

func (s *Slog) Debug(ctx context.Context, msg string, args ...any) {
	s.base.DebugContext(ctx, msg, args...)
}

func (s *Slog) Info(ctx context.Context, msg string, args ...any) {
	s.base.InfoContext(ctx, msg, args...)
}

func (s *Slog) Warn(ctx context.Context, msg string, args ...any) {
	s.base.WarnContext(ctx, msg, args...)
}

func (s *Slog) Error(ctx context.Context, msg string, args ...any) {
	s.base.ErrorContext(ctx, msg, args...)
}

func (s *Slog) With(args ...any) Logger {
	return &Slog{base: s.base.With(args...)}
}
