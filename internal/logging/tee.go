package logging

import (
	"context"
	"errors"
	"log/slog"
)

// TeeHandler delivers each record to every sink that accepts its level. A
// failing sink does not stop delivery to the others; stdout logging must
// survive a Postgres outage.
type TeeHandler struct {
	sinks []slog.Handler
}

func NewTee(sinks ...slog.Handler) *TeeHandler {
	return &TeeHandler{sinks: sinks}
}

func (t *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range t.sinks {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *TeeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, s := range t.sinks {
		if !s.Enabled(ctx, record.Level) {
			continue
		}
		if err := s.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sinks := make([]slog.Handler, len(t.sinks))
	for i, s := range t.sinks {
		sinks[i] = s.WithAttrs(attrs)
	}
	return &TeeHandler{sinks: sinks}
}

func (t *TeeHandler) WithGroup(name string) slog.Handler {
	sinks := make([]slog.Handler, len(t.sinks))
	for i, s := range t.sinks {
		sinks[i] = s.WithGroup(name)
	}
	return &TeeHandler{sinks: sinks}
}
