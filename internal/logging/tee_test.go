package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSink struct {
	level   slog.Level
	err     error
	handled int
}

func (s *stubSink) Enabled(_ context.Context, level slog.Level) bool {
	return level >= s.level
}

func (s *stubSink) Handle(context.Context, slog.Record) error {
	s.handled++
	return s.err
}

func (s *stubSink) WithAttrs([]slog.Attr) slog.Handler { return s }
func (s *stubSink) WithGroup(string) slog.Handler      { return s }

func record(level slog.Level) slog.Record {
	return slog.NewRecord(time.Now(), level, "msg", 0)
}

func TestTeeDeliversToAcceptingSinksOnly(t *testing.T) {
	stdout := &stubSink{level: slog.LevelDebug}
	pg := &stubSink{level: slog.LevelError}
	tee := NewTee(stdout, pg)

	require.NoError(t, tee.Handle(context.Background(), record(slog.LevelInfo)))
	assert.Equal(t, 1, stdout.handled)
	assert.Equal(t, 0, pg.handled, "error-only sink must not see info records")

	require.NoError(t, tee.Handle(context.Background(), record(slog.LevelError)))
	assert.Equal(t, 2, stdout.handled)
	assert.Equal(t, 1, pg.handled)
}

func TestTeeFailingSinkDoesNotBlockOthers(t *testing.T) {
	broken := &stubSink{level: slog.LevelDebug, err: errors.New("db down")}
	stdout := &stubSink{level: slog.LevelDebug}
	tee := NewTee(broken, stdout)

	err := tee.Handle(context.Background(), record(slog.LevelError))
	assert.Error(t, err)
	assert.Equal(t, 1, stdout.handled, "later sinks still receive the record")
}

func TestTeeEnabledIsAnySink(t *testing.T) {
	tee := NewTee(&stubSink{level: slog.LevelError}, &stubSink{level: slog.LevelInfo})

	assert.True(t, tee.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, tee.Enabled(context.Background(), slog.LevelDebug))
}
