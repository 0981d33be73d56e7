package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestSlogLogger_Levels(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		log   func(l *SlogLogger)
		level string
	}{
		{"debug", func(l *SlogLogger) { l.Debug(ctx, "m") }, "DEBUG"},
		{"info", func(l *SlogLogger) { l.Info(ctx, "m") }, "INFO"},
		{"warn", func(l *SlogLogger) { l.Warn(ctx, "m") }, "WARN"},
		{"error", func(l *SlogLogger) { l.Error(ctx, "m") }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newBufferedLogger(t)
			tt.log(l)
			m := decodeLine(t, buf)
			assert.Equal(t, tt.level, m["level"])
			assert.Equal(t, "m", m["msg"])
		})
	}
}

func TestSlogLogger_With(t *testing.T) {
	l, buf := newBufferedLogger(t)

	child := l.With("component", "registry")
	child.Info(context.Background(), "saved", "user", "alice")

	m := decodeLine(t, buf)
	assert.Equal(t, "registry", m["component"])
	assert.Equal(t, "alice", m["user"])
}
