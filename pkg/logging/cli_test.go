package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIHandler_InfoMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo))

	logger.Info("loaded records")

	output := buf.String()
	assert.Contains(t, output, "loaded records")
	assert.Contains(t, output, colorGreen)
	assert.NotContains(t, output, colorRed)
}

func TestCLIHandler_WarnAndErrorColors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo))

	logger.Warn("skipping record")
	assert.Contains(t, buf.String(), colorYellow)

	buf.Reset()
	logger.Error("import failed")
	assert.Contains(t, buf.String(), colorRed)
	assert.Contains(t, buf.String(), colorReset)
}

func TestCLIHandler_LevelFiltering(t *testing.T) {
	tests := []struct {
		name         string
		handlerLevel slog.Level
		logFunc      func(*slog.Logger)
		shouldLog    bool
	}{
		{"info handler logs info", slog.LevelInfo, func(l *slog.Logger) { l.Info("x") }, true},
		{"info handler filters debug", slog.LevelInfo, func(l *slog.Logger) { l.Debug("x") }, false},
		{"debug handler logs debug", slog.LevelDebug, func(l *slog.Logger) { l.Debug("x") }, true},
		{"error handler logs error", slog.LevelError, func(l *slog.Logger) { l.Error("x") }, true},
		{"error handler filters info", slog.LevelError, func(l *slog.Logger) { l.Info("x") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewCLIHandler(&buf, tt.handlerLevel))

			tt.logFunc(logger)

			assert.Equal(t, tt.shouldLog, buf.Len() > 0)
		})
	}
}

func TestCLIHandler_IncludesAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewCLIHandler(&buf, slog.LevelInfo))

	logger.Info("saved facilities", "state", "MD", "count", 42)

	output := buf.String()
	assert.Contains(t, output, "saved facilities")
	assert.Contains(t, output, "state=MD")
	assert.Contains(t, output, "count=42")
}

func TestCLIHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := NewCLIHandler(&buf, slog.LevelInfo)

	logger := slog.New(handler).With("state", "MN")
	logger.Info("linked", "count", 3)

	output := buf.String()
	assert.Contains(t, output, "state=MN")
	assert.Contains(t, output, "count=3")

	// Bound attributes stay on the derived logger only.
	assert.Equal(t, handler, handler.WithAttrs(nil))
}

func TestCLIHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	handler := NewCLIHandler(&buf, slog.LevelInfo)

	grouped := handler.WithGroup("import")
	require.NotEqual(t, handler, grouped)

	slog.New(grouped).Info("done")

	output := buf.String()
	assert.Contains(t, output, "[import]")
	assert.Contains(t, output, "done")
}

func TestCLIHandler_WithGroup_Empty(t *testing.T) {
	var buf bytes.Buffer
	handler := NewCLIHandler(&buf, slog.LevelInfo)

	slog.New(handler.WithGroup("")).Info("no prefix")

	output := buf.String()
	assert.NotContains(t, output, "] no prefix")
	assert.Contains(t, output, "no prefix")
}

func TestSetDefaultLogger(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	SetDefaultLogger(true)

	require.NotNil(t, slog.Default())
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))

	SetDefaultLogger(false)
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"  debug  ", slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}
