package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestConditionalSourceHandler(t *testing.T) {
	tests := []struct {
		name             string
		level            slog.Level
		showSourceLevels []slog.Level
		shouldHaveSource bool
	}{
		{
			name:             "info without source config",
			level:            slog.LevelInfo,
			showSourceLevels: []slog.Level{slog.LevelWarn, slog.LevelError},
			shouldHaveSource: false,
		},
		{
			name:             "warn with source config",
			level:            slog.LevelWarn,
			showSourceLevels: []slog.Level{slog.LevelWarn, slog.LevelError},
			shouldHaveSource: true,
		},
		{
			name:             "error with source config",
			level:            slog.LevelError,
			showSourceLevels: []slog.Level{slog.LevelWarn, slog.LevelError},
			shouldHaveSource: true,
		},
		{
			name:             "debug without source config",
			level:            slog.LevelDebug,
			showSourceLevels: []slog.Level{slog.LevelWarn, slog.LevelError},
			shouldHaveSource: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			baseHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: false,
			})
			handler := NewConditionalSourceHandler(baseHandler, tt.showSourceLevels...)

			logger := slog.New(handler)
			logger.Log(t.Context(), tt.level, "test message")

			hasSource := strings.Contains(buf.String(), "source=")
			if hasSource != tt.shouldHaveSource {
				t.Errorf("expected source=%v, got %v. Output: %s", tt.shouldHaveSource, hasSource, buf.String())
			}
		})
	}
}

func TestConditionalSourceHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	baseHandler := slog.NewTextHandler(&buf, &slog.HandlerOptions{AddSource: false})
	handler := NewConditionalSourceHandler(baseHandler, slog.LevelError)

	logger := slog.New(handler).With("order_id", "ORD-1")
	logger.Info("test message")

	output := buf.String()
	if strings.Contains(output, "source=") {
		t.Errorf("expected no source for info level. Output: %s", output)
	}
	if !strings.Contains(output, "order_id=ORD-1") {
		t.Errorf("expected order_id attribute. Output: %s", output)
	}
}
