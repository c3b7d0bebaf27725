package helper

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPrettyHandler(t *testing.T) {
	t.Run("Create PrettyHandler with default options", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		assert.NotNil(t, handler, "Expected NewPrettyHandler to return a non-nil handler")
		assert.NotNil(t, handler.Handler, "Expected handler to have a non-nil Handler field")
		assert.NotNil(t, handler.l, "Expected handler to have a non-nil logger field")
	})

	t.Run("Create PrettyHandler with custom level", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{Level: slog.LevelDebug},
		})

		assert.NotNil(t, handler, "Expected NewPrettyHandler to return a non-nil handler")
	})
}

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	newBufferedHandler := func() (*PrettyHandler, *bytes.Buffer) {
		var buf bytes.Buffer
		return NewPrettyHandler(&buf, PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{Level: slog.LevelDebug},
		}), &buf
	}

	t.Run("Handle log with attributes", func(t *testing.T) {
		handler, buf := newBufferedHandler()

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "resolved query", 0)
		record.AddAttrs(slog.String("level", "worktype_few"), slog.Int("work_types", 3))

		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		output := buf.String()
		assert.Contains(t, output, "INFO:", "Expected output to contain the level")
		assert.Contains(t, output, "resolved query", "Expected output to contain the message")
		assert.Contains(t, output, "worktype_few", "Expected output to contain attribute value")
		assert.Contains(t, output, "3", "Expected output to contain attribute value")
	})

	t.Run("Handle all levels", func(t *testing.T) {
		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
			handler, buf := newBufferedHandler()

			record := slog.NewRecord(time.Now(), level, "message", 0)
			err := handler.Handle(ctx, record)

			assert.NoError(t, err, "Expected Handle to not return an error")
			assert.Contains(t, buf.String(), level.String()+":", "Expected output to contain level %v", level)
		}
	})

	t.Run("Handle log with no attributes", func(t *testing.T) {
		handler, buf := newBufferedHandler()

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "simple message", 0)
		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		assert.Contains(t, buf.String(), "{}", "Expected output to contain empty JSON object for attributes")
	})

	t.Run("Handle log formats timestamp correctly", func(t *testing.T) {
		handler, buf := newBufferedHandler()

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "time test", 0)
		err := handler.Handle(ctx, record)

		assert.NoError(t, err, "Expected Handle to not return an error")
		assert.Regexp(t, `\[\d{2}:\d{2}:\d{2}\.\d{3}\]`, buf.String(),
			"Expected output to contain properly formatted timestamp")
	})
}
