package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelTrace, ParseLevel("trace"))
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestTraceLevelLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, handlerOptions(LevelTrace)))

	logger.Log(context.Background(), LevelTrace, "raw frame")
	out := buf.String()
	assert.Contains(t, out, "level=TRACE")
	assert.NotContains(t, out, "DEBUG-4")
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	h := LevelFilter{
		pass: func(l slog.Level) bool { return l >= slog.LevelError },
		h:    slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
	logger := slog.New(h)

	logger.Info("kept out")
	logger.Error("let through")

	out := buf.String()
	assert.NotContains(t, out, "kept out")
	assert.Contains(t, out, "let through")
}

func TestMultiHandlerFanOut(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(MultiHandler{hs: []slog.Handler{
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, nil),
	}})

	logger.Info("hello")
	assert.Contains(t, a.String(), "hello")
	assert.Contains(t, b.String(), "hello")
}

func TestRawLoggerHexLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewRaw(&buf)

	r.Log(RawBus, []byte{0x01, 0x80, 0xFF})
	line := buf.String()
	assert.Contains(t, line, "BUS report: 3 bytes")
	assert.Contains(t, line, "01 80 ff")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestRawLoggerNoop(t *testing.T) {
	r := NewRaw(nil)
	r.Log(RawDev, []byte{0x01})

	var buf bytes.Buffer
	NewRaw(&buf).Log(RawDev, nil)
	assert.Zero(t, buf.Len())
}
