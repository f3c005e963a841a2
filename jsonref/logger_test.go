package jsonref

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := NewSlogAdapter(slog.New(handler))

	logger.Debug("resolved reference", "ref", "#/definitions/Pet")
	assert.Contains(t, buf.String(), "resolved reference")
	assert.Contains(t, buf.String(), "#/definitions/Pet")

	buf.Reset()
	child := logger.With("session", "abc")
	child.Warn("circular references left unexpanded")
	assert.Contains(t, buf.String(), "session=abc")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestNewSlogAdapterNilDefaults(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	require.NotNil(t, adapter)
	// Must not panic.
	adapter.Info("ok")
}

func TestResolveLogsCircularRefs(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := NewSlogAdapter(slog.New(handler))

	spec := map[string]any{
		"self": map[string]any{"$ref": "#"},
	}
	_, err := Resolve(spec, WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "circular references left unexpanded")
}
