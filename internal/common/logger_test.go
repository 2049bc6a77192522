package common

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		h, err := NewHandler(&buf, slog.LevelInfo, "json")
		require.NoError(t, err)

		slog.New(h).Info("saved", "id", "exp-1")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "saved", line["msg"])
		assert.Equal(t, "exp-1", line["id"])
	})

	t.Run("console filters below level", func(t *testing.T) {
		var buf bytes.Buffer
		h, err := NewHandler(&buf, slog.LevelWarn, "console")
		require.NoError(t, err)

		logger := slog.New(h)
		logger.Info("hidden")
		logger.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "msg=shown")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := NewHandler(&bytes.Buffer{}, slog.LevelInfo, "xml")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}
