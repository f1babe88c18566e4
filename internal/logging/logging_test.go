package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/easysplit/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(in), in)
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(logging.NewHandler(&buf, slog.LevelInfo, "json"))
	logger.Debug("hidden")
	logger.Info("split saved", "code", "ABCD1234")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "split saved", rec["msg"])
	assert.Equal(t, "ABCD1234", rec["code"])
}

func TestNewHandler_Text(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(logging.NewHandler(&buf, slog.LevelWarn, ""))
	logger.Info("hidden")
	logger.Warn("slow save")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "slow save")
}
