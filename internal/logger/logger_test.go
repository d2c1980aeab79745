package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.Output = &buf

	log, err := NewLogger(cfg)
	require.NoError(t, err)

	WithFileOperation(log, "a.jpg", "compress").Info("done")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "done", entry["message"])
	assert.Equal(t, "a.jpg", entry["file"])
	assert.Equal(t, "compress", entry["operation"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = "error"
	cfg.Output = &buf

	log, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, logrus.ErrorLevel, log.GetLevel())

	log.Info("hidden")
	assert.Empty(t, buf.String())

	_, err = NewLogger(LoggerConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	cfg := DefaultConfig()
	cfg.FilePath = path
	cfg.Console = false

	log, err := NewLogger(cfg)
	require.NoError(t, err)

	WithFile(log, "b.png").Warn("fallback")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fallback")
	assert.Contains(t, string(data), "file=b.png")
}
