package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medqueue/pkg/logger"
)

var app = config.AppConfig{Name: "medqueue", Environment: "test", Version: "1.2.3"}

func TestNew_JSONCarriesServiceFields(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")
	log, err := logger.New(config.LogConfig{Level: "info", Format: "json", OutputPath: out}, app)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("token called")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry), "exactly one json line expected, got %q", raw)
	assert.Equal(t, "token called", entry["msg"])
	assert.Equal(t, "medqueue", entry["service"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Contains(t, entry, "ts")
}

func TestNew_RejectsBadSettings(t *testing.T) {
	_, err := logger.New(config.LogConfig{Level: "loud", Format: "json", OutputPath: "stdout"}, app)
	assert.ErrorContains(t, err, "invalid log level")

	_, err = logger.New(config.LogConfig{Level: "info", Format: "xml", OutputPath: "stdout"}, app)
	assert.ErrorContains(t, err, "invalid log format")
}
