package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vsinha/prodsched/pkg/infrastructure/config"
)

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prodsched.log")
	logger, err := New(config.LogConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
		MaxSize:  1,
	})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("schedule committed")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "schedule committed")
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_Rejects(t *testing.T) {
	_, err := New(config.LogConfig{Level: "verbose"})
	assert.Error(t, err)

	_, err = New(config.LogConfig{Level: "info", Output: "syslog"})
	assert.Error(t, err)
}

func TestNew_DevelopmentConsole(t *testing.T) {
	logger, err := New(config.LogConfig{Level: "debug", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}
