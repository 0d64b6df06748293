package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/enterprise/ga-view-proxy/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestNew_LevelAndFormat(t *testing.T) {
	log := New(config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"})

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
	assert.Equal(t, os.Stderr, log.Out)
}

func TestNew_Defaults(t *testing.T) {
	log := New(config.LoggingConfig{Level: "nonsense"})

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
	assert.Equal(t, os.Stdout, log.Out)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxy.log")

	log := New(config.LoggingConfig{Level: "info", Output: path})
	log.Info("written")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"written"`)
	assert.Contains(t, string(data), `"severity":"info"`)
}

func TestNew_RotatedFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxy.log")

	log := New(config.LoggingConfig{Output: path, FileRotation: true, MaxSize: 1})

	rotated, ok := log.Out.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, path, rotated.Filename)
}
