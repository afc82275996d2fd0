package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger_LevelFiltering(t *testing.T) {
	out := &SafeBuffer{}
	logger := newLogger(&Config{LogLevel: "warn", LogFormat: "text"}, out)

	logger.Info("quiet")
	logger.Warn("loud")

	assert.NotContains(t, out.String(), "quiet")
	assert.Contains(t, out.String(), "loud")
}

func TestNewLogger_JSONFormat(t *testing.T) {
	out := &SafeBuffer{}
	logger := newLogger(&Config{LogLevel: "info", LogFormat: "json"}, out)

	logger.Info("hello", "project", "BufferStock")

	assert.Contains(t, out.String(), `"msg":"hello"`)
	assert.Contains(t, out.String(), `"project":"BufferStock"`)
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	out := &SafeBuffer{}
	logger := newLogger(&Config{}, out)

	logger.Debug("hidden")
	logger.Info("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
}
