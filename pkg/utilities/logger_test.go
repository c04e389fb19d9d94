package utilities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, "debug", levelFromString("debug").String())
	assert.Equal(t, "warn", levelFromString("warning").String())
	assert.Equal(t, "info", levelFromString("nonsense").String())
}

func TestInitWithFile(t *testing.T) {
	dir := t.TempDir()
	lg, err := Init(Config{Level: "info", File: dir + "/service.log"})
	require.NoError(t, err)
	lg.Info("hello")
	_ = lg.Sync()
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_DEV", "1")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("SERVICE_NAME", "")
	cfg := ConfigFromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, cfg.Dev)
	assert.Equal(t, "service-media-go", cfg.Service)

	lg, err := Init(cfg)
	require.NoError(t, err)
	assert.True(t, lg.Core().Enabled(levelFromString("debug")))
}
