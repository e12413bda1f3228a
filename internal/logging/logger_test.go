package logging

import (
	"os"
	"path/filepath"
	"testing"

	"autoshop/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testApp = config.AppConfig{Name: "autoshop", Environment: "test", Version: "0.0.1"}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.LoggingConfig
		level zerolog.Level
	}{
		{"empty defaults to info", config.LoggingConfig{}, zerolog.InfoLevel},
		{"debug to stderr", config.LoggingConfig{Level: "debug", Output: "stderr"}, zerolog.DebugLevel},
		{"console warn", config.LoggingConfig{Level: " WARN ", Format: "console"}, zerolog.WarnLevel},
		{"garbage level", config.LoggingConfig{Level: "loud"}, zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, closer, err := New(tt.cfg, testApp)
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.Nil(t, closer)
			assert.Equal(t, tt.level, logger.GetLevel())
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "autoshop.log")
	cfg := config.LoggingConfig{Level: "debug", Output: "file", FilePath: logPath}
	logger, closer, err := New(cfg, testApp)
	require.NoError(t, err)
	require.NotNil(t, closer)

	Component(logger, "worker").Info().Msg("report finished")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, `"app":"autoshop"`)
	assert.Contains(t, line, `"env":"test"`)
	assert.Contains(t, line, `"component":"worker"`)
	assert.Contains(t, line, `"message":"report finished"`)
}

func TestNew_FileWithoutPath(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Output: "file"}, testApp)
	assert.Error(t, err)
}

func TestComponentNilBase(t *testing.T) {
	assert.NotPanics(t, func() {
		Component(nil, "api").Info().Msg("dropped")
	})
}
