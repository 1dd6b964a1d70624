package logger

import (
	"testing"

	"github.com/spendindex/spendindex/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_DefaultsLevelToInfo(t *testing.T) {
	log, err := New(config.Config{
		AppName:     "spendindex",
		AppVersion:  "test",
		Environment: "production",
	})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(config.Config{LogLevel: "loud"})
	require.Error(t, err)
}
