package logger

import (
	"fmt"

	"github.com/spendindex/spendindex/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process-wide zap logger and replaces the globals.
// Production output is JSON with ISO-8601 timestamps; dev environments
// get the console encoder. Every entry carries the service name and
// version so aggregated streams stay attributable.
func New(appCfg config.Config) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if appCfg.IsDev() {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := appCfg.LogLevel
	if level == "" {
		level = "info"
	}
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	logger = logger.With(
		zap.String("service", appCfg.AppName),
		zap.String("version", appCfg.AppVersion),
	)

	zap.ReplaceGlobals(logger)
	return logger, nil
}
