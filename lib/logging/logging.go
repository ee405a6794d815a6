// Package logging provides named, leveled loggers for the whole application.
// It wraps zap behind a small factory so packages can grab a logger by name
// without threading logger instances through every constructor.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// GetLogger returns a named sugared logger. All loggers share one core and one
// dynamically adjustable level.
func GetLogger(name string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	logger, err := cfg.Build()
	if err != nil {
		// Build only fails on invalid config, which is fully under our control.
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger.Named(name).Sugar()
}

// SetLevel adjusts the shared log level. Must be one of debug, info, warn, error.
func SetLevel(levelStr string) error {
	switch strings.ToLower(levelStr) {
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "info":
		level.SetLevel(zapcore.InfoLevel)
	case "warning", "warn":
		level.SetLevel(zapcore.WarnLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	default:
		return fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", levelStr)
	}
	return nil
}
