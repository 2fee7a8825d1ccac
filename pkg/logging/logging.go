// Package logging builds the process-wide zap logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global logger instance
var Logger *zap.Logger

// level is shared by every logger built here so --verbose can lower it after setup.
var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Setup builds the production JSON logger on stderr and installs it globally.
func Setup(appName, appVersion string) error {
	var err error

	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.InitialFields = map[string]interface{}{
		"appName":    appName,
		"appVersion": appVersion,
	}

	Logger, err = cfg.Build()
	if err != nil {
		Logger = zap.NewExample()
		return err
	}

	zap.ReplaceGlobals(Logger)
	return nil
}

// SetVerbose switches between debug and info logging.
func SetVerbose(verbose bool) {
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
		return
	}
	level.SetLevel(zapcore.InfoLevel)
}

// Verbose reports whether debug logging is enabled.
func Verbose() bool {
	return level.Enabled(zapcore.DebugLevel)
}
