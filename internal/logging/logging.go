// Package logging builds zap loggers from FairFund configuration.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fairfund/fairfund/internal/config"
)

// ParseLevel parses a log level string. Unknown values fall back to error.
// "off" and "none" return true in the second result to request a nop logger.
func ParseLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return zapcore.ErrorLevel, true
	case "debug":
		return zapcore.DebugLevel, false
	case "info":
		return zapcore.InfoLevel, false
	case "warn":
		return zapcore.WarnLevel, false
	case "error":
		return zapcore.ErrorLevel, false
	default:
		return zapcore.ErrorLevel, false
	}
}

// New creates a logger from the logging configuration.
// With a file path configured, entries go to the file as JSON; otherwise the
// logger writes to stderr in console encoding.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, off := ParseLevel(cfg.Level)
	if off {
		return zap.NewNop(), nil
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.File == "" {
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.Lock(os.Stderr),
			level,
		)
		return zap.New(core), nil
	}

	path, err := expandHome(cfg.File)
	if err != nil {
		return nil, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}

	// #nosec G304 -- log file path is from validated config
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(f),
		level,
	)
	return zap.New(core), nil
}

// Nop returns a logger that discards all output.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// expandHome expands a leading "~/" to the user's home directory.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}
