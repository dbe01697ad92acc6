// Package logger builds the zap logger used across the API.
package logger

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a JSON logger writing to stdout and, when path is set, to a
// rotating log file as well.
func New(level, path string) *zap.Logger {
	return newLogger(level, path, zapcore.AddSync(os.Stdout))
}

// newLogger falls back to console-only output when the log directory cannot
// be created, and says so on the console.
func newLogger(level, path string, console zapcore.WriteSyncer) *zap.Logger {
	lvl := ParseLevel(level)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), console, lvl),
	}

	var fileErr error
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			fileErr = os.MkdirAll(dir, 0o755)
		}
	}
	if path != "" && fileErr == nil {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   path,
				MaxSize:    100, // MB
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}),
			lvl,
		))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if fileErr != nil {
		log.Warn("log file disabled", zap.String("path", path), zap.Error(fileErr))
	}
	return log
}

// ParseLevel maps a LOG_LEVEL value to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
