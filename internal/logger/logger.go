// Package logger is a thin process-wide facade over zap.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

// Init builds the global logger. Development mode prints colored console lines,
// production emits JSON.
func Init(service string, development bool) error {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	log = l.With(zap.String("service", service))
	return nil
}

// InitDefault initializes a development logger, falling back to a bare one.
func InitDefault(service string) {
	if err := Init(service, true); err != nil {
		log = zap.NewExample().With(zap.String("service", service))
	}
}

// Set replaces the global logger (tests use zaptest / observer loggers).
func Set(l *zap.Logger) {
	if l != nil {
		log = l
	}
}

func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { log.Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { log.Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }

// Fatal logs and exits the process.
func Fatal(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
	_ = log.Sync()
	os.Exit(1)
}

// Sync flushes buffered entries.
func Sync() {
	_ = log.Sync()
}
