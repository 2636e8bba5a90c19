// Package dslog is DirSchema's logging wrapper: a trimmed-down version of
// gofulmen's logging.Logger (logging/logger.go) carrying the parts an
// evaluation run actually needs -- an atomic level, static fields, a
// zap-backed structured logger fanned out to a console sink and an optional
// rotating file sink -- without that package's profile/policy/middleware
// machinery, which DirSchema has no use for.
package dslog

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures a Logger.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to "info".
	Level string
	// Service is attached to every event as a static field.
	Service string
	// FilePath, if set, adds a rotating file sink alongside the console
	// sink (grounded on logging/logger.go's buildFileWriter).
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// StaticFields are attached to every event emitted by this logger.
	StaticFields map[string]any
}

// Logger wraps a zap.Logger with DirSchema's static-field and atomic-level
// conventions.
type Logger struct {
	zap         *zap.Logger
	atomicLevel zap.AtomicLevel
}

// New builds a Logger from cfg.
func New(cfg Config) (*Logger, error) {
	level := parseLevel(cfg.Level)
	atomicLevel := zap.NewAtomicLevelAt(level)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "severity",
		NameKey:        "logger",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stderr), atomicLevel),
	}

	if cfg.FilePath != "" {
		lumber := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.MaxSizeMB, 10),
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(lumber), atomicLevel))
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Service)))
	}
	for k, v := range cfg.StaticFields {
		opts = append(opts, zap.Fields(zap.Any(k, v)))
	}

	return &Logger{
		zap:         zap.New(zapcore.NewTee(cores...), opts...),
		atomicLevel: atomicLevel,
	}, nil
}

// NewCLI builds a Logger suitable for the cmd/dirschema front-end: console
// only, no rotating file sink.
func NewCLI(service string) (*Logger, error) {
	return New(Config{Level: "info", Service: service})
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zap.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.zap.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.zap.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zap.Error(msg, fields...) }

// With returns a logger with additional structured fields attached.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(fields...), atomicLevel: l.atomicLevel}
}

// SetLevel dynamically changes the logger's level.
func (l *Logger) SetLevel(level string) {
	l.atomicLevel.SetLevel(parseLevel(level))
}

// Sync flushes buffered log entries; errors writing to a closed terminal
// (e.g. in a test harness) are expected and not fatal.
func (l *Logger) Sync() error {
	if err := l.zap.Sync(); err != nil {
		return fmt.Errorf("dslog: sync: %w", err)
	}
	return nil
}
