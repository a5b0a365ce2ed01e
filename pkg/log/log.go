package log

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the verbosity of logging
type LogLevel string

const (
	// LevelDebug enables all logs
	LevelDebug LogLevel = "debug"
	// LevelInfo enables info, warning, and error logs
	LevelInfo LogLevel = "info"
	// LevelProgress enables progress, warning, and error logs (default)
	LevelProgress LogLevel = "progress"
	// LevelMinimal enables only warning and error logs
	LevelMinimal LogLevel = "minimal"
	// LevelWarn enables only warning and error logs (alias for minimal)
	LevelWarn LogLevel = "warn"
	// LevelError enables only error logs
	LevelError LogLevel = "error"
)

// Logger is the leveled output contract the pipeline components log through.
// Calls never block on user input.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Progress(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// global logger instance
var (
	globalLogger *zap.SugaredLogger
	globalMutex  sync.RWMutex
)

// Config holds logger configuration
type Config struct {
	Level  LogLevel
	Format string // "console" (timestamps and callers) or "cli" (level and message only)

	// Output defaults to stderr so stdout stays reserved for summaries.
	Output io.Writer
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:  LevelProgress,
		Format: "cli",
	}
}

// ParseLevel validates a configured level name.
func ParseLevel(s string) (LogLevel, error) {
	level := LogLevel(s)
	if _, err := mapLevelToZapLevel(level); err != nil {
		return "", err
	}
	return level, nil
}

// Init initializes the global logger with the given configuration
func Init(cfg Config) error {
	if _, err := mapLevelToZapLevel(cfg.Level); err != nil {
		return err
	}
	logger := createLogger(cfg)

	globalMutex.Lock()
	defer globalMutex.Unlock()
	globalLogger = logger
	return nil
}

// mapLevelToZapLevel maps our log level to zap level.
// Unknown levels map to info and report an error.
func mapLevelToZapLevel(level LogLevel) (zapcore.Level, error) {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel, nil
	case LevelInfo:
		return zapcore.InfoLevel, nil
	case LevelProgress:
		// Progress maps to Info level for now
		return zapcore.InfoLevel, nil
	case LevelMinimal, LevelWarn:
		return zapcore.WarnLevel, nil
	case LevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q (expected debug, info, progress, minimal, warn or error)", level)
	}
}

// buildEncoderConfig creates the encoder configuration for console output
func buildEncoderConfig(format string) zapcore.EncoderConfig {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		CallerKey:      "C",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if format == "cli" {
		cfg.TimeKey = zapcore.OmitKey
		cfg.CallerKey = zapcore.OmitKey
		cfg.NameKey = zapcore.OmitKey
		cfg.StacktraceKey = zapcore.OmitKey
	}
	return cfg
}

// Get returns the global logger
// If not initialized, it initializes with default config
func Get() *zap.SugaredLogger {
	globalMutex.RLock()
	logger := globalLogger
	globalMutex.RUnlock()

	if logger != nil {
		return logger
	}

	// Build outside the lock: Init also acquires it
	loggerToSet := createLogger(DefaultConfig())

	globalMutex.Lock()
	defer globalMutex.Unlock()

	if globalLogger != nil {
		return globalLogger
	}

	globalLogger = loggerToSet
	return globalLogger
}

// createLogger creates a new logger with the given config without acquiring locks
func createLogger(cfg Config) *zap.SugaredLogger {
	zapLevel, _ := mapLevelToZapLevel(cfg.Level)
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	encoder := zapcore.NewConsoleEncoder(buildEncoderConfig(cfg.Format))
	core := zapcore.NewCore(encoder, zapcore.AddSync(out), zapLevel)

	opts := []zap.Option{zap.AddCallerSkip(1)}
	if cfg.Format != "cli" {
		opts = append(opts, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	return zap.New(core, opts...).Sugar()
}

// New returns a standalone Logger for cfg. Components receive loggers built
// here (or the global one via Default) instead of reaching for globals.
func New(cfg Config) Logger {
	return &zapLogger{s: createLogger(cfg)}
}

// FromZap adapts an existing zap logger, e.g. one built by zaptest/observer.
func FromZap(l *zap.Logger) Logger {
	return &zapLogger{s: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// Default returns a Logger backed by the global logger.
func Default() Logger {
	return globalAdapter{}
}

type zapLogger struct {
	s *zap.SugaredLogger
}

func (l *zapLogger) Debug(msg string, args ...interface{})    { l.s.Debugw(msg, args...) }
func (l *zapLogger) Info(msg string, args ...interface{})     { l.s.Infow(msg, args...) }
func (l *zapLogger) Progress(msg string, args ...interface{}) { l.s.Infow(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...interface{})     { l.s.Warnw(msg, args...) }
func (l *zapLogger) Error(msg string, args ...interface{})    { l.s.Errorw(msg, args...) }

type globalAdapter struct{}

func (globalAdapter) Debug(msg string, args ...interface{})    { Debug(msg, args...) }
func (globalAdapter) Info(msg string, args ...interface{})     { Info(msg, args...) }
func (globalAdapter) Progress(msg string, args ...interface{}) { Progress(msg, args...) }
func (globalAdapter) Warn(msg string, args ...interface{})     { Warn(msg, args...) }
func (globalAdapter) Error(msg string, args ...interface{})    { Error(msg, args...) }

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zapLogger{s: zap.NewNop().Sugar()}
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	Get().Debugw(msg, args...)
}

// Debugf logs a formatted debug message
func Debugf(template string, args ...interface{}) {
	Get().Debugf(template, args...)
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	Get().Infow(msg, args...)
}

// Infof logs a formatted info message
func Infof(template string, args ...interface{}) {
	Get().Infof(template, args...)
}

// Progress logs a progress message (maps to Info level)
func Progress(msg string, args ...interface{}) {
	Get().Infow(msg, args...)
}

// Progressf logs a formatted progress message
func Progressf(template string, args ...interface{}) {
	Get().Infof(template, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	Get().Warnw(msg, args...)
}

// Warnf logs a formatted warning message
func Warnf(template string, args ...interface{}) {
	Get().Warnf(template, args...)
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	Get().Errorw(msg, args...)
}

// Errorf logs a formatted error message
func Errorf(template string, args ...interface{}) {
	Get().Errorf(template, args...)
}

// With returns a logger with additional fields
func With(args ...interface{}) *zap.SugaredLogger {
	return Get().With(args...)
}

// Sync flushes any buffered log entries
func Sync() error {
	globalMutex.RLock()
	logger := globalLogger
	globalMutex.RUnlock()

	if logger != nil {
		return logger.Sync()
	}
	return nil
}

// Reset resets the global logger (mainly for testing)
func Reset() {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
	globalLogger = nil
}
