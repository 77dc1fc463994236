package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// LoggerInterface is the leveled logging surface consumed by the rest of
// the codebase. *Logger implements it; callers that need a logger accept
// this interface so tests can substitute their own.
type LoggerInterface interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
}

// Logger provides leveled logging on top of the standard library logger
type Logger struct {
	mu     sync.Mutex
	level  LogLevel
	logger *log.Logger
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// NewLogger creates a new logger with the specified level. When logFile is
// empty the logger writes to stderr; otherwise the file is opened in append
// mode.
func NewLogger(levelStr string, logFile string) (*Logger, error) {
	level := ParseLogLevel(levelStr)

	out := os.Stderr
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", logFile, err)
		}
		out = file
	}

	return &Logger{
		level:  level,
		logger: log.New(out, "", log.LstdFlags|log.Lshortfile),
	}, nil
}

// ParseLogLevel parses a log level string, defaulting to info
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel changes the logger's level at runtime
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *Logger) enabled(level LogLevel) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level <= level
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	if l.enabled(LevelDebug) {
		l.logger.Printf("[DEBUG] %s", msg)
	}
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.enabled(LevelDebug) {
		l.logger.Printf("[DEBUG] "+format, args...)
	}
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	if l.enabled(LevelInfo) {
		l.logger.Printf("[INFO] %s", msg)
	}
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.enabled(LevelInfo) {
		l.logger.Printf("[INFO] "+format, args...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	if l.enabled(LevelWarn) {
		l.logger.Printf("[WARN] %s", msg)
	}
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	if l.enabled(LevelWarn) {
		l.logger.Printf("[WARN] "+format, args...)
	}
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	if l.enabled(LevelError) {
		l.logger.Printf("[ERROR] %s", msg)
	}
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.enabled(LevelError) {
		l.logger.Printf("[ERROR] "+format, args...)
	}
}

// Fatal logs a fatal error and exits
func (l *Logger) Fatal(msg string) {
	l.logger.Printf("[FATAL] %s", msg)
	os.Exit(1)
}

// Fatalf logs a formatted fatal error and exits
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.logger.Printf("[FATAL] "+format, args...)
	os.Exit(1)
}

// InitGlobalLogger initializes the global logger instance. Later calls
// replace the previous global logger.
func InitGlobalLogger(logLevel, logFile string) error {
	logger, err := NewLogger(logLevel, logFile)
	if err != nil {
		return err
	}
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
	return nil
}

// SetGlobalLevel adjusts the global logger's level at runtime; a no-op when
// the global logger has not been initialized.
func SetGlobalLevel(levelStr string) {
	globalMu.RLock()
	logger := globalLogger
	globalMu.RUnlock()
	if logger != nil {
		logger.SetLevel(ParseLogLevel(levelStr))
	}
}

// GetLogger returns the global logger, or a no-op logger when none has been
// initialized. The result is never nil, so callers can hold it without
// guarding every call site.
func GetLogger() LoggerInterface {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return nopLogger{}
	}
	return globalLogger
}

// nopLogger discards everything; the default before InitGlobalLogger runs.
type nopLogger struct{}

func (nopLogger) Debug(string)                  {}
func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Info(string)                   {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warn(string)                   {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Error(string)                  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// Global convenience functions for logging
func LogInfo(msg string) {
	GetLogger().Info(msg)
}

func LogInfof(format string, args ...interface{}) {
	GetLogger().Infof(format, args...)
}

func LogDebug(msg string) {
	GetLogger().Debug(msg)
}

func LogDebugf(format string, args ...interface{}) {
	GetLogger().Debugf(format, args...)
}

func LogWarn(msg string) {
	GetLogger().Warn(msg)
}

func LogWarnf(format string, args ...interface{}) {
	GetLogger().Warnf(format, args...)
}

func LogError(msg string) {
	GetLogger().Error(msg)
}

func LogErrorf(format string, args ...interface{}) {
	GetLogger().Errorf(format, args...)
}
