package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogWarning
	LogError
)

var logLevelStrings = map[LogLevel]string{
	LogDebug:   "DEBUG",
	LogInfo:    "INFO",
	LogWarning: "WARN",
	LogError:   "ERROR",
}

// ParseLogLevel converts a config string to a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LogDebug
	case "warn", "warning":
		return LogWarning
	case "error":
		return LogError
	default:
		return LogInfo
	}
}

// AppLogger handles application logging
type AppLogger struct {
	logger *log.Logger
	file   *os.File
	level  LogLevel
	mutex  sync.Mutex
}

var (
	loggerInstance *AppLogger
	loggerOnce     sync.Once
)

// InitLogger initializes the global logger instance
func InitLogger(logPath string, level LogLevel) error {
	var err error
	loggerOnce.Do(func() {
		loggerInstance, err = newLogger(logPath, level)
	})
	return err
}

// Logger returns the global logger instance. A stderr-only logger is
// created when InitLogger was never called.
func Logger() *AppLogger {
	loggerOnce.Do(func() {
		loggerInstance = &AppLogger{
			logger: log.New(os.Stderr, "", log.LstdFlags),
			level:  LogInfo,
		}
	})
	return loggerInstance
}

// newLogger creates a new logger writing to both the log file and stdout
func newLogger(logPath string, level LogLevel) (*AppLogger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &AppLogger{
		logger: log.New(io.MultiWriter(file, os.Stdout), "", log.LstdFlags),
		file:   file,
		level:  level,
	}

	l.Info("Logger initialized")
	return l, nil
}

// log formats and writes a log message
func (l *AppLogger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.logger.Printf("[%s] %s", logLevelStrings[level], fmt.Sprintf(format, args...))
}

// Debug logs a debug message
func (l *AppLogger) Debug(format string, args ...interface{}) {
	l.log(LogDebug, format, args...)
}

// Info logs an info message
func (l *AppLogger) Info(format string, args ...interface{}) {
	l.log(LogInfo, format, args...)
}

// Warning logs a warning message
func (l *AppLogger) Warning(format string, args ...interface{}) {
	l.log(LogWarning, format, args...)
}

// Error logs an error message
func (l *AppLogger) Error(format string, args ...interface{}) {
	l.log(LogError, format, args...)
}

// Close closes the underlying log file if one is open
func (l *AppLogger) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
