package debuglog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff // Disables all logging
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "OFF":
		return LevelOff
	default:
		return LevelInfo // Default to INFO
	}
}

func (l LogLevel) charm() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

var (
	mu           sync.RWMutex
	currentLevel = LevelOff
	logger       *log.Logger
	logFile      *os.File
)

// Setup configures the logging system with the specified level and optional file path.
// If filePath is empty, defaults to ~/.justtype/justtype.log.
func Setup(level LogLevel, filePath ...string) error {
	mu.Lock()
	defer mu.Unlock()

	currentLevel = level
	closeLocked()

	if level == LevelOff {
		return nil
	}

	var logPath string
	if len(filePath) > 0 && filePath[0] != "" {
		logPath = filePath[0]
	} else {
		home, _ := os.UserHomeDir()
		logPath = filepath.Join(home, ".justtype", "justtype.log")
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	logFile = f
	logger = newLogger(f, level)
	return nil
}

// SetupWriter routes logs to w instead of a file.
func SetupWriter(level LogLevel, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	currentLevel = level
	closeLocked()
	if level != LevelOff {
		logger = newLogger(w, level)
	}
}

func newLogger(w io.Writer, level LogLevel) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Prefix:          "justtype",
		Level:           level.charm(),
	})
}

// SetLevel changes the current logging level
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
	if logger != nil && level != LevelOff {
		logger.SetLevel(level.charm())
	}
}

// GetLevel returns the current logging level
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// Close closes the log file if open
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

func closeLocked() error {
	logger = nil
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}

func emit(level LogLevel, msg string, keyvals ...interface{}) {
	mu.RLock()
	l, lvl := logger, currentLevel
	mu.RUnlock()
	if l == nil || level < lvl {
		return
	}
	switch level {
	case LevelDebug:
		l.Debug(msg, keyvals...)
	case LevelInfo:
		l.Info(msg, keyvals...)
	case LevelWarn:
		l.Warn(msg, keyvals...)
	case LevelError:
		l.Error(msg, keyvals...)
	}
}

func Debugf(format string, args ...any) {
	emit(LevelDebug, fmt.Sprintf(format, args...))
}

func Infof(format string, args ...any) {
	emit(LevelInfo, fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...any) {
	emit(LevelWarn, fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...any) {
	emit(LevelError, fmt.Sprintf(format, args...))
}

// FieldLogger attaches structured key/value pairs to every message.
type FieldLogger struct {
	keyvals []interface{}
}

// WithFields returns a new logger with the specified fields
func WithFields(fields map[string]interface{}) *FieldLogger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return &FieldLogger{keyvals: kv}
}

func (fl *FieldLogger) Debugf(format string, args ...any) {
	emit(LevelDebug, fmt.Sprintf(format, args...), fl.keyvals...)
}

func (fl *FieldLogger) Infof(format string, args ...any) {
	emit(LevelInfo, fmt.Sprintf(format, args...), fl.keyvals...)
}

func (fl *FieldLogger) Warnf(format string, args ...any) {
	emit(LevelWarn, fmt.Sprintf(format, args...), fl.keyvals...)
}

func (fl *FieldLogger) Errorf(format string, args ...any) {
	emit(LevelError, fmt.Sprintf(format, args...), fl.keyvals...)
}
