// Package logging provides the levelled logger shared by the registry and the CLI.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents logging severity.
type Level int

const (
	// LevelDebug includes detailed debugging information.
	LevelDebug Level = iota
	// LevelInfo includes standard operational information.
	LevelInfo
	// LevelWarn includes warnings about potential issues.
	LevelWarn
	// LevelError includes only error messages.
	LevelError
	// levelOff disables output entirely.
	levelOff
)

// keepRotated is how many rotated log files are kept next to the active one.
const keepRotated = 5

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string. An empty string means warn, the
// quietest level that still reports directory cleanup problems.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning", "":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelWarn, fmt.Errorf("invalid log level: %s", s)
	}
}

// Fields carries structured key/value context for a log line.
type Fields map[string]interface{}

// Logger writes levelled log lines as text or JSON.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	level    Level
	jsonMode bool
	now      func() time.Time

	// For log rotation
	filePath    string
	maxSize     int64 // bytes
	currentSize int64
}

// Config configures the logger.
type Config struct {
	Level Level
	// File is the log file path. When empty, Writer (or stderr) is used.
	File    string
	JSON    bool
	MaxSize int64 // Max file size in bytes before rotation (0 = no rotation)
	Writer  io.Writer
}

// New creates a new Logger.
func New(cfg Config) (*Logger, error) {
	l := &Logger{
		level:    cfg.Level,
		jsonMode: cfg.JSON,
		maxSize:  cfg.MaxSize,
		now:      time.Now,
	}

	switch {
	case cfg.File != "":
		dir := filepath.Dir(cfg.File)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		// #nosec G304 - log path comes from the user's config
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}

		if info, err := f.Stat(); err == nil {
			l.currentSize = info.Size()
		}

		l.writer = f
		l.filePath = cfg.File
	case cfg.Writer != nil:
		l.writer = cfg.Writer
	default:
		l.writer = os.Stderr
	}

	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{writer: io.Discard, level: levelOff, now: time.Now}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if f, ok := l.writer.(*os.File); ok && f != os.Stderr && f != os.Stdout {
		return f.Close()
	}
	return nil
}

// entry represents a JSON log line.
type entry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Fields  Fields `json:"fields,omitempty"`
}

func (l *Logger) log(level Level, msg string, fields Fields) {
	if l == nil || level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now
	if l.now != nil {
		now = l.now
	}
	timestamp := now().Format(time.RFC3339)

	var line string
	if l.jsonMode {
		b, err := json.Marshal(entry{
			Time:    timestamp,
			Level:   level.String(),
			Message: msg,
			Fields:  fields,
		})
		if err != nil {
			line = fmt.Sprintf("%s [%s] %s\n", timestamp, level.String(), msg)
		} else {
			line = string(b) + "\n"
		}
	} else {
		line = fmt.Sprintf("%s [%s] %s%s\n", timestamp, level.String(), msg, formatFields(fields))
	}

	if l.maxSize > 0 && l.filePath != "" {
		l.currentSize += int64(len(line))
		if l.currentSize > l.maxSize {
			l.rotate()
			l.currentSize = int64(len(line))
		}
	}

	// Write errors are dropped; there is nowhere left to report them.
	_, _ = io.WriteString(l.writer, line)
}

// formatFields renders fields as " key=value" pairs in key order.
func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := fmt.Sprint(fields[k])
		if strings.ContainsAny(v, " \t\"") {
			v = fmt.Sprintf("%q", v)
		}
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(v)
	}
	return b.String()
}

func (l *Logger) rotate() {
	if f, ok := l.writer.(*os.File); ok {
		_ = f.Close()
	}

	rotatedPath := l.filePath + "." + time.Now().Format("20060102-150405.000")
	_ = os.Rename(l.filePath, rotatedPath)

	// #nosec G304 - log path comes from the user's config
	f, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		l.writer = os.Stderr
		l.filePath = ""
		return
	}

	l.writer = f
	l.cleanupOldLogs()
}

func (l *Logger) cleanupOldLogs() {
	matches, err := filepath.Glob(l.filePath + ".*")
	if err != nil || len(matches) <= keepRotated {
		return
	}

	// Timestamps sort lexically, oldest first.
	sort.Strings(matches)
	for _, m := range matches[:len(matches)-keepRotated] {
		_ = os.Remove(m)
	}
}

func firstFields(fields []Fields) Fields {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...Fields) {
	l.log(LevelDebug, msg, firstFields(fields))
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...Fields) {
	l.log(LevelInfo, msg, firstFields(fields))
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...Fields) {
	l.log(LevelWarn, msg, firstFields(fields))
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...Fields) {
	l.log(LevelError, msg, firstFields(fields))
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() Level {
	return l.level
}

// SetLevel sets the log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}
