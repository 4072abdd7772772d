// Package logger provides leveled, structured logging in text or JSON form.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
	LevelFatal LogLevel = "FATAL"
)

var severity = map[LogLevel]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
	LevelFatal: 4,
}

// Config holds logger configuration
type Config struct {
	Level      string `yaml:"level" mapstructure:"level"`             // debug, info, warn, error, fatal
	Format     string `yaml:"format" mapstructure:"format"`           // text or json
	Output     string `yaml:"output" mapstructure:"output"`           // stdout, stderr, or file path
	TimeFormat string `yaml:"time_format" mapstructure:"time_format"` // Go layout, defaults to RFC3339
}

var (
	mu                sync.RWMutex
	currentLevel      = LevelInfo
	currentFormat     = "text"
	currentTimeFormat = time.RFC3339
	infoLog           = log.New(os.Stdout, "", 0)
	errorLog          = log.New(os.Stderr, "", 0)
	exitFunc          = os.Exit
)

// ParseLevel maps a config string onto a level, defaulting to info
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Init initializes the logger with configuration
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	currentLevel = ParseLevel(cfg.Level)

	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		currentFormat = "json"
	} else {
		currentFormat = "text"
	}

	if tf := strings.TrimSpace(cfg.TimeFormat); tf != "" {
		currentTimeFormat = tf
	}

	switch out := strings.TrimSpace(cfg.Output); strings.ToLower(out) {
	case "", "stdout":
		infoLog.SetOutput(os.Stdout)
		errorLog.SetOutput(os.Stderr)
	case "stderr":
		infoLog.SetOutput(os.Stderr)
		errorLog.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(out, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			infoLog.SetOutput(os.Stdout)
			errorLog.SetOutput(os.Stderr)
			infoLog.Printf("logger: failed to open log file %s: %v", out, err)
			return
		}
		infoLog.SetOutput(f)
		errorLog.SetOutput(f)
	}
}

// SetOutput sends every level to w. Used by tests and the TUI, which owns stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	infoLog.SetOutput(w)
	errorLog.SetOutput(w)
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	File      string                 `json:"file,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func shouldLog(level LogLevel) bool {
	mu.RLock()
	defer mu.RUnlock()
	return severity[level] >= severity[currentLevel]
}

func logMessage(level LogLevel, msg string, fields map[string]interface{}) {
	if !shouldLog(level) {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if ok {
		parts := strings.Split(file, "/")
		file = fmt.Sprintf("%s:%d", parts[len(parts)-1], line)
	}

	var component string
	if v, ok := fields["component"].(string); ok {
		component = v
	}

	mu.RLock()
	entry := LogEntry{
		Timestamp: time.Now().Format(currentTimeFormat),
		Level:     string(level),
		Message:   msg,
		Component: component,
		File:      file,
		Fields:    fields,
	}
	format := currentFormat
	mu.RUnlock()

	var output string
	if format == "json" {
		data, err := json.Marshal(entry)
		if err != nil {
			output = fmt.Sprintf("%s [%s] %s", entry.Timestamp, entry.Level, entry.Message)
		} else {
			output = string(data)
		}
	} else {
		output = fmt.Sprintf("%s [%s] %s", entry.Timestamp, entry.Level, entry.Message)
		if entry.File != "" {
			output += fmt.Sprintf(" (%s)", entry.File)
		}
		if len(entry.Fields) > 0 {
			output += " " + formatFields(entry.Fields)
		}
	}

	if severity[level] >= severity[LevelError] {
		errorLog.Println(output)
	} else {
		infoLog.Println(output)
	}

	if level == LevelFatal {
		exitFunc(1)
	}
}

// formatFields renders key=value pairs in a stable order
func formatFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, fields[k])
	}
	return b.String()
}

func Debug(msg string) {
	logMessage(LevelDebug, msg, nil)
}

func Debugf(format string, args ...interface{}) {
	logMessage(LevelDebug, fmt.Sprintf(format, args...), nil)
}

func Info(msg string) {
	logMessage(LevelInfo, msg, nil)
}

func Infof(format string, args ...interface{}) {
	logMessage(LevelInfo, fmt.Sprintf(format, args...), nil)
}

func Warn(msg string) {
	logMessage(LevelWarn, msg, nil)
}

func Warnf(format string, args ...interface{}) {
	logMessage(LevelWarn, fmt.Sprintf(format, args...), nil)
}

func Error(msg string) {
	logMessage(LevelError, msg, nil)
}

func Errorf(format string, args ...interface{}) {
	logMessage(LevelError, fmt.Sprintf(format, args...), nil)
}

// Fatal logs and exits the process
func Fatal(msg string) {
	logMessage(LevelFatal, msg, nil)
}

func Fatalf(format string, args ...interface{}) {
	logMessage(LevelFatal, fmt.Sprintf(format, args...), nil)
}

// WithFields returns a logger that attaches fields to every entry
func WithFields(fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{fields: fields}
}

// FieldLogger allows structured logging with fields
type FieldLogger struct {
	fields map[string]interface{}
}

// With returns a copy carrying one more field
func (l *FieldLogger) With(key string, value interface{}) *FieldLogger {
	merged := make(map[string]interface{}, len(l.fields)+1)
	for k, v := range l.fields {
		merged[k] = v
	}
	merged[key] = value
	return &FieldLogger{fields: merged}
}

func (l *FieldLogger) Debug(msg string) {
	logMessage(LevelDebug, msg, l.fields)
}

func (l *FieldLogger) Info(msg string) {
	logMessage(LevelInfo, msg, l.fields)
}

func (l *FieldLogger) Warn(msg string) {
	logMessage(LevelWarn, msg, l.fields)
}

func (l *FieldLogger) Error(msg string) {
	logMessage(LevelError, msg, l.fields)
}

// HTTP logs one served request
func HTTP(method, path string, status, latencyMs int) {
	fields := map[string]interface{}{
		"component": "http",
		"method":    method,
		"path":      path,
		"status":    status,
		"latency":   latencyMs,
	}
	msg := fmt.Sprintf("HTTP %s %s %d - %dms", method, path, status, latencyMs)
	switch {
	case status >= 500:
		WithFields(fields).Error(msg)
	case status >= 400:
		WithFields(fields).Warn(msg)
	default:
		WithFields(fields).Info(msg)
	}
}

// WebSocket logs hub connection activity
func WebSocket(event string, clients int, userID string) {
	WithFields(map[string]interface{}{
		"component": "websocket",
		"event":     event,
		"clients":   clients,
		"user_id":   userID,
	}).Info(fmt.Sprintf("WebSocket %s (%d clients)", event, clients))
}

// Feed logs one activity source fetch
func Feed(source string, count int, latency time.Duration, err error) {
	fields := map[string]interface{}{
		"component": "feed",
		"source":    source,
		"count":     count,
		"latency":   latency.Milliseconds(),
	}
	if err != nil {
		fields["error"] = err.Error()
		WithFields(fields).Warn(fmt.Sprintf("feed source %s unavailable, degrading to empty", source))
		return
	}
	WithFields(fields).Debug(fmt.Sprintf("feed source %s returned %d rows", source, count))
}

type contextKey string

const requestIDKey contextKey = "request_id"

// ContextWithRequestID stores a request id for WithRequestID
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithRequestID extracts the request ID from context and logs with it
func WithRequestID(ctx context.Context) *FieldLogger {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return WithFields(map[string]interface{}{
			"request_id": requestID,
		})
	}
	return WithFields(nil)
}
