package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ApplicationLogger defines the interface for structured application logging
type ApplicationLogger interface {
	Debug(ctx context.Context, message string, fields Fields)
	Info(ctx context.Context, message string, fields Fields)
	Warn(ctx context.Context, message string, fields Fields)
	Error(ctx context.Context, message string, fields Fields)
	ErrorWithError(ctx context.Context, err error, message string, fields Fields)
	LogPerformance(ctx context.Context, operation string, duration time.Duration, fields Fields)
	WithComponent(component string) ApplicationLogger
}

// Fields represents structured logging fields
type Fields map[string]interface{}

// Config represents logger configuration
type Config struct {
	Level  string
	Format string // json, text
	Output string // stdout, stderr, buffer (for testing)
}

// Supported levels in ascending severity.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Supported formats and outputs.
const (
	FormatJSON   = "json"
	FormatText   = "text"
	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputBuffer = "buffer"
)

var levelRanks = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// LogEntry represents the structure of log entries
type LogEntry struct {
	Timestamp     string                 `json:"timestamp"`
	Level         string                 `json:"level"`
	Message       string                 `json:"message"`
	CorrelationID string                 `json:"correlation_id"`
	Component     string                 `json:"component"`
	Operation     string                 `json:"operation,omitempty"`
	Duration      string                 `json:"duration,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// applicationLoggerImpl writes entries to a shared sink; WithComponent copies share it.
type applicationLoggerImpl struct {
	config    Config
	component string
	sink      *sink
}

type sink struct {
	mu     sync.Mutex
	w      io.Writer
	buffer *bytes.Buffer
}

// NewApplicationLogger creates a logger writing to the configured output.
func NewApplicationLogger(config Config) (ApplicationLogger, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	s := &sink{}
	switch config.Output {
	case OutputBuffer:
		s.buffer = &bytes.Buffer{}
		s.w = s.buffer
	case OutputStderr:
		s.w = os.Stderr
	default:
		s.w = os.Stdout
	}

	return &applicationLoggerImpl{config: config, sink: s}, nil
}

// NewApplicationLoggerWithWriter creates a logger writing to w; config.Output is ignored.
func NewApplicationLoggerWithWriter(config Config, w io.Writer) (ApplicationLogger, error) {
	if config.Output == "" {
		config.Output = OutputStderr
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("log writer cannot be nil")
	}
	return &applicationLoggerImpl{config: config, sink: &sink{w: w}}, nil
}

// validateConfig validates logger configuration
func validateConfig(config Config) error {
	if _, ok := levelRanks[strings.ToUpper(config.Level)]; !ok {
		return fmt.Errorf("invalid log level: %s", config.Level)
	}

	switch config.Format {
	case FormatJSON, FormatText:
	default:
		return fmt.Errorf("invalid log format: %s", config.Format)
	}

	switch config.Output {
	case OutputStdout, OutputStderr, OutputBuffer:
	default:
		return fmt.Errorf("invalid log output: %s", config.Output)
	}

	return nil
}

// shouldLog determines if a message should be logged based on level
func (l *applicationLoggerImpl) shouldLog(level string) bool {
	return levelRanks[level] >= levelRanks[strings.ToUpper(l.config.Level)]
}

// Debug logs debug messages
func (l *applicationLoggerImpl) Debug(ctx context.Context, message string, fields Fields) {
	l.log(ctx, LevelDebug, message, "", fields)
}

// Info logs info messages
func (l *applicationLoggerImpl) Info(ctx context.Context, message string, fields Fields) {
	l.log(ctx, LevelInfo, message, "", fields)
}

// Warn logs warning messages
func (l *applicationLoggerImpl) Warn(ctx context.Context, message string, fields Fields) {
	l.log(ctx, LevelWarn, message, "", fields)
}

// Error logs error messages
func (l *applicationLoggerImpl) Error(ctx context.Context, message string, fields Fields) {
	l.log(ctx, LevelError, message, "", fields)
}

// ErrorWithError logs error messages with an error object
func (l *applicationLoggerImpl) ErrorWithError(ctx context.Context, err error, message string, fields Fields) {
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}
	l.log(ctx, LevelError, message, errStr, fields)
}

// LogPerformance logs the duration of an operation at INFO.
func (l *applicationLoggerImpl) LogPerformance(
	ctx context.Context,
	operation string,
	duration time.Duration,
	fields Fields,
) {
	merged := make(Fields, len(fields)+2)
	for k, v := range fields {
		merged[k] = v
	}
	merged["operation"] = operation
	merged["duration"] = duration.String()
	l.log(ctx, LevelInfo, fmt.Sprintf("Performance metrics for %s", operation), "", merged)
}

// WithComponent creates a new logger instance with a specific component
func (l *applicationLoggerImpl) WithComponent(component string) ApplicationLogger {
	return &applicationLoggerImpl{
		config:    l.config,
		component: component,
		sink:      l.sink,
	}
}

func (l *applicationLoggerImpl) log(ctx context.Context, level, message, errStr string, fields Fields) {
	if !l.shouldLog(level) {
		return
	}

	component := l.component
	if component == "" {
		component = "default"
	}

	entry := &LogEntry{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Level:         level,
		Message:       message,
		CorrelationID: getOrGenerateCorrelationID(ctx),
		Component:     component,
		Error:         errStr,
	}
	if len(fields) > 0 {
		entry.Metadata = make(map[string]interface{}, len(fields))
		for key, value := range fields {
			switch key {
			case "operation":
				if op, ok := value.(string); ok {
					entry.Operation = op
				}
			case "duration":
				if d, ok := value.(string); ok {
					entry.Duration = d
				}
			}
			entry.Metadata[key] = value
		}
	}

	l.sink.write(l.config.Format, entry)
}

func (s *sink) write(format string, entry *LogEntry) {
	var line string
	if format == FormatJSON {
		data, err := json.Marshal(entry)
		if err != nil {
			return
		}
		line = string(data)
	} else {
		line = formatText(entry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.w, line+"\n")
}

// formatText renders "[ts] LEVEL component: message key=value ..." with sorted keys.
func formatText(entry *LogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s: %s", entry.Timestamp, entry.Level, entry.Component, entry.Message)

	keys := make([]string, 0, len(entry.Metadata))
	for k := range entry.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Metadata[k])
	}
	if entry.Error != "" {
		fmt.Fprintf(&b, " error=%q", entry.Error)
	}
	return b.String()
}

// BufferedOutput returns everything written by a logger created with Output "buffer".
func BufferedOutput(logger ApplicationLogger) string {
	impl, ok := logger.(*applicationLoggerImpl)
	if !ok || impl.sink.buffer == nil {
		return ""
	}
	impl.sink.mu.Lock()
	defer impl.sink.mu.Unlock()
	return impl.sink.buffer.String()
}

// Context keys for correlation ID management
type contextKey string

const CorrelationIDKey contextKey = "correlation_id"

// WithCorrelationID attaches a correlation ID to ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// CorrelationIDFromContext returns the correlation ID stored in ctx, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// getOrGenerateCorrelationID gets correlation ID from context or generates a new one
func getOrGenerateCorrelationID(ctx context.Context) string {
	if id := CorrelationIDFromContext(ctx); id != "" {
		return id
	}
	return uuid.New().String()
}
