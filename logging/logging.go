// Package logging provides leveled, line-oriented console logs.
// Lines look like:
//
//	INFO  2025-06-01T12:00:00.000Z [summarize] summarize_start trace=3f2a... provider=claude url=https://...
//
// Secrets never reach the logger; callers pass provider ids and models only.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel accepts DEBUG, INFO, WARN (or WARNING) and ERROR in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "", "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

// Logger writes structured lines to an io.Writer (stderr by default, so
// that stdout stays free for summaries).
type Logger struct {
	mu        *sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
	traceID   string
}

// New creates a new Logger at INFO level.
func New() *Logger {
	return &Logger{
		mu:       &sync.Mutex{},
		output:   os.Stderr,
		minLevel: LevelInfo,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l := New()
	l.output = io.Discard
	return l
}

// WithComponent returns a new logger with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	c := l.clone()
	c.component = component
	return c
}

// WithTraceID returns a new logger that tags every line with trace=<id>.
func (l *Logger) WithTraceID(traceID string) *Logger {
	c := l.clone()
	c.traceID = traceID
	return c
}

// TraceID returns the trace id, if any.
func (l *Logger) TraceID() string {
	return l.traceID
}

func (l *Logger) clone() *Logger {
	return &Logger{
		mu:        l.mu,
		output:    l.output,
		minLevel:  l.minLevel,
		component: l.component,
		traceID:   l.traceID,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats fields as sorted key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " " + strings.Join(parts, " ")
}

// log writes: LEVEL TIMESTAMP [component] message trace=id key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if l.traceID != "" {
		fieldStr = " trace=" + l.traceID
	}
	if len(fields) > 0 && fields[0] != nil {
		fieldStr += formatFields(fields[0])
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Summarization events ---

// SummarizeStart logs the start of a summarize run.
func (l *Logger) SummarizeStart(url, providerID, model string) {
	l.Info("summarize_start", map[string]interface{}{
		"url":      url,
		"provider": providerID,
		"model":    model,
	})
}

// SummarizeComplete logs the end of a summarize run. status is
// "success" or the error code.
func (l *Logger) SummarizeComplete(url string, duration time.Duration, status string) {
	fields := map[string]interface{}{
		"url":      url,
		"duration": duration.String(),
		"status":   status,
	}
	if status == "success" {
		l.Info("summarize_complete", fields)
	} else {
		l.Warn("summarize_complete", fields)
	}
}

// CacheHit logs a page-load lookup.
func (l *Logger) CacheHit(url string, hit bool) {
	l.Debug("cache_lookup", map[string]interface{}{
		"url": url,
		"hit": hit,
	})
}

// ProviderCall logs an outbound provider request.
func (l *Logger) ProviderCall(providerName, model, endpoint string) {
	l.Debug("provider_call", map[string]interface{}{
		"provider": providerName,
		"model":    model,
		"endpoint": endpoint,
	})
}

// ProviderResult logs the outcome of a provider request.
func (l *Logger) ProviderResult(providerName string, status int, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"provider": providerName,
		"status":   status,
		"duration": duration.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		l.Error("provider_error", fields)
	} else {
		l.Debug("provider_result", fields)
	}
}

// StateTransition logs an orchestrator state change.
func (l *Logger) StateTransition(from, to string) {
	l.Debug("state", map[string]interface{}{
		"from": from,
		"to":   to,
	})
}
