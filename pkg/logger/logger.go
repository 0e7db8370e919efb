// Package logger provides leveled, colored console logging for the
// skysim CLI and its pipeline.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level represents the severity of a log message.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// ParseLevel parses a string log level, defaulting to info.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

var levelTags = map[Level]struct {
	tag   string
	color *color.Color
}{
	DebugLevel: {"DEBUG", color.New(color.FgHiBlack)},
	InfoLevel:  {"INFO ", color.New(color.FgGreen)},
	WarnLevel:  {"WARN ", color.New(color.FgYellow)},
	ErrorLevel: {"ERROR", color.New(color.FgRed)},
	FatalLevel: {"FATAL", color.New(color.FgRed, color.Bold)},
}

// Logger writes leveled messages to a single destination.
type Logger struct {
	mu       sync.Mutex
	level    Level
	writer   io.Writer
	prefix   string
	showTime bool
}

var defaultLogger = &Logger{
	level:    InfoLevel,
	writer:   os.Stdout,
	showTime: true,
}

// New creates a logger writing to w.
func New(w io.Writer, level Level) *Logger {
	return &Logger{level: level, writer: w, showTime: true}
}

// SetLevel sets the default logger's level.
func SetLevel(level Level) {
	defaultLogger.mu.Lock()
	defaultLogger.level = level
	defaultLogger.mu.Unlock()
}

// SetNoColor disables colored output globally.
func SetNoColor(noColor bool) {
	color.NoColor = noColor
}

// SetOutput redirects the default logger, used by tests.
func SetOutput(w io.Writer) {
	defaultLogger.mu.Lock()
	defaultLogger.writer = w
	defaultLogger.mu.Unlock()
}

// WithPrefix returns a copy of the logger that tags every message.
func (l *Logger) WithPrefix(prefix string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{
		level:    l.level,
		writer:   l.writer,
		prefix:   prefix,
		showTime: l.showTime,
	}
}

func (l *Logger) log(level Level, message string) {
	l.mu.Lock()
	if level < l.level {
		l.mu.Unlock()
		return
	}

	var parts []string
	if l.showTime {
		parts = append(parts, color.New(color.FgHiBlack).Sprint(time.Now().Format("15:04:05")))
	}
	lt := levelTags[level]
	parts = append(parts, lt.color.Sprint(lt.tag))
	if l.prefix != "" {
		parts = append(parts, color.CyanString("[%s]", l.prefix))
	}
	parts = append(parts, message)

	_, _ = fmt.Fprintln(l.writer, strings.Join(parts, " "))
	l.mu.Unlock()

	if level == FatalLevel {
		os.Exit(1)
	}
}

func (l *Logger) Debug(args ...any)                 { l.log(DebugLevel, fmt.Sprint(args...)) }
func (l *Logger) Debugf(format string, args ...any) { l.log(DebugLevel, fmt.Sprintf(format, args...)) }
func (l *Logger) Info(args ...any)                  { l.log(InfoLevel, fmt.Sprint(args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.log(InfoLevel, fmt.Sprintf(format, args...)) }
func (l *Logger) Warn(args ...any)                  { l.log(WarnLevel, fmt.Sprint(args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(WarnLevel, fmt.Sprintf(format, args...)) }
func (l *Logger) Error(args ...any)                 { l.log(ErrorLevel, fmt.Sprint(args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.log(ErrorLevel, fmt.Sprintf(format, args...)) }
func (l *Logger) Fatal(args ...any)                 { l.log(FatalLevel, fmt.Sprint(args...)) }
func (l *Logger) Fatalf(format string, args ...any) { l.log(FatalLevel, fmt.Sprintf(format, args...)) }

// Package-level helpers on the default logger.

func Debug(args ...any)                 { defaultLogger.Debug(args...) }
func Debugf(format string, args ...any) { defaultLogger.Debugf(format, args...) }
func Info(args ...any)                  { defaultLogger.Info(args...) }
func Infof(format string, args ...any)  { defaultLogger.Infof(format, args...) }
func Warn(args ...any)                  { defaultLogger.Warn(args...) }
func Warnf(format string, args ...any)  { defaultLogger.Warnf(format, args...) }
func Error(args ...any)                 { defaultLogger.Error(args...) }
func Errorf(format string, args ...any) { defaultLogger.Errorf(format, args...) }
func Fatal(args ...any)                 { defaultLogger.Fatal(args...) }
func Fatalf(format string, args ...any) { defaultLogger.Fatalf(format, args...) }
