package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a zerolog logger tagged with the service it was built for.
// Methods take optional field maps, usually built with Fields.
type Logger struct {
	logger  zerolog.Logger
	service string
}

// New builds a logger writing to cfg.Output.
func New(cfg *Config, serviceName string) *Logger {
	return NewWithWriter(cfg, serviceName, outputWriter(cfg.Output))
}

// NewWithWriter builds a logger writing to w. Tests use it to capture output.
func NewWithWriter(cfg *Config, serviceName string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if strings.EqualFold(cfg.Format, FormatConsole) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: cfg.NoColor}
	}
	zc := zerolog.New(w).Level(level).With().Str("service", serviceName)
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if cfg.Caller {
		zc = zc.CallerWithSkipFrameCount(4) // past emit and the level method
	}
	return &Logger{logger: zc.Logger(), service: serviceName}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

type contextKey struct{}

// ContextWithRequestID stores the request id so WithContext can pick it up.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// RequestIDFromContext returns the request id stored by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// WithContext adds the request id from ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	id := RequestIDFromContext(ctx)
	if id == "" {
		return l
	}
	return l.with(func(zc zerolog.Context) zerolog.Context { return zc.Str(FieldRequestID, id) })
}

// WithComponent tags every entry with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.with(func(zc zerolog.Context) zerolog.Context { return zc.Str(FieldComponent, name) })
}

// WithFields attaches fields to every entry. Sensitive keys are redacted.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.with(func(zc zerolog.Context) zerolog.Context {
		for k, v := range fields {
			zc = zc.Interface(k, redact(k, v))
		}
		return zc
	})
}

func (l *Logger) with(fn func(zerolog.Context) zerolog.Context) *Logger {
	return &Logger{logger: fn(l.logger.With()).Logger(), service: l.service}
}

// GetLogger returns the underlying zerolog.Logger.
func (l *Logger) GetLogger() zerolog.Logger {
	return l.logger
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.logger.Error(), msg, fields)
}

// emit is a no-op for disabled levels: zerolog hands back a nil event.
func emit(event *zerolog.Event, msg string, fields []map[string]interface{}) {
	if event == nil {
		return
	}
	for _, fm := range fields {
		for k, v := range fm {
			event.Interface(k, redact(k, v))
		}
	}
	event.Msg(msg)
}

var globalLogger = NewNop()

// SetGlobalLogger installs l as the process-wide logger. gorm and other
// code without an injected logger falls back to it.
func SetGlobalLogger(l *Logger) {
	if l != nil {
		globalLogger = l
	}
}

// Global returns the process-wide logger; a no-op until SetGlobalLogger.
func Global() *Logger {
	return globalLogger
}

func outputWriter(output string) io.Writer {
	switch strings.ToLower(output) {
	case "stderr":
		return os.Stderr
	case "", "stdout":
		return os.Stdout
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: cannot open %s, using stdout: %v\n", output, err)
			return os.Stdout
		}
		return f
	}
}
