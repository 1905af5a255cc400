// Package logger provides a zap-based structured logger that stamps
// records with the current trace id.
package logger

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level aliases zap's level type so callers don't import zapcore.
type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// Logger wraps zap's sugared logger. Every record carries the service
// name and, when the context holds an active span, the trace id.
type Logger struct {
	sl      *zap.SugaredLogger
	traceID func(ctx context.Context) string
}

// New constructs a JSON logger writing to w. traceIDFn may be nil when
// tracing is not configured.
func New(w io.Writer, minLevel Level, service string, traceIDFn func(ctx context.Context) string) *Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(w), minLevel)
	l := zap.New(core).With(zap.String("service", service))
	return &Logger{sl: l.Sugar(), traceID: traceIDFn}
}

func (l *Logger) enrich(ctx context.Context, args []any) []any {
	if l.traceID == nil {
		return args
	}
	if id := l.traceID(ctx); id != "" {
		args = append(args, "trace_id", id)
	}
	return args
}

// Debug logs msg with alternating key/value pairs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.sl.Debugw(msg, l.enrich(ctx, args)...)
}

// Info logs msg with alternating key/value pairs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.sl.Infow(msg, l.enrich(ctx, args)...)
}

// Warn logs msg with alternating key/value pairs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.sl.Warnw(msg, l.enrich(ctx, args)...)
}

// Error logs msg with alternating key/value pairs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.sl.Errorw(msg, l.enrich(ctx, args)...)
}

// Sync flushes buffered records.
func (l *Logger) Sync() error { return l.sl.Sync() }
