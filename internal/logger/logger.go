// Package logger is the process-wide structured logger. Records carry the
// trace and span IDs of the context they are logged with.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"

	"market-data-adapter/internal/trace"
)

var (
	current = slog.Default()
	// detailed enables debug records and caller source on every record.
	detailed bool
)

// LogConfig holds logging configuration
type LogConfig struct {
	Level           string // DEBUG, INFO, WARN, ERROR
	Format          string // json or text
	DetailedLogging bool
	Output          io.Writer
}

// LoadConfigFromEnv reads LOG_LEVEL, LOG_FORMAT and LOG_DETAILED.
func LoadConfigFromEnv() LogConfig {
	return LogConfig{
		Level:           envOr("LOG_LEVEL", "INFO"),
		Format:          envOr("LOG_FORMAT", "json"),
		DetailedLogging: os.Getenv("LOG_DETAILED") == "true",
		Output:          os.Stderr,
	}
}

func Init() error {
	return InitWithConfig(LoadConfigFromEnv())
}

// InitWithConfig replaces the global logger. Stdout stays free for command
// output, so the default sink is stderr.
func InitWithConfig(cfg LogConfig) error {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	detailed = cfg.DetailedLogging
	current = slog.New(h)
	slog.SetDefault(current)
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func spanOf(ctx context.Context) oteltrace.Span {
	return oteltrace.SpanFromContext(ctx)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Debug(ctx context.Context, msg string, args ...any) {
	if detailed {
		emit(ctx, slog.LevelDebug, 0, msg, args)
	}
}

func Info(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelInfo, 0, msg, args)
}

func Warn(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelWarn, 0, msg, args)
}

func Error(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelError, 0, msg, args)
}

// ErrorWithErr logs err under the "error" key and marks the current span failed.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	trace.RecordError(spanOf(ctx), err)
	emit(ctx, slog.LevelError, 0, msg, append([]any{"error", err}, args...))
}

// The Skip variants attribute the record to a caller skip frames further up,
// for wrappers that log on behalf of their caller.

func DebugSkip(ctx context.Context, skip int, msg string, args ...any) {
	if detailed {
		emit(ctx, slog.LevelDebug, skip, msg, args)
	}
}

func InfoSkip(ctx context.Context, skip int, msg string, args ...any) {
	emit(ctx, slog.LevelInfo, skip, msg, args)
}

func ErrorWithErrSkip(ctx context.Context, skip int, msg string, err error, args ...any) {
	trace.RecordError(spanOf(ctx), err)
	emit(ctx, slog.LevelError, skip, msg, append([]any{"error", err}, args...))
}

// emit writes one record. skip counts frames above the exported caller.
func emit(ctx context.Context, level slog.Level, skip int, msg string, args []any) {
	if !current.Enabled(ctx, level) {
		return
	}
	if tf := trace.LogFields(ctx); tf != nil {
		args = append(tf, args...)
	}
	if detailed {
		// runtime.Caller -> emit -> exported func -> caller
		if pc, file, line, ok := runtime.Caller(2 + skip); ok {
			fn := "unknown"
			if f := runtime.FuncForPC(pc); f != nil {
				fn = f.Name()
			}
			args = append(args, slog.Group("source",
				slog.String("function", fn),
				slog.String("file", file),
				slog.Int("line", line),
			))
		}
	}
	current.Log(ctx, level, msg, args...)
}

// Operation times a unit of work under its own span.
type Operation struct {
	ctx    context.Context
	name   string
	start  time.Time
	fields []any
}

// StartOperation opens a span named name. Completion is logged at debug
// level, failure at error level.
func StartOperation(ctx context.Context, name string, fields ...any) *Operation {
	ctx, span := trace.StartSpan(ctx, name)
	span.SetAttributes(trace.Attributes(fields...)...)
	Debug(ctx, "Operation started", append([]any{"operation", name}, fields...)...)
	return &Operation{ctx: ctx, name: name, start: time.Now(), fields: fields}
}

func (op *Operation) End(fields ...any) {
	elapsed := time.Since(op.start)
	span := spanOf(op.ctx)
	span.SetAttributes(trace.Attributes(append([]any{"duration_ms", elapsed.Milliseconds()}, fields...)...)...)
	span.End()

	Debug(op.ctx, "Operation completed", op.logFields(elapsed, fields)...)
}

func (op *Operation) EndWithError(err error, fields ...any) {
	elapsed := time.Since(op.start)
	span := spanOf(op.ctx)
	trace.RecordError(span, err)
	span.End()

	Error(op.ctx, "Operation failed", append(op.logFields(elapsed, fields), "error", err)...)
}

func (op *Operation) logFields(elapsed time.Duration, extra []any) []any {
	out := make([]any, 0, len(op.fields)+len(extra)+4)
	out = append(out, "operation", op.name)
	out = append(out, op.fields...)
	out = append(out, "duration_ms", elapsed.Milliseconds())
	return append(out, extra...)
}

// Fetch records the outcome of one adapter fetch.
func Fetch(ctx context.Context, op, ticker, status string, count int, fields ...any) {
	kv := append([]any{"op", op, "ticker", ticker, "status", status, "count", count}, fields...)
	trace.Event(ctx, "fetch", kv...)
	emit(ctx, slog.LevelInfo, 0, "Fetch completed", append([]any{"type", "FETCH"}, kv...))
}

// CacheWrite records a cache replacement for a ticker.
func CacheWrite(ctx context.Context, backend, kind, ticker string, count int, fields ...any) {
	kv := append([]any{"backend", backend, "kind", kind, "ticker", ticker, "count", count}, fields...)
	trace.Event(ctx, "cache_write", kv...)
	if detailed {
		emit(ctx, slog.LevelDebug, 0, "Cache entry replaced", append([]any{"type", "CACHE"}, kv...))
	}
}
