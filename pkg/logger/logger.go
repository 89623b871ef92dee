// Package logger provides a structured, levelled logger built on log/slog.
//
// Records go to stderr so command output on stdout stays clean. WithCtx
// returns the request-scoped logger injected by the storefront middleware:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("cart updated", "lines", n)
//	// → time=... level=INFO msg="cart updated" request_id=a1b2c3d4 visitor=... lines=2
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shashiranjanraj/bookstore/config"
)

var (
	L     *slog.Logger
	level = new(slog.LevelVar)
)

func init() {
	Setup(os.Stderr)
}

// Setup rebuilds the base logger writing to w. JSON in production, text
// otherwise. An optional MongoDB sink is attached when LOG_MONGO_URI is set
// through AttachMongo.
func Setup(w io.Writer) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch config.AppEnv() {
	case "production", "prod":
		level.Set(parseLevel(config.Get("LOG_LEVEL", "info")))
		handler = slog.NewJSONHandler(w, opts)
	default:
		level.Set(parseLevel(config.Get("LOG_LEVEL", "warn")))
		handler = slog.NewTextHandler(w, opts)
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// SetLevel changes the minimum level at runtime (e.g. --verbose).
func SetLevel(l slog.Level) { level.Set(l) }

// Use replaces the base logger, e.g. with a fan-out to the MongoDB sink.
func Use(h slog.Handler) {
	L = slog.New(h)
	slog.SetDefault(L)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// ─────────────────────────────────────────────
// Context-aware logger
// ─────────────────────────────────────────────

type ctxKey struct{}

// WithCtx returns the logger stored in ctx by InjectLogger, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a pre-tagged *slog.Logger into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// ─────────────────────────────────────────────
// Short-hand helpers (use base logger)
// ─────────────────────────────────────────────

func Debug(msg string, args ...any) { L.Debug(msg, args...) }

func Info(msg string, args ...any) { L.Info(msg, args...) }

func Warn(msg string, args ...any) { L.Warn(msg, args...) }

func Error(msg string, args ...any) { L.Error(msg, args...) }
