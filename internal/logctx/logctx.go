// Package logctx carries a zerolog logger through context.Context.
//
// The CLI attaches its configured logger once; the mining pipeline enriches
// it with per-run and per-level fields that then appear on every line logged
// further down the call stack:
//
//	ctx = logctx.WithLogger(ctx, logging.WithPhase("mine"))
//	ctx = logctx.WithInt(ctx, "level", k)
//	logctx.FromContext(ctx).Debug().Msg("counting candidates")
package logctx

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

var (
	defaultLogger     zerolog.Logger
	defaultLoggerOnce sync.Once
)

// DefaultLogger returns the logger used when the context carries none:
// JSON to stderr with timestamps.
func DefaultLogger() zerolog.Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	})
	return defaultLogger
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger carried by ctx, or DefaultLogger.
// It never returns a zero-value logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return DefaultLogger()
	}
	if logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
		return logger
	}
	return DefaultLogger()
}

// WithStr adds a string field to the context logger.
func WithStr(ctx context.Context, key, value string) context.Context {
	return WithLogger(ctx, FromContext(ctx).With().Str(key, value).Logger())
}

// WithInt adds an int field to the context logger.
func WithInt(ctx context.Context, key string, value int) context.Context {
	return WithLogger(ctx, FromContext(ctx).With().Int(key, value).Logger())
}

// WithFloat adds a float field to the context logger.
func WithFloat(ctx context.Context, key string, value float64) context.Context {
	return WithLogger(ctx, FromContext(ctx).With().Float64(key, value).Logger())
}
