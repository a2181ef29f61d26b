package pkcc

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with pkcc-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithImage adds the image dimensions to the logger.
func (l *Logger) WithImage(width, height int) *Logger {
	return &Logger{
		Logger: l.Logger.With("width", width, "height", height),
	}
}

// WithBlock adds the block size to the logger.
func (l *Logger) WithBlock(blockWidth, blockHeight int) *Logger {
	return &Logger{
		Logger: l.Logger.With("block_width", blockWidth, "block_height", blockHeight),
	}
}

// LogTraining logs a codebook training run.
func (l *Logger) LogTraining(ctx context.Context, vectors, k, iterations int, converged bool, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "training failed",
			"training_vectors", vectors,
			"k", k,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "codebook trained",
			"training_vectors", vectors,
			"k", k,
			"iterations", iterations,
			"converged", converged,
			"elapsed", elapsed,
		)
	}
}

// LogCompress logs a compress operation.
func (l *Logger) LogCompress(ctx context.Context, blocks int, bytes int64, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compress failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "compress completed",
			"blocks", blocks,
			"bytes", bytes,
			"elapsed", elapsed,
		)
	}
}

// LogDecompress logs a decompress operation.
func (l *Logger) LogDecompress(ctx context.Context, width, height, blocks int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "decompress failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "decompress completed",
			"width", width,
			"height", height,
			"blocks", blocks,
			"elapsed", elapsed,
		)
	}
}
