package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ANSI colors per level, applied to the level field of console lines.
var levelColors = map[slog.Level]string{
	slog.LevelDebug: "\033[90m",
	slog.LevelInfo:  "\033[32m",
	slog.LevelWarn:  "\033[33m",
	slog.LevelError: "\033[31m",
}

// InitLogger builds the application logger from cfg and installs it as the
// slog default. An empty File logs to stderr; otherwise the file is rotated
// by lumberjack.
func InitLogger(cfg *LoggingConfig) (*slog.Logger, error) {
	var writer io.Writer = os.Stderr
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		writer = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	}

	logger := slog.New(newHandler(writer, cfg))
	slog.SetDefault(logger)

	return logger, nil
}

func newHandler(w io.Writer, cfg *LoggingConfig) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	// Colors only make sense on a console.
	if cfg.Color && cfg.File == "" {
		return NewColoredTextHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ColoredTextHandler wraps slog.TextHandler and colors the level of each line.
type ColoredTextHandler struct {
	handler slog.Handler
	writer  io.Writer
	opts    *slog.HandlerOptions
	// scope replays WithAttrs/WithGroup calls, in order, on each per-record handler.
	scope []func(slog.Handler) slog.Handler
}

// NewColoredTextHandler creates a colored console handler.
func NewColoredTextHandler(w io.Writer, opts *slog.HandlerOptions) *ColoredTextHandler {
	return &ColoredTextHandler{
		handler: slog.NewTextHandler(w, opts),
		writer:  w,
		opts:    opts,
	}
}

// Handle implements slog.Handler.
func (h *ColoredTextHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf strings.Builder
	var inner slog.Handler = slog.NewTextHandler(&buf, h.opts)
	for _, apply := range h.scope {
		inner = apply(inner)
	}
	if err := inner.Handle(ctx, r); err != nil {
		return err
	}

	_, err := io.WriteString(h.writer, colorize(buf.String(), r.Level))
	return err
}

// colorize wraps the level=... field in the level's color.
func colorize(line string, level slog.Level) string {
	color, ok := levelColors[level]
	if !ok {
		return line
	}
	field := "level=" + level.String()
	return strings.Replace(line, field, color+field+"\033[0m", 1)
}

// WithAttrs implements slog.Handler.
func (h *ColoredTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.handler = h.handler.WithAttrs(attrs)
	clone.scope = h.withScope(func(inner slog.Handler) slog.Handler { return inner.WithAttrs(attrs) })
	return &clone
}

// WithGroup implements slog.Handler.
func (h *ColoredTextHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.handler = h.handler.WithGroup(name)
	clone.scope = h.withScope(func(inner slog.Handler) slog.Handler { return inner.WithGroup(name) })
	return &clone
}

func (h *ColoredTextHandler) withScope(apply func(slog.Handler) slog.Handler) []func(slog.Handler) slog.Handler {
	return append(append([]func(slog.Handler) slog.Handler{}, h.scope...), apply)
}

// Enabled implements slog.Handler.
func (h *ColoredTextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
