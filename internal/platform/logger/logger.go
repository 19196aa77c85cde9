// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package logger builds the process-wide structured logger.

Every binary logs JSON to stdout with a static "app" attribute. When LOG_FILE
is set the same records are also written to a size-rotated file.
*/
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	// App is attached to every record as the "app" attribute.
	App string
	// Debug lowers the level from INFO to DEBUG.
	Debug bool
	// File enables a rotated JSON file next to stdout when non-empty.
	File string
	// MaxSizeMB is the rotation threshold for File.
	MaxSizeMB int
	// Stdout overrides the console writer (tests).
	Stdout io.Writer
}

// New returns the logger and a closer that flushes the rotated file, if any.
func New(opts Options) (*slog.Logger, io.Closer) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOptions := &slog.HandlerOptions{Level: level}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	handler := slog.Handler(slog.NewJSONHandler(stdout, handlerOptions))
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 50
		}
		rotated := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		handler = fanout{handler, slog.NewJSONHandler(rotated, handlerOptions)}
		closer = rotated
	}

	return slog.New(handler).With(slog.String("app", opts.App)), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fanout sends each record to every handler.
type fanout []slog.Handler

func (handlers fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanout) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (handlers fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanout, len(handlers))
	for i, h := range handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return next
}

func (handlers fanout) WithGroup(name string) slog.Handler {
	next := make(fanout, len(handlers))
	for i, h := range handlers {
		next[i] = h.WithGroup(name)
	}
	return next
}
