// Package logging sets up grit's console and audit logging on log/slog.
// Console records are printed as bare messages. Every record and every
// executed command is also appended to the workspace audit log.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"
)

// simpleHandler writes messages without timestamps or level prefixes.
type simpleHandler struct {
	writer  io.Writer
	verbose bool
}

func (h *simpleHandler) Enabled(_ context.Context, level slog.Level) bool {
	if level == slog.LevelDebug {
		return h.verbose
	}
	return true
}

func (h *simpleHandler) Handle(_ context.Context, record slog.Record) error {
	_, err := fmt.Fprintln(h.writer, record.Message)
	return err
}

func (h *simpleHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *simpleHandler) WithGroup(_ string) slog.Handler {
	return h
}

// multiHandler fans out log records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: next}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: next}
}

// Options configures New.
type Options struct {
	// Out receives console messages.
	Out io.Writer
	// Verbose enables debug messages on the console.
	Verbose bool
	// AuditPath is the audit log file. Empty disables the audit log.
	AuditPath string
}

// Logger bundles the console logger and the audit logger.
type Logger struct {
	*slog.Logger
	// Audit receives one record per executed command.
	Audit *slog.Logger

	auditWriter io.WriteCloser
}

// New creates a logger. With an audit path, console records are also
// appended to the audit log.
func New(opts Options) (*Logger, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	console := &simpleHandler{writer: out, verbose: opts.Verbose}

	if opts.AuditPath == "" {
		return &Logger{
			Logger: slog.New(console),
			Audit:  slog.New(slog.DiscardHandler),
		}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.AuditPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	w := newAuditWriter(opts.AuditPath)
	file := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{Key: a.Key, Value: slog.StringValue(a.Value.Time().Format("2006-01-02 15:04:05.000"))}
			}
			return a
		},
	})
	return &Logger{
		Logger:      slog.New(&multiHandler{handlers: []slog.Handler{console, file}}),
		Audit:       slog.New(file),
		auditWriter: w,
	}, nil
}

// Close closes the audit log if one was opened.
func (l *Logger) Close() error {
	if l.auditWriter != nil {
		return l.auditWriter.Close()
	}
	return nil
}

// newAuditWriter creates a rotating writer configured from environment
// variables. Rotated segments are kept unless GRIT_LOG_MAX_BACKUPS limits
// them.
func newAuditWriter(path string) *lumberjack.Logger {
	w := &lumberjack.Logger{
		Filename: path,
		MaxSize:  10, // megabytes
		Compress: false,
	}
	if s := os.Getenv("GRIT_LOG_MAX_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			w.MaxSize = n
		}
	}
	if s := os.Getenv("GRIT_LOG_MAX_BACKUPS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			w.MaxBackups = n
		}
	}
	return w
}
