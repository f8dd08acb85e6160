// Package logger builds the *slog.Logger handed to every other package.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Canonical attribute keys.
const (
	KeyPath       = "path"
	KeyPages      = "pages"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func Path(p string) slog.Attr { return slog.String(KeyPath, p) }
func Pages(n int) slog.Attr    { return slog.Int(KeyPages, n) }
func Duration(d time.Duration) slog.Attr {
	return slog.Int64(KeyDurationMS, d.Milliseconds())
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

type config struct {
	level  slog.Level
	json   bool
	writer io.Writer
}

// Option configures a logger created with New.
type Option func(*config)

// WithDebug sets the level to Debug when true, Info otherwise.
func WithDebug(debug bool) Option {
	return func(c *config) {
		if debug {
			c.level = slog.LevelDebug
		} else {
			c.level = slog.LevelInfo
		}
	}
}

// WithJSON switches from the human-friendly charmbracelet handler to slog's
// JSON handler.
func WithJSON(json bool) Option {
	return func(c *config) {
		c.json = json
	}
}

// WithWriter overrides the output writer. Defaults to os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		c.writer = w
	}
}

// New returns a logger configured by opts.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo, writer: os.Stderr}
	for _, opt := range opts {
		opt(c)
	}

	if c.json {
		return slog.New(slog.NewJSONHandler(c.writer, &slog.HandlerOptions{Level: c.level}))
	}

	h := charmlog.NewWithOptions(c.writer, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           charmlog.Level(c.level),
	})
	return slog.New(h)
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

// OrNop returns l, or a Nop logger when l is nil.
func OrNop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Nop()
	}
	return l
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
