package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

type ctxKey struct{}

type implLogger struct {
	zl    zerolog.Logger
	level string
}

// New creates a Logger writing to stdout, console-formatted when stdout is a terminal
func New(level string) Logger {
	return NewWriter(level, "auto", os.Stdout)
}

// NewWriter creates a Logger with an explicit format ("json", "text" or "auto") and destination
func NewWriter(level, format string, w io.Writer) Logger {
	var out io.Writer = w
	switch strings.ToLower(format) {
	case "text", "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime, NoColor: !isTerminal(w)}
	case "json":
	default:
		if isTerminal(w) {
			out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
		}
	}

	return &implLogger{
		zl:    zerolog.New(out).With().Timestamp().Logger(),
		level: strings.ToLower(level),
	}
}

// WithRequestID returns a context whose log lines carry the given request id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request id stored by WithRequestID, if any
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (l *implLogger) shouldLog(level string) bool {
	levels := map[string]int{
		"debug": 0,
		"info":  1,
		"warn":  2,
		"error": 3,
	}

	currentLevel, ok := levels[l.level]
	if !ok {
		currentLevel = 1 // default to info
	}

	targetLevel, ok := levels[level]
	if !ok {
		return true
	}

	return targetLevel >= currentLevel
}

func (l *implLogger) emit(ctx context.Context, evt *zerolog.Event, msg string, args []interface{}) {
	if id := RequestID(ctx); id != "" {
		evt = evt.Str("request_id", id)
	}
	evt.Msgf(msg, args...)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("debug") {
		l.emit(ctx, l.zl.Debug(), msg, args)
	}
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("info") {
		l.emit(ctx, l.zl.Info(), msg, args)
	}
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("warn") {
		l.emit(ctx, l.zl.Warn(), msg, args)
	}
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("error") {
		l.emit(ctx, l.zl.Error(), msg, args)
	}
}
