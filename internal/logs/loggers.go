package logs

import (
	"context"
	"io"
	"log/slog"

	"github.com/tebeka/atexit"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New create the diagnostic *slog.Logger writing JSON lines to `filename`.
// With debug disabled only Error records reach the file, which is how
// uncaught failures are always recorded while everything else stays quiet.
func New(filename string, debug bool) *slog.Logger {
	fileLogger := &lumberjack.Logger{
		Filename:   filename, // Log file path
		MaxSize:    10,       // Maximum size in MB before rotating
		MaxBackups: 5,        // Maximum number of old logs to retain
		MaxAge:     30,       // Maximum number of days to retain old logs
	}
	atexit.Register(func() {
		_ = fileLogger.Close()
	})
	return NewWithWriter(fileLogger, debug)
}

// NewWithWriter is New without the file sink.
func NewWithWriter(sink io.Writer, debug bool) *slog.Logger {
	level := slog.LevelError
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(sink, &slog.HandlerOptions{
		Level: level,
	}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (n nopHandler) Enabled(context.Context, slog.Level) bool {
	return false
}

func (n nopHandler) Handle(context.Context, slog.Record) error {
	return nil
}

func (n nopHandler) WithAttrs([]slog.Attr) slog.Handler {
	return n
}

func (n nopHandler) WithGroup(string) slog.Handler {
	return n
}

// Redacted hides a secret in log output while still telling whether it was set.
type Redacted string

func (r Redacted) LogValue() slog.Value {
	if r == "" {
		return slog.StringValue("")
	}
	return slog.StringValue("******")
}
