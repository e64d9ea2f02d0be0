package errors

import (
	"log/slog"
	"os"
)

// LogHandler is an ErrorHandler that logs through slog.
type LogHandler struct {
	// Logger receives the records. Nil means a text logger on stderr.
	Logger *slog.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// HandleError logs a recovered IconError at warn level.
func (h *LogHandler) HandleError(err *IconError) {
	if err == nil {
		return
	}
	attrs := []any{
		slog.String("op", err.Op),
		slog.String("kind", err.Kind.String()),
	}
	if err.Name != "" {
		attrs = append(attrs, slog.String("name", err.Name))
	}
	if err.Err != nil {
		attrs = append(attrs, slog.String("err", err.Err.Error()))
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", err.StackTrace))
	}
	h.logger().Warn("icons: recovered error", attrs...)
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{slog.Any("value", err.Value)}
	if err.Op != "" {
		attrs = append(attrs, slog.String("op", err.Op))
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", err.StackTrace))
	}
	h.logger().Error("icons: recovered panic", attrs...)
}
