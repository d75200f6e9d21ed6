package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
)

// ConsoleHandler forwards every record to the wrapped handler and prints a
// coloured one-line copy of records at or above minLevel to out.
type ConsoleHandler struct {
	handler  slog.Handler
	out      io.Writer
	minLevel slog.Level
	attrs    []slog.Attr
}

func NewConsoleHandler(next slog.Handler, out io.Writer, minLevel slog.Level) *ConsoleHandler {
	return &ConsoleHandler{handler: next, out: out, minLevel: minLevel}
}

func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.minLevel || h.handler.Enabled(ctx, level)
}

func (h *ConsoleHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.handler.Enabled(ctx, r.Level) {
		if err := h.handler.Handle(ctx, r); err != nil {
			return err
		}
	}

	if r.Level < h.minLevel {
		return nil
	}

	var colorFn func(format string, args ...interface{}) string
	switch r.Level {
	case slog.LevelDebug:
		colorFn = color.New(color.FgCyan).Sprintf
	case slog.LevelInfo:
		colorFn = color.New(color.FgGreen).Sprintf
	case slog.LevelWarn:
		colorFn = color.New(color.FgYellow).Sprintf
	case slog.LevelError:
		colorFn = color.New(color.FgRed).Sprintf
	default:
		colorFn = color.New(color.FgWhite).Sprintf
	}

	attrs := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs = append(attrs, fmt.Sprintf("%s=%v", a.Key, a.Value))
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, fmt.Sprintf("%s=%v", a.Key, a.Value))
		return true
	})

	message := r.Message
	if len(attrs) > 0 {
		message = fmt.Sprintf("%s %s", message, strings.Join(attrs, " "))
	}

	_, err := fmt.Fprintf(h.out, "%s %s %s\n",
		color.New(color.FgBlue).Sprintf("%s", r.Time.Format("15:04:05.000")),
		colorFn("%-5s", r.Level.String()),
		message,
	)
	return err
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &ConsoleHandler{handler: h.handler.WithAttrs(attrs), out: h.out, minLevel: h.minLevel, attrs: merged}
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	return &ConsoleHandler{handler: h.handler.WithGroup(name), out: h.out, minLevel: h.minLevel, attrs: h.attrs}
}
