package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

type PrettyJSONHandlerOptions struct {
	slog.HandlerOptions
	PrettyPrint bool
}

// NewPrettyJSONHandler returns a JSON handler which indents every record when PrettyPrint is set.
// Meant for local development.
func NewPrettyJSONHandler(w io.Writer, opts *PrettyJSONHandlerOptions) slog.Handler {
	if opts == nil {
		opts = &PrettyJSONHandlerOptions{}
	}
	if !opts.PrettyPrint {
		return slog.NewJSONHandler(w, &opts.HandlerOptions)
	}

	h := &prettyHandler{
		writer: w,
		mu:     &sync.Mutex{},
		buf:    &bytes.Buffer{},
	}
	h.json = slog.NewJSONHandler(h.buf, &opts.HandlerOptions)
	return h
}

// prettyHandler formats a record into buf using json and writes an indented copy of it. Handlers
// derived through WithAttrs and WithGroup share buf and mu with their parent.
type prettyHandler struct {
	json   slog.Handler
	writer io.Writer
	mu     *sync.Mutex
	buf    *bytes.Buffer
}

func (h *prettyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.json.Enabled(ctx, level)
}

func (h *prettyHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf.Reset()

	if err := h.json.Handle(ctx, r); err != nil {
		return err
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, h.buf.Bytes(), "", "  "); err != nil {
		// write the record as is rather than lose it
		_, err := h.writer.Write(h.buf.Bytes())
		return err
	}

	_, err := h.writer.Write(indented.Bytes())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyHandler{json: h.json.WithAttrs(attrs), writer: h.writer, mu: h.mu, buf: h.buf}
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	return &prettyHandler{json: h.json.WithGroup(name), writer: h.writer, mu: h.mu, buf: h.buf}
}
