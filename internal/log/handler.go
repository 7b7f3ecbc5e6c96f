// Package log provides slog handlers.
package log

import (
	"context"
	"log/slog"

	"github.com/nuptial-ops/wedding-manager/internal/middleware"
	"github.com/nuptial-ops/wedding-manager/pkg/model"
)

// ContextHandler adds values from the [context.Context] to the [slog.Record]. It uses the same
// attribute keys as the Gin [middleware.RequestLogger] so logs of a request can be correlated. Not
// every log happens within an HTTP request, so none of the keys are required.
type ContextHandler struct {
	slog.Handler
}

func New(handler slog.Handler) *ContextHandler {
	return &ContextHandler{
		Handler: handler,
	}
}

func (rh *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return rh.Handler.Enabled(ctx, level)
}

func (rh *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	// logs outside of an HTTP request or an AMQP delivery
	if id, ok := middleware.GetCorrelationID(ctx); ok {
		r.AddAttrs(slog.String(middleware.RequestLoggerKeyCorrelationID, id))
	}

	// only wedding scoped routes carry a wedding
	if weddingID, ok := model.GetWeddingFromContext(ctx); ok {
		r.AddAttrs(slog.Uint64(middleware.RequestLoggerKeyWedding, uint64(weddingID)))
	}

	return rh.Handler.Handle(ctx, r)
}

func (rh *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return New(rh.Handler.WithAttrs(attrs))
}

func (rh *ContextHandler) WithGroup(name string) slog.Handler {
	return New(rh.Handler.WithGroup(name))
}
