package notify

import (
	"context"
	"log/slog"

	"github.com/nuptial-ops/wedding-manager/pkg/roster"
)

type publisher interface {
	Publish(ctx context.Context, event Event) error
}

func NewHub(logger *slog.Logger, cache *roster.Cache, broker *Broker, publisher publisher) *Hub {
	return &Hub{
		logger:    logger,
		cache:     cache,
		broker:    broker,
		publisher: publisher,
	}
}

// Hub invalidates projections on this instance and relays the invalidation to the others.
type Hub struct {
	logger    *slog.Logger
	cache     *roster.Cache
	broker    *Broker
	publisher publisher
}

// Invalidate drops one view of a wedding everywhere.
func (h *Hub) Invalidate(ctx context.Context, key roster.CacheKey) {
	h.Send(ctx, Event{WeddingID: key.WeddingID, View: key.View})
}

// InvalidateWedding drops every view of a wedding everywhere.
func (h *Hub) InvalidateWedding(ctx context.Context, weddingID uint) {
	h.Send(ctx, Event{WeddingID: weddingID})
}

// Send applies the event locally and publishes it to the other instances. A failed publish is logged,
// the other instances serve the view until their cached projection reaches its max age.
func (h *Hub) Send(ctx context.Context, event Event) {
	h.Receive(ctx, event)

	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "Failed to relay invalidation", "weddingId", event.WeddingID, "view", event.View, "error", err)
	}
}

// Receive applies an event without relaying it.
func (h *Hub) Receive(ctx context.Context, event Event) {
	if event.View == "" {
		h.cache.InvalidateWedding(event.WeddingID)
	} else {
		h.cache.Invalidate(roster.CacheKey{WeddingID: event.WeddingID, View: event.View})
	}

	n := h.broker.Publish(event)
	h.logger.DebugContext(ctx, "Invalidated", "weddingId", event.WeddingID, "view", event.View, "subscribers", n)
}
